package generator

import (
	"context"
	"fmt"

	"neuroteach/internal/client"
	"neuroteach/internal/domain/dto"
	"neuroteach/internal/storage"
	"neuroteach/shared/models"
)

// RemoteGenerator delegates generation to the lesson service, which also stores the result.
type RemoteGenerator struct {
	client  client.LessonServiceClient
	storage storage.Storage // session storage holding the bearer token
}

func NewRemoteGenerator(c client.LessonServiceClient, st storage.Storage) *RemoteGenerator {
	return &RemoteGenerator{client: c, storage: st}
}

func (g *RemoteGenerator) GenerateLesson(ctx context.Context, req models.LessonRequest) (*models.Lesson, error) {
	token, err := g.token(ctx)
	if err != nil {
		return nil, err
	}
	return g.client.GenerateLesson(ctx, token, dto.FromLessonRequest(req))
}

func (g *RemoteGenerator) GenerateVideoScript(ctx context.Context, lesson models.Lesson) (string, error) {
	token, err := g.token(ctx)
	if err != nil {
		return "", err
	}
	return g.client.GenerateVideoScript(ctx, token, lesson.ID)
}

func (g *RemoteGenerator) token(ctx context.Context) (string, error) {
	token, found, err := g.storage.Get(ctx, storage.TokenKey)
	if err != nil {
		return "", fmt.Errorf("failed to read session token: %w", err)
	}
	if !found || token == "" {
		return "", models.ErrUnauthorized
	}
	return token, nil
}
