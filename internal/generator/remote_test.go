package generator

import (
	"context"
	"testing"

	"neuroteach/internal/domain/dto"
	"neuroteach/internal/storage"
	"neuroteach/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLessonService struct {
	gotToken string
	gotReq   dto.LessonRequestDTO
	gotID    string
}

func (f *fakeLessonService) ListLessons(context.Context, string) ([]models.Lesson, error) {
	return nil, nil
}

func (f *fakeLessonService) DeleteLesson(context.Context, string, string) error { return nil }

func (f *fakeLessonService) GenerateLesson(_ context.Context, token string, req dto.LessonRequestDTO) (*models.Lesson, error) {
	f.gotToken, f.gotReq = token, req
	return &models.Lesson{ID: "srv-1", Topic: req.Tema}, nil
}

func (f *fakeLessonService) GenerateVideoScript(_ context.Context, token, lessonID string) (string, error) {
	f.gotToken, f.gotID = token, lessonID
	return "script", nil
}

func TestRemoteGenerator(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	svc := &fakeLessonService{}
	g := NewRemoteGenerator(svc, st)

	_, err := g.GenerateLesson(ctx, testRequest(models.StyleEasy))
	require.ErrorIs(t, err, models.ErrUnauthorized)

	require.NoError(t, st.Set(ctx, storage.TokenKey, "tok"))
	lesson, err := g.GenerateLesson(ctx, testRequest(models.StyleEasy))
	require.NoError(t, err)
	assert.Equal(t, "srv-1", lesson.ID)
	assert.Equal(t, "tok", svc.gotToken)
	assert.Equal(t, "Acids and bases", svc.gotReq.Tema)
	assert.Equal(t, "8th grade", svc.gotReq.AOld)

	script, err := g.GenerateVideoScript(ctx, *lesson)
	require.NoError(t, err)
	assert.Equal(t, "script", script)
	assert.Equal(t, "srv-1", svc.gotID)
}
