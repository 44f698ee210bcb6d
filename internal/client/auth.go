package client

import (
	"context"

	"neuroteach/internal/domain/dto"
	"neuroteach/shared/models"
)

// AuthServiceHttpClient - обмен учетных данных на сессию через auth API.
type AuthServiceHttpClient interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Register(ctx context.Context, email, password, name string) (*models.Session, error)
}

// LessonServiceClient работает с удаленной коллекцией уроков.
type LessonServiceClient interface {
	ListLessons(ctx context.Context, token string) ([]models.Lesson, error)
	DeleteLesson(ctx context.Context, token, id string) error
	GenerateLesson(ctx context.Context, token string, req dto.LessonRequestDTO) (*models.Lesson, error)
	GenerateVideoScript(ctx context.Context, token, lessonID string) (string, error)
}

// --- Структуры запросов/ответов auth API ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// authResponse - ответ /api/auth/login и /api/auth/register.
type authResponse struct {
	AccessToken string      `json:"access_token"`
	User        models.User `json:"user"`
}

// errorResponse - тело ошибки API.
type errorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (e errorResponse) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Detail
}
