package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"neuroteach/internal/domain/dto"
	"neuroteach/shared/models"

	"go.uber.org/zap"
)

type lessonClient struct {
	baseClient
}

// NewLessonServiceClient создает клиент для /api/lessons.
func NewLessonServiceClient(baseURL string, timeout time.Duration, logger *zap.Logger) (LessonServiceClient, error) {
	base, err := newBaseClient(baseURL, timeout, logger, "LessonServiceClient")
	if err != nil {
		return nil, err
	}
	return &lessonClient{baseClient: base}, nil
}

// ListLessons возвращает уроки пользователя, приведенные к доменной модели.
func (c *lessonClient) ListLessons(ctx context.Context, token string) ([]models.Lesson, error) {
	log := c.logger.With(zap.String("url", c.baseURL+"/api/lessons"))
	status, body, err := c.doJSON(ctx, log, http.MethodGet, "/api/lessons", token, nil)
	if err != nil {
		return nil, err
	}
	if err := c.checkStatus(log, status, body); err != nil {
		return nil, err
	}

	var dtos []dto.LessonDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		log.Error("Failed to unmarshal lessons", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedResponse, err)
	}
	log.Debug("Lessons received", zap.Int("count", len(dtos)))
	return dto.MapLessonDTOs(dtos), nil
}

// DeleteLesson удаляет урок. 404 возвращается как ErrLessonNotFound.
func (c *lessonClient) DeleteLesson(ctx context.Context, token, id string) error {
	path := "/api/lessons/" + url.PathEscape(id)
	log := c.logger.With(zap.String("url", c.baseURL+path))
	status, body, err := c.doJSON(ctx, log, http.MethodDelete, path, token, nil)
	if err != nil {
		return err
	}
	if err := c.checkStatus(log, status, body); err != nil {
		return err
	}
	log.Info("Lesson deleted", zap.String("lessonID", id))
	return nil
}

// GenerateLesson просит сервер сгенерировать и сохранить новый урок.
func (c *lessonClient) GenerateLesson(ctx context.Context, token string, req dto.LessonRequestDTO) (*models.Lesson, error) {
	log := c.logger.With(zap.String("url", c.baseURL+"/api/lessons/generate"), zap.String("topic", req.Tema))
	status, body, err := c.doJSON(ctx, log, http.MethodPost, "/api/lessons/generate", token, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}
	if err := c.checkStatus(log, status, body); err != nil {
		return nil, err
	}

	var lessonDTO dto.LessonDTO
	if err := json.Unmarshal(body, &lessonDTO); err != nil {
		log.Error("Failed to unmarshal generated lesson", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedResponse, err)
	}
	lesson := dto.MapLessonDTOToLesson(lessonDTO)
	return &lesson, nil
}

type videoScriptResponse struct {
	VideoScript string `json:"videoScript"`
}

// GenerateVideoScript запрашивает видеосценарий для существующего урока.
func (c *lessonClient) GenerateVideoScript(ctx context.Context, token, lessonID string) (string, error) {
	path := "/api/lessons/" + url.PathEscape(lessonID) + "/video-script"
	log := c.logger.With(zap.String("url", c.baseURL+path))
	status, body, err := c.doJSON(ctx, log, http.MethodPost, path, token, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}
	if err := c.checkStatus(log, status, body); err != nil {
		return "", err
	}

	var resp videoScriptResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.VideoScript == "" {
		log.Error("Invalid video script response", zap.ByteString("body", body), zap.Error(err))
		return "", fmt.Errorf("%w: empty video script", models.ErrMalformedResponse)
	}
	return resp.VideoScript, nil
}

func (c *lessonClient) checkStatus(log *zap.Logger, status int, body []byte) error {
	switch {
	case isSuccess(status):
		return nil
	case status == http.StatusUnauthorized:
		return models.ErrUnauthorized
	case status == http.StatusNotFound:
		return models.ErrLessonNotFound
	default:
		return unexpectedStatus(log, status, body)
	}
}
