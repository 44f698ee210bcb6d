package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"neuroteach/shared/models"

	"go.uber.org/zap"
)

// authClient реализует AuthServiceHttpClient (интерфейс определен в auth.go).
type authClient struct {
	baseClient
}

// NewAuthServiceClient создает новый клиент для auth API.
func NewAuthServiceClient(baseURL string, timeout time.Duration, logger *zap.Logger) (AuthServiceHttpClient, error) {
	base, err := newBaseClient(baseURL, timeout, logger, "AuthServiceClient")
	if err != nil {
		return nil, err
	}
	return &authClient{baseClient: base}, nil
}

// Login отправляет запрос на вход.
func (c *authClient) Login(ctx context.Context, email, password string) (*models.Session, error) {
	log := c.logger.With(zap.String("url", c.baseURL+"/api/auth/login"), zap.String("email", email))
	status, body, err := c.doJSON(ctx, log, http.MethodPost, "/api/auth/login", "", loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return c.session(log, status, body)
}

// Register создает аккаунт и сразу возвращает сессию.
func (c *authClient) Register(ctx context.Context, email, password, name string) (*models.Session, error) {
	log := c.logger.With(zap.String("url", c.baseURL+"/api/auth/register"), zap.String("email", email))
	status, body, err := c.doJSON(ctx, log, http.MethodPost, "/api/auth/register", "", registerRequest{Email: email, Password: password, Name: name})
	if err != nil {
		return nil, err
	}
	return c.session(log, status, body)
}

func (c *authClient) session(log *zap.Logger, status int, body []byte) (*models.Session, error) {
	switch {
	case isSuccess(status):
	case status == http.StatusUnauthorized || status == http.StatusNotFound:
		log.Warn("Credentials rejected", zap.Int("status", status))
		return nil, models.ErrInvalidCredentials
	case status == http.StatusConflict:
		return nil, models.ErrUserAlreadyExists
	default:
		return nil, unexpectedStatus(log, status, body)
	}

	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		log.Error("Failed to unmarshal auth response", zap.ByteString("body", body), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedResponse, err)
	}
	if strings.TrimSpace(resp.AccessToken) == "" {
		log.Error("Auth response has no access token")
		return nil, fmt.Errorf("%w: missing access_token", models.ErrMalformedResponse)
	}
	log.Info("Authenticated via auth API", zap.String("userID", resp.User.ID))
	return &models.Session{Token: resp.AccessToken, User: resp.User}, nil
}
