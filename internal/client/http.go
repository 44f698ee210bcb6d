package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// baseClient содержит общую логику JSON-запросов.
type baseClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func newBaseClient(baseURL string, timeout time.Duration, logger *zap.Logger, name string) (baseClient, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return baseClient{}, fmt.Errorf("invalid base URL for %s: %w", name, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named(name),
	}, nil
}

// doJSON отправляет запрос и возвращает статус и тело ответа.
// payload == nil означает запрос без тела; token == "" - без Authorization.
func (c *baseClient) doJSON(ctx context.Context, log *zap.Logger, method, path, token string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		reqBody, err := json.Marshal(payload)
		if err != nil {
			log.Error("Failed to marshal request payload", zap.Error(err))
			return 0, nil, fmt.Errorf("internal error marshalling request: %w", err)
		}
		body = bytes.NewReader(reqBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		log.Error("Failed to create HTTP request", zap.Error(err))
		return 0, nil, fmt.Errorf("internal error creating request: %w", err)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	log.Debug("Sending request", zap.String("method", method))
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Error("HTTP request failed", zap.Error(err))
		// таймаут контекста пробрасываем как есть, чтобы вызывающий мог его распознать
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, nil, fmt.Errorf("request timed out: %w", err)
		}
		return 0, nil, fmt.Errorf("failed to communicate with service: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Int("status", httpResp.StatusCode), zap.Error(err))
		return httpResp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return httpResp.StatusCode, respBody, nil
}

// unexpectedStatus формирует ошибку для непредусмотренного статуса ответа.
func unexpectedStatus(log *zap.Logger, status int, body []byte) error {
	log.Warn("Received error response", zap.Int("status", status), zap.ByteString("body", body))
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.text() != "" {
		return fmt.Errorf("service error: %s (status: %d)", errResp.text(), status)
	}
	return fmt.Errorf("received unexpected status %d", status)
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
