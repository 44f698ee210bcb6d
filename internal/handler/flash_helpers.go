package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"neuroteach/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	flashCookieName = "neuroteach_flash"
	flashCookieTTL  = 10 * time.Second
)

type flashMessage struct {
	Type    string `json:"t"`
	Message string `json:"m"`
}

// setFlash устанавливает подписанную куку с flash-сообщением (HMAC-SHA256 + Base64).
func (h *Handler) setFlash(c *gin.Context, msgType, message string) {
	jsonData, err := json.Marshal(flashMessage{Type: msgType, Message: message})
	if err != nil {
		h.logger.Error("Failed to marshal flash message", zap.Error(err))
		return
	}

	mac := hmac.New(sha256.New, h.flashSecret)
	mac.Write(jsonData)
	signedData := append(mac.Sum(nil), jsonData...)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, base64.URLEncoding.EncodeToString(signedData),
		int(flashCookieTTL.Seconds()), "/", "", h.secureCookies, true)
}

// popFlash читает, проверяет и удаляет куку с flash-сообщением.
func (h *Handler) popFlash(c *gin.Context) (*web.Flash, error) {
	cookie, err := c.Cookie(flashCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get flash cookie: %w", err)
	}

	// удаляем сразу после чтения
	c.SetCookie(flashCookieName, "", -1, "/", "", h.secureCookies, true)

	signedData, err := base64.URLEncoding.DecodeString(cookie)
	if err != nil {
		return nil, fmt.Errorf("failed to decode flash cookie: %w", err)
	}
	if len(signedData) < sha256.Size {
		return nil, fmt.Errorf("invalid flash cookie length")
	}

	receivedSig := signedData[:sha256.Size]
	jsonData := signedData[sha256.Size:]

	mac := hmac.New(sha256.New, h.flashSecret)
	mac.Write(jsonData)
	if !hmac.Equal(receivedSig, mac.Sum(nil)) {
		return nil, fmt.Errorf("invalid flash cookie signature")
	}

	var msg flashMessage
	if err := json.Unmarshal(jsonData, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flash message: %w", err)
	}
	return &web.Flash{Type: msg.Type, Message: msg.Message}, nil
}
