package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"neuroteach/internal/storage"
	"neuroteach/shared/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// localAccount - запись аккаунта в локальном хранилище.
type localAccount struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// LocalAuthBackend имитирует auth API без сети: аккаунты лежат в storage,
// токены - HS256 JWT, подписанные локальным секретом.
type LocalAuthBackend struct {
	accounts storage.Storage
	secret   []byte
	tokenTTL time.Duration
	latency  time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewLocalAuthBackend создает локальную имитацию. st должен быть общим для всех сессий,
// иначе зарегистрированный аккаунт не будет виден из другой вкладки.
func NewLocalAuthBackend(st storage.Storage, secret string, tokenTTL, latency time.Duration, logger *zap.Logger) *LocalAuthBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalAuthBackend{
		accounts: storage.WithPrefix(st, storage.AccountPrefix),
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		latency:  latency,
		logger:   logger.Named("LocalAuthBackend"),
		now:      time.Now,
	}
}

// Login проверяет пароль зарегистрированного аккаунта. Неизвестный email принимается
// с любым паролем, имя берется из локальной части адреса.
func (b *LocalAuthBackend) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	acc, found, err := b.account(ctx, email)
	if err != nil {
		return nil, err
	}
	if !found {
		b.logger.Debug("Unknown email, accepting simulated login", zap.String("email", email))
		acc = &localAccount{
			ID:        uuid.NewString(),
			Email:     email,
			Name:      nameFromEmail(email),
			CreatedAt: b.now().UTC(),
		}
		return b.issue(acc)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	return b.issue(acc)
}

// Register создает аккаунт. Повторная регистрация email возвращает ErrUserAlreadyExists.
func (b *LocalAuthBackend) Register(ctx context.Context, email, password, name string) (*models.Session, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", models.ErrInvalidInput)
	}

	_, found, err := b.account(ctx, email)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, models.ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if strings.TrimSpace(name) == "" {
		name = nameFromEmail(email)
	}
	acc := &localAccount{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		CreatedAt:    b.now().UTC(),
	}
	raw, err := json.Marshal(acc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account: %w", err)
	}
	if err := b.accounts.Set(ctx, email, string(raw)); err != nil {
		return nil, fmt.Errorf("failed to store account: %w", err)
	}
	b.logger.Info("Account registered", zap.String("email", email), zap.String("userID", acc.ID))
	return b.issue(acc)
}

func (b *LocalAuthBackend) account(ctx context.Context, email string) (*localAccount, bool, error) {
	raw, found, err := b.accounts.Get(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read account: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	var acc localAccount
	if err := json.Unmarshal([]byte(raw), &acc); err != nil {
		b.logger.Error("Stored account is malformed", zap.String("email", email), zap.Error(err))
		return nil, false, fmt.Errorf("malformed account record: %w", err)
	}
	return &acc, true, nil
}

func (b *LocalAuthBackend) issue(acc *localAccount) (*models.Session, error) {
	now := b.now()
	claims := jwt.MapClaims{
		"sub":   acc.ID,
		"email": acc.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(b.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &models.Session{
		Token: token,
		User: models.User{
			ID:        acc.ID,
			Email:     acc.Email,
			Name:      acc.Name,
			CreatedAt: acc.CreatedAt,
		},
	}, nil
}

// wait имитирует сетевую задержку.
func (b *LocalAuthBackend) wait(ctx context.Context) error {
	if b.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(b.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
