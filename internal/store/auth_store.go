package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"neuroteach/internal/storage"
	"neuroteach/shared/models"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AuthBackend performs the credential exchange, remotely or as a local simulation.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Register(ctx context.Context, email, password, name string) (*models.Session, error)
}

// AuthStore owns the session lifecycle of one browser session.
type AuthStore struct {
	*Store[AuthState, AuthAction]
	backend AuthBackend
	storage storage.Storage
	logger  *zap.Logger
	now     func() time.Time
}

// NewAuthStore creates an unauthenticated store.
func NewAuthStore(backend AuthBackend, st storage.Storage, logger *zap.Logger) *AuthStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthStore{
		Store:   NewStore(AuthReducer, AuthState{}),
		backend: backend,
		storage: st,
		logger:  logger.Named("AuthStore"),
		now:     time.Now,
	}
}

// Token returns the bearer token of the current session, if any.
func (s *AuthStore) Token() string {
	return s.State().Token
}

// Login exchanges credentials for a session. Every failure is reported as false
// and leaves the store unauthenticated.
func (s *AuthStore) Login(ctx context.Context, email, password string) bool {
	s.Dispatch(LoginStart{})
	session, err := s.backend.Login(ctx, email, password)
	if err == nil {
		err = s.persist(ctx, session)
	}
	authAttemptsTotal.WithLabelValues("login", resultLabel(err)).Inc()
	if err != nil {
		s.logger.Warn("Login failed", zap.String("email", email), zap.Error(err))
		s.Dispatch(LoginFailure{})
		return false
	}
	s.Dispatch(LoginSuccess{Session: *session})
	s.logger.Info("Login successful", zap.String("email", email), zap.String("userID", session.User.ID))
	return true
}

// Register creates an account and signs in with it. Same failure contract as Login.
func (s *AuthStore) Register(ctx context.Context, email, password, name string) bool {
	s.Dispatch(RegisterStart{})
	session, err := s.backend.Register(ctx, email, password, name)
	if err == nil {
		err = s.persist(ctx, session)
	}
	authAttemptsTotal.WithLabelValues("register", resultLabel(err)).Inc()
	if err != nil {
		s.logger.Warn("Registration failed", zap.String("email", email), zap.Error(err))
		s.Dispatch(RegisterFailure{})
		return false
	}
	s.Dispatch(RegisterSuccess{Session: *session})
	s.logger.Info("Registration successful", zap.String("email", email), zap.String("userID", session.User.ID))
	return true
}

// Logout clears durable session data and resets the state. It always succeeds.
func (s *AuthStore) Logout(ctx context.Context) {
	s.clear(ctx)
	s.Dispatch(Logout{})
	s.logger.Info("Logged out")
}

// Restore loads a previously persisted session. It reports whether a session was restored.
func (s *AuthStore) Restore(ctx context.Context) bool {
	raw, found, err := s.storage.Get(ctx, storage.UserKey)
	if err != nil {
		s.logger.Error("Failed to read persisted user", zap.Error(err))
		return false
	}
	if !found {
		return false
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == "" {
		s.logger.Warn("Persisted user record is malformed, removing it", zap.Error(err))
		s.clear(ctx)
		return false
	}

	token, found, err := s.storage.Get(ctx, storage.TokenKey)
	if err != nil {
		s.logger.Error("Failed to read persisted token", zap.Error(err))
		return false
	}
	if !found {
		token = user.Token
	}
	if expired(token, s.now()) {
		s.logger.Info("Persisted session token has expired, removing it", zap.String("userID", user.ID))
		s.clear(ctx)
		return false
	}

	s.Dispatch(LoginSuccess{Session: models.Session{Token: token, User: user}})
	s.logger.Debug("Session restored", zap.String("userID", user.ID))
	return true
}

func (s *AuthStore) persist(ctx context.Context, session *models.Session) error {
	if session == nil || strings.TrimSpace(session.Token) == "" {
		return fmt.Errorf("%w: missing access token", models.ErrMalformedResponse)
	}
	user := session.User
	user.Token = session.Token
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := s.storage.Set(ctx, storage.TokenKey, session.Token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	if err := s.storage.Set(ctx, storage.UserKey, string(userJSON)); err != nil {
		s.clear(ctx)
		return fmt.Errorf("failed to persist user: %w", err)
	}
	return nil
}

func (s *AuthStore) clear(ctx context.Context) {
	for _, key := range []string{storage.TokenKey, storage.UserKey} {
		if err := s.storage.Remove(ctx, key); err != nil {
			s.logger.Error("Failed to remove session key", zap.String("key", key), zap.Error(err))
		}
	}
}

// expired reports whether token is a JWT whose exp claim lies before now.
// Opaque tokens never expire on the client side.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
