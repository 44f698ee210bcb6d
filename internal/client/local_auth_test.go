package client

import (
	"context"
	"testing"
	"time"

	"neuroteach/internal/storage"
	"neuroteach/shared/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLocalAuth() (*LocalAuthBackend, *storage.MemoryStorage) {
	st := storage.NewMemoryStorage()
	return NewLocalAuthBackend(st, "test-secret", time.Hour, 0, zap.NewNop()), st
}

func TestLocalAuth_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	b, st := newTestLocalAuth()

	session, err := b.Register(ctx, "A@B.com ", "secret1", "Ann")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", session.User.Email)
	assert.Equal(t, "Ann", session.User.Name)
	assert.NotEmpty(t, session.User.ID)
	assert.Equal(t, 1, st.Len())

	claims := jwt.MapClaims{}
	_, err = jwt.NewParser().ParseWithClaims(session.Token, claims, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims["sub"])

	again, err := b.Login(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, again.User.ID)

	_, err = b.Login(ctx, "a@b.com", "wrong")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = b.Register(ctx, "a@b.com", "other1", "Bob")
	require.ErrorIs(t, err, models.ErrUserAlreadyExists)
}

func TestLocalAuth_UnknownEmailIsAccepted(t *testing.T) {
	b, st := newTestLocalAuth()

	session, err := b.Login(context.Background(), "teacher@school.org", "anything")
	require.NoError(t, err)
	assert.Equal(t, "teacher", session.User.Name)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, 0, st.Len(), "simulated login must not create an account")
}

func TestLocalAuth_EmptyCredentials(t *testing.T) {
	b, _ := newTestLocalAuth()

	_, err := b.Login(context.Background(), "", "x")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)
	_, err = b.Register(context.Background(), "a@b.com", "", "")
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestLocalAuth_LatencyHonoursContext(t *testing.T) {
	b := NewLocalAuthBackend(storage.NewMemoryStorage(), "s", time.Hour, time.Second, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := b.Login(ctx, "a@b.com", "x")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
