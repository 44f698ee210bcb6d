package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	_, found, err := s.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, TokenKey, "tok"))
	v, found, err := s.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "tok", v)

	require.NoError(t, s.Remove(ctx, TokenKey))
	_, found, _ = s.Get(ctx, TokenKey)
	assert.False(t, found)

	// removing a missing key is not an error
	assert.NoError(t, s.Remove(ctx, "missing"))
}

func TestWithPrefix(t *testing.T) {
	ctx := context.Background()
	base := NewMemoryStorage()
	a := WithPrefix(base, "session:a:")
	b := WithPrefix(base, "session:b:")

	require.NoError(t, a.Set(ctx, UserKey, "alice"))
	require.NoError(t, b.Set(ctx, UserKey, "bob"))

	v, found, err := a.Get(ctx, UserKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "alice", v)

	v, _, _ = base.Get(ctx, "session:b:"+UserKey)
	assert.Equal(t, "bob", v)

	require.NoError(t, a.Remove(ctx, UserKey))
	_, found, _ = a.Get(ctx, UserKey)
	assert.False(t, found)
	_, found, _ = b.Get(ctx, UserKey)
	assert.True(t, found, "removing from one namespace must not touch another")
	assert.Equal(t, 1, base.Len())
}
