// Package storage holds the durable per-session key/value storage that plays the
// role of the browser's local storage.
package storage

import (
	"context"
)

// Well-known keys.
const (
	// UserKey holds the JSON encoded session user.
	UserKey = "neuroteach_user"
	// TokenKey holds the bearer token string.
	TokenKey = "token"
	// AccountPrefix prefixes the locally simulated accounts.
	AccountPrefix = "neuroteach_account:"
)

// Storage is a string key/value store. Get reports found=false for a missing key.
type Storage interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type prefixed struct {
	inner  Storage
	prefix string
}

// WithPrefix namespaces every key of s under prefix.
func WithPrefix(s Storage, prefix string) Storage {
	return &prefixed{inner: s, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.inner.Remove(ctx, p.prefix+key)
}
