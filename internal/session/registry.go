// Package session keeps one Workspace per browser session.
package session

import (
	"context"
	"sync"
	"time"

	"neuroteach/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Workspace is the state of one browser session.
type Workspace struct {
	ID      string
	Auth    *store.AuthStore
	Lessons *store.LessonStore

	lastSeen time.Time
}

// Logout signs the account out and drops its lessons.
func (w *Workspace) Logout(ctx context.Context) {
	w.Auth.Logout(ctx)
	w.Lessons.Reset()
}

// Factory builds the stores of a new workspace.
type Factory func(id string) *Workspace

type Registry struct {
	mu         sync.Mutex
	workspaces map[string]*Workspace
	factory    Factory
	idleTTL    time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewRegistry(factory Factory, idleTTL time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		workspaces: make(map[string]*Workspace),
		factory:    factory,
		idleTTL:    idleTTL,
		logger:     logger.Named("SessionRegistry"),
		now:        time.Now,
	}
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Get returns an existing workspace and marks it as used.
func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.workspaces[id]
	if ok {
		ws.lastSeen = r.now()
	}
	return ws, ok
}

// GetOrCreate returns the workspace for id, creating it when missing. A new workspace
// restores its persisted session; created reports whether that happened.
func (r *Registry) GetOrCreate(ctx context.Context, id string) (ws *Workspace, created bool) {
	if ws, ok := r.Get(id); ok {
		return ws, false
	}

	candidate := r.factory(id)
	candidate.ID = id
	// other requests must never see the workspace before its session is restored
	restored := candidate.Auth.Restore(ctx)

	r.mu.Lock()
	if existing, ok := r.workspaces[id]; ok {
		// a concurrent request won the race
		existing.lastSeen = r.now()
		r.mu.Unlock()
		return existing, false
	}
	candidate.lastSeen = r.now()
	r.workspaces[id] = candidate
	r.mu.Unlock()

	if restored {
		r.logger.Debug("Workspace restored persisted session", zap.String("sessionID", id))
	}
	return candidate, true
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.workspaces, id)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// Sweep drops workspaces idle for longer than the TTL and returns how many were dropped.
// Durable storage is left alone, so a returning browser gets its session back.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, ws := range r.workspaces {
		if ws.lastSeen.Before(cutoff) {
			delete(r.workspaces, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle workspaces until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("Idle workspaces removed", zap.Int("count", n), zap.Int("remaining", r.Len()))
			}
		}
	}
}
