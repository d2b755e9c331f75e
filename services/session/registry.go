package session

import (
	"context"
	"sync"
	"time"

	"creditcoach/utils"

	"go.uber.org/zap"
)

type entry[T any] struct {
	value    T
	lastSeen time.Time
}

// Registry owns one value per browser session (a cart store, a booking
// wizard) and drops values that have been idle longer than ttl.
type Registry[T any] struct {
	mu      sync.Mutex
	kind    string
	ttl     time.Duration
	entries map[string]*entry[T]
	create  func(ctx context.Context, sessionID string) T
	now     func() time.Time
	logger  *zap.Logger
}

// NewRegistry returns a registry that builds missing values with create.
// kind labels the value type in logs and metrics.
func NewRegistry[T any](kind string, ttl time.Duration, create func(ctx context.Context, sessionID string) T, logger *zap.Logger) *Registry[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry[T]{
		kind:    kind,
		ttl:     ttl,
		entries: make(map[string]*entry[T]),
		create:  create,
		now:     time.Now,
		logger:  logger,
	}
}

// Get returns the value for sessionID, creating it on first use. create may
// do I/O, so it runs unlocked; if two requests race, the first stored wins.
func (r *Registry[T]) Get(ctx context.Context, sessionID string) T {
	if v, ok := r.touch(sessionID); ok {
		return v
	}
	v := r.create(ctx, sessionID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[sessionID]; ok {
		e.lastSeen = r.now()
		return e.value
	}
	r.entries[sessionID] = &entry[T]{value: v, lastSeen: r.now()}
	utils.ActiveSessions.WithLabelValues(r.kind).Set(float64(len(r.entries)))
	return v
}

func (r *Registry[T]) touch(sessionID string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sessionID]
	if !ok {
		var zero T
		return zero, false
	}
	e.lastSeen = r.now()
	return e.value, true
}

// Peek returns the value without creating or touching it.
func (r *Registry[T]) Peek(sessionID string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sessionID]
	if !ok {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Delete forgets the value for sessionID.
func (r *Registry[T]) Delete(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sessionID)
	utils.ActiveSessions.WithLabelValues(r.kind).Set(float64(len(r.entries)))
}

// Len reports how many sessions are held.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops entries idle for longer than the ttl and returns how many.
func (r *Registry[T]) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	evicted := 0
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.logger.Debug("session: evicted idle entries", zap.String("kind", r.kind), zap.Int("count", evicted))
	}
	utils.ActiveSessions.WithLabelValues(r.kind).Set(float64(len(r.entries)))
	return evicted
}

// Run sweeps every interval until ctx is done.
func (r *Registry[T]) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
