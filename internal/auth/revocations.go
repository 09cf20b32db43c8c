package auth

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/taskboard/internal/cache"
)

// expired ids are swept once the cache reaches this size, then each time it doubles
const sweepThreshold = 1024

// MemoryRevocations keeps revoked session ids in process. Used when no Redis is configured.
type MemoryRevocations struct {
	c *cache.Cache

	mu        sync.Mutex
	nextSweep int
}

func NewMemoryRevocations(c *cache.Cache) *MemoryRevocations {
	return &MemoryRevocations{c: c, nextSweep: sweepThreshold}
}

func (r *MemoryRevocations) Revoke(_ context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	r.c.SetFor(sessionID, struct{}{}, ttl)
	r.maybeSweep()

	return nil
}

func (r *MemoryRevocations) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	_, ok := r.c.Get(sessionID)
	return ok, nil
}

// maybeSweep drops ids whose tokens have expired anyway. Most are never
// presented again, so Get alone would not evict them.
func (r *MemoryRevocations) maybeSweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.c.Len() < r.nextSweep {
		return
	}

	r.c.Sweep()
	r.nextSweep = max(2*r.c.Len(), sweepThreshold)
}
