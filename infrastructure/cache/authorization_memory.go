package cache

import (
	"context"
	"sync"
	"time"

	"video-publisher/domain/model"
	"video-publisher/domain/repository"
)

// AuthorizationMemory is the in-process pending authorization store.
type AuthorizationMemory struct {
	mu      sync.Mutex
	entries map[string]*model.PendingAuthorization
	now     func() time.Time
}

func NewAuthorizationMemory() *AuthorizationMemory {
	return &AuthorizationMemory{entries: map[string]*model.PendingAuthorization{}, now: time.Now}
}

var _ repository.IPendingAuthorization = (*AuthorizationMemory)(nil)

// WithClock replaces the time source.
func (a *AuthorizationMemory) WithClock(now func() time.Time) *AuthorizationMemory {
	a.now = now
	return a
}

func (a *AuthorizationMemory) Put(_ context.Context, p *model.PendingAuthorization) error {
	cp := *p
	a.mu.Lock()
	a.entries[p.State] = &cp
	a.mu.Unlock()
	return nil
}

func (a *AuthorizationMemory) Consume(_ context.Context, state string) (*model.PendingAuthorization, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.entries[state]
	if !ok || state == "" {
		return nil, &model.InvalidStateError{State: state, Reason: "unknown or already used"}
	}
	delete(a.entries, state)
	if p.Expired(a.now()) {
		return nil, &model.InvalidStateError{State: state, Reason: "expired"}
	}
	return p, nil
}

func (a *AuthorizationMemory) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for k, p := range a.entries {
		if p.Expired(now) {
			delete(a.entries, k)
			n++
		}
	}
	return n, nil
}

// Len reports how many entries are held, expired or not.
func (a *AuthorizationMemory) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}
