package persistence

import (
	"context"
	"sync"
	"time"

	"video-publisher/domain/model"
	"video-publisher/domain/repository"
)

// OAuthTokenRepositoryMemory keeps tokens in process; used with the memory media store.
type OAuthTokenRepositoryMemory struct {
	mu     sync.RWMutex
	tokens map[string]model.OAuthToken
	seq    int64
}

func NewOAuthTokenRepositoryMemory() *OAuthTokenRepositoryMemory {
	return &OAuthTokenRepositoryMemory{tokens: map[string]model.OAuthToken{}}
}

var _ repository.IOAuthToken = (*OAuthTokenRepositoryMemory)(nil)

func tokenKey(userID, platform string) string { return userID + "|" + platform }

func (r *OAuthTokenRepositoryMemory) UpsertToken(_ context.Context, t *model.OAuthToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	key := tokenKey(t.UserID, t.Platform)
	if prev, ok := r.tokens[key]; ok {
		t.ID = prev.ID
		t.CreatedAt = prev.CreatedAt
	} else {
		r.seq++
		t.ID = r.seq
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	r.tokens[key] = *t
	return nil
}

func (r *OAuthTokenRepositoryMemory) GetToken(_ context.Context, userID, platform string) (*model.OAuthToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[tokenKey(userID, platform)]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *OAuthTokenRepositoryMemory) DeleteToken(_ context.Context, userID, platform string) error {
	r.mu.Lock()
	delete(r.tokens, tokenKey(userID, platform))
	r.mu.Unlock()
	return nil
}
