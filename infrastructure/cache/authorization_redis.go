package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"video-publisher/domain/model"
	"video-publisher/domain/repository"

	"github.com/redis/go-redis/v9"
)

const authorizationKeyPrefix = "video-publisher:auth-state:"

// AuthorizationRedis keeps pending authorizations as Redis keys that expire with the entry.
type AuthorizationRedis struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewAuthorizationRedis(client redis.Cmdable) *AuthorizationRedis {
	return &AuthorizationRedis{client: client, now: time.Now}
}

var _ repository.IPendingAuthorization = (*AuthorizationRedis)(nil)

func (a *AuthorizationRedis) Put(ctx context.Context, p *model.PendingAuthorization) error {
	ttl := p.TTL(a.now())
	if ttl <= 0 {
		return errors.New("authorization already expired")
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return a.client.Set(ctx, authorizationKeyPrefix+p.State, b, ttl).Err()
}

// Consume uses GETDEL so two concurrent callbacks cannot both resolve the same state.
func (a *AuthorizationRedis) Consume(ctx context.Context, state string) (*model.PendingAuthorization, error) {
	if state == "" {
		return nil, &model.InvalidStateError{State: state, Reason: "missing state"}
	}
	raw, err := a.client.GetDel(ctx, authorizationKeyPrefix+state).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, &model.InvalidStateError{State: state, Reason: "unknown or already used"}
	}
	if err != nil {
		return nil, err
	}
	var p model.PendingAuthorization
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	if p.Expired(a.now()) {
		return nil, &model.InvalidStateError{State: state, Reason: "expired"}
	}
	return &p, nil
}

// PurgeExpired is a no-op; Redis evicts keys at their TTL.
func (a *AuthorizationRedis) PurgeExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}
