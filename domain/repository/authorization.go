package repository

import (
	"context"
	"time"

	"video-publisher/domain/model"
)

// IPendingAuthorization stores deferred-login correlation entries.
// Consume returns the entry and removes it in one step, so a state token resolves at most once;
// it fails with *model.InvalidStateError when the token is unknown, already used, or expired.
type IPendingAuthorization interface {
	Put(ctx context.Context, p *model.PendingAuthorization) error
	Consume(ctx context.Context, state string) (*model.PendingAuthorization, error)
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}
