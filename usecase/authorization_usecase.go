package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"video-publisher/domain/model"
	"video-publisher/domain/repository"
	"video-publisher/infrastructure/logger"
	"video-publisher/infrastructure/utils"
)

const DefaultAuthorizationTTL = 10 * time.Minute

// Resumer re-runs exactly one suspended pair once credentials are available.
type Resumer interface {
	Resume(ctx context.Context, userID, mediaID string, platform model.Platform, creds *model.Credentials) (*PairOutcome, error)
}

type IAuthorizationUsecase interface {
	AuthorizationStarter
	Complete(ctx context.Context, code, state string) (*PairOutcome, error)
	Cancel(ctx context.Context, state string) error
}

// AuthorizationUsecase runs the redirect-out / callback-resume protocol for platforms
// that need an interactive login.
type AuthorizationUsecase struct {
	store    repository.IPendingAuthorization
	adapters *AdapterRegistry
	provider repository.ICredentialProvider
	resumer  Resumer
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthorizationUsecase(store repository.IPendingAuthorization, adapters *AdapterRegistry, provider repository.ICredentialProvider, ttl time.Duration) *AuthorizationUsecase {
	if ttl <= 0 {
		ttl = DefaultAuthorizationTTL
	}
	return &AuthorizationUsecase{
		store:    store,
		adapters: adapters,
		provider: provider,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var _ IAuthorizationUsecase = (*AuthorizationUsecase)(nil)

// WithResumer wires the orchestrator back in after both have been constructed.
func (u *AuthorizationUsecase) WithResumer(r Resumer) *AuthorizationUsecase {
	u.resumer = r
	return u
}

func (u *AuthorizationUsecase) WithClock(now func() time.Time) *AuthorizationUsecase {
	u.now = now
	return u
}

// Begin stores a fresh state token for (media, platform) and returns the login URL carrying it.
func (u *AuthorizationUsecase) Begin(ctx context.Context, userID, mediaID string, platform model.Platform) (string, error) {
	if strings.TrimSpace(mediaID) == "" {
		return "", &model.ValidationError{Field: "media_id", Message: "media id is required"}
	}
	adapter, ok := u.adapters.Deferred(platform)
	if !ok {
		return "", &model.ValidationError{Field: "platform", Message: fmt.Sprintf("%s does not use interactive authorization", platform.Name())}
	}
	now := u.now()
	pending := &model.PendingAuthorization{
		State:     utils.RandomState(),
		MediaID:   mediaID,
		Platform:  platform,
		UserID:    userID,
		Phase:     model.PhaseAwaitingRedirect,
		CreatedAt: now,
		ExpiresAt: now.Add(u.ttl),
	}
	authURL := adapter.AuthorizationURL(pending.State)
	pending.Phase = model.PhaseAwaitingCallback
	if err := u.store.Put(ctx, pending); err != nil {
		return "", fmt.Errorf("store pending authorization: %w", err)
	}
	logger.GetLogger().
		WithField("media_id", mediaID).
		WithField("platform", platform.Name()).
		WithField("expires_at", pending.ExpiresAt).
		Info("Authorization pending")
	return authURL, nil
}

// Complete consumes the state token, exchanges the code and resumes the suspended pair.
// Unknown, replayed or expired states fail with *model.InvalidStateError before any remote call.
func (u *AuthorizationUsecase) Complete(ctx context.Context, code, state string) (*PairOutcome, error) {
	// Checked before Consume so a callback without a code leaves the state usable.
	if strings.TrimSpace(code) == "" {
		return nil, &model.ValidationError{Field: "code", Message: "authorization code is required"}
	}
	pending, err := u.store.Consume(ctx, state)
	if err != nil {
		return nil, err
	}
	if pending.Expired(u.now()) {
		pending.Phase = model.PhaseExpired
		logger.GetLogger().WithField("media_id", pending.MediaID).WithField("phase", pending.Phase).Info("Authorization callback after expiry")
		return nil, &model.InvalidStateError{State: state, Reason: "expired"}
	}
	adapter, ok := u.adapters.Deferred(pending.Platform)
	if !ok {
		return nil, &model.InvalidStateError{State: state, Reason: "platform no longer configured"}
	}

	creds, err := adapter.ExchangeCode(ctx, code)
	if err != nil {
		return nil, model.NewUploadError(pending.Platform, "code exchange failed", err)
	}
	if err := u.provider.StoreCredentials(ctx, pending.Platform, pending.UserID, creds); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed persisting credentials after login")
	}
	pending.Phase = model.PhaseResumed
	logger.GetLogger().
		WithField("media_id", pending.MediaID).
		WithField("platform", pending.Platform.Name()).
		WithField("phase", pending.Phase).
		Info("Authorization completed, resuming upload")

	if u.resumer == nil {
		return nil, errors.New("no resumer configured")
	}
	return u.resumer.Resume(ctx, pending.UserID, pending.MediaID, pending.Platform, creds)
}

// Cancel drops a pending authorization after the user denied the login.
func (u *AuthorizationUsecase) Cancel(ctx context.Context, state string) error {
	_, err := u.store.Consume(ctx, state)
	return err
}
