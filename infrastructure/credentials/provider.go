package credentials

import (
	"context"
	"fmt"
	"time"

	"video-publisher/domain/model"
	"video-publisher/domain/repository"
	"video-publisher/infrastructure/logger"
)

// Provider resolves credentials per (platform, user). A stored user token always wins;
// platforms registered as interactive have no fallback and require a login when no
// usable token is stored. Other platforms fall back to the server-side token from config.
type Provider struct {
	tokens      repository.IOAuthToken
	static      map[model.Platform]model.Credentials
	interactive map[model.Platform]repository.IDeferredAuthAdapter
	now         func() time.Time
}

func NewProvider(tokens repository.IOAuthToken) *Provider {
	return &Provider{
		tokens:      tokens,
		static:      map[model.Platform]model.Credentials{},
		interactive: map[model.Platform]repository.IDeferredAuthAdapter{},
		now:         time.Now,
	}
}

var _ repository.ICredentialProvider = (*Provider)(nil)

// WithStatic registers server-side credentials for a platform. Empty credentials are ignored.
func (p *Provider) WithStatic(platform model.Platform, creds model.Credentials) *Provider {
	if creds.AccessToken != "" || creds.RefreshToken != "" {
		p.static[platform] = creds
	}
	return p
}

// WithInteractive marks a platform as needing a per-user login; the adapter refreshes expired tokens.
func (p *Provider) WithInteractive(adapter repository.IDeferredAuthAdapter) *Provider {
	p.interactive[adapter.Platform()] = adapter
	return p
}

func (p *Provider) WithClock(now func() time.Time) *Provider {
	p.now = now
	return p
}

func (p *Provider) GetCredentials(ctx context.Context, platform model.Platform, userID string) (*model.Credentials, error) {
	var tok *model.OAuthToken
	if p.tokens != nil {
		var err error
		tok, err = p.tokens.GetToken(ctx, userID, string(platform))
		if err != nil {
			return nil, fmt.Errorf("load %s token: %w", platform.Name(), err)
		}
	}

	adapter, interactive := p.interactive[platform]
	if tok != nil {
		creds := tok.Credentials()
		if creds.Valid(p.now()) {
			return creds, nil
		}
		if interactive && creds.RefreshToken != "" {
			return p.refresh(ctx, adapter, platform, userID, creds)
		}
		if interactive {
			return nil, model.ErrAuthorizationRequired
		}
	}
	if interactive {
		return nil, model.ErrAuthorizationRequired
	}

	if creds, ok := p.static[platform]; ok {
		c := creds
		return &c, nil
	}
	return nil, fmt.Errorf("%s credentials not configured", platform.Name())
}

func (p *Provider) refresh(ctx context.Context, adapter repository.IDeferredAuthAdapter, platform model.Platform, userID string, creds *model.Credentials) (*model.Credentials, error) {
	refreshed, err := adapter.RefreshCredentials(ctx, creds)
	if err != nil {
		logger.GetLogger().
			WithField("platform", platform.Name()).
			WithField("user_id", userID).
			WithField("error", err).
			Warn("token refresh failed, login required")
		return nil, model.ErrAuthorizationRequired
	}
	if err := p.StoreCredentials(ctx, platform, userID, refreshed); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed persisting refreshed token")
	}
	return refreshed, nil
}

func (p *Provider) StoreCredentials(ctx context.Context, platform model.Platform, userID string, creds *model.Credentials) error {
	if p.tokens == nil {
		return fmt.Errorf("no token store configured for %s", platform.Name())
	}
	if creds == nil || creds.AccessToken == "" {
		return fmt.Errorf("empty %s credentials", platform.Name())
	}
	tok := &model.OAuthToken{
		UserID:       userID,
		Platform:     string(platform),
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
	}
	if !creds.Expiry.IsZero() {
		exp := creds.Expiry
		tok.ExpiresAt = &exp
	}
	return p.tokens.UpsertToken(ctx, tok)
}
