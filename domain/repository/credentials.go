package repository

import (
	"context"

	"video-publisher/domain/model"
)

// ICredentialProvider supplies per-platform credentials for an acting user, or
// model.ErrAuthorizationRequired when an interactive login is needed first.
type ICredentialProvider interface {
	GetCredentials(ctx context.Context, platform model.Platform, userID string) (*model.Credentials, error)
	StoreCredentials(ctx context.Context, platform model.Platform, userID string, creds *model.Credentials) error
}

type IOAuthToken interface {
	UpsertToken(ctx context.Context, t *model.OAuthToken) error
	GetToken(ctx context.Context, userID, platform string) (*model.OAuthToken, error)
	DeleteToken(ctx context.Context, userID, platform string) error
}
