package repository

import (
	"context"

	"video-publisher/domain/dto"
	"video-publisher/domain/model"
)

// IPlatformAdapter is the capability contract every destination platform implements.
type IPlatformAdapter interface {
	Platform() model.Platform
	// Upload returns the external video id or a *model.UploadError.
	Upload(ctx context.Context, req *dto.UploadRequest, creds *model.Credentials) (string, error)
	// Exists is advisory: false on an empty id, nil credentials it cannot use, or any failed check.
	Exists(ctx context.Context, externalID string, creds *model.Credentials) bool
	WatchURL(externalID string) string
}

// IDeferredAuthAdapter is implemented by platforms that need an interactive login mid-flow.
type IDeferredAuthAdapter interface {
	IPlatformAdapter
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*model.Credentials, error)
	RefreshCredentials(ctx context.Context, creds *model.Credentials) (*model.Credentials, error)
}
