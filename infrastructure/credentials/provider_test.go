package credentials_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"video-publisher/domain/dto"
	"video-publisher/domain/model"
	"video-publisher/infrastructure/credentials"
	"video-publisher/infrastructure/persistence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDeferredAdapter struct {
	mock.Mock
}

func (m *MockDeferredAdapter) Platform() model.Platform { return model.PlatformDailymotion }

func (m *MockDeferredAdapter) Upload(ctx context.Context, req *dto.UploadRequest, creds *model.Credentials) (string, error) {
	args := m.Called(ctx, req, creds)
	return args.String(0), args.Error(1)
}

func (m *MockDeferredAdapter) Exists(ctx context.Context, id string, creds *model.Credentials) bool {
	return m.Called(ctx, id, creds).Bool(0)
}

func (m *MockDeferredAdapter) WatchURL(id string) string { return "https://dm/" + id }

func (m *MockDeferredAdapter) AuthorizationURL(state string) string { return "https://dm/login?state=" + state }

func (m *MockDeferredAdapter) ExchangeCode(ctx context.Context, code string) (*model.Credentials, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Credentials), args.Error(1)
}

func (m *MockDeferredAdapter) RefreshCredentials(ctx context.Context, creds *model.Credentials) (*model.Credentials, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Credentials), args.Error(1)
}

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newProvider(adapter *MockDeferredAdapter) (*credentials.Provider, *persistence.OAuthTokenRepositoryMemory) {
	tokens := persistence.NewOAuthTokenRepositoryMemory()
	p := credentials.NewProvider(tokens).
		WithStatic(model.PlatformYouTube, model.Credentials{AccessToken: "yt-static"}).
		WithInteractive(adapter).
		WithClock(func() time.Time { return now })
	return p, tokens
}

func TestProvider_StaticPlatform(t *testing.T) {
	p, _ := newProvider(new(MockDeferredAdapter))
	creds, err := p.GetCredentials(context.Background(), model.PlatformYouTube, "alice")
	require.NoError(t, err)
	assert.Equal(t, "yt-static", creds.AccessToken)
}

func TestProvider_UnconfiguredPlatform(t *testing.T) {
	p, _ := newProvider(new(MockDeferredAdapter))
	_, err := p.GetCredentials(context.Background(), model.PlatformVimeo, "alice")
	require.Error(t, err)
	assert.False(t, errors.Is(err, model.ErrAuthorizationRequired))
}

func TestProvider_InteractiveWithoutToken(t *testing.T) {
	p, _ := newProvider(new(MockDeferredAdapter))
	_, err := p.GetCredentials(context.Background(), model.PlatformDailymotion, "alice")
	assert.ErrorIs(t, err, model.ErrAuthorizationRequired)
}

func TestProvider_InteractiveValidToken(t *testing.T) {
	ctx := context.Background()
	p, _ := newProvider(new(MockDeferredAdapter))
	require.NoError(t, p.StoreCredentials(ctx, model.PlatformDailymotion, "alice", &model.Credentials{AccessToken: "dm", Expiry: now.Add(time.Hour)}))

	creds, err := p.GetCredentials(ctx, model.PlatformDailymotion, "alice")
	require.NoError(t, err)
	assert.Equal(t, "dm", creds.AccessToken)

	_, err = p.GetCredentials(ctx, model.PlatformDailymotion, "bob")
	assert.ErrorIs(t, err, model.ErrAuthorizationRequired)
}

func TestProvider_RefreshesExpiredToken(t *testing.T) {
	ctx := context.Background()
	adapter := new(MockDeferredAdapter)
	p, tokens := newProvider(adapter)
	require.NoError(t, p.StoreCredentials(ctx, model.PlatformDailymotion, "alice", &model.Credentials{AccessToken: "old", RefreshToken: "r1", Expiry: now.Add(-time.Minute)}))

	adapter.On("RefreshCredentials", mock.Anything, mock.MatchedBy(func(c *model.Credentials) bool { return c.RefreshToken == "r1" })).
		Return(&model.Credentials{AccessToken: "new", RefreshToken: "r1", Expiry: now.Add(time.Hour)}, nil).Once()

	creds, err := p.GetCredentials(ctx, model.PlatformDailymotion, "alice")
	require.NoError(t, err)
	assert.Equal(t, "new", creds.AccessToken)

	stored, err := tokens.GetToken(ctx, "alice", "DM")
	require.NoError(t, err)
	assert.Equal(t, "new", stored.AccessToken)
	adapter.AssertExpectations(t)
}

func TestProvider_RefreshFailureRequiresLogin(t *testing.T) {
	ctx := context.Background()
	adapter := new(MockDeferredAdapter)
	p, _ := newProvider(adapter)
	require.NoError(t, p.StoreCredentials(ctx, model.PlatformDailymotion, "alice", &model.Credentials{AccessToken: "old", RefreshToken: "r1", Expiry: now.Add(-time.Minute)}))
	adapter.On("RefreshCredentials", mock.Anything, mock.Anything).Return(nil, errors.New("invalid_grant"))

	_, err := p.GetCredentials(ctx, model.PlatformDailymotion, "alice")
	assert.ErrorIs(t, err, model.ErrAuthorizationRequired)
}

func TestProvider_ExpiredWithoutRefreshRequiresLogin(t *testing.T) {
	ctx := context.Background()
	adapter := new(MockDeferredAdapter)
	p, _ := newProvider(adapter)
	require.NoError(t, p.StoreCredentials(ctx, model.PlatformDailymotion, "alice", &model.Credentials{AccessToken: "old", Expiry: now.Add(-time.Minute)}))

	_, err := p.GetCredentials(ctx, model.PlatformDailymotion, "alice")
	assert.ErrorIs(t, err, model.ErrAuthorizationRequired)
	adapter.AssertNotCalled(t, "RefreshCredentials", mock.Anything, mock.Anything)
}

func TestProvider_StoreRejectsEmpty(t *testing.T) {
	p, _ := newProvider(new(MockDeferredAdapter))
	assert.Error(t, p.StoreCredentials(context.Background(), model.PlatformDailymotion, "alice", &model.Credentials{}))
}
