package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"video-publisher/domain/dto"
	"video-publisher/domain/model"
	"video-publisher/infrastructure/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const watchURLFormat = "https://www.youtube.com/watch?v=%s"

// Client publishes videos through the YouTube Data API v3.
type Client struct {
	oauthConfig *oauth2.Config
	categoryID  string
	endpoint    string
	httpClient  *http.Client
}

// Config represents YouTube API configuration
type Config struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURL  string `json:"redirect_url"`
	CategoryID   string `json:"category_id"`
	// Endpoint and HTTPClient override the API base URL and transport, mainly for tests.
	Endpoint   string       `json:"-"`
	HTTPClient *http.Client `json:"-"`
}

// NewYouTubeClient creates a new YouTube API client
func NewYouTubeClient(config *Config) *Client {
	oauth2Config := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes: []string{
			youtube.YoutubeScope,
			youtube.YoutubeUploadScope,
			youtube.YoutubeForceSslScope,
		},
		Endpoint: google.Endpoint,
	}
	categoryID := config.CategoryID
	if categoryID == "" {
		categoryID = "22"
	}
	return &Client{
		oauthConfig: oauth2Config,
		categoryID:  categoryID,
		endpoint:    config.Endpoint,
		httpClient:  config.HTTPClient,
	}
}

func (c *Client) Platform() model.Platform { return model.PlatformYouTube }

func (c *Client) WatchURL(externalID string) string {
	if externalID == "" {
		return ""
	}
	return fmt.Sprintf(watchURLFormat, externalID)
}

// Upload inserts the video with snippet and status parts.
func (c *Client) Upload(ctx context.Context, req *dto.UploadRequest, creds *model.Credentials) (string, error) {
	if !usable(creds) {
		return "", model.NewUploadError(model.PlatformYouTube, "missing credentials", nil)
	}
	service, err := c.service(ctx, creds)
	if err != nil {
		return "", model.NewUploadError(model.PlatformYouTube, "failed to create YouTube service", err)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       req.Title,
			Description: req.Description,
			CategoryId:  c.categoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           privacyStatus(req.Privacy),
			SelfDeclaredMadeForKids: false,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}

	response, err := service.Videos.Insert([]string{"snippet", "status"}, video).
		Media(req.Source).
		Context(ctx).
		Do()
	if err != nil {
		return "", model.NewUploadError(model.PlatformYouTube, reason(err), err)
	}
	if response == nil || response.Id == "" {
		return "", model.NewUploadError(model.PlatformYouTube, "response did not include a video id", nil)
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"platform": model.PlatformYouTube,
		"video_id": response.Id,
	}).Info("YouTube upload completed")
	return response.Id, nil
}

// Exists lists the id; any error counts as not found.
func (c *Client) Exists(ctx context.Context, externalID string, creds *model.Credentials) bool {
	if externalID == "" || !usable(creds) {
		return false
	}
	service, err := c.service(ctx, creds)
	if err != nil {
		return false
	}
	resp, err := service.Videos.List([]string{"id"}).Id(externalID).Context(ctx).Do()
	if err != nil {
		logger.GetLogger().WithField("video_id", externalID).WithField("error", err).Warn("YouTube existence check failed")
		return false
	}
	return len(resp.Items) > 0
}

func (c *Client) service(ctx context.Context, creds *model.Credentials) (*youtube.Service, error) {
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       creds.Expiry,
	}
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	opts := []option.ClientOption{option.WithHTTPClient(c.oauthConfig.Client(ctx, token))}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	return youtube.NewService(ctx, opts...)
}

// usable accepts an access token or a refresh token the oauth2 transport can exchange.
func usable(creds *model.Credentials) bool {
	return creds != nil && (creds.AccessToken != "" || creds.RefreshToken != "")
}

func privacyStatus(p model.Privacy) string {
	switch p.Normalize() {
	case model.PrivacyPublic:
		return "public"
	default:
		return "private"
	}
}

func reason(err error) string {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if len(gerr.Errors) > 0 && gerr.Errors[0].Reason != "" {
			return fmt.Sprintf("youtube api error %d: %s", gerr.Code, gerr.Errors[0].Reason)
		}
		return fmt.Sprintf("youtube api error %d", gerr.Code)
	}
	return "failed to upload video"
}
