package dailymotion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"video-publisher/domain/dto"
	"video-publisher/domain/model"
	"video-publisher/infrastructure/logger"
	"video-publisher/infrastructure/utils"

	"github.com/google/go-querystring/query"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

const (
	scopeManageVideos = "manage_videos"
	watchURLFormat    = "https://www.dailymotion.com/video/%s"
)

// Config represents Dailymotion API configuration
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Channel      string
	APIBaseURL   string
	AuthURL      string
	TokenURL     string
	HTTPClient   *http.Client
}

// Client uploads to Dailymotion. Uploading needs a user session token obtained
// through the interactive OAuth login, so it also implements the deferred-auth contract.
type Client struct {
	oauthConfig *oauth2.Config
	apiBaseURL  string
	channel     string
	httpClient  *http.Client
}

// createVideoForm is the body of POST /me/videos.
type createVideoForm struct {
	URL              string `url:"url"`
	Title            string `url:"title"`
	Description      string `url:"description,omitempty"`
	Channel          string `url:"channel"`
	Published        bool   `url:"published"`
	IsCreatedForKids bool   `url:"is_created_for_kids"`
}

func NewDailymotionClient(config *Config) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	channel := config.Channel
	if channel == "" {
		channel = "news"
	}
	return &Client{
		oauthConfig: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       []string{scopeManageVideos},
			Endpoint: oauth2.Endpoint{
				AuthURL:   config.AuthURL,
				TokenURL:  config.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBaseURL: strings.TrimRight(config.APIBaseURL, "/"),
		channel:    channel,
		httpClient: httpClient,
	}
}

func (c *Client) Platform() model.Platform { return model.PlatformDailymotion }

func (c *Client) WatchURL(externalID string) string {
	if externalID == "" {
		return ""
	}
	return fmt.Sprintf(watchURLFormat, externalID)
}

// AuthorizationURL builds the login URL; state comes back unmodified on the callback.
func (c *Client) AuthorizationURL(state string) string {
	return c.oauthConfig.AuthCodeURL(state)
}

// ExchangeCode trades the callback code for a session token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*model.Credentials, error) {
	token, err := c.oauthConfig.Exchange(c.withHTTPClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange dailymotion code: %w", err)
	}
	return toCredentials(token), nil
}

// RefreshCredentials uses the refresh_token grant.
func (c *Client) RefreshCredentials(ctx context.Context, creds *model.Credentials) (*model.Credentials, error) {
	if creds == nil || creds.RefreshToken == "" {
		return nil, fmt.Errorf("no dailymotion refresh token")
	}
	expired := &oauth2.Token{RefreshToken: creds.RefreshToken}
	token, err := c.oauthConfig.TokenSource(c.withHTTPClient(ctx), expired).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh dailymotion token: %w", err)
	}
	refreshed := toCredentials(token)
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = creds.RefreshToken
	}
	return refreshed, nil
}

// Upload runs the three-step protocol: request an upload URL, post the file, create the video.
func (c *Client) Upload(ctx context.Context, req *dto.UploadRequest, creds *model.Credentials) (string, error) {
	if creds == nil || creds.AccessToken == "" {
		return "", model.NewUploadError(model.PlatformDailymotion, "missing access token", nil)
	}

	body, err := c.do(ctx, http.MethodGet, c.apiBaseURL+"/file/upload", nil, "", creds)
	if err != nil {
		return "", model.NewUploadError(model.PlatformDailymotion, "failed to get upload url", err)
	}
	uploadURL := gjson.GetBytes(body, "upload_url").String()
	if uploadURL == "" {
		return "", model.NewUploadError(model.PlatformDailymotion, "upload url missing from response", nil)
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = "video.mp4"
	}
	payload, contentType := utils.StreamMultipart("file", filepath.Base(fileName), req.Source, nil)
	defer payload.Close()
	body, err = c.do(ctx, http.MethodPost, uploadURL, payload, contentType, creds)
	if err != nil {
		return "", model.NewUploadError(model.PlatformDailymotion, "failed to upload file", err)
	}
	fileURL := gjson.GetBytes(body, "url").String()
	if fileURL == "" {
		return "", model.NewUploadError(model.PlatformDailymotion, "file url missing from upload response", nil)
	}

	form, err := query.Values(createVideoForm{
		URL:              fileURL,
		Title:            req.Title,
		Description:      req.Description,
		Channel:          c.channel,
		Published:        req.Privacy.Normalize() == model.PrivacyPublic,
		IsCreatedForKids: false,
	})
	if err != nil {
		return "", model.NewUploadError(model.PlatformDailymotion, "failed to encode video form", err)
	}
	body, err = c.do(ctx, http.MethodPost, c.apiBaseURL+"/me/videos", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", creds)
	if err != nil {
		return "", model.NewUploadError(model.PlatformDailymotion, "failed to create video", err)
	}
	id := gjson.GetBytes(body, "id").String()
	if id == "" {
		return "", model.NewUploadError(model.PlatformDailymotion, "video id missing from response", nil)
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"platform": model.PlatformDailymotion,
		"video_id": id,
	}).Info("Dailymotion upload completed")
	return id, nil
}

// Exists treats only a 200 from GET /video/{id} as present. Without a token the public endpoint is used.
func (c *Client) Exists(ctx context.Context, externalID string, creds *model.Credentials) bool {
	if externalID == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/video/%s", c.apiBaseURL, externalID), nil)
	if err != nil {
		return false
	}
	if creds != nil && creds.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.GetLogger().WithField("video_id", externalID).WithField("error", err).Warn("Dailymotion existence check failed")
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, contentType string, creds *model.Credentials) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("dailymotion returned %d: %s", resp.StatusCode, errorMessage(data))
	}
	return data, nil
}

func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func errorMessage(body []byte) string {
	for _, path := range []string{"error.message", "error_description", "error"} {
		if v := gjson.GetBytes(body, path); v.Exists() && v.Type == gjson.String {
			return v.String()
		}
	}
	if len(body) > 200 {
		return string(body[:200])
	}
	return string(body)
}

func toCredentials(token *oauth2.Token) *model.Credentials {
	return &model.Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}
}
