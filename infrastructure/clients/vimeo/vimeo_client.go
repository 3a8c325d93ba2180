package vimeo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"video-publisher/domain/dto"
	"video-publisher/domain/model"
	"video-publisher/infrastructure/logger"
	"video-publisher/infrastructure/utils"

	"github.com/google/go-querystring/query"
	"github.com/tidwall/gjson"
)

const (
	acceptHeader   = "application/vnd.vimeo.*+json;version=3.4"
	watchURLFormat = "https://vimeo.com/%s"
)

type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client uploads to Vimeo using the form-post approach with a server-side access token.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type createVideoRequest struct {
	Upload      uploadSpec  `json:"upload"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Privacy     privacySpec `json:"privacy"`
}

type uploadSpec struct {
	Approach string `json:"approach"`
	Size     int64  `json:"size,omitempty"`
}

type privacySpec struct {
	View string `json:"view"`
}

type fieldsQuery struct {
	Fields string `url:"fields"`
}

func NewVimeoClient(config *Config) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.vimeo.com"
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

func (c *Client) Platform() model.Platform { return model.PlatformVimeo }

func (c *Client) WatchURL(externalID string) string {
	if externalID == "" {
		return ""
	}
	return fmt.Sprintf(watchURLFormat, externalID)
}

// Upload creates the video resource, then posts the file to the returned upload link.
func (c *Client) Upload(ctx context.Context, req *dto.UploadRequest, creds *model.Credentials) (string, error) {
	if creds == nil || creds.AccessToken == "" {
		return "", model.NewUploadError(model.PlatformVimeo, "missing access token", nil)
	}
	payload, err := json.Marshal(createVideoRequest{
		Upload:      uploadSpec{Approach: "post", Size: req.Size},
		Name:        req.Title,
		Description: req.Description,
		Privacy:     privacySpec{View: privacyView(req.Privacy)},
	})
	if err != nil {
		return "", model.NewUploadError(model.PlatformVimeo, "failed to encode request", err)
	}
	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/me/videos", bytes.NewReader(payload), "application/json", creds)
	if err != nil {
		return "", model.NewUploadError(model.PlatformVimeo, "failed to create video", err)
	}
	id := path.Base(gjson.GetBytes(body, "uri").String())
	uploadLink := gjson.GetBytes(body, "upload.upload_link").String()
	if id == "" || id == "." || id == "/" || uploadLink == "" {
		return "", model.NewUploadError(model.PlatformVimeo, "upload link missing from response", nil)
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = "video.mp4"
	}
	form, contentType := utils.StreamMultipart("file_data", filepath.Base(fileName), req.Source, nil)
	defer form.Close()
	if _, err := c.do(ctx, http.MethodPost, uploadLink, form, contentType, creds); err != nil {
		return "", model.NewUploadError(model.PlatformVimeo, "failed to upload file", err)
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"platform": model.PlatformVimeo,
		"video_id": id,
	}).Info("Vimeo upload completed")
	return id, nil
}

// Exists needs a token; any failure counts as not found.
func (c *Client) Exists(ctx context.Context, externalID string, creds *model.Credentials) bool {
	if externalID == "" || creds == nil || creds.AccessToken == "" {
		return false
	}
	values, err := query.Values(fieldsQuery{Fields: "uri"})
	if err != nil {
		return false
	}
	_, err = c.do(ctx, http.MethodGet, fmt.Sprintf("%s/videos/%s?%s", c.baseURL, externalID, values.Encode()), nil, "", creds)
	if err != nil {
		logger.GetLogger().WithField("video_id", externalID).WithField("error", err).Debug("Vimeo existence check negative")
		return false
	}
	return true
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, contentType string, creds *model.Credentials) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Accept", acceptHeader)
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
		msg := gjson.GetBytes(data, "error").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("vimeo returned %d: %s", resp.StatusCode, msg)
	}
	return data, nil
}

// privacyView maps the generic privacy level to Vimeo's view setting; unknown values stay hidden.
func privacyView(p model.Privacy) string {
	switch p.Normalize() {
	case model.PrivacyPublic:
		return "anybody"
	default:
		return "nobody"
	}
}
