package dailymotion

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"video-publisher/domain/dto"
	"video-publisher/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *url.Values) {
	t.Helper()
	created := &url.Values{}
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/file/upload", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer dm-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"upload_url":"` + srv.URL + `/upload-target"}`))
	})
	mux.HandleFunc("/upload-target", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "clip.mp4", header.Filename)
		assert.Equal(t, "video-bytes", string(data))
		_, _ = w.Write([]byte(`{"url":"https://upload.example/file/123"}`))
	})
	mux.HandleFunc("/me/videos", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		*created = r.PostForm
		_, _ = w.Write([]byte(`{"id":"x8abc"}`))
	})
	mux.HandleFunc("/video/x8abc", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"x8abc"}`))
	})
	mux.HandleFunc("/video/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"not found"}}`))
	})
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		switch r.PostForm.Get("grant_type") {
		case "authorization_code":
			assert.Equal(t, "the-code", r.PostForm.Get("code"))
			assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
			_, _ = w.Write([]byte(`{"access_token":"new-access","refresh_token":"new-refresh","token_type":"Bearer","expires_in":3600}`))
		case "refresh_token":
			assert.Equal(t, "old-refresh", r.PostForm.Get("refresh_token"))
			_, _ = w.Write([]byte(`{"access_token":"refreshed","token_type":"Bearer","expires_in":3600}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, created
}

func newClient(srv *httptest.Server) *Client {
	return NewDailymotionClient(&Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost/auth/dailymotion/callback",
		APIBaseURL:   srv.URL,
		AuthURL:      "https://www.dailymotion.com/oauth/authorize",
		TokenURL:     srv.URL + "/oauth/token",
		HTTPClient:   srv.Client(),
	})
}

func TestClient_Upload_ThreeSteps(t *testing.T) {
	srv, created := newTestServer(t)
	client := newClient(srv)

	id, err := client.Upload(context.Background(), &dto.UploadRequest{
		Source:      strings.NewReader("video-bytes"),
		FileName:    "/media/videos/clip.mp4",
		Title:       "Sunset",
		Description: "Beach",
		Privacy:     model.PrivacyPublic,
	}, &model.Credentials{AccessToken: "dm-token"})

	require.NoError(t, err)
	assert.Equal(t, "x8abc", id)
	assert.Equal(t, "https://upload.example/file/123", created.Get("url"))
	assert.Equal(t, "Sunset", created.Get("title"))
	assert.Equal(t, "news", created.Get("channel"))
	assert.Equal(t, "true", created.Get("published"))
	assert.Equal(t, "false", created.Get("is_created_for_kids"))
}

func TestClient_Upload_PrivateIsUnpublished(t *testing.T) {
	srv, created := newTestServer(t)
	client := newClient(srv)

	_, err := client.Upload(context.Background(), &dto.UploadRequest{
		Source:   strings.NewReader("video-bytes"),
		FileName: "clip.mp4",
		Title:    "Sunset",
		Privacy:  model.Privacy("unlisted"),
	}, &model.Credentials{AccessToken: "dm-token"})

	require.NoError(t, err)
	assert.Equal(t, "false", created.Get("published"))
}

func TestClient_Upload_RemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid token"}}`))
	}))
	defer srv.Close()
	client := newClient(srv)

	_, err := client.Upload(context.Background(), &dto.UploadRequest{Source: strings.NewReader("x"), Title: "t"}, &model.Credentials{AccessToken: "bad"})

	var uploadErr *model.UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, "failed to get upload url", uploadErr.Reason)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestClient_Upload_MissingToken(t *testing.T) {
	srv, _ := newTestServer(t)
	_, err := newClient(srv).Upload(context.Background(), &dto.UploadRequest{}, nil)
	var uploadErr *model.UploadError
	assert.ErrorAs(t, err, &uploadErr)
}

func TestClient_Exists(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newClient(srv)

	assert.True(t, client.Exists(context.Background(), "x8abc", &model.Credentials{AccessToken: "dm-token"}))
	assert.True(t, client.Exists(context.Background(), "x8abc", nil))
	assert.False(t, client.Exists(context.Background(), "missing", nil))
	assert.False(t, client.Exists(context.Background(), "", nil))
}

func TestClient_AuthorizationURL(t *testing.T) {
	srv, _ := newTestServer(t)
	raw := newClient(srv).AuthorizationURL("state-token")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "www.dailymotion.com", u.Host)
	assert.Equal(t, "/oauth/authorize", u.Path)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "manage_videos", q.Get("scope"))
	assert.Equal(t, "state-token", q.Get("state"))
	assert.Equal(t, "http://localhost/auth/dailymotion/callback", q.Get("redirect_uri"))
}

func TestClient_ExchangeAndRefresh(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newClient(srv)

	creds, err := client.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "new-access", creds.AccessToken)
	assert.Equal(t, "new-refresh", creds.RefreshToken)
	assert.False(t, creds.Expiry.IsZero())

	refreshed, err := client.RefreshCredentials(context.Background(), &model.Credentials{RefreshToken: "old-refresh"})
	require.NoError(t, err)
	assert.Equal(t, "refreshed", refreshed.AccessToken)
	assert.Equal(t, "old-refresh", refreshed.RefreshToken)
}
