package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"video-publisher/domain/dto"
	"video-publisher/domain/model"
	"video-publisher/infrastructure/cache"
	"video-publisher/infrastructure/credentials"
	"video-publisher/infrastructure/persistence"
	"video-publisher/infrastructure/storage"
	httpHandler "video-publisher/interfaces/http"
	"video-publisher/server"
	"video-publisher/usecase"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "handler-secret"

func signToken(claims jwt.MapClaims, key string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
}

var mp4Header = []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2', 0x00, 0x00, 0x00, 0x00, 'm', 'p', '4', '2', 'i', 's', 'o', 'm'}

// fakeAdapter uploads successfully and numbers the ids it hands out.
type fakeAdapter struct {
	platform model.Platform
	mu       sync.Mutex
	uploads  int
}

func (f *fakeAdapter) Platform() model.Platform { return f.platform }

func (f *fakeAdapter) Upload(_ context.Context, _ *dto.UploadRequest, _ *model.Credentials) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	return fmt.Sprintf("%s-%d", f.platform.Name(), f.uploads), nil
}

func (f *fakeAdapter) Exists(context.Context, string, *model.Credentials) bool { return true }

func (f *fakeAdapter) WatchURL(id string) string { return "https://watch.example/" + id }

type fakeDailymotion struct {
	fakeAdapter
}

func (f *fakeDailymotion) AuthorizationURL(state string) string {
	return "https://www.dailymotion.com/oauth/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeDailymotion) ExchangeCode(_ context.Context, code string) (*model.Credentials, error) {
	return &model.Credentials{AccessToken: "dm-" + code}, nil
}

func (f *fakeDailymotion) RefreshCredentials(context.Context, *model.Credentials) (*model.Credentials, error) {
	return nil, model.ErrAuthorizationRequired
}

type env struct {
	router *gin.Engine
	media  *persistence.MediaRepositoryMemory
	token  string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	media := persistence.NewMediaRepositoryMemory()
	tokens := persistence.NewOAuthTokenRepositoryMemory()
	sources := storage.NewLocalStore(t.TempDir())
	yt := &fakeAdapter{platform: model.PlatformYouTube}
	dm := &fakeDailymotion{fakeAdapter{platform: model.PlatformDailymotion}}
	registry := usecase.NewAdapterRegistry(yt, dm)
	provider := credentials.NewProvider(tokens).
		WithStatic(model.PlatformYouTube, model.Credentials{AccessToken: "yt"}).
		WithInteractive(dm)

	publishUC := usecase.NewPublishUsecase(media, sources, registry, provider, nil, usecase.PublishOptions{})
	authUC := usecase.NewAuthorizationUsecase(cache.NewAuthorizationMemory(), registry, provider, time.Minute).WithResumer(publishUC)
	publishUC.WithAuthorization(authUC)
	mediaUC := usecase.NewMediaUsecase(media, sources)

	router := server.InitiateRouter(
		[]string{"http://localhost:4200"},
		secret,
		httpHandler.NewMediaHandler(mediaUC),
		httpHandler.NewPublishHandler(publishUC, mediaUC, registry),
		httpHandler.NewDailymotionAuthHandler(authUC, mediaUC),
		httpHandler.NewHealthHandler(),
		nil,
	)
	token, err := signToken(jwt.MapClaims{"iss": "alice"}, secret)
	require.NoError(t, err)
	return &env{router: router, media: media, token: token}
}

func (e *env) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var rdr *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) upload(t *testing.T, platforms ...string) string {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Launch"))
	for _, p := range platforms {
		require.NoError(t, mw.WriteField("platforms", p))
	}
	require.NoError(t, mw.WriteField("youtube_privacy", "public"))
	fw, err := mw.CreateFormFile("file", "launch.mp4")
	require.NoError(t, err)
	_, _ = fw.Write(append(mp4Header, make([]byte, 256)...))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res struct {
		Data dto.CreateMediaResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res.Data.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequiresBearerToken(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/media", nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMedia_CreateGetList(t *testing.T) {
	e := newEnv(t)
	id := e.upload(t, "YT")

	w := e.do(http.MethodGet, "/api/media/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Data model.MediaItem `json:"data"`
	}
	decode(t, w, &got)
	assert.Equal(t, "alice", got.Data.OwnerID)
	assert.Equal(t, model.PrivacyPublic, got.Data.Privacy[model.PlatformYouTube])

	w = e.do(http.MethodGet, "/api/media", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []model.MediaItem `json:"data"`
	}
	decode(t, w, &list)
	assert.Len(t, list.Data, 1)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/media/nope", nil).Code)
}

func TestMedia_CreateJSONValidation(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodPost, "/api/media", map[string]interface{}{"title": "x", "platforms": []string{"tiktok"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/media", map[string]interface{}{"title": "x", "platforms": []string{"YT"}, "source_ref": "elsewhere.mp4"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestPublish_OneAndEditLock(t *testing.T) {
	e := newEnv(t)
	id := e.upload(t, "YT")

	w := e.do(http.MethodPost, "/api/media/"+id+"/publish", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Data usecase.ItemResult `json:"data"`
	}
	decode(t, w, &res)
	require.Len(t, res.Data.Outcomes, 1)
	assert.Equal(t, model.ResultUploaded, res.Data.Outcomes[0].Result)

	title := "renamed"
	w = e.do(http.MethodPatch, "/api/media/"+id, dto.UpdateMediaRequest{Title: &title})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPublish_OneWithoutSource(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.media.Create(context.Background(), &model.MediaItem{
		ID: "m1", OwnerID: "alice", Title: "t", Platforms: []model.Platform{model.PlatformYouTube},
	}))
	w := e.do(http.MethodPost, "/api/media/m1/publish", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no video file")
}

func TestPublish_Batch(t *testing.T) {
	e := newEnv(t)
	id := e.upload(t, "YT")

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/media/publish", dto.PublishRequest{}).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/media/publish", dto.PublishRequest{IDs: []string{id}, Platforms: []string{"XX"}}).Code)

	w := e.do(http.MethodPost, "/api/media/publish", dto.PublishRequest{IDs: []string{id, "ghost"}})
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Data usecase.BatchResult `json:"data"`
	}
	decode(t, w, &res)
	require.Len(t, res.Data.Items, 2)
	assert.Equal(t, model.ResultUploaded, res.Data.Items[0].Outcomes[0].Result)
	assert.Equal(t, "media not found", res.Data.Items[1].Error)
}

func TestPublish_PendingAndPlatforms(t *testing.T) {
	e := newEnv(t)
	e.upload(t, "YT")

	w := e.do(http.MethodPost, "/api/media/publish-pending", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Data usecase.BatchResult `json:"data"`
	}
	decode(t, w, &res)
	assert.Len(t, res.Data.Items, 1)

	w = e.do(http.MethodGet, "/api/platforms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var platforms struct {
		Platforms []usecase.PlatformInfo `json:"platforms"`
	}
	decode(t, w, &platforms)
	require.Len(t, platforms.Platforms, 2)
	assert.False(t, platforms.Platforms[0].InteractiveAuth)
	assert.True(t, platforms.Platforms[1].InteractiveAuth)
}

func TestDailymotion_LoginCallbackReplay(t *testing.T) {
	e := newEnv(t)
	id := e.upload(t, "DM")

	w := e.do(http.MethodGet, "/api/dailymotion/login/"+id, nil)
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	callback := "/auth/dailymotion/callback?code=abc&state=" + url.QueryEscape(state)
	w = e.do(http.MethodGet, callback, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Data usecase.PairOutcome `json:"data"`
	}
	decode(t, w, &res)
	assert.Equal(t, model.ResultUploaded, res.Data.Result)

	w = e.do(http.MethodGet, callback, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_state")
}

func TestDailymotion_PublishSuspendsThenDenied(t *testing.T) {
	e := newEnv(t)
	id := e.upload(t, "DM")

	w := e.do(http.MethodPost, "/api/media/"+id+"/publish", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Data usecase.ItemResult `json:"data"`
	}
	decode(t, w, &res)
	out := res.Data.Outcomes[0]
	require.Equal(t, model.ResultAuthorizationRequired, out.Result)
	assert.True(t, strings.HasPrefix(out.URL, "https://www.dailymotion.com/oauth/authorize"))

	loc, err := url.Parse(out.URL)
	require.NoError(t, err)
	state := loc.Query().Get("state")

	w = e.do(http.MethodGet, "/auth/dailymotion/callback?error=access_denied&state="+url.QueryEscape(state), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = e.do(http.MethodGet, "/auth/dailymotion/callback?code=abc&state="+url.QueryEscape(state), nil)
	assert.Contains(t, w.Body.String(), "invalid_state")
}
