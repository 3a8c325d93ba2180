package vimeo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"video-publisher/domain/dto"
	"video-publisher/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Upload(t *testing.T) {
	var created createVideoRequest
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/me/videos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer vm-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		_, _ = w.Write([]byte(`{"uri":"/videos/76543","upload":{"approach":"post","upload_link":"` + srv.URL + `/upload"}}`))
	})
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("file_data")
		require.NoError(t, err)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "video-bytes", string(data))
		w.WriteHeader(http.StatusCreated)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	client := NewVimeoClient(&Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
	id, err := client.Upload(context.Background(), &dto.UploadRequest{
		Source:  strings.NewReader("video-bytes"),
		Size:    11,
		Title:   "Sunset",
		Privacy: model.PrivacyPublic,
	}, &model.Credentials{AccessToken: "vm-token"})

	require.NoError(t, err)
	assert.Equal(t, "76543", id)
	assert.Equal(t, "post", created.Upload.Approach)
	assert.Equal(t, int64(11), created.Upload.Size)
	assert.Equal(t, "anybody", created.Privacy.View)
	assert.Equal(t, "https://vimeo.com/76543", client.WatchURL(id))
}

func TestClient_Upload_RemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"quota exceeded"}`))
	}))
	defer srv.Close()

	client := NewVimeoClient(&Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := client.Upload(context.Background(), &dto.UploadRequest{Source: strings.NewReader("x"), Title: "t"}, &model.Credentials{AccessToken: "vm-token"})

	var uploadErr *model.UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, model.PlatformVimeo, uploadErr.Platform)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestClient_Exists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/videos/76543" {
			assert.Equal(t, "uri", r.URL.Query().Get("fields"))
			_, _ = w.Write([]byte(`{"uri":"/videos/76543"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewVimeoClient(&Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
	creds := &model.Credentials{AccessToken: "vm-token"}

	assert.True(t, client.Exists(context.Background(), "76543", creds))
	assert.False(t, client.Exists(context.Background(), "11111", creds))
	assert.False(t, client.Exists(context.Background(), "", creds))
	assert.False(t, client.Exists(context.Background(), "76543", nil))
}

func TestPrivacyView(t *testing.T) {
	assert.Equal(t, "anybody", privacyView(model.PrivacyPublic))
	assert.Equal(t, "nobody", privacyView(model.PrivacyPrivate))
	assert.Equal(t, "nobody", privacyView(""))
	assert.Equal(t, "nobody", privacyView("unlisted"))
}
