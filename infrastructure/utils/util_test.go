package utils

import (
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomState_Unique(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		s := RandomState()
		assert.Len(t, s, 48)
		_, dup := seen[s]
		require.False(t, dup)
		seen[s] = struct{}{}
	}
}

func TestStreamMultipart(t *testing.T) {
	body, contentType := StreamMultipart("file", "clip.mp4", strings.NewReader("video-bytes"), map[string]string{"name": "clip"})
	defer body.Close()

	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	reader := multipart.NewReader(body, params["boundary"])

	part, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "name", part.FormName())
	value, _ := io.ReadAll(part)
	assert.Equal(t, "clip", string(value))

	part, err = reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "file", part.FormName())
	assert.Equal(t, "clip.mp4", part.FileName())
	data, _ := io.ReadAll(part)
	assert.Equal(t, "video-bytes", string(data))
}
