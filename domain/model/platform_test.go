package model_test

import (
	"testing"
	"time"

	"video-publisher/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlatform(t *testing.T) {
	for in, want := range map[string]model.Platform{
		"YT":          model.PlatformYouTube,
		"youtube":     model.PlatformYouTube,
		" vm ":        model.PlatformVimeo,
		"Dailymotion": model.PlatformDailymotion,
	} {
		got, err := model.ParsePlatform(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := model.ParsePlatform("tiktok")
	assert.True(t, model.IsValidationError(err))
}

func TestParsePlatforms_Dedupes(t *testing.T) {
	got, err := model.ParsePlatforms([]string{"vimeo", "YT", "VM"})
	require.NoError(t, err)
	assert.Equal(t, []model.Platform{model.PlatformVimeo, model.PlatformYouTube}, got)
}

func TestPrivacyNormalize(t *testing.T) {
	assert.Equal(t, model.PrivacyPublic, model.Privacy("PUBLIC").Normalize())
	assert.Equal(t, model.PrivacyPrivate, model.Privacy("unlisted").Normalize())
	assert.Equal(t, model.PrivacyPrivate, model.Privacy("").Normalize())
}

func TestPendingAuthorization_Expired(t *testing.T) {
	p := &model.PendingAuthorization{CreatedAt: t0, ExpiresAt: t0.Add(10 * time.Minute)}
	assert.False(t, p.Expired(t0.Add(9*time.Minute)))
	assert.True(t, p.Expired(t0.Add(10*time.Minute)))
	assert.Equal(t, time.Minute, p.TTL(t0.Add(9*time.Minute)))
	assert.Zero(t, p.TTL(t0.Add(time.Hour)))
}

func TestCredentialsValid(t *testing.T) {
	var nilCreds *model.Credentials
	assert.False(t, nilCreds.Valid(t0))
	assert.True(t, (&model.Credentials{AccessToken: "a"}).Valid(t0))
	assert.False(t, (&model.Credentials{AccessToken: "a", Expiry: t0}).Valid(t0))
}

func TestUploadErrorWraps(t *testing.T) {
	cause := assert.AnError
	err := model.NewUploadError(model.PlatformVimeo, "quota exceeded", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "vimeo upload failed: quota exceeded: "+cause.Error(), err.Error())
}
