package model_test

import (
	"strings"
	"testing"
	"time"

	"video-publisher/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)

func TestRecord_ClampsTimestampsNonDecreasing(t *testing.T) {
	item := &model.MediaItem{ID: "m1", Platforms: []model.Platform{model.PlatformYouTube}}
	item.Record(model.UploadAttempt{Timestamp: t0.Add(time.Minute), Platform: model.PlatformYouTube, Result: model.ResultFailed}, t0)
	got := item.Record(model.UploadAttempt{Timestamp: t0, Platform: model.PlatformYouTube, Result: model.ResultFailed}, t0)

	assert.Equal(t, t0.Add(time.Minute), got.Timestamp)
	require.Len(t, item.History, 2)
	assert.False(t, item.History[1].Timestamp.Before(item.History[0].Timestamp))
}

func TestRecord_SuccessSetsStatusAndExternalID(t *testing.T) {
	item := &model.MediaItem{ID: "m1", Platforms: []model.Platform{model.PlatformVimeo}}
	item.Record(model.UploadAttempt{Timestamp: t0, Platform: model.PlatformVimeo, Result: model.ResultUploaded, ExternalID: "v1"}, t0)

	assert.Equal(t, model.StatusUploaded, item.Status(model.PlatformVimeo))
	assert.Equal(t, "v1", item.ExternalID(model.PlatformVimeo))
	assert.True(t, item.HasSuccessfulUpload())
	assert.Equal(t, t0, item.UpdatedAt)
}

func TestRecord_LateFailureKeepsConcurrentSuccess(t *testing.T) {
	item := &model.MediaItem{ID: "m1", Platforms: []model.Platform{model.PlatformYouTube}}
	item.Record(model.UploadAttempt{Timestamp: t0.Add(2 * time.Second), Platform: model.PlatformYouTube, Result: model.ResultUploaded, ExternalID: "y1"}, t0)
	item.Record(model.UploadAttempt{Timestamp: t0.Add(3 * time.Second), Platform: model.PlatformYouTube, Result: model.ResultFailed, Error: "timeout"}, t0.Add(time.Second))

	assert.Equal(t, model.StatusUploaded, item.Status(model.PlatformYouTube))
	assert.Len(t, item.History, 2)
}

func TestRecord_FailureAfterOldSuccessMarksFailed(t *testing.T) {
	item := &model.MediaItem{ID: "m1", Platforms: []model.Platform{model.PlatformYouTube}}
	item.Record(model.UploadAttempt{Timestamp: t0, Platform: model.PlatformYouTube, Result: model.ResultUploaded, ExternalID: "y1"}, t0.Add(-time.Second))
	item.Record(model.UploadAttempt{Timestamp: t0.Add(time.Hour), Platform: model.PlatformYouTube, Result: model.ResultFailed}, t0.Add(time.Minute))

	assert.Equal(t, model.StatusFailed, item.Status(model.PlatformYouTube))
	assert.Equal(t, "y1", item.ExternalID(model.PlatformYouTube))
}

func TestMarkFailed_DoesNotDowngradePublished(t *testing.T) {
	item := &model.MediaItem{
		Platforms: []model.Platform{model.PlatformYouTube, model.PlatformVimeo},
		Statuses:  map[model.Platform]model.UploadStatus{model.PlatformYouTube: model.StatusExists},
	}
	item.MarkFailed(model.PlatformYouTube, t0)
	item.MarkFailed(model.PlatformVimeo, t0)

	assert.Equal(t, model.StatusExists, item.Status(model.PlatformYouTube))
	assert.Equal(t, model.StatusFailed, item.Status(model.PlatformVimeo))
	assert.Empty(t, item.History)
}

func TestValidate(t *testing.T) {
	ok := &model.MediaItem{Title: strings.Repeat("é", model.MaxTitleLength), Platforms: []model.Platform{model.PlatformDailymotion}}
	assert.NoError(t, ok.Validate())

	bad := []*model.MediaItem{
		{Title: "", Platforms: []model.Platform{model.PlatformYouTube}},
		{Title: strings.Repeat("x", model.MaxTitleLength+1), Platforms: []model.Platform{model.PlatformYouTube}},
		{Title: "t"},
		{Title: "t", Platforms: []model.Platform{"TT"}},
		{Title: "t", Platforms: []model.Platform{model.PlatformVimeo, model.PlatformVimeo}},
	}
	for _, item := range bad {
		assert.True(t, model.IsValidationError(item.Validate()), "%+v", item)
	}
}

func TestNormalize_DefaultsPendingAndPrivate(t *testing.T) {
	item := &model.MediaItem{
		Platforms: []model.Platform{model.PlatformYouTube, model.PlatformVimeo},
		Privacy:   map[model.Platform]model.Privacy{model.PlatformYouTube: "Public", model.PlatformVimeo: "unlisted"},
	}
	item.Normalize()

	assert.Equal(t, model.StatusPending, item.Statuses[model.PlatformYouTube])
	assert.Equal(t, model.PrivacyPublic, item.Privacy[model.PlatformYouTube])
	assert.Equal(t, model.PrivacyPrivate, item.Privacy[model.PlatformVimeo])
	assert.NotNil(t, item.History)
	assert.True(t, item.IsPending())
}

func TestClone_IsDeep(t *testing.T) {
	item := &model.MediaItem{ID: "m1", Platforms: []model.Platform{model.PlatformYouTube}}
	item.Normalize()
	c := item.Clone()
	c.Statuses[model.PlatformYouTube] = model.StatusUploaded
	c.Platforms[0] = model.PlatformVimeo

	assert.Equal(t, model.StatusPending, item.Status(model.PlatformYouTube))
	assert.Equal(t, model.PlatformYouTube, item.Platforms[0])
}
