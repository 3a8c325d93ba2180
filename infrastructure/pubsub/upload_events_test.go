package pubsub_test

import (
	"context"
	"testing"

	"video-publisher/domain/model"
	"video-publisher/infrastructure/pubsub"

	"github.com/stretchr/testify/assert"
)

func TestNewUploadEventPublisher(t *testing.T) {
	publisher := pubsub.NewUploadEventPublisher(nil, "media-upload-events")
	assert.NotNil(t, publisher)
}

func TestUploadEventPublisher_NilClient(t *testing.T) {
	publisher := pubsub.NewUploadEventPublisher(nil, "media-upload-events")
	err := publisher.Notify(context.Background(), &model.UploadEvent{MediaID: "m1"})
	assert.Error(t, err)
}

func TestNewPubSub_EmptyProject(t *testing.T) {
	client, err := pubsub.NewPubSub(context.Background(), "")
	assert.Error(t, err)
	assert.Nil(t, client)
}
