package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"video-publisher/domain/model"
	"video-publisher/domain/repository"
	"video-publisher/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

// NewPubSub creates a Google Cloud Pub/Sub client for the project.
func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, errors.New("pubsub project id is empty")
	}
	return pubsub.NewClient(ctx, projectID)
}

// UploadEventPublisher publishes upload outcomes to a Pub/Sub topic.
type UploadEventPublisher struct {
	client    *pubsub.Client
	topicName string

	mu    sync.Mutex
	topic *pubsub.Topic
}

func NewUploadEventPublisher(client *pubsub.Client, topicName string) *UploadEventPublisher {
	return &UploadEventPublisher{client: client, topicName: topicName}
}

var _ repository.IUploadNotifier = (*UploadEventPublisher)(nil)

func (p *UploadEventPublisher) Notify(ctx context.Context, evt *model.UploadEvent) error {
	if p.client == nil {
		return errors.New("pubsub client not configured")
	}
	topic, err := p.ensureTopic(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	serverID, err := topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"media_id": evt.MediaID,
			"platform": string(evt.Platform),
			"result":   string(evt.Result),
		},
	}).Get(ctx)
	if err != nil {
		return err
	}
	logger.GetLogger().WithField("server ID", serverID).Debug("Upload event published")
	return nil
}

func (p *UploadEventPublisher) ensureTopic(ctx context.Context) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.topic != nil {
		return p.topic, nil
	}
	topic := p.client.Topic(p.topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topicName).Info("Topic doesn't exist - creating it")
		if topic, err = p.client.CreateTopic(ctx, p.topicName); err != nil {
			return nil, err
		}
	}
	p.topic = topic
	return topic, nil
}

// Stop flushes pending publishes.
func (p *UploadEventPublisher) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.topic != nil {
		p.topic.Stop()
	}
}
