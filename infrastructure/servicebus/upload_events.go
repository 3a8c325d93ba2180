package servicebus

import (
	"context"
	"encoding/json"
	"errors"

	"video-publisher/domain/model"
	"video-publisher/domain/repository"
	"video-publisher/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// NewServiceBus connects to <namespace>.servicebus.windows.net with the default Azure credential chain.
func NewServiceBus(_ context.Context, namespace string) (*azservicebus.Client, error) {
	if namespace == "" {
		return nil, errors.New("service bus namespace is empty")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azservicebus.NewClient(namespace+".servicebus.windows.net", cred, nil)
}

// UploadEventSender sends upload outcomes to a Service Bus queue.
type UploadEventSender struct {
	client *azservicebus.Client
	queue  string
}

func NewUploadEventSender(client *azservicebus.Client, queue string) *UploadEventSender {
	return &UploadEventSender{client: client, queue: queue}
}

var _ repository.IUploadNotifier = (*UploadEventSender)(nil)

func (s *UploadEventSender) Notify(ctx context.Context, evt *model.UploadEvent) error {
	if s.client == nil {
		return errors.New("service bus client not configured")
	}
	sender, err := s.client.NewSender(s.queue, nil)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return err
	}
	defer func(sender *azservicebus.Sender, ctx context.Context) {
		if err := sender.Close(ctx); err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing sender.")
		}
	}(sender, context.Background())

	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	contentType := "application/json"
	subject := evt.Type
	return sender.SendMessage(ctx, &azservicebus.Message{
		Body:        body,
		ContentType: &contentType,
		Subject:     &subject,
		ApplicationProperties: map[string]interface{}{
			"media_id": evt.MediaID,
			"platform": string(evt.Platform),
		},
	}, nil)
}
