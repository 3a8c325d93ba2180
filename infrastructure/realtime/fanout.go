package realtime

import (
	"context"

	"video-publisher/domain/model"
	"video-publisher/domain/repository"
	"video-publisher/infrastructure/logger"
)

// Fanout forwards an event to every configured notifier. Failures are logged, never returned.
type Fanout struct {
	notifiers []repository.IUploadNotifier
}

func NewFanout(notifiers ...repository.IUploadNotifier) *Fanout {
	f := &Fanout{}
	for _, n := range notifiers {
		if n != nil {
			f.notifiers = append(f.notifiers, n)
		}
	}
	return f
}

var _ repository.IUploadNotifier = (*Fanout)(nil)

func (f *Fanout) Notify(ctx context.Context, evt *model.UploadEvent) error {
	for _, n := range f.notifiers {
		if err := n.Notify(ctx, evt); err != nil {
			logger.GetLogger().
				WithField("error", err).
				WithField("media_id", evt.MediaID).
				WithField("platform", evt.Platform).
				Warn("upload event notifier failed")
		}
	}
	return nil
}
