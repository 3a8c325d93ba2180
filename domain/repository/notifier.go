package repository

import (
	"context"

	"video-publisher/domain/model"
)

type IUploadNotifier interface {
	Notify(ctx context.Context, event *model.UploadEvent) error
}
