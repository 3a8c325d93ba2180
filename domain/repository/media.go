package repository

import (
	"context"

	"video-publisher/domain/model"
)

// MutateFunc changes a freshly loaded item inside the store's per-item critical section.
type MutateFunc func(item *model.MediaItem) error

// IMedia is the durable media record store. Update is an atomic per-item read-modify-write:
// concurrent Updates on the same id are serialized.
type IMedia interface {
	Create(ctx context.Context, item *model.MediaItem) error
	Load(ctx context.Context, id string) (*model.MediaItem, error)
	Save(ctx context.Context, item *model.MediaItem) error
	Update(ctx context.Context, id string, mutate MutateFunc) (*model.MediaItem, error)
	List(ctx context.Context, ownerID string) ([]*model.MediaItem, error)
	ListPending(ctx context.Context, ownerID string, limit int) ([]*model.MediaItem, error)
}
