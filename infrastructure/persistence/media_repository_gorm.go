package persistence

import (
	"context"
	"errors"
	"sort"

	"video-publisher/domain/model"
	"video-publisher/domain/repository"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MediaRepositoryGorm is the MySQL-backed media store.
type MediaRepositoryGorm struct {
	db *gorm.DB
}

func NewMediaRepositoryGorm(db *gorm.DB) *MediaRepositoryGorm {
	return &MediaRepositoryGorm{db: db}
}

var _ repository.IMedia = (*MediaRepositoryGorm)(nil)

// AutoMigrate creates or updates the media_items and oauth_tokens tables.
func (r *MediaRepositoryGorm) AutoMigrate() error {
	return r.db.AutoMigrate(&model.MediaItem{}, &model.OAuthToken{})
}

func (r *MediaRepositoryGorm) Create(ctx context.Context, item *model.MediaItem) error {
	item.Normalize()
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *MediaRepositoryGorm) Load(ctx context.Context, id string) (*model.MediaItem, error) {
	var item model.MediaItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrMediaNotFound
		}
		return nil, err
	}
	item.Normalize()
	return &item, nil
}

func (r *MediaRepositoryGorm) Save(ctx context.Context, item *model.MediaItem) error {
	item.Normalize()
	item.Version++
	return r.db.WithContext(ctx).Save(item).Error
}

// Update holds a row lock for the duration of mutate.
func (r *MediaRepositoryGorm) Update(ctx context.Context, id string, mutate repository.MutateFunc) (*model.MediaItem, error) {
	var out *model.MediaItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.MediaItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrMediaNotFound
			}
			return err
		}
		item.Normalize()
		if err := mutate(&item); err != nil {
			return err
		}
		item.Version++
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		out = &item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MediaRepositoryGorm) List(ctx context.Context, ownerID string) ([]*model.MediaItem, error) {
	var items []*model.MediaItem
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	for _, it := range items {
		it.Normalize()
	}
	return items, nil
}

// ListPending filters in memory since statuses live in a JSON column.
func (r *MediaRepositoryGorm) ListPending(ctx context.Context, ownerID string, limit int) ([]*model.MediaItem, error) {
	items, err := r.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return pendingOldestFirst(items, limit), nil
}

func pendingOldestFirst(items []*model.MediaItem, limit int) []*model.MediaItem {
	if limit <= 0 {
		limit = 50
	}
	pending := lo.Filter(items, func(it *model.MediaItem, _ int) bool { return it.IsPending() })
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending
}
