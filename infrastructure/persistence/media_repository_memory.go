package persistence

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"video-publisher/domain/model"
	"video-publisher/domain/repository"
)

// MediaRepositoryMemory is used when no database is reachable and in tests.
// Every read returns a copy; Update holds a per-item lock.
type MediaRepositoryMemory struct {
	mu    sync.RWMutex
	items map[string]*model.MediaItem
	locks map[string]*sync.Mutex
}

func NewMediaRepositoryMemory() *MediaRepositoryMemory {
	return &MediaRepositoryMemory{
		items: map[string]*model.MediaItem{},
		locks: map[string]*sync.Mutex{},
	}
}

var _ repository.IMedia = (*MediaRepositoryMemory)(nil)

func (r *MediaRepositoryMemory) lockFor(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}
	return l
}

func (r *MediaRepositoryMemory) Create(_ context.Context, item *model.MediaItem) error {
	item.Normalize()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; ok {
		return fmt.Errorf("media %s already exists", item.ID)
	}
	r.items[item.ID] = item.Clone()
	return nil
}

func (r *MediaRepositoryMemory) Load(_ context.Context, id string) (*model.MediaItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, model.ErrMediaNotFound
	}
	return item.Clone(), nil
}

func (r *MediaRepositoryMemory) Save(_ context.Context, item *model.MediaItem) error {
	l := r.lockFor(item.ID)
	l.Lock()
	defer l.Unlock()
	item.Normalize()
	item.Version++
	r.mu.Lock()
	r.items[item.ID] = item.Clone()
	r.mu.Unlock()
	return nil
}

func (r *MediaRepositoryMemory) Update(ctx context.Context, id string, mutate repository.MutateFunc) (*model.MediaItem, error) {
	l := r.lockFor(id)
	l.Lock()
	defer l.Unlock()

	item, err := r.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(item); err != nil {
		return nil, err
	}
	item.Version++
	r.mu.Lock()
	r.items[id] = item.Clone()
	r.mu.Unlock()
	return item, nil
}

func (r *MediaRepositoryMemory) List(_ context.Context, ownerID string) ([]*model.MediaItem, error) {
	r.mu.RLock()
	out := make([]*model.MediaItem, 0, len(r.items))
	for _, it := range r.items {
		if ownerID == "" || it.OwnerID == ownerID {
			out = append(out, it.Clone())
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MediaRepositoryMemory) ListPending(ctx context.Context, ownerID string, limit int) ([]*model.MediaItem, error) {
	items, err := r.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return pendingOldestFirst(items, limit), nil
}
