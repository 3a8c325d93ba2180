package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"video-publisher/domain/model"
	"video-publisher/domain/repository"
	"video-publisher/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const mongoMaxUpdateRetries = 8

// MediaRepositoryMongo keeps one document per media item and serializes Update with a version check.
type MediaRepositoryMongo struct {
	collection *mongo.Collection
}

func NewMediaRepositoryMongo(client *mongo.Client, database string) *MediaRepositoryMongo {
	return &MediaRepositoryMongo{collection: client.Database(database).Collection("media_items")}
}

var _ repository.IMedia = (*MediaRepositoryMongo)(nil)

func (r *MediaRepositoryMongo) Create(ctx context.Context, item *model.MediaItem) error {
	item.Normalize()
	_, err := r.collection.InsertOne(ctx, item)
	return err
}

func (r *MediaRepositoryMongo) Load(ctx context.Context, id string) (*model.MediaItem, error) {
	var item model.MediaItem
	if err := r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrMediaNotFound
		}
		return nil, err
	}
	item.Normalize()
	return &item, nil
}

func (r *MediaRepositoryMongo) Save(ctx context.Context, item *model.MediaItem) error {
	item.Normalize()
	item.Version++
	_, err := r.collection.ReplaceOne(ctx, bson.D{{Key: "_id", Value: item.ID}}, item, options.Replace().SetUpsert(true))
	return err
}

// Update retries the read-modify-write until the version it read is still current.
func (r *MediaRepositoryMongo) Update(ctx context.Context, id string, mutate repository.MutateFunc) (*model.MediaItem, error) {
	for attempt := 0; attempt < mongoMaxUpdateRetries; attempt++ {
		item, err := r.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		read := item.Version
		if err := mutate(item); err != nil {
			return nil, err
		}
		item.Version = read + 1
		res, err := r.collection.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "version", Value: read}}, item)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 1 {
			return item, nil
		}
		logger.GetLogger().WithField("media_id", id).WithField("attempt", attempt).Debug("media version conflict, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 10 * time.Millisecond):
		}
	}
	return nil, fmt.Errorf("update media %s: too many concurrent writers", id)
}

func (r *MediaRepositoryMongo) List(ctx context.Context, ownerID string) ([]*model.MediaItem, error) {
	filter := bson.D{}
	if ownerID != "" {
		filter = bson.D{{Key: "owner_id", Value: ownerID}}
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		if err := cursor.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}(cursor, ctx)

	items := []*model.MediaItem{}
	for cursor.Next(ctx) {
		var item model.MediaItem
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		item.Normalize()
		items = append(items, &item)
	}
	return items, cursor.Err()
}

func (r *MediaRepositoryMongo) ListPending(ctx context.Context, ownerID string, limit int) ([]*model.MediaItem, error) {
	items, err := r.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return pendingOldestFirst(items, limit), nil
}
