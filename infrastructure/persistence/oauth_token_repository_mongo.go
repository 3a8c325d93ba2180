package persistence

import (
	"context"
	"errors"
	"time"

	"video-publisher/domain/model"
	"video-publisher/domain/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// OAuthTokenRepositoryMongo stores one document per (user, platform).
type OAuthTokenRepositoryMongo struct {
	collection *mongo.Collection
}

func NewOAuthTokenRepositoryMongo(client *mongo.Client, database string) *OAuthTokenRepositoryMongo {
	return &OAuthTokenRepositoryMongo{collection: client.Database(database).Collection("oauth_tokens")}
}

var _ repository.IOAuthToken = (*OAuthTokenRepositoryMongo)(nil)

func tokenFilter(userID, platform string) bson.D {
	return bson.D{{Key: "user_id", Value: userID}, {Key: "platform", Value: platform}}
}

func (r *OAuthTokenRepositoryMongo) UpsertToken(ctx context.Context, t *model.OAuthToken) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "access_token", Value: t.AccessToken},
			{Key: "refresh_token", Value: t.RefreshToken},
			{Key: "expires_at", Value: t.ExpiresAt},
			{Key: "scopes", Value: t.Scopes},
			{Key: "updated_at", Value: t.UpdatedAt},
		}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "created_at", Value: t.CreatedAt}}},
	}
	_, err := r.collection.UpdateOne(ctx, tokenFilter(t.UserID, t.Platform), update, options.UpdateOne().SetUpsert(true))
	return err
}

func (r *OAuthTokenRepositoryMongo) GetToken(ctx context.Context, userID, platform string) (*model.OAuthToken, error) {
	var t model.OAuthToken
	if err := r.collection.FindOne(ctx, tokenFilter(userID, platform)).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *OAuthTokenRepositoryMongo) DeleteToken(ctx context.Context, userID, platform string) error {
	_, err := r.collection.DeleteOne(ctx, tokenFilter(userID, platform))
	return err
}
