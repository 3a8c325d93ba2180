package persistence

import (
	"context"
	"errors"
	"time"

	"video-publisher/domain/model"
	"video-publisher/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OAuthTokenRepositoryGorm struct{ db *gorm.DB }

func NewOAuthTokenRepositoryGorm(db *gorm.DB) *OAuthTokenRepositoryGorm {
	return &OAuthTokenRepositoryGorm{db: db}
}

var _ repository.IOAuthToken = (*OAuthTokenRepositoryGorm)(nil)

func (r *OAuthTokenRepositoryGorm) UpsertToken(ctx context.Context, t *model.OAuthToken) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "expires_at", "scopes", "updated_at"}),
	}).Create(t).Error
}

func (r *OAuthTokenRepositoryGorm) GetToken(ctx context.Context, userID, platform string) (*model.OAuthToken, error) {
	var tok model.OAuthToken
	err := r.db.WithContext(ctx).Where("user_id = ? AND platform = ?", userID, platform).Take(&tok).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

func (r *OAuthTokenRepositoryGorm) DeleteToken(ctx context.Context, userID, platform string) error {
	return r.db.WithContext(ctx).Where("user_id = ? AND platform = ?", userID, platform).Delete(&model.OAuthToken{}).Error
}
