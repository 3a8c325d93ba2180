package usecase

import (
	"context"
	"errors"
	"io"
	"strings"

	"video-publisher/domain/dto"
	"video-publisher/domain/model"
	"video-publisher/domain/repository"
	"video-publisher/infrastructure/logger"
	"video-publisher/infrastructure/storage"
	"video-publisher/infrastructure/utils"

	"github.com/samber/lo"
)

// CreateMediaInput is a new media item plus, optionally, the video bytes to store.
type CreateMediaInput struct {
	Title       string
	Description string
	Platforms   []string
	Privacy     map[string]string
	SourceRef   string
	File        io.Reader
	FileName    string
}

type IMediaUsecase interface {
	Create(ctx context.Context, userID string, in *CreateMediaInput) (*model.MediaItem, error)
	Get(ctx context.Context, userID, id string) (*model.MediaItem, error)
	List(ctx context.Context, userID string) ([]*model.MediaItem, error)
	Update(ctx context.Context, userID, id string, req *dto.UpdateMediaRequest) (*model.MediaItem, error)
}

type mediaUsecase struct {
	media   repository.IMedia
	sources repository.ISourceStore
}

func NewMediaUsecase(media repository.IMedia, sources repository.ISourceStore) IMediaUsecase {
	return &mediaUsecase{media: media, sources: sources}
}

func (u *mediaUsecase) Create(ctx context.Context, userID string, in *CreateMediaInput) (*model.MediaItem, error) {
	platforms, err := model.ParsePlatforms(in.Platforms)
	if err != nil {
		return nil, err
	}
	privacy, err := parsePrivacy(in.Privacy)
	if err != nil {
		return nil, err
	}
	now := utils.GetCurrentTime()
	item := &model.MediaItem{
		ID:          utils.NewID(),
		OwnerID:     userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		SourceRef:   strings.TrimSpace(in.SourceRef),
		Platforms:   platforms,
		Privacy:     privacy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if in.File != nil {
		body, mime, err := storage.SniffVideo(in.File)
		if err != nil {
			if errors.Is(err, storage.ErrNotVideo) {
				return nil, &model.ValidationError{Field: "file", Message: "file is not a supported video"}
			}
			return nil, err
		}
		ref, err := u.sources.Save(ctx, in.FileName, body)
		if err != nil {
			return nil, err
		}
		item.SourceRef = ref
		logger.GetLogger().WithField("media_id", item.ID).WithField("mime", mime).WithField("source_ref", ref).Info("Video stored")
	}

	item.Normalize()
	if err := u.media.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (u *mediaUsecase) Get(ctx context.Context, userID, id string) (*model.MediaItem, error) {
	item, err := u.media.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownedBy(item, userID) {
		return nil, model.ErrMediaNotFound
	}
	return item, nil
}

func (u *mediaUsecase) List(ctx context.Context, userID string) ([]*model.MediaItem, error) {
	return u.media.List(ctx, userID)
}

// Update applies user edits. Once any platform holds a published copy the item is locked.
func (u *mediaUsecase) Update(ctx context.Context, userID, id string, req *dto.UpdateMediaRequest) (*model.MediaItem, error) {
	var platforms []model.Platform
	if req.Platforms != nil {
		var err error
		if platforms, err = model.ParsePlatforms(req.Platforms); err != nil {
			return nil, err
		}
	}
	privacy, err := parsePrivacy(req.Privacy)
	if err != nil {
		return nil, err
	}

	return u.media.Update(ctx, id, func(it *model.MediaItem) error {
		if !ownedBy(it, userID) {
			return model.ErrMediaNotFound
		}
		if it.HasSuccessfulUpload() {
			return model.ErrEditLocked
		}
		if req.Title != nil {
			it.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			it.Description = *req.Description
		}
		if platforms != nil {
			for _, old := range it.Platforms {
				if !lo.Contains(platforms, old) {
					delete(it.Statuses, old)
					delete(it.Privacy, old)
				}
			}
			it.Platforms = platforms
		}
		for p, v := range privacy {
			it.Privacy[p] = v
		}
		if err := it.Validate(); err != nil {
			return err
		}
		it.Normalize()
		it.UpdatedAt = utils.GetCurrentTime()
		return nil
	})
}

func ownedBy(item *model.MediaItem, userID string) bool {
	return userID == "" || item.OwnerID == "" || item.OwnerID == userID
}

func parsePrivacy(in map[string]string) (map[model.Platform]model.Privacy, error) {
	out := make(map[model.Platform]model.Privacy, len(in))
	for k, v := range in {
		p, err := model.ParsePlatform(k)
		if err != nil {
			return nil, err
		}
		out[p] = model.Privacy(v).Normalize()
	}
	return out, nil
}
