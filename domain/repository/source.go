package repository

import (
	"context"
	"io"

	"video-publisher/domain/dto"
)

// ISourceStore resolves a media source reference to readable bytes and stores new uploads.
type ISourceStore interface {
	Open(ctx context.Context, ref string) (*dto.SourceObject, error)
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}
