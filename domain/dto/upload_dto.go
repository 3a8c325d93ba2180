package dto

import (
	"io"

	"video-publisher/domain/model"
)

// UploadRequest is everything an adapter needs to publish one file.
type UploadRequest struct {
	Source      io.Reader
	Size        int64
	FileName    string
	Title       string
	Description string
	Privacy     model.Privacy
}

// SourceObject is an opened media source; the caller closes Reader.
type SourceObject struct {
	Reader io.ReadCloser
	Size   int64
	Name   string
}
