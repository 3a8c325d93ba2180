package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/h2non/filetype"
)

// ErrNotVideo rejects an upload whose magic bytes do not match a video container.
var ErrNotVideo = errors.New("file is not a recognised video")

// SniffVideo peeks at the head of r and returns a reader that still yields every byte.
func SniffVideo(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(262)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, "", fmt.Errorf("read file header: %w", err)
	}
	if !filetype.IsVideo(head) {
		return nil, "", ErrNotVideo
	}
	kind, _ := filetype.Match(head)
	return br, kind.MIME.Value, nil
}
