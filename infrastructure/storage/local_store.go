package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"video-publisher/domain/dto"
	"video-publisher/domain/repository"
	"video-publisher/infrastructure/utils"
)

// LocalStore keeps uploaded sources on the local disk under a base directory.
type LocalStore struct {
	baseDir string
}

func NewLocalStore(baseDir string) *LocalStore {
	return &LocalStore{baseDir: baseDir}
}

var _ repository.ISourceStore = (*LocalStore)(nil)

// Save writes r to a uniquely named file and returns its path as the source ref.
func (s *LocalStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(s.baseDir, utils.NewID()+"-"+sanitizeName(name))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

func (s *LocalStore) Open(_ context.Context, ref string) (*dto.SourceObject, error) {
	f, err := os.Open(ref)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("source %s is a directory", ref)
	}
	return &dto.SourceObject{Reader: f, Size: info.Size(), Name: filepath.Base(ref)}, nil
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "video"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
