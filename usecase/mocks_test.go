package usecase_test

import (
	"context"
	"io"
	"strings"
	"sync"

	"video-publisher/domain/dto"
	"video-publisher/domain/model"

	"github.com/stretchr/testify/mock"
)

type MockAdapter struct {
	mock.Mock
	platform model.Platform
}

func NewMockAdapter(p model.Platform) *MockAdapter { return &MockAdapter{platform: p} }

func (m *MockAdapter) Platform() model.Platform { return m.platform }

func (m *MockAdapter) Upload(ctx context.Context, req *dto.UploadRequest, creds *model.Credentials) (string, error) {
	args := m.Called(ctx, req, creds)
	return args.String(0), args.Error(1)
}

func (m *MockAdapter) Exists(ctx context.Context, externalID string, creds *model.Credentials) bool {
	args := m.Called(ctx, externalID, creds)
	return args.Bool(0)
}

func (m *MockAdapter) WatchURL(externalID string) string {
	return "https://watch.example/" + m.platform.Name() + "/" + externalID
}

type MockDeferredAdapter struct {
	MockAdapter
}

func NewMockDeferredAdapter(p model.Platform) *MockDeferredAdapter {
	return &MockDeferredAdapter{MockAdapter: MockAdapter{platform: p}}
}

func (m *MockDeferredAdapter) AuthorizationURL(state string) string {
	return "https://login.example/oauth/authorize?state=" + state
}

func (m *MockDeferredAdapter) ExchangeCode(ctx context.Context, code string) (*model.Credentials, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Credentials), args.Error(1)
}

func (m *MockDeferredAdapter) RefreshCredentials(ctx context.Context, creds *model.Credentials) (*model.Credentials, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Credentials), args.Error(1)
}

// fakeSources serves every ref as a tiny in-memory video.
type fakeSources struct {
	saved map[string]string
}

func newFakeSources() *fakeSources { return &fakeSources{saved: map[string]string{}} }

func (f *fakeSources) Open(_ context.Context, ref string) (*dto.SourceObject, error) {
	body := "video-bytes"
	if b, ok := f.saved[ref]; ok {
		body = b
	}
	return &dto.SourceObject{Reader: io.NopCloser(strings.NewReader(body)), Size: int64(len(body)), Name: ref}, nil
}

func (f *fakeSources) Save(_ context.Context, name string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	ref := "mem://" + name
	f.saved[ref] = string(b)
	return ref, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []*model.UploadEvent
}

func (r *recordingNotifier) Notify(_ context.Context, evt *model.UploadEvent) error {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
	return nil
}

func (r *recordingNotifier) Events() []*model.UploadEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.UploadEvent(nil), r.events...)
}
