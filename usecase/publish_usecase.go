package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"video-publisher/domain/dto"
	"video-publisher/domain/model"
	"video-publisher/domain/repository"
	"video-publisher/infrastructure/logger"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const (
	reasonMissingSource = "missing source"
	reasonMediaNotFound = "media not found"
	eventUploadStatus   = "upload_status"
)

// PairOutcome is the result of one (media, platform) pair. URL is the watch URL for
// uploaded/exists and the login URL for authorization_required.
// It describes this run only: a missing-source failure is reported for every
// selected pair, while a pair already uploaded keeps that status on the record.
type PairOutcome struct {
	MediaID    string              `json:"media_id"`
	Platform   model.Platform      `json:"platform"`
	Result     model.AttemptResult `json:"result"`
	ExternalID string              `json:"external_id,omitempty"`
	URL        string              `json:"url,omitempty"`
	Reason     string              `json:"reason,omitempty"`
}

// ItemResult groups the pair outcomes of one media item. Error is set when the
// item itself could not be processed (unknown id).
type ItemResult struct {
	MediaID  string        `json:"media_id"`
	Error    string        `json:"error,omitempty"`
	Outcomes []PairOutcome `json:"outcomes"`
}

type BatchResult struct {
	Items []*ItemResult `json:"items"`
}

// AuthorizationStarter opens a deferred login for a suspended pair and returns the login URL.
type AuthorizationStarter interface {
	Begin(ctx context.Context, userID, mediaID string, platform model.Platform) (string, error)
}

type IPublishUsecase interface {
	Run(ctx context.Context, userID string, ids []string, platforms []string) (*BatchResult, error)
	RunPending(ctx context.Context, userID string, limit int) (*BatchResult, error)
	Resume(ctx context.Context, userID, mediaID string, platform model.Platform, creds *model.Credentials) (*PairOutcome, error)
}

type PublishOptions struct {
	Workers       int
	UploadTimeout time.Duration
}

// PublishUsecase is the upload orchestrator.
type PublishUsecase struct {
	media    repository.IMedia
	sources  repository.ISourceStore
	adapters *AdapterRegistry
	provider repository.ICredentialProvider
	notifier repository.IUploadNotifier
	auth     AuthorizationStarter

	workers       int
	uploadTimeout time.Duration
	now           func() time.Time
}

func NewPublishUsecase(
	media repository.IMedia,
	sources repository.ISourceStore,
	adapters *AdapterRegistry,
	provider repository.ICredentialProvider,
	notifier repository.IUploadNotifier,
	opts PublishOptions,
) *PublishUsecase {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &PublishUsecase{
		media:         media,
		sources:       sources,
		adapters:      adapters,
		provider:      provider,
		notifier:      notifier,
		workers:       opts.Workers,
		uploadTimeout: opts.UploadTimeout,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithAuthorization attaches the deferred login flow used when a platform needs an interactive login.
func (u *PublishUsecase) WithAuthorization(auth AuthorizationStarter) *PublishUsecase {
	u.auth = auth
	return u
}

var _ IPublishUsecase = (*PublishUsecase)(nil)

func (u *PublishUsecase) WithClock(now func() time.Time) *PublishUsecase {
	u.now = now
	return u
}

type pairJob struct {
	item     *model.MediaItem
	platform model.Platform
	result   *ItemResult
	index    int
}

// Run orchestrates every selected (item, platform) pair. Validation problems are returned as
// *model.ValidationError before anything runs; every other problem lands in the per-pair outcome.
func (u *PublishUsecase) Run(ctx context.Context, userID string, ids []string, platforms []string) (*BatchResult, error) {
	if len(ids) == 0 {
		return nil, &model.ValidationError{Field: "ids", Message: "at least one media id is required"}
	}
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return nil, &model.ValidationError{Field: "ids", Message: "media id must not be empty"}
		}
	}
	selection, err := model.ParsePlatforms(platforms)
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{Items: []*ItemResult{}}
	var jobs []pairJob
	for _, id := range lo.Uniq(ids) {
		res := &ItemResult{MediaID: id, Outcomes: []PairOutcome{}}
		batch.Items = append(batch.Items, res)

		item, err := u.loadOwned(ctx, userID, id)
		if err != nil {
			res.Error = reasonMediaNotFound
			if !errors.Is(err, model.ErrMediaNotFound) {
				res.Error = err.Error()
				logger.GetLogger().WithField("media_id", id).WithField("error", err).Error("Error while loading media")
			}
			continue
		}

		effective := item.Platforms
		if len(selection) > 0 {
			effective = lo.Intersect(selection, item.Platforms)
		}
		if !item.HasSource() {
			res.Outcomes = u.failMissingSource(ctx, userID, item, effective)
			continue
		}
		res.Outcomes = make([]PairOutcome, len(effective))
		for i, p := range effective {
			jobs = append(jobs, pairJob{item: item, platform: p, result: res, index: i})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)
	for _, job := range jobs {
		g.Go(func() error {
			job.result.Outcomes[job.index] = u.safePair(gctx, userID, job.item, job.platform)
			return nil
		})
	}
	_ = g.Wait()
	return batch, nil
}

func (u *PublishUsecase) RunPending(ctx context.Context, userID string, limit int) (*BatchResult, error) {
	items, err := u.media.ListPending(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return &BatchResult{Items: []*ItemResult{}}, nil
	}
	ids := lo.Map(items, func(it *model.MediaItem, _ int) string { return it.ID })
	return u.Run(ctx, userID, ids, nil)
}

// Resume publishes exactly one pair with credentials obtained from a completed login.
func (u *PublishUsecase) Resume(ctx context.Context, userID, mediaID string, platform model.Platform, creds *model.Credentials) (*PairOutcome, error) {
	item, err := u.media.Load(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if !item.Targets(platform) {
		return nil, &model.ValidationError{Field: "platform", Message: fmt.Sprintf("media %s does not target %s", mediaID, platform.Name())}
	}
	if !item.HasSource() {
		out := u.failMissingSource(ctx, userID, item, []model.Platform{platform})
		return &out[0], nil
	}
	startedAt := u.now()
	adapter, ok := u.adapters.Get(platform)
	if !ok {
		out := u.record(ctx, userID, item, platform, u.failedAttempt(platform, "platform not configured"), startedAt)
		return &out, nil
	}
	if out, done := u.checkExisting(ctx, userID, item, adapter, creds, startedAt); done {
		return &out, nil
	}
	out := u.upload(ctx, userID, item, adapter, creds, startedAt)
	return &out, nil
}

func (u *PublishUsecase) loadOwned(ctx context.Context, userID, id string) (*model.MediaItem, error) {
	item, err := u.media.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if userID != "" && item.OwnerID != "" && item.OwnerID != userID {
		return nil, model.ErrMediaNotFound
	}
	return item, nil
}

// safePair keeps a panicking adapter from taking down the rest of the batch.
func (u *PublishUsecase) safePair(ctx context.Context, userID string, item *model.MediaItem, p model.Platform) (out PairOutcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.GetLogger().
				WithField("media_id", item.ID).
				WithField("platform", p.Name()).
				WithField("panic", r).
				Error("Recovered panic while publishing")
			out = PairOutcome{MediaID: item.ID, Platform: p, Result: model.ResultFailed, Reason: fmt.Sprintf("internal error: %v", r)}
		}
	}()
	return u.processPair(ctx, userID, item, p)
}

func (u *PublishUsecase) processPair(ctx context.Context, userID string, item *model.MediaItem, p model.Platform) PairOutcome {
	startedAt := u.now()
	adapter, ok := u.adapters.Get(p)
	if !ok {
		return u.record(ctx, userID, item, p, u.failedAttempt(p, "platform not configured"), startedAt)
	}

	creds, credErr := u.provider.GetCredentials(ctx, p, userID)
	if credErr != nil {
		creds = nil
	}
	if out, done := u.checkExisting(ctx, userID, item, adapter, creds, startedAt); done {
		return out
	}

	switch {
	case errors.Is(credErr, model.ErrAuthorizationRequired):
		return u.suspend(ctx, userID, item, p, startedAt)
	case credErr != nil:
		return u.record(ctx, userID, item, p, u.failedAttempt(p, credErr.Error()), startedAt)
	}
	return u.upload(ctx, userID, item, adapter, creds, startedAt)
}

// checkExisting short-circuits when the platform confirms the recorded video is still there.
func (u *PublishUsecase) checkExisting(ctx context.Context, userID string, item *model.MediaItem, adapter repository.IPlatformAdapter, creds *model.Credentials, startedAt time.Time) (PairOutcome, bool) {
	p := adapter.Platform()
	externalID := item.ExternalID(p)
	if externalID == "" {
		return PairOutcome{}, false
	}
	if !u.exists(ctx, adapter, externalID, creds) {
		logger.GetLogger().
			WithField("media_id", item.ID).
			WithField("platform", p.Name()).
			WithField("external_id", externalID).
			Info("Recorded video not confirmed, uploading again")
		return PairOutcome{}, false
	}
	attempt := model.UploadAttempt{Timestamp: u.now(), Platform: p, Result: model.ResultExists, ExternalID: externalID}
	return u.record(ctx, userID, item, p, attempt, startedAt), true
}

func (u *PublishUsecase) exists(ctx context.Context, adapter repository.IPlatformAdapter, externalID string, creds *model.Credentials) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return adapter.Exists(ctx, externalID, creds)
}

func (u *PublishUsecase) suspend(ctx context.Context, userID string, item *model.MediaItem, p model.Platform, startedAt time.Time) PairOutcome {
	if u.auth == nil {
		return u.record(ctx, userID, item, p, u.failedAttempt(p, "interactive authorization not available"), startedAt)
	}
	authURL, err := u.auth.Begin(ctx, userID, item.ID, p)
	if err != nil {
		return u.record(ctx, userID, item, p, u.failedAttempt(p, "begin authorization: "+err.Error()), startedAt)
	}
	out := PairOutcome{MediaID: item.ID, Platform: p, Result: model.ResultAuthorizationRequired, URL: authURL}
	u.notify(ctx, userID, item, out)
	return out
}

func (u *PublishUsecase) upload(ctx context.Context, userID string, item *model.MediaItem, adapter repository.IPlatformAdapter, creds *model.Credentials, startedAt time.Time) PairOutcome {
	p := adapter.Platform()
	src, err := u.sources.Open(ctx, item.SourceRef)
	if err != nil {
		return u.record(ctx, userID, item, p, u.failedAttempt(p, "open source: "+err.Error()), startedAt)
	}
	defer func() { _ = src.Reader.Close() }()

	uploadCtx := ctx
	if u.uploadTimeout > 0 {
		var cancel context.CancelFunc
		uploadCtx, cancel = context.WithTimeout(ctx, u.uploadTimeout)
		defer cancel()
	}
	req := &dto.UploadRequest{
		Source:      src.Reader,
		Size:        src.Size,
		FileName:    src.Name,
		Title:       item.Title,
		Description: item.Description,
		Privacy:     item.PrivacyFor(p),
	}
	externalID, err := u.callUpload(uploadCtx, adapter, req, creds)
	if err != nil {
		logger.GetLogger().
			WithField("media_id", item.ID).
			WithField("platform", p.Name()).
			WithField("error", err).
			Warn("Upload failed")
		return u.record(ctx, userID, item, p, u.failedAttempt(p, err.Error()), startedAt)
	}
	attempt := model.UploadAttempt{Timestamp: u.now(), Platform: p, Result: model.ResultUploaded, ExternalID: externalID}
	return u.record(ctx, userID, item, p, attempt, startedAt)
}

func (u *PublishUsecase) callUpload(ctx context.Context, adapter repository.IPlatformAdapter, req *dto.UploadRequest, creds *model.Credentials) (id string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = model.NewUploadError(adapter.Platform(), "adapter panic", fmt.Errorf("%v", r))
		}
	}()
	id, err = adapter.Upload(ctx, req, creds)
	if err == nil && id == "" {
		err = model.NewUploadError(adapter.Platform(), "empty video id returned", nil)
	}
	return id, err
}

func (u *PublishUsecase) failedAttempt(p model.Platform, reason string) model.UploadAttempt {
	return model.UploadAttempt{Timestamp: u.now(), Platform: p, Result: model.ResultFailed, Error: reason}
}

// record persists one attempt under the store's per-item lock, then notifies.
func (u *PublishUsecase) record(ctx context.Context, userID string, item *model.MediaItem, p model.Platform, attempt model.UploadAttempt, startedAt time.Time) PairOutcome {
	out := PairOutcome{MediaID: item.ID, Platform: p, Result: attempt.Result, ExternalID: attempt.ExternalID, Reason: attempt.Error}
	if attempt.Result != model.ResultFailed {
		if adapter, ok := u.adapters.Get(p); ok {
			out.URL = adapter.WatchURL(attempt.ExternalID)
		}
	}
	if _, err := u.media.Update(ctx, item.ID, func(it *model.MediaItem) error {
		it.Record(attempt, startedAt)
		return nil
	}); err != nil {
		logger.GetLogger().
			WithField("media_id", item.ID).
			WithField("platform", p.Name()).
			WithField("error", err).
			Error("Error while saving upload outcome")
		out.Reason = strings.TrimPrefix(out.Reason+"; record not saved: "+err.Error(), "; ")
		return out
	}
	u.notify(ctx, userID, item, out)
	return out
}

// failMissingSource marks every unpublished pair failed without touching history.
// Pairs already uploaded/exists keep that stored status; only their outcome says failed.
func (u *PublishUsecase) failMissingSource(ctx context.Context, userID string, item *model.MediaItem, platforms []model.Platform) []PairOutcome {
	outs := make([]PairOutcome, 0, len(platforms))
	for _, p := range platforms {
		outs = append(outs, PairOutcome{MediaID: item.ID, Platform: p, Result: model.ResultFailed, Reason: reasonMissingSource})
	}
	if len(platforms) == 0 {
		return outs
	}
	at := u.now()
	if _, err := u.media.Update(ctx, item.ID, func(it *model.MediaItem) error {
		for _, p := range platforms {
			it.MarkFailed(p, at)
		}
		return nil
	}); err != nil {
		logger.GetLogger().WithField("media_id", item.ID).WithField("error", err).Error("Error while saving missing source status")
	}
	for _, out := range outs {
		u.notify(ctx, userID, item, out)
	}
	return outs
}

func (u *PublishUsecase) notify(ctx context.Context, userID string, item *model.MediaItem, out PairOutcome) {
	if u.notifier == nil {
		return
	}
	owner := item.OwnerID
	if owner == "" {
		owner = userID
	}
	evt := &model.UploadEvent{
		Type:       eventUploadStatus,
		MediaID:    out.MediaID,
		OwnerID:    owner,
		Platform:   out.Platform,
		Result:     out.Result,
		ExternalID: out.ExternalID,
		URL:        out.URL,
		Error:      out.Reason,
		OccurredAt: u.now(),
	}
	if err := u.notifier.Notify(ctx, evt); err != nil {
		logger.GetLogger().WithField("error", err).Warn("upload event not delivered")
	}
}
