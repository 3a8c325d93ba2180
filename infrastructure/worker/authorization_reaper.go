package worker

import (
	"context"
	"time"

	"video-publisher/domain/repository"
	"video-publisher/infrastructure/logger"

	"github.com/robfig/cron/v3"
)

// AuthorizationReaper periodically drops expired pending authorizations.
// Lookups already reject expired entries, so the reaper only reclaims memory.
type AuthorizationReaper struct {
	store    repository.IPendingAuthorization
	schedule string
	cron     *cron.Cron
	now      func() time.Time
}

func NewAuthorizationReaper(store repository.IPendingAuthorization, schedule string) *AuthorizationReaper {
	if schedule == "" {
		schedule = "@every 1m"
	}
	return &AuthorizationReaper{
		store:    store,
		schedule: schedule,
		cron:     cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		now:      time.Now,
	}
}

// Start schedules the sweep and stops it when ctx is done.
func (r *AuthorizationReaper) Start(ctx context.Context) error {
	if _, err := r.cron.AddFunc(r.schedule, func() { r.Sweep(ctx) }); err != nil {
		return err
	}
	r.cron.Start()
	logger.GetLogger().WithField("schedule", r.schedule).Info("Authorization reaper started")
	go func() {
		<-ctx.Done()
		<-r.cron.Stop().Done()
	}()
	return nil
}

// Sweep runs one purge and returns the number of removed entries.
func (r *AuthorizationReaper) Sweep(ctx context.Context) int {
	n, err := r.store.PurgeExpired(ctx, r.now())
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while purging expired authorizations")
		return 0
	}
	if n > 0 {
		logger.GetLogger().WithField("purged", n).Info("Expired authorizations purged")
	}
	return n
}
