// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// TokenPurger deletes refresh tokens that expired or were revoked before cutoff.
type TokenPurger interface {
	PurgeRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Logger
}

func NewScheduler(log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{cron: cron.New(), log: log}
}

// AddTokenPurge registers the refresh-token purge under spec, e.g. "@daily".
func (s *Scheduler) AddTokenPurge(spec string, purger TokenPurger) error {
	_, err := s.cron.AddFunc(spec, func() { PurgeTokens(context.Background(), purger, time.Now(), s.log) })
	if err != nil {
		return fmt.Errorf("jobs: schedule token purge %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for running jobs or ctx, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// PurgeTokens runs one purge pass. Failures are logged; the next tick retries.
func PurgeTokens(ctx context.Context, purger TokenPurger, now time.Time, log *logrus.Logger) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	n, err := purger.PurgeRefreshTokens(ctx, now)
	if err != nil {
		log.WithError(err).Error("refresh token purge failed")
		return
	}
	log.WithField("deleted", n).Info("refresh tokens purged")
}
