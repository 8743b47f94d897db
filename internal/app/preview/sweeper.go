package preview

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"
	zlog "github.com/rs/zerolog/log"
)

// Retention periodically sweeps expired previews.
type Retention struct {
	sweeper   Sweeper
	retention time.Duration
	now       func() time.Time
	cron      *cron.Cron
}

// NewRetention schedules sweeps of records older than retention on the given cron spec.
func NewRetention(sweeper Sweeper, retention time.Duration, schedule string) (*Retention, error) {
	if retention <= 0 {
		return nil, errors.New("retention must be positive")
	}
	r := &Retention{
		sweeper:   sweeper,
		retention: retention,
		now:       time.Now,
		cron:      cron.New(),
	}
	if _, err := r.cron.AddFunc(schedule, func() { r.RunOnce(context.Background()) }); err != nil {
		return nil, errors.Wrapf(err, "invalid sweep schedule %q", schedule)
	}
	return r, nil
}

// Start starts the schedule in its own goroutine.
func (r *Retention) Start() {
	zlog.Info().Msgf("preview retention started: retention=%s", r.retention)
	r.cron.Start()
}

// Stop stops the schedule and waits for a running sweep to finish.
func (r *Retention) Stop() {
	<-r.cron.Stop().Done()
}

// RunOnce sweeps now and returns the number of records removed.
func (r *Retention) RunOnce(ctx context.Context) int {
	cutoff := r.now().Add(-r.retention)
	n, err := r.sweeper.Sweep(ctx, cutoff)
	if err != nil {
		zlog.Warn().Msgf("preview sweep failed: cutoff=%s removed=%d error=%v", cutoff.Format(time.RFC3339), n, err)
		return n
	}
	if n > 0 {
		zlog.Info().Msgf("preview sweep: cutoff=%s removed=%d", cutoff.Format(time.RFC3339), n)
	}
	return n
}
