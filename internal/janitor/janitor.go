package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/perchhq/perch/internal/metrics"
	"github.com/perchhq/perch/internal/repository"
	"github.com/robfig/cron/v3"
)

const DefaultSchedule = "@every 1m"

// Janitor removes expired reauthentication tokens on a cron schedule.
// Expiry is already enforced at consumption time; the janitor keeps the
// table from accumulating rows nobody will ever claim.
type Janitor struct {
	tokens   repository.ReauthTokenRepository
	logger   *slog.Logger
	schedule string
	cron     *cron.Cron
}

func New(tokens repository.ReauthTokenRepository, logger *slog.Logger, schedule string) *Janitor {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Janitor{
		tokens:   tokens,
		logger:   logger.With("component", "janitor"),
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start blocks until ctx is cancelled, running the purge on the schedule.
func (j *Janitor) Start(ctx context.Context) error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		if _, err := j.RunOnce(context.Background()); err != nil {
			j.logger.Error("purge expired reauth tokens", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid janitor schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.logger.Info("janitor started", "schedule", j.schedule)

	<-ctx.Done()
	<-j.cron.Stop().Done()
	j.logger.Info("janitor shut down")
	return nil
}

// RunOnce performs a single purge cycle.
func (j *Janitor) RunOnce(ctx context.Context) (int64, error) {
	purgeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	purged, err := j.tokens.PurgeExpired(purgeCtx, time.Now())
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		metrics.ReauthPurgedTotal.Add(float64(purged))
		j.logger.Info("purged expired reauth tokens", "count", purged)
	}
	return purged, nil
}
