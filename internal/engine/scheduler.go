package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/flyer-price-tracker/internal/store"
)

const (
	refreshJobName = "refresh"

	// staleRunAge is how long a run may stay 'running' before startup
	// recovery marks it failed.
	staleRunAge = 2 * time.Hour
)

// Scheduler runs catalog refreshes on an interval. When several instances
// share a database, only the lock holder refreshes from Flipp; the others
// reload the persisted snapshot.
type Scheduler struct {
	cron     *cron.Cron
	engine   *Engine
	store    store.Store
	log      *slog.Logger
	holder   string
	lockTTL  time.Duration
	interval time.Duration
}

// NewScheduler creates a new Scheduler that refreshes eng every interval.
func NewScheduler(
	eng *Engine,
	s store.Store,
	interval time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	sched := &Scheduler{
		cron:     c,
		engine:   eng,
		store:    s,
		log:      log,
		holder:   lockHolder(),
		lockTTL:  interval,
		interval: interval,
	}

	if _, err := c.AddFunc("@every "+interval.String(), sched.runScheduled); err != nil {
		return nil, fmt.Errorf("scheduling refresh every %s: %w", interval, err)
	}

	return sched, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started", "refresh_interval", s.interval)
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// RecoverStaleRefreshRuns marks runs left 'running' by a crashed process as failed.
func (s *Scheduler) RecoverStaleRefreshRuns(ctx context.Context) {
	n, err := s.store.RecoverStaleRefreshRuns(ctx, staleRunAge)
	if err != nil {
		s.log.Error("recovering stale refresh runs failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Warn("marked stale refresh runs as failed", "count", n)
	}
}

// RunNow refreshes immediately under the scheduler lock.
func (s *Scheduler) RunNow(ctx context.Context, trigger string) error {
	return s.runJob(ctx, trigger)
}

func (s *Scheduler) runScheduled() {
	if err := s.runJob(context.Background(), TriggerScheduled); err != nil {
		s.log.Error("scheduled refresh failed", "error", err)
	}
}

func (s *Scheduler) runJob(ctx context.Context, trigger string) error {
	acquired, err := s.store.AcquireSchedulerLock(ctx, refreshJobName, s.holder, s.lockTTL)
	if err != nil {
		return fmt.Errorf("acquiring refresh lock: %w", err)
	}
	if !acquired {
		s.log.Info("refresh lock held elsewhere, reloading persisted catalog")
		_, err := s.engine.Load(ctx)
		return err
	}
	defer func() {
		if err := s.store.ReleaseSchedulerLock(context.WithoutCancel(ctx), refreshJobName, s.holder); err != nil {
			s.log.Error("releasing refresh lock failed", "error", err)
		}
	}()

	_, err = s.engine.Refresh(ctx, trigger)
	if errors.Is(err, ErrRefreshInProgress) {
		s.log.Info("refresh skipped, another refresh is running", "trigger", trigger)
		return nil
	}
	return err
}

func lockHolder() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return host + "-" + uuid.NewString()[:8]
}
