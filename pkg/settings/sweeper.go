package settings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/owlpost/notifykit/pkg/logger"
)

// DefaultSweepSchedule runs the cleanup at the top of every hour.
const DefaultSweepSchedule = "0 * * * *"

// Sweeper periodically deletes expired ignore rules. Expiry is already
// enforced logically by IgnoreRule.Expired; the sweeper only reclaims
// storage.
type Sweeper struct {
	storage  IgnoreRuleStorage
	cron     *cron.Cron
	schedule string
	logger   *slog.Logger
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithSchedule sets the cron schedule, standard five-field syntax.
func WithSchedule(schedule string) SweeperOption {
	return func(s *Sweeper) {
		if schedule != "" {
			s.schedule = schedule
		}
	}
}

// WithSweeperLogger sets the logger for sweep results.
func WithSweeperLogger(logger *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSweeper creates a sweeper over the given rule storage.
func NewSweeper(storage IgnoreRuleStorage, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		storage:  storage,
		cron:     cron.New(),
		schedule: DefaultSweepSchedule,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start schedules the sweep and starts the cron runner in the background.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.RunOnce(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	return nil
}

// Stop stops scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce performs a single sweep. Exposed for tests and manual cleanup.
func (s *Sweeper) RunOnce(ctx context.Context) {
	removed, err := s.storage.DeleteExpired(ctx, time.Now())
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "Ignore rule sweep failed",
			logger.Error(err),
		)
		return
	}
	if removed > 0 {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "Removed expired ignore rules",
			slog.Int("count", removed),
		)
	}
}
