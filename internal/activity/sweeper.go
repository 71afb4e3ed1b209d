package activity

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/miniapp-template/dashboard/pkg/logger"
)

// Sweeper runs the response-cache sweep on a schedule. It is an optional
// supplement to the piggy-backed sweep on writes: reads re-validate TTL
// regardless, so a read never returns a stale-but-unevicted entry.
type Sweeper struct {
	cache    *ResponseCache
	cron     *cron.Cron
	schedule string
	log      *zap.Logger
}

// NewSweeper constructs a Sweeper for the given cache and cron spec
// (for example "@every 5m").
func NewSweeper(cache *ResponseCache, schedule string) *Sweeper {
	return &Sweeper{
		cache:    cache,
		cron:     cron.New(),
		schedule: schedule,
		log:      logger.WithModule("activity.sweeper"),
	}
}

// Start registers and launches the scheduled sweep.
func (s *Sweeper) Start() error {
	if s.cache == nil || s.schedule == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.cache.Sweep()
		s.log.Debug("swept activity cache")
	}); err != nil {
		return fmt.Errorf("schedule cache sweep: %w", err)
	}

	s.cron.Start()
	s.log.Info("scheduled cache sweep started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the scheduled sweep, waiting for a running job to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}
