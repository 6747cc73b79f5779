package bootstrap

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reaper closes timer sessions that were never stopped.
type Reaper interface {
	ReapStale(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

func NewScheduler(log *zap.Logger) *Scheduler {
	return &Scheduler{cron: cron.New(), log: log}
}

// AddReaper registers the stale timer job on the given schedule, e.g. "@every 15m".
func (s *Scheduler) AddReaper(spec string, reaper Reaper, timeout time.Duration) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		n, err := reaper.ReapStale(ctx)
		if err != nil {
			s.log.Error("timer reaper failed", zap.Int("closed", n), zap.Error(err))
			return
		}
		if n > 0 {
			s.log.Info("timer reaper closed abandoned sessions", zap.Int("closed", n))
		}
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("cron scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
