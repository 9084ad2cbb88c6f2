package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/orrn/printq/internal/metrics"
)

// CompletionSweeper runs CompleteDue on a ticker so printers free up even
// when nobody is polling the job list.
type CompletionSweeper struct {
	engine   *JobEngine
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewCompletionSweeper(engine *JobEngine, interval time.Duration, logger *zap.Logger, m *metrics.Metrics) *CompletionSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CompletionSweeper{
		engine:   engine,
		interval: interval,
		timeout:  30 * time.Second,
		logger:   logger.Named("sweeper"),
		metrics:  m,
	}
}

func (s *CompletionSweeper) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("completion sweeper started", zap.Duration("interval", s.interval))
	for {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Warn("completion sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			s.logger.Info("completion sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

func (s *CompletionSweeper) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	completed, err := s.engine.CompleteDue(ctx)
	s.metrics.SweepRun(err)
	if completed > 0 {
		s.logger.Info("completed due jobs", zap.Int("count", completed))
	}
	return completed, err
}
