package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BacklogSweeper is the board operation run on every tick.
type BacklogSweeper interface {
	SweepBacklog(ctx context.Context) (int, error)
}

// RunBacklogSweeper moves overdue tasks to the backlog every interval until
// ctx ends. Tasks are also classified whenever a board is fetched, so a zero
// interval disables the loop.
func RunBacklogSweeper(ctx context.Context, boards BacklogSweeper, interval time.Duration, logger *zap.Logger) error {
	if boards == nil || interval <= 0 {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("backlog sweeper started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			logger.Info("backlog sweeper stopped")
			return nil
		case <-ticker.C:
			marked, err := boards.SweepBacklog(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn("backlog sweep failed", zap.Int("marked", marked), zap.Error(err))
				continue
			}
			if marked > 0 {
				logger.Info("tasks moved to backlog", zap.Int("marked", marked))
			}
		}
	}
}
