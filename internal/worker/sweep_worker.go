package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nuvix-market/nuvix-suite/internal/service"
)

var _ service.Serializer = (*Queue)(nil)

// Sweeper runs one inactivity pass.
type Sweeper interface {
	Sweep(ctx context.Context) (service.SweepReport, error)
}

// RunSweepWorker runs sweeper every interval until ctx ends. The first pass
// runs one interval after start. Sweeps run on this goroutine; the sweeper
// submits its own mutations to the queue.
func RunSweepWorker(ctx context.Context, interval time.Duration, sweeper Sweeper, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_, err := sweeper.Sweep(ctx)
			switch {
			case err == nil:
			case errors.Is(err, ErrQueueClosed), errors.Is(err, context.Canceled):
				return nil
			default:
				logger.Warn("inactivity sweep failed", zap.Error(err))
			}
		}
	}
}
