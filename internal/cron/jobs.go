package cronrunner

import (
	"context"

	"bitbetty/internal/metrics"
	"bitbetty/internal/queue"
	"bitbetty/internal/service"
)

// SweepJob re-enqueues orphaned unresolved guesses.
func SweepJob(s *service.Sweeper) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := s.Sweep(ctx)
		return err
	}
}

// QueueDepthJob publishes the queue size to the depth gauge.
func QueueDepthJob(q queue.Queue) func(context.Context) error {
	return func(ctx context.Context) error {
		depth, err := q.Depth(ctx)
		if err != nil {
			return err
		}
		metrics.QueueDepth.Set(float64(depth))
		return nil
	}
}
