package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"bitbetty/internal/logger"
	"bitbetty/internal/queue"
)

// QueueConsumer polls the resolution queue and hands batches to the worker.
// Deliveries whose outcome is final are completed; requeued deliveries are
// left in flight with the delay the worker set.
type QueueConsumer struct {
	Queue        queue.Queue
	Worker       *ResolutionWorker
	Logger       *zap.Logger
	Concurrency  int
	BatchSize    int
	PollInterval time.Duration
	Visibility   time.Duration
}

// Run blocks until ctx is cancelled. Deliveries interrupted by shutdown are
// not completed and reappear after their visibility timeout.
func (c *QueueConsumer) Run(ctx context.Context) error {
	if c == nil || c.Queue == nil || c.Worker == nil {
		return nil
	}
	n := c.Concurrency
	if n <= 0 {
		n = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			c.loop(ctx, slot)
		}(i)
	}
	wg.Wait()
	return ctx.Err()
}

func (c *QueueConsumer) loop(ctx context.Context, slot int) {
	log := logger.OrNop(c.Logger).With(zap.Int("consumer", slot))
	for {
		if ctx.Err() != nil {
			return
		}
		handled, err := c.PollOnce(ctx)
		if err != nil && ctx.Err() == nil {
			log.Warn("queue receive failed", zap.String("op", "receive"), zap.Error(err))
		}
		if handled > 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.pollInterval()):
		}
	}
}

// PollOnce receives one batch, handles it and completes finished deliveries.
// It returns the number of deliveries received.
func (c *QueueConsumer) PollOnce(ctx context.Context) (int, error) {
	deliveries, err := c.Queue.Receive(ctx, c.batchSize(), c.visibility())
	if err != nil {
		return 0, err
	}
	log := logger.OrNop(c.Logger)
	for _, d := range deliveries {
		if ctx.Err() != nil {
			break
		}
		outcome := c.Worker.Handle(ctx, d)
		if !outcome.Done() {
			continue
		}
		if err := c.Queue.Complete(ctx, d.Handle); err != nil {
			log.Warn("delivery completion failed",
				zap.String("guess_id", d.Body),
				zap.String("message_id", d.MessageID),
				zap.String("outcome", string(outcome)),
				zap.String("op", "complete"),
				zap.Error(err),
			)
		}
	}
	return len(deliveries), nil
}

func (c *QueueConsumer) batchSize() int {
	if c.BatchSize <= 0 || c.BatchSize > 100 {
		return 10
	}
	return c.BatchSize
}

func (c *QueueConsumer) pollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return time.Second
	}
	return c.PollInterval
}

func (c *QueueConsumer) visibility() time.Duration {
	if c.Visibility <= 0 {
		return 30 * time.Second
	}
	return c.Visibility
}
