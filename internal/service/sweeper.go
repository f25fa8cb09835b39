package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bitbetty/internal/logger"
	"bitbetty/internal/metrics"
	"bitbetty/internal/models"
	"bitbetty/internal/queue"
	"bitbetty/internal/repository"
)

// Sweeper re-enqueues unresolved guesses that look orphaned: guessed longer
// than StaleAfter ago and with no journal activity within StaleAfter. This
// recovers guesses whose rollback failed and deliveries abandoned on store
// errors. Resolution is idempotent, so a duplicate message is harmless.
type Sweeper struct {
	Repo       repository.GuessRepository
	Queue      queue.Queue
	Logger     *zap.Logger
	StaleAfter time.Duration
	BatchSize  int
	Now        func() time.Time
}

func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	if s == nil || s.Repo == nil || s.Queue == nil {
		return 0, nil
	}
	log := logger.OrNop(s.Logger)
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	staleAfter := s.StaleAfter
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	cutoff := now.Add(-staleAfter)

	items, err := s.Repo.ListStaleUnresolved(ctx, cutoff, s.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStore, err)
	}
	swept := 0
	for _, item := range items {
		if ctx.Err() != nil {
			return swept, ctx.Err()
		}
		if s.recentlyActive(ctx, item.ID, cutoff) {
			continue
		}
		if _, err := s.Queue.Enqueue(ctx, item.ID, 0); err != nil {
			log.Warn("sweeper enqueue failed", zap.String("guess_id", item.ID), zap.String("username", item.Username), zap.String("op", "enqueue"), zap.Error(err))
			return swept, fmt.Errorf("%w: %v", ErrQueue, err)
		}
		swept++
		metrics.SweptGuesses.Inc()
		recordEvent(ctx, s.Repo, log, item.ID, models.GuessEventSwept, map[string]any{
			"guessed_at": item.GuessedAt.UTC().Format(time.RFC3339),
		})
	}
	if swept > 0 {
		log.Info("stale guesses re-enqueued", zap.Int("count", swept))
	}
	return swept, nil
}

// recentlyActive reports whether the guess has journal rows after cutoff,
// which means a delivery for it is still cycling through the queue.
func (s *Sweeper) recentlyActive(ctx context.Context, guessID string, cutoff time.Time) bool {
	events, err := s.Repo.ListGuessEvents(ctx, guessID)
	if err != nil {
		logger.OrNop(s.Logger).Warn("sweeper journal lookup failed",
			zap.String("guess_id", guessID),
			zap.String("op", "list_events"),
			zap.Error(err),
		)
		return false
	}
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].CreatedAt.After(cutoff) {
			return true
		}
	}
	return false
}
