package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bitbetty/internal/logger"
	"bitbetty/internal/metrics"
	"bitbetty/internal/models"
	"bitbetty/internal/oracle"
	"bitbetty/internal/queue"
	"bitbetty/internal/repository"
)

const defaultFloorInterval = 5 * time.Second

// Outcome is how a single delivery ended. Every outcome except OutcomeRequeued
// means the message is done and may be completed.
type Outcome string

const (
	OutcomeResolved  Outcome = "resolved"
	OutcomeRequeued  Outcome = "requeued"
	OutcomeNoop      Outcome = "noop"
	OutcomeAbandoned Outcome = "abandoned"
)

func (o Outcome) Done() bool {
	return o != OutcomeRequeued
}

// ResolutionWorker evaluates one delivered guess id at a time. It resolves the
// guess once the wait has elapsed and the price has moved, and otherwise
// pushes the delivery back with ExtendDelay. It keeps no state between
// deliveries; duplicates and early deliveries are harmless.
type ResolutionWorker struct {
	Repo   repository.GuessRepository
	Queue  queue.Queue
	Oracle oracle.PriceOracle
	Logger *zap.Logger
	Wait   time.Duration
	Floor  time.Duration
	Now    func() time.Time
}

// HandleBatch handles deliveries in order and returns one outcome per delivery.
func (w *ResolutionWorker) HandleBatch(ctx context.Context, deliveries []queue.Delivery) []Outcome {
	out := make([]Outcome, 0, len(deliveries))
	for _, d := range deliveries {
		out = append(out, w.Handle(ctx, d))
	}
	return out
}

func (w *ResolutionWorker) Handle(ctx context.Context, d queue.Delivery) Outcome {
	outcome := w.handle(ctx, d)
	metrics.Deliveries.WithLabelValues(string(outcome)).Inc()
	return outcome
}

func (w *ResolutionWorker) handle(ctx context.Context, d queue.Delivery) Outcome {
	log := logger.OrNop(w.Logger)
	id := strings.TrimSpace(d.Body)

	item, err := w.Repo.GetGuess(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		log.Error("guess not found for delivery",
			zap.String("guess_id", id),
			zap.String("message_id", d.MessageID),
			zap.String("op", "get"),
		)
		recordEvent(ctx, w.Repo, log, id, models.GuessEventAbandoned, map[string]any{"reason": "not_found"})
		return OutcomeAbandoned
	}
	if err != nil {
		log.Error("guess load failed",
			zap.String("guess_id", id),
			zap.String("message_id", d.MessageID),
			zap.String("op", "get"),
			zap.Error(err),
		)
		recordEvent(ctx, w.Repo, log, id, models.GuessEventAbandoned, map[string]any{"reason": "store_error"})
		return OutcomeAbandoned
	}
	if item.Resolved {
		return OutcomeNoop
	}

	now := w.now()
	left := timeLeft(item.GuessedAt, now, w.wait())

	price, ok := w.Oracle.CurrentPrice(ctx)
	if !ok {
		metrics.OracleFailures.Inc()
		log.Warn("price unavailable, retrying later", zap.String("guess_id", item.ID), zap.String("username", item.Username))
		return w.requeue(ctx, log, d, item, redelay(left, w.floor()), "oracle_unavailable")
	}
	points, resolve := settle(*item, left, price)
	if !resolve {
		reason := "waiting"
		if left <= 0 {
			reason = "price_unchanged"
		}
		return w.requeue(ctx, log, d, item, redelay(left, w.floor()), reason)
	}

	applied, err := w.Repo.ResolveGuess(ctx, item.ID, points, price, now)
	if errors.Is(err, repository.ErrNotFound) {
		log.Error("guess vanished before resolution", zap.String("guess_id", item.ID), zap.String("username", item.Username), zap.String("op", "resolve"))
		recordEvent(ctx, w.Repo, log, item.ID, models.GuessEventAbandoned, map[string]any{"reason": "not_found"})
		return OutcomeAbandoned
	}
	if err != nil {
		log.Error("guess resolution write failed",
			zap.String("guess_id", item.ID),
			zap.String("username", item.Username),
			zap.String("op", "resolve"),
			zap.Error(err),
		)
		recordEvent(ctx, w.Repo, log, item.ID, models.GuessEventAbandoned, map[string]any{"reason": "store_error"})
		return OutcomeAbandoned
	}
	if !applied {
		// Another delivery of the same guess won the conditional write.
		return OutcomeNoop
	}

	metrics.ObserveResolution(points)
	recordEvent(ctx, w.Repo, log, item.ID, models.GuessEventResolved, map[string]any{
		"price":  price.String(),
		"points": points,
	})
	log.Info("guess resolved",
		zap.String("guess_id", item.ID),
		zap.String("username", item.Username),
		zap.String("direction", item.Direction.String()),
		zap.String("baseline_price", item.BaselinePrice.String()),
		zap.String("price", price.String()),
		zap.Bool("correct", points > 0),
	)
	return OutcomeResolved
}

// requeue keeps the delivery in flight and makes it visible again after delay.
// If the extension fails the message still reappears after its visibility
// timeout, so the outcome stays requeued either way.
func (w *ResolutionWorker) requeue(ctx context.Context, log *zap.Logger, d queue.Delivery, item *models.Guess, delay time.Duration, reason string) Outcome {
	if err := w.Queue.ExtendDelay(ctx, d.Handle, delay); err != nil {
		log.Warn("delivery redelay failed",
			zap.String("guess_id", item.ID),
			zap.String("username", item.Username),
			zap.String("op", "extend_delay"),
			zap.Error(err),
		)
	}
	recordEvent(ctx, w.Repo, log, item.ID, models.GuessEventRequeued, map[string]any{
		"reason":        reason,
		"delay_seconds": int(delay / time.Second),
	})
	log.Debug("guess requeued",
		zap.String("guess_id", item.ID),
		zap.String("reason", reason),
		zap.Duration("delay", delay),
	)
	return OutcomeRequeued
}

func (w *ResolutionWorker) now() time.Time {
	if w.Now != nil {
		return w.Now().UTC()
	}
	return time.Now().UTC()
}

func (w *ResolutionWorker) wait() time.Duration {
	if w.Wait <= 0 {
		return defaultResolutionWait
	}
	return w.Wait
}

func (w *ResolutionWorker) floor() time.Duration {
	if w.Floor <= 0 {
		return defaultFloorInterval
	}
	return w.Floor
}

func timeLeft(guessedAt, now time.Time, wait time.Duration) time.Duration {
	return wait - now.Sub(guessedAt)
}

// redelay is the remaining wait rounded up to whole seconds, or the floor once
// the wait has elapsed.
func redelay(left, floor time.Duration) time.Duration {
	if left <= 0 {
		return floor
	}
	if rem := left % time.Second; rem != 0 {
		left += time.Second - rem
	}
	return left
}

// settle is the pure resolution rule: resolve once the wait is over and the
// price differs from the baseline.
func settle(item models.Guess, left time.Duration, price decimal.Decimal) (points int, resolve bool) {
	if left > 0 || price.Equal(item.BaselinePrice) {
		return 0, false
	}
	return item.PointsFor(price), true
}
