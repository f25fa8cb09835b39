// Package queue provides an at-least-once delayed-delivery queue.
//
// A received message stays in flight until it is completed. While in flight
// it is hidden for the visibility timeout passed to Receive; ExtendDelay moves
// that point to now+delay without acknowledging, which is how consumers poll
// for a condition without a separate timer service. A message whose handle is
// neither extended nor completed reappears after the timeout.
package queue

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidHandle is returned for unknown handles and for handles
	// superseded by a later receive of the same message.
	ErrInvalidHandle = errors.New("queue: invalid or stale delivery handle")
)

type Delivery struct {
	MessageID    string
	Body         string
	Handle       string
	ReceiveCount int
}

type Queue interface {
	Enqueue(ctx context.Context, body string, delay time.Duration) (string, error)
	Receive(ctx context.Context, max int, visibility time.Duration) ([]Delivery, error)
	ExtendDelay(ctx context.Context, handle string, delay time.Duration) error
	Complete(ctx context.Context, handle string) error
	Depth(ctx context.Context) (int64, error)
}

func clampDelay(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
