package cronrunner

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"bitbetty/internal/metrics"
	"bitbetty/internal/queue"
)

func TestAddRejectsBadSpec(t *testing.T) {
	r := New(nil, context.Background())
	if _, err := r.Add("bad", "not a schedule", func(context.Context) error { return nil }); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
}

func TestAddEmptySpecDisablesJob(t *testing.T) {
	r := New(nil, context.Background())
	id, err := r.Add("off", "", func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if id != 0 || len(r.cron.Entries()) != 0 {
		t.Fatalf("job should not be scheduled")
	}
}

func TestRunnerRunsJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := New(nil, ctx)
	ran := make(chan struct{}, 1)
	if _, err := r.Add("tick", "@every 1s", func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	r.Start()
	defer r.Stop()
	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatalf("job did not run")
	}
}

func TestQueueDepthJob(t *testing.T) {
	q := queue.NewMemoryQueue()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := q.Enqueue(ctx, "g", time.Minute); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	if err := QueueDepthJob(q)(ctx); err != nil {
		t.Fatalf("job: %v", err)
	}
	if got := testutil.ToFloat64(metrics.QueueDepth); got != 3 {
		t.Fatalf("depth gauge=%v want 3", got)
	}
}
