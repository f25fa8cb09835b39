package queue

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memMessage struct {
	id        string
	body      string
	visibleAt time.Time
	receipt   string
	received  int
	seq       uint64
}

// MemoryQueue is a single-process Queue for tests and local runs.
type MemoryQueue struct {
	mu       sync.Mutex
	items    map[string]*memMessage
	receipts map[string]string
	seq      uint64

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		items:    map[string]*memMessage{},
		receipts: map[string]string{},
	}
}

func (q *MemoryQueue) now() time.Time {
	if q.Now != nil {
		return q.Now()
	}
	return time.Now()
}

func (q *MemoryQueue) Enqueue(ctx context.Context, body string, delay time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	q.items[id] = &memMessage{
		id:        id,
		body:      body,
		visibleAt: q.now().Add(clampDelay(delay)),
		seq:       q.seq,
	}
	return id, nil
}

func (q *MemoryQueue) Receive(ctx context.Context, max int, visibility time.Duration) ([]Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if max <= 0 {
		max = 1
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	ready := make([]*memMessage, 0, len(q.items))
	for _, m := range q.items {
		if !m.visibleAt.After(now) {
			ready = append(ready, m)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		if ready[i].visibleAt.Equal(ready[j].visibleAt) {
			return ready[i].seq < ready[j].seq
		}
		return ready[i].visibleAt.Before(ready[j].visibleAt)
	})
	if len(ready) > max {
		ready = ready[:max]
	}

	out := make([]Delivery, 0, len(ready))
	for _, m := range ready {
		if m.receipt != "" {
			delete(q.receipts, m.receipt)
		}
		m.receipt = uuid.NewString()
		m.received++
		m.visibleAt = now.Add(clampDelay(visibility))
		q.receipts[m.receipt] = m.id
		out = append(out, Delivery{
			MessageID:    m.id,
			Body:         m.body,
			Handle:       m.receipt,
			ReceiveCount: m.received,
		})
	}
	return out, nil
}

func (q *MemoryQueue) ExtendDelay(ctx context.Context, handle string, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	m, err := q.lookup(handle)
	if err != nil {
		return err
	}
	m.visibleAt = q.now().Add(clampDelay(delay))
	return nil
}

func (q *MemoryQueue) Complete(ctx context.Context, handle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	m, err := q.lookup(handle)
	if err != nil {
		return err
	}
	delete(q.receipts, handle)
	delete(q.items, m.id)
	return nil
}

func (q *MemoryQueue) Depth(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.items)), nil
}

func (q *MemoryQueue) lookup(handle string) (*memMessage, error) {
	id, ok := q.receipts[handle]
	if !ok {
		return nil, ErrInvalidHandle
	}
	m, ok := q.items[id]
	if !ok || m.receipt != handle {
		return nil, ErrInvalidHandle
	}
	return m, nil
}
