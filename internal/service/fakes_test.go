package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bitbetty/internal/models"
	"bitbetty/internal/queue"
	"bitbetty/internal/repository"
)

var errBoom = errors.New("boom")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// memRepo is an in-memory GuessRepository with switchable failures.
type memRepo struct {
	mu      sync.Mutex
	guesses map[string]*models.Guess
	events  []models.GuessEvent
	seq     uint64

	hasOpenErr    error
	insertErr     error
	getErr        error
	resolveErr    error
	deleteErr     error
	listEventsErr error
	skipPrecheck  bool
}

func newMemRepo() *memRepo {
	return &memRepo{guesses: map[string]*models.Guess{}}
}

var _ repository.GuessRepository = (*memRepo)(nil)

func (r *memRepo) InsertGuess(ctx context.Context, item *models.Guess) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	for _, g := range r.guesses {
		if g.Username == item.Username && !g.Resolved {
			return repository.ErrOpenGuessExists
		}
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	cp := *item
	r.guesses[item.ID] = &cp
	return nil
}

func (r *memRepo) GetGuess(ctx context.Context, id string) (*models.Guess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	g, ok := r.guesses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *memRepo) ResolveGuess(ctx context.Context, id string, points int, price decimal.Decimal, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolveErr != nil {
		return false, r.resolveErr
	}
	g, ok := r.guesses[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if g.Resolved {
		return false, nil
	}
	g.Resolved = true
	g.Points = points
	g.ResolvedPrice = &price
	g.ResolvedAt = &at
	return true, nil
}

func (r *memRepo) DeleteGuess(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.guesses, id)
	return nil
}

func (r *memRepo) ListGuessesByUser(ctx context.Context, params repository.ListGuessesParams) ([]models.Guess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Guess
	for _, g := range r.guesses {
		if g.Username != params.Username {
			continue
		}
		if params.Resolved != nil && g.Resolved != *params.Resolved {
			continue
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GuessedAt.After(out[j].GuessedAt) })
	return out, nil
}

func (r *memRepo) HasUnresolvedGuess(ctx context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasOpenErr != nil {
		return false, r.hasOpenErr
	}
	if r.skipPrecheck {
		return false, nil
	}
	for _, g := range r.guesses {
		if g.Username == username && !g.Resolved {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) SumScore(ctx context.Context, username string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, g := range r.guesses {
		if g.Username == username && g.Resolved {
			total += int64(g.Points)
		}
	}
	return total, nil
}

func (r *memRepo) ListStaleUnresolved(ctx context.Context, guessedBefore time.Time, limit int) ([]models.Guess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Guess
	for _, g := range r.guesses {
		if !g.Resolved && g.GuessedAt.Before(guessedBefore) {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GuessedAt.Before(out[j].GuessedAt) })
	return out, nil
}

func (r *memRepo) InsertGuessEvent(ctx context.Context, item *models.GuessEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	item.ID = r.seq
	r.events = append(r.events, *item)
	return nil
}

func (r *memRepo) ListGuessEvents(ctx context.Context, guessID string) ([]models.GuessEvent, error) {
	if r.listEventsErr != nil {
		return nil, r.listEventsErr
	}
	return r.eventsFor(guessID), nil
}

func (r *memRepo) eventsFor(guessID string) []models.GuessEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.GuessEvent
	for _, e := range r.events {
		if e.GuessID == guessID {
			out = append(out, e)
		}
	}
	return out
}

func (r *memRepo) eventKinds(guessID string) []string {
	events := r.eventsFor(guessID)
	kinds := make([]string, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// flakyQueue wraps a queue and fails selected operations.
type flakyQueue struct {
	queue.Queue
	enqueueErr error
	extendErr  error
	extends    []time.Duration
}

func (q *flakyQueue) Enqueue(ctx context.Context, body string, delay time.Duration) (string, error) {
	if q.enqueueErr != nil {
		return "", q.enqueueErr
	}
	return q.Queue.Enqueue(ctx, body, delay)
}

func (q *flakyQueue) ExtendDelay(ctx context.Context, handle string, delay time.Duration) error {
	q.extends = append(q.extends, delay)
	if q.extendErr != nil {
		return q.extendErr
	}
	return q.Queue.ExtendDelay(ctx, handle, delay)
}

type stubOracle struct {
	mu    sync.Mutex
	price decimal.Decimal
	ok    bool
	calls int
}

func (o *stubOracle) CurrentPrice(ctx context.Context) (decimal.Decimal, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	return o.price, o.ok
}

func (o *stubOracle) set(price string, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.price = decimal.RequireFromString(price)
	o.ok = ok
}

func newTestQueue(clock *fakeClock) *flakyQueue {
	mq := queue.NewMemoryQueue()
	mq.Now = clock.Now
	return &flakyQueue{Queue: mq}
}

func directionPtr(v int) *GuessDirection {
	d := GuessDirection(v)
	return &d
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func timePtr(t time.Time) *time.Time { return &t }
