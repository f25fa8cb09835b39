package gormrepository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bitbetty/internal/models"
	"bitbetty/internal/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(&models.Guess{}, &models.GuessEvent{}))
	return New(gdb)
}

func newGuess(username string, dir models.Direction, baseline int64, at time.Time) *models.Guess {
	return &models.Guess{
		Username:      username,
		Direction:     dir,
		BaselinePrice: decimal.NewFromInt(baseline),
		GuessedAt:     at.UTC(),
	}
}

func TestInsertAndGetGuess(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	g := newGuess("alice", models.DirectionUp, 100, now)
	require.NoError(t, s.InsertGuess(ctx, g))
	require.NotEmpty(t, g.ID)

	got, err := s.GetGuess(ctx, g.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, models.DirectionUp, got.Direction)
	require.True(t, got.BaselinePrice.Equal(decimal.NewFromInt(100)))
	require.False(t, got.Resolved)
	require.Equal(t, 0, got.Points)
	require.True(t, got.GuessedAt.Equal(now))
}

func TestGetGuessMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetGuess(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInsertGuessRejectsSecondOpenGuess(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, s.InsertGuess(ctx, newGuess("alice", models.DirectionUp, 100, now)))
	err := s.InsertGuess(ctx, newGuess("alice", models.DirectionDown, 101, now))
	require.ErrorIs(t, err, repository.ErrOpenGuessExists)

	items, err := s.ListGuessesByUser(ctx, repository.ListGuessesParams{Username: "alice"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	// Other users are unaffected.
	require.NoError(t, s.InsertGuess(ctx, newGuess("bob", models.DirectionUp, 100, now)))
}

func TestResolveGuessIsConditional(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	g := newGuess("alice", models.DirectionUp, 100, now)
	require.NoError(t, s.InsertGuess(ctx, g))

	ok, err := s.ResolveGuess(ctx, g.ID, 1, decimal.NewFromInt(105), now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.ResolveGuess(ctx, g.ID, -1, decimal.NewFromInt(90), now)
	require.NoError(t, err)
	require.False(t, ok)

	got, err := s.GetGuess(ctx, g.ID)
	require.NoError(t, err)
	require.True(t, got.Resolved)
	require.Equal(t, 1, got.Points)
	require.NotNil(t, got.ResolvedPrice)
	require.True(t, got.ResolvedPrice.Equal(decimal.NewFromInt(105)))
	require.Nil(t, got.OpenUsername)

	_, err = s.ResolveGuess(ctx, "missing", 1, decimal.NewFromInt(1), now)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestResolvedGuessFreesUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	g := newGuess("alice", models.DirectionUp, 100, now)
	require.NoError(t, s.InsertGuess(ctx, g))
	open, err := s.HasUnresolvedGuess(ctx, "alice")
	require.NoError(t, err)
	require.True(t, open)

	_, err = s.ResolveGuess(ctx, g.ID, 1, decimal.NewFromInt(105), now)
	require.NoError(t, err)

	open, err = s.HasUnresolvedGuess(ctx, "alice")
	require.NoError(t, err)
	require.False(t, open)
	require.NoError(t, s.InsertGuess(ctx, newGuess("alice", models.DirectionDown, 105, now)))
}

func TestDeleteGuess(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g := newGuess("alice", models.DirectionUp, 100, time.Now())
	require.NoError(t, s.InsertGuess(ctx, g))
	require.NoError(t, s.DeleteGuess(ctx, g.ID))

	_, err := s.GetGuess(ctx, g.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
	open, err := s.HasUnresolvedGuess(ctx, "alice")
	require.NoError(t, err)
	require.False(t, open)
}

func TestSumScoreCountsResolvedOnly(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	score, err := s.SumScore(ctx, "alice")
	require.NoError(t, err)
	require.Zero(t, score)

	points := []int{1, 1, -1}
	for i, p := range points {
		g := newGuess("alice", models.DirectionUp, 100, now.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.InsertGuess(ctx, g))
		_, err := s.ResolveGuess(ctx, g.ID, p, decimal.NewFromInt(101), now)
		require.NoError(t, err)
	}
	// Open guess must not count even though it carries a points value.
	require.NoError(t, s.InsertGuess(ctx, &models.Guess{
		Username:      "alice",
		Direction:     models.DirectionUp,
		BaselinePrice: decimal.NewFromInt(100),
		GuessedAt:     now,
		Points:        5,
	}))

	score, err = s.SumScore(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(1), score)

	resolved := true
	items, err := s.ListGuessesByUser(ctx, repository.ListGuessesParams{Username: "alice", Resolved: &resolved})
	require.NoError(t, err)
	require.Len(t, items, 3)

	unresolved := false
	items, err = s.ListGuessesByUser(ctx, repository.ListGuessesParams{Username: "alice", Resolved: &unresolved})
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestListStaleUnresolved(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	old := newGuess("alice", models.DirectionUp, 100, now.Add(-time.Hour))
	fresh := newGuess("bob", models.DirectionUp, 100, now)
	require.NoError(t, s.InsertGuess(ctx, old))
	require.NoError(t, s.InsertGuess(ctx, fresh))

	items, err := s.ListStaleUnresolved(ctx, now.Add(-10*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, old.ID, items[0].ID)
}

func TestGuessEventsSurviveRollback(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g := newGuess("alice", models.DirectionUp, 100, time.Now())
	require.NoError(t, s.InsertGuess(ctx, g))
	require.NoError(t, s.InsertGuessEvent(ctx, &models.GuessEvent{GuessID: g.ID, Kind: models.GuessEventSubmitted}))
	require.NoError(t, s.DeleteGuess(ctx, g.ID))
	require.NoError(t, s.InsertGuessEvent(ctx, &models.GuessEvent{
		GuessID: g.ID,
		Kind:    models.GuessEventRolledBack,
		Payload: []byte(`{"reason":"queue down"}`),
	}))

	events, err := s.ListGuessEvents(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, models.GuessEventSubmitted, events[0].Kind)
	require.Equal(t, models.GuessEventRolledBack, events[1].Kind)
}
