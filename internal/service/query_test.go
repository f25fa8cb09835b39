package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bitbetty/internal/repository"
)

func TestScoreUnknownUserIsZero(t *testing.T) {
	svc := &QueryService{Repo: newMemRepo()}
	score, err := svc.Score(context.Background(), "nobody")
	require.NoError(t, err)
	require.Zero(t, score)
}

func TestScoreRequiresUsername(t *testing.T) {
	svc := &QueryService{Repo: newMemRepo()}
	_, err := svc.Score(context.Background(), " ")
	require.ErrorIs(t, err, ErrValidation)
}

func TestGuessNotFound(t *testing.T) {
	svc := &QueryService{Repo: newMemRepo()}
	_, err := svc.Guess(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGuessStoreError(t *testing.T) {
	repo := newMemRepo()
	repo.getErr = errBoom
	svc := &QueryService{Repo: repo}
	_, err := svc.Guess(context.Background(), "x")
	require.ErrorIs(t, err, ErrStore)
}

func TestUserGuessesFiltersResolved(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture()
	first := f.submitGuess(t, "alice", 1, "60000")
	f.clock.Advance(60 * time.Second)
	f.oracle.set("60001", true)
	require.Equal(t, OutcomeResolved, f.worker.Handle(ctx, f.receiveOne(t)))
	second := f.submitGuess(t, "alice", -1, "60001")

	all, err := f.query.UserGuesses(ctx, repository.ListGuessesParams{Username: "alice"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, second.ID, all[0].ID)

	resolved := true
	done, err := f.query.UserGuesses(ctx, repository.ListGuessesParams{Username: "alice", Resolved: &resolved})
	require.NoError(t, err)
	require.Len(t, done, 1)
	require.Equal(t, first.ID, done[0].ID)

	events, err := f.query.Events(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)

	none, err := f.query.Events(ctx, "missing")
	require.NoError(t, err)
	require.Empty(t, none)
}
