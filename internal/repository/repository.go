package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"bitbetty/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrOpenGuessExists is returned by InsertGuess when the user already holds
	// an unresolved guess.
	ErrOpenGuessExists = errors.New("user already has an unresolved guess")
)

// GuessRepository is the persistence boundary of the guess workflow.
type GuessRepository interface {
	InsertGuess(ctx context.Context, item *models.Guess) error
	GetGuess(ctx context.Context, id string) (*models.Guess, error)
	// ResolveGuess sets resolved, points and the observed price in one
	// conditional write. It reports false when the guess was already resolved.
	ResolveGuess(ctx context.Context, id string, points int, price decimal.Decimal, at time.Time) (bool, error)
	DeleteGuess(ctx context.Context, id string) error
	ListGuessesByUser(ctx context.Context, params ListGuessesParams) ([]models.Guess, error)
	HasUnresolvedGuess(ctx context.Context, username string) (bool, error)
	SumScore(ctx context.Context, username string) (int64, error)
	ListStaleUnresolved(ctx context.Context, guessedBefore time.Time, limit int) ([]models.Guess, error)

	InsertGuessEvent(ctx context.Context, item *models.GuessEvent) error
	ListGuessEvents(ctx context.Context, guessID string) ([]models.GuessEvent, error)
}

type ListGuessesParams struct {
	Username string
	Resolved *bool
	Limit    int
	Offset   int
}
