package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"bitbetty/internal/logger"
	"bitbetty/internal/models"
	"bitbetty/internal/repository"
)

// QueryService serves the read side: scores, guess history and journals.
type QueryService struct {
	Repo   repository.GuessRepository
	Logger *zap.Logger
}

// Score is the sum of points over the user's resolved guesses; 0 for an
// unknown user.
func (s *QueryService) Score(ctx context.Context, username string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, fmt.Errorf("%w: missing required field: username", ErrValidation)
	}
	total, err := s.Repo.SumScore(ctx, username)
	if err != nil {
		logger.OrNop(s.Logger).Error("score lookup failed", zap.String("username", username), zap.String("op", "sum_score"), zap.Error(err))
		return 0, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return total, nil
}

func (s *QueryService) Guess(ctx context.Context, id string) (*models.Guess, error) {
	item, err := s.Repo.GetGuess(ctx, strings.TrimSpace(id))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: guess %s", ErrNotFound, id)
	}
	if err != nil {
		logger.OrNop(s.Logger).Error("guess lookup failed", zap.String("guess_id", id), zap.String("op", "get"), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return item, nil
}

func (s *QueryService) UserGuesses(ctx context.Context, params repository.ListGuessesParams) ([]models.Guess, error) {
	params.Username = strings.TrimSpace(params.Username)
	if params.Username == "" {
		return nil, fmt.Errorf("%w: missing required field: username", ErrValidation)
	}
	items, err := s.Repo.ListGuessesByUser(ctx, params)
	if err != nil {
		logger.OrNop(s.Logger).Error("guess history lookup failed", zap.String("username", params.Username), zap.String("op", "list"), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if items == nil {
		items = []models.Guess{}
	}
	return items, nil
}

// Events returns the journal of a guess. Journals of rolled back guesses stay
// readable, so an empty list is not an error.
func (s *QueryService) Events(ctx context.Context, guessID string) ([]models.GuessEvent, error) {
	items, err := s.Repo.ListGuessEvents(ctx, strings.TrimSpace(guessID))
	if err != nil {
		logger.OrNop(s.Logger).Error("guess journal lookup failed", zap.String("guess_id", guessID), zap.String("op", "list_events"), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if items == nil {
		items = []models.GuessEvent{}
	}
	return items, nil
}
