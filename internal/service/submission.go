package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bitbetty/internal/logger"
	"bitbetty/internal/metrics"
	"bitbetty/internal/models"
	"bitbetty/internal/queue"
	"bitbetty/internal/repository"
)

const defaultResolutionWait = 60 * time.Second

// SubmitGuessInput is the submission payload. Pointer fields distinguish a
// missing value from a zero value.
type SubmitGuessInput struct {
	Username      string           `json:"username" validate:"required,max=128"`
	Guess         *GuessDirection  `json:"guess" validate:"required,oneof=-1 1"`
	BaselinePrice *decimal.Decimal `json:"baseline_price" validate:"required"`
	GuessedAt     *time.Time       `json:"guessed_at" validate:"required"`
}

// GuessDirection is the submitted direction. Clients send it either as a
// JSON number or as a numeric string ("1", "-1"). Numeric values other than
// -1 and 1 decode to 0 and fail validation.
type GuessDirection int

func (d *GuessDirection) UnmarshalJSON(raw []byte) error {
	text := strings.TrimSpace(string(raw))
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}
	v, err := decimal.NewFromString(text)
	if err != nil {
		return fmt.Errorf("guess: invalid direction %s", raw)
	}
	switch {
	case v.Equal(decimal.NewFromInt(1)):
		*d = 1
	case v.Equal(decimal.NewFromInt(-1)):
		*d = -1
	default:
		*d = 0
	}
	return nil
}

// SubmissionService accepts guesses. A guess becomes visible only once it is
// both stored and scheduled for resolution.
type SubmissionService struct {
	Repo   repository.GuessRepository
	Queue  queue.Queue
	Logger *zap.Logger
	// Wait is the initial delivery delay; it equals the resolution wait.
	Wait time.Duration
}

var (
	validate = newValidator()
	// Usernames are rendered by clients, so anything a strict HTML policy
	// would rewrite is rejected.
	usernamePolicy = bluemonday.StrictPolicy()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func (s *SubmissionService) Submit(ctx context.Context, in SubmitGuessInput) (*models.Guess, error) {
	log := logger.OrNop(s.Logger)
	if err := validateSubmission(&in); err != nil {
		metrics.GuessSubmissions.WithLabelValues("invalid").Inc()
		return nil, err
	}
	username := strings.TrimSpace(in.Username)

	open, err := s.Repo.HasUnresolvedGuess(ctx, username)
	if err != nil {
		log.Error("open guess lookup failed", zap.String("username", username), zap.String("op", "has_unresolved"), zap.Error(err))
		metrics.GuessSubmissions.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if open {
		metrics.GuessSubmissions.WithLabelValues("conflict").Inc()
		return nil, fmt.Errorf("%w: user %s already has an unresolved guess", ErrConflict, username)
	}

	item := &models.Guess{
		Username:      username,
		Direction:     models.Direction(*in.Guess),
		BaselinePrice: *in.BaselinePrice,
		GuessedAt:     in.GuessedAt.UTC(),
	}
	if err := s.Repo.InsertGuess(ctx, item); err != nil {
		if errors.Is(err, repository.ErrOpenGuessExists) {
			metrics.GuessSubmissions.WithLabelValues("conflict").Inc()
			return nil, fmt.Errorf("%w: user %s already has an unresolved guess", ErrConflict, username)
		}
		log.Error("guess insert failed", zap.String("username", username), zap.String("op", "insert"), zap.Error(err))
		metrics.GuessSubmissions.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	if _, err := s.Queue.Enqueue(ctx, item.ID, s.wait()); err != nil {
		log.Error("guess enqueue failed",
			zap.String("guess_id", item.ID),
			zap.String("username", username),
			zap.String("op", "enqueue"),
			zap.Error(err),
		)
		s.rollback(ctx, log, item)
		metrics.GuessSubmissions.WithLabelValues("queue_error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrQueue, err)
	}

	recordEvent(ctx, s.Repo, log, item.ID, models.GuessEventSubmitted, map[string]any{
		"username":       username,
		"guess":          int(item.Direction),
		"baseline_price": item.BaselinePrice.String(),
		"delay_seconds":  int(s.wait() / time.Second),
	})
	metrics.GuessSubmissions.WithLabelValues("accepted").Inc()
	log.Info("guess submitted",
		zap.String("guess_id", item.ID),
		zap.String("username", username),
		zap.String("direction", item.Direction.String()),
		zap.String("baseline_price", item.BaselinePrice.String()),
	)
	return item, nil
}

// rollback removes a guess whose enqueue failed. A failed delete leaves an
// unresolved guess with no message; the sweeper schedules it later.
func (s *SubmissionService) rollback(ctx context.Context, log *zap.Logger, item *models.Guess) {
	ctx = context.WithoutCancel(ctx)
	if err := s.Repo.DeleteGuess(ctx, item.ID); err != nil {
		log.Error("guess rollback failed",
			zap.String("guess_id", item.ID),
			zap.String("username", item.Username),
			zap.String("op", "delete"),
			zap.Error(err),
		)
		return
	}
	recordEvent(ctx, s.Repo, log, item.ID, models.GuessEventRolledBack, map[string]any{
		"username": item.Username,
	})
}

func (s *SubmissionService) wait() time.Duration {
	if s.Wait <= 0 {
		return defaultResolutionWait
	}
	return s.Wait
}

func validateSubmission(in *SubmitGuessInput) error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			if fe.Tag() == "required" {
				return fmt.Errorf("%w: missing required field: %s", ErrValidation, fe.Field())
			}
			return fmt.Errorf("%w: invalid field: %s", ErrValidation, fe.Field())
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return fmt.Errorf("%w: missing required field: username", ErrValidation)
	}
	if usernamePolicy.Sanitize(username) != username {
		return fmt.Errorf("%w: invalid field: username", ErrValidation)
	}
	if !in.BaselinePrice.IsPositive() {
		return fmt.Errorf("%w: invalid field: baseline_price", ErrValidation)
	}
	if in.GuessedAt.IsZero() {
		return fmt.Errorf("%w: invalid field: guessed_at", ErrValidation)
	}
	return nil
}
