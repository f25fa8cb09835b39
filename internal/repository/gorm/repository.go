package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bitbetty/internal/models"
	"bitbetty/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ repository.GuessRepository = (*Store)(nil)

// --- guesses ------------------------------------------------------------------

func (s *Store) InsertGuess(ctx context.Context, item *models.Guess) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.ID) == "" {
		item.ID = uuid.NewString()
	}
	if !item.Resolved {
		open := item.Username
		item.OpenUsername = &open
	}
	err := s.db.WithContext(ctx).Create(item).Error
	if isDuplicateKey(err) {
		return repository.ErrOpenGuessExists
	}
	return err
}

func (s *Store) GetGuess(ctx context.Context, id string) (*models.Guess, error) {
	if s == nil || s.db == nil {
		return nil, repository.ErrNotFound
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, repository.ErrNotFound
	}
	var item models.Guess
	err := s.db.WithContext(ctx).
		Model(&models.Guess{}).
		Where("id = ?", id).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ResolveGuess(ctx context.Context, id string, points int, price decimal.Decimal, at time.Time) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.Guess{}).
		Where("id = ?", id).
		Where("resolved = ?", false).
		Updates(map[string]any{
			"resolved":       true,
			"points":         points,
			"resolved_price": price,
			"resolved_at":    at.UTC(),
			"open_username":  nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	// Nothing matched: either the guess is already resolved or it is gone.
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Guess{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, repository.ErrNotFound
	}
	return false, nil
}

func (s *Store) DeleteGuess(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Guess{}).Error
}

func (s *Store) ListGuessesByUser(ctx context.Context, params repository.ListGuessesParams) ([]models.Guess, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).
		Model(&models.Guess{}).
		Where("username = ?", params.Username)
	if params.Resolved != nil {
		query = query.Where("resolved = ?", *params.Resolved)
	}
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.Guess
	if err := query.
		Order("guessed_at desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) HasUnresolvedGuess(ctx context.Context, username string) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Guess{}).
		Where("username = ?", username).
		Where("resolved = ?", false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) SumScore(ctx context.Context, username string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	err := s.db.WithContext(ctx).
		Model(&models.Guess{}).
		Select("COALESCE(SUM(points), 0)").
		Where("username = ?", username).
		Where("resolved = ?", true).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListStaleUnresolved(ctx context.Context, guessedBefore time.Time, limit int) ([]models.Guess, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 100)
	var items []models.Guess
	if err := s.db.WithContext(ctx).
		Model(&models.Guess{}).
		Where("resolved = ?", false).
		Where("guessed_at < ?", guessedBefore.UTC()).
		Order("guessed_at asc").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- journal --------------------------------------------------------------------

func (s *Store) InsertGuessEvent(ctx context.Context, item *models.GuessEvent) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListGuessEvents(ctx context.Context, guessID string) ([]models.GuessEvent, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.GuessEvent
	if err := s.db.WithContext(ctx).
		Model(&models.GuessEvent{}).
		Where("guess_id = ?", guessID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- helpers --------------------------------------------------------------------

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
