package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"bitbetty/internal/logger"
	"bitbetty/internal/models"
	"bitbetty/internal/repository"
)

// recordEvent appends a journal row for guessID. Journal writes never fail the
// workflow step that triggered them.
func recordEvent(ctx context.Context, repo repository.GuessRepository, log *zap.Logger, guessID, kind string, payload map[string]any) {
	if repo == nil || guessID == "" {
		return
	}
	item := &models.GuessEvent{
		GuessID:   guessID,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	log = logger.OrNop(log)
	if len(payload) > 0 {
		raw, err := json.Marshal(payload)
		if err != nil {
			log.Warn("guess journal payload encode failed",
				zap.String("guess_id", guessID),
				zap.String("kind", kind),
				zap.String("op", "marshal_payload"),
				zap.Error(err),
			)
		} else {
			item.Payload = datatypes.JSON(raw)
		}
	}
	// The journal entry describes work that already happened, so it is written
	// even when the caller's context was cancelled in the meantime.
	if err := repo.InsertGuessEvent(context.WithoutCancel(ctx), item); err != nil {
		log.Warn("guess journal write failed",
			zap.String("guess_id", guessID),
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
}
