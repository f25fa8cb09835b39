package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	GuessEventSubmitted  = "submitted"
	GuessEventRolledBack = "rolled_back"
	GuessEventRequeued   = "requeued"
	GuessEventResolved   = "resolved"
	GuessEventAbandoned  = "abandoned"
	GuessEventSwept      = "swept"
)

// GuessEvent is an append-only journal entry for one step of a guess workflow.
// Rows outlive a rolled back guess on purpose, so GuessID carries no foreign key.
type GuessEvent struct {
	ID      uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	GuessID string         `gorm:"type:varchar(36);not null;index" json:"guess_id"`
	Kind    string         `gorm:"type:varchar(20);not null;index" json:"kind"`
	Payload datatypes.JSON `json:"payload,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (GuessEvent) TableName() string {
	return "guess_events"
}
