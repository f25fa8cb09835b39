package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the predicted price move: +1 up, -1 down.
type Direction int

const (
	DirectionDown Direction = -1
	DirectionUp   Direction = 1
)

func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "invalid"
	}
}

// Guess is a user's directional BTC prediction.
//
// OpenUsername mirrors Username while the guess is unresolved and is cleared on
// resolution. Its unique index is what keeps a user at one open guess even when
// two submissions race past the pre-check.
type Guess struct {
	ID            string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username      string          `gorm:"type:varchar(128);not null;index:idx_guesses_username_resolved,priority:1" json:"username"`
	OpenUsername  *string         `gorm:"type:varchar(128);uniqueIndex:ux_guesses_open_username" json:"-"`
	Direction     Direction       `gorm:"column:guess;not null" json:"guess"`
	BaselinePrice decimal.Decimal `gorm:"type:numeric(30,10);not null" json:"baseline_price"`
	GuessedAt     time.Time       `gorm:"not null" json:"guessed_at"`

	Resolved      bool             `gorm:"not null;default:false;index:idx_guesses_username_resolved,priority:2" json:"resolved"`
	Points        int              `gorm:"not null;default:0" json:"points"`
	ResolvedPrice *decimal.Decimal `gorm:"type:numeric(30,10)" json:"resolved_price,omitempty"`
	ResolvedAt    *time.Time       `json:"resolved_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Guess) TableName() string {
	return "guesses"
}

// Wins reports whether price settles the guess in the user's favour.
// An unchanged price is never a win.
func (g Guess) Wins(price decimal.Decimal) bool {
	switch g.Direction {
	case DirectionUp:
		return price.GreaterThan(g.BaselinePrice)
	case DirectionDown:
		return price.LessThan(g.BaselinePrice)
	default:
		return false
	}
}

// PointsFor is +1 for a winning price and -1 otherwise.
func (g Guess) PointsFor(price decimal.Decimal) int {
	if g.Wins(price) {
		return 1
	}
	return -1
}
