package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestGuessPointsFor(t *testing.T) {
	base := decimal.NewFromInt(100)
	tests := []struct {
		name  string
		dir   Direction
		price int64
		want  int
	}{
		{"up and higher", DirectionUp, 105, 1},
		{"up and lower", DirectionUp, 95, -1},
		{"up and equal", DirectionUp, 100, -1},
		{"down and lower", DirectionDown, 95, 1},
		{"down and higher", DirectionDown, 105, -1},
		{"down and equal", DirectionDown, 100, -1},
	}
	for _, tt := range tests {
		g := Guess{Direction: tt.dir, BaselinePrice: base}
		if got := g.PointsFor(decimal.NewFromInt(tt.price)); got != tt.want {
			t.Fatalf("%s: points=%d want %d", tt.name, got, tt.want)
		}
	}
}

func TestDirectionValid(t *testing.T) {
	if !DirectionUp.Valid() || !DirectionDown.Valid() {
		t.Fatalf("up/down must be valid")
	}
	if Direction(0).Valid() || Direction(2).Valid() {
		t.Fatalf("0 and 2 must be invalid")
	}
	if DirectionUp.String() != "up" || DirectionDown.String() != "down" {
		t.Fatalf("unexpected names %q %q", DirectionUp, DirectionDown)
	}
}
