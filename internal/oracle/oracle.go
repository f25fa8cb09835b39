// Package oracle fetches the current BTC/USD reference price.
//
// Oracles never return errors to their callers: any transport, status or
// parse failure is logged and reported as unavailable (ok == false).
package oracle

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type PriceOracle interface {
	CurrentPrice(ctx context.Context) (price decimal.Decimal, ok bool)
}

type HealthStatus struct {
	Status     string     `json:"status"`
	LastPollAt *time.Time `json:"last_poll_at,omitempty"`
	LastError  *string    `json:"last_error,omitempty"`
}

// health is embedded by every oracle to track the outcome of its last fetch.
type health struct {
	mu        sync.Mutex
	lastPoll  *time.Time
	lastError *string
	status    string
}

func (h *health) set(ts time.Time, status string, errStr *string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastPoll = &ts
	h.status = status
	h.lastError = errStr
}

func (h *health) Health() HealthStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	status := h.status
	if strings.TrimSpace(status) == "" {
		status = "unknown"
	}
	return HealthStatus{
		Status:     status,
		LastPollAt: h.lastPoll,
		LastError:  h.lastError,
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
