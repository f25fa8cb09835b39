package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"bitbetty/internal/logger"
)

// BinanceStream follows a Binance ticker websocket stream
// (wss://stream.binance.com:9443/ws/btcusdt@ticker) and serves the last
// observed price. A price older than MaxStaleness is reported as unavailable.
type BinanceStream struct {
	Logger       *zap.Logger
	URL          string
	MaxStaleness time.Duration
	RetryDelay   time.Duration

	// Now is the clock; defaults to time.Now.
	Now func() time.Time

	health

	priceMu sync.RWMutex
	last    decimal.Decimal
	lastAt  time.Time
}

func (c *BinanceStream) Name() string { return "binance_ws" }

func (c *BinanceStream) CurrentPrice(ctx context.Context) (decimal.Decimal, bool) {
	c.priceMu.RLock()
	price, at := c.last, c.lastAt
	c.priceMu.RUnlock()
	if at.IsZero() {
		return decimal.Zero, false
	}
	maxAge := c.MaxStaleness
	if maxAge <= 0 {
		maxAge = 10 * time.Second
	}
	if age := c.now().Sub(at); age > maxAge {
		logger.OrNop(c.Logger).Warn("oracle price stale",
			zap.String("oracle", c.Name()),
			zap.Duration("age", age),
		)
		return decimal.Zero, false
	}
	return price, true
}

// Run keeps the stream connected until ctx is done, reconnecting after
// RetryDelay on every failure.
func (c *BinanceStream) Run(ctx context.Context) error {
	retry := c.RetryDelay
	if retry <= 0 {
		retry = 3 * time.Second
	}
	for {
		err := c.stream(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			logger.OrNop(c.Logger).Warn("oracle stream disconnected",
				zap.String("oracle", c.Name()),
				zap.Error(err),
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry):
		}
	}
}

func (c *BinanceStream) stream(ctx context.Context) error {
	url := strings.TrimSpace(c.URL)
	if url == "" {
		c.set(c.now().UTC(), "down", strPtr("missing url"))
		return fmt.Errorf("missing url")
	}
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		c.set(c.now().UTC(), "down", strPtr(err.Error()))
		return err
	}
	defer func() {
		_ = conn.Close(websocket.StatusNormalClosure, "shutdown")
	}()

	for {
		_, msg, err := conn.Read(ctx)
		now := c.now().UTC()
		if err != nil {
			c.set(now, "down", strPtr(err.Error()))
			return err
		}
		price, ok := parseTicker(msg)
		if !ok {
			continue
		}
		c.set(now, "healthy", nil)
		c.priceMu.Lock()
		c.last = price
		c.lastAt = now
		c.priceMu.Unlock()
	}
}

func (c *BinanceStream) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

type binanceTicker struct {
	Event  string `json:"e"`
	Symbol string `json:"s"`
	Last   string `json:"c"`
}

type binanceTickerEnvelope struct {
	Stream string         `json:"stream"`
	Data   *binanceTicker `json:"data"`
}

// parseTicker accepts both raw and combined-stream ticker payloads.
func parseTicker(msg []byte) (decimal.Decimal, bool) {
	if len(msg) == 0 {
		return decimal.Zero, false
	}
	var env binanceTickerEnvelope
	if err := json.Unmarshal(msg, &env); err == nil && env.Data != nil && env.Data.Last != "" {
		p, err := parsePrice(env.Data.Last)
		return p, err == nil
	}
	var t binanceTicker
	if err := json.Unmarshal(msg, &t); err != nil || t.Last == "" {
		return decimal.Zero, false
	}
	p, err := parsePrice(t.Last)
	return p, err == nil
}
