package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bitbetty/internal/logger"
)

// BinanceREST polls the Binance ticker price endpoint, e.g.
// https://api.binance.com/api/v3/ticker/price?symbol=BTCUSDT
type BinanceREST struct {
	HTTP     *http.Client
	Logger   *zap.Logger
	Endpoint string

	health
}

func (c *BinanceREST) Name() string { return "binance" }

func (c *BinanceREST) CurrentPrice(ctx context.Context) (decimal.Decimal, bool) {
	now := time.Now().UTC()
	endpoint := strings.TrimSpace(c.Endpoint)
	if endpoint == "" {
		c.set(now, "down", strPtr("missing endpoint"))
		logger.OrNop(c.Logger).Warn("oracle endpoint missing", zap.String("oracle", c.Name()))
		return decimal.Zero, false
	}
	price, err := c.fetch(ctx, endpoint)
	if err != nil {
		c.set(now, "down", strPtr(err.Error()))
		logger.OrNop(c.Logger).Warn("oracle fetch failed",
			zap.String("oracle", c.Name()),
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return decimal.Zero, false
	}
	c.set(now, "healthy", nil)
	return price, true
}

func (c *BinanceREST) fetch(ctx context.Context, endpoint string) (decimal.Decimal, error) {
	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decimal.Zero, fmt.Errorf("http %d", resp.StatusCode)
	}
	var parsed struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return decimal.Zero, err
	}
	return parsePrice(parsed.Price)
}

func parsePrice(raw string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q", raw)
	}
	if !p.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid price %q", raw)
	}
	return p, nil
}
