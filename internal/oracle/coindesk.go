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

// CoinDesk reads the USD rate from the CoinDesk BPI current price document.
type CoinDesk struct {
	HTTP     *http.Client
	Logger   *zap.Logger
	Endpoint string

	health
}

type coinDeskResponse struct {
	BPI map[string]struct {
		Code      string          `json:"code"`
		RateFloat decimal.Decimal `json:"rate_float"`
	} `json:"bpi"`
}

func (c *CoinDesk) Name() string { return "coindesk" }

func (c *CoinDesk) CurrentPrice(ctx context.Context) (decimal.Decimal, bool) {
	now := time.Now().UTC()
	endpoint := strings.TrimSpace(c.Endpoint)
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

func (c *CoinDesk) fetch(ctx context.Context, endpoint string) (decimal.Decimal, error) {
	if endpoint == "" {
		return decimal.Zero, fmt.Errorf("missing endpoint")
	}
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
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("http %d", resp.StatusCode)
	}
	var parsed coinDeskResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return decimal.Zero, err
	}
	usd, ok := parsed.BPI["USD"]
	if !ok {
		return decimal.Zero, fmt.Errorf("bpi.USD missing")
	}
	if !usd.RateFloat.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid rate %s", usd.RateFloat.String())
	}
	return usd.RateFloat, nil
}
