package oracle

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"bitbetty/internal/config"
)

// FromConfig builds the oracle selected by cfg.Source. A *BinanceStream must
// be started with Run by the caller.
func FromConfig(cfg config.OracleConfig, log *zap.Logger) (PriceOracle, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	switch strings.ToLower(strings.TrimSpace(cfg.Source)) {
	case "", "binance":
		return &BinanceREST{HTTP: httpClient, Logger: log, Endpoint: cfg.Binance.Endpoint}, nil
	case "coindesk":
		return &CoinDesk{HTTP: httpClient, Logger: log, Endpoint: cfg.CoinDesk.Endpoint}, nil
	case "binance_ws":
		return &BinanceStream{
			Logger:       log,
			URL:          cfg.BinanceWS.URL,
			MaxStaleness: cfg.BinanceWS.MaxStaleness,
			RetryDelay:   cfg.BinanceWS.RetryDelay,
		}, nil
	default:
		return nil, fmt.Errorf("unknown oracle source %q", cfg.Source)
	}
}
