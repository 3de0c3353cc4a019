package market

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"

	"stockrag/internal/models"
)

type GatewayConfig struct {
	BaseURL string
	APIKey  string
	Days    int // OHLCV lookback window
	Timeout time.Duration
}

// Gateway reads quote history and fundamentals from the trading-data
// service. Market data is best-effort context: any failure here is absorbed
// so that a market outage can never block news-based answering.
type Gateway struct {
	config GatewayConfig
	client *resty.Client
	log    *log.Logger
}

func NewWithConfig(config GatewayConfig, logger *log.Logger) *Gateway {
	if config.Days == 0 {
		config.Days = 7
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}

	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout)
	if config.APIKey != "" {
		client.SetHeader("X-API-Key", config.APIKey)
	}

	return &Gateway{config: config, client: client, log: logger}
}

// FetchSnapshot gathers the two textual summaries for symbol. The
// sub-fetches are independent; each failure is logged and leaves its field
// empty rather than surfacing an error.
func (g *Gateway) FetchSnapshot(ctx context.Context, symbol string) models.MarketSnapshot {
	snapshot := models.MarketSnapshot{Symbol: symbol}

	ohlcv, err := g.fetchText(ctx, "/market/ohlcv", map[string]string{
		"symbol": symbol,
		"days":   strconv.Itoa(g.config.Days),
	})
	if err != nil {
		g.log.Error("ohlcv fetch failed", "symbol", symbol, "err", err)
	} else {
		snapshot.OHLCV = ohlcv
	}

	fundamentals, err := g.fetchText(ctx, "/market/fundamentals", map[string]string{
		"symbol": symbol,
	})
	if err != nil {
		g.log.Error("fundamentals fetch failed", "symbol", symbol, "err", err)
	} else {
		snapshot.Fundamentals = fundamentals
	}

	return snapshot
}

func (g *Gateway) fetchText(ctx context.Context, path string, params map[string]string) (string, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("%s returned %s", path, resp.Status())
	}
	return strings.TrimSpace(string(resp.Body())), nil
}
