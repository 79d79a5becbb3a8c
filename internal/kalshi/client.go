// Package kalshi is a minimal trade-api v2 client covering what the decision
// engine consumes: the next-expiring open market in a series and settlement
// results for individual markets.
package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jjkirby/kalshipaper/internal/types"
)

const defaultBaseURL = "https://api.elections.kalshi.com/trade-api/v2"

// Client talks to the Kalshi REST API. Read-only: the engine only observes
// markets and settlements.
type Client struct {
	baseURL string
	series  string
	http    *http.Client
}

// NewClient creates a client for one market series.
func NewClient(series string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		series:  series,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

// SetBaseURL overrides the API base, used for the demo environment and tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

type apiMarket struct {
	Ticker    string `json:"ticker"`
	YesAsk    int64  `json:"yes_ask"`
	NoAsk     int64  `json:"no_ask"`
	CloseTime string `json:"close_time"`
	Result    string `json:"result"`
}

type marketsResponse struct {
	Markets []apiMarket `json:"markets"`
}

type marketResponse struct {
	Market apiMarket `json:"market"`
}

// OpenMarket returns the open market in the series with the earliest close
// time still in the future, or (nil, nil) when none is open.
func (c *Client) OpenMarket(ctx context.Context) (*types.Market, error) {
	q := url.Values{}
	q.Set("series_ticker", c.series)
	q.Set("status", "open")
	q.Set("limit", "50")

	var resp marketsResponse
	if err := c.get(ctx, "/markets?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var best *types.Market
	for _, m := range resp.Markets {
		closeTime, err := time.Parse(time.RFC3339, m.CloseTime)
		if err != nil || !closeTime.After(now) {
			continue
		}
		if best == nil || closeTime.Before(best.CloseTime) {
			mkt := toMarket(m, closeTime)
			best = &mkt
		}
	}
	return best, nil
}

// SettledSide returns the settled side of a market, SideNone while pending.
func (c *Client) SettledSide(ctx context.Context, ticker string) (types.Side, error) {
	var resp marketResponse
	if err := c.get(ctx, "/markets/"+url.PathEscape(ticker), &resp); err != nil {
		return types.SideNone, err
	}
	switch resp.Market.Result {
	case "yes":
		return types.SideYes, nil
	case "no":
		return types.SideNo, nil
	}
	return types.SideNone, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("kalshi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("kalshi %s: status %d: %s", path, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode kalshi response: %w", err)
	}
	return nil
}

// toMarket converts API cents to dollar decimals.
func toMarket(m apiMarket, closeTime time.Time) types.Market {
	return types.Market{
		Ticker:    m.Ticker,
		YesAsk:    decimal.New(m.YesAsk, -2),
		NoAsk:     decimal.New(m.NoAsk, -2),
		CloseTime: closeTime,
	}
}
