// Package feeds supplies BTC spot price samples from Coinbase, either by
// polling the spot price endpoint or by holding a websocket ticker stream
// open and handing out the latest print.
package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jjkirby/kalshipaper/internal/types"
)

const spotURL = "https://api.coinbase.com/v2/prices/BTC-USD/spot"

// SpotPoller fetches the Coinbase spot price on demand, one request per
// engine cycle.
type SpotPoller struct {
	url  string
	http *http.Client
}

// NewSpotPoller creates the polling price source.
func NewSpotPoller() *SpotPoller {
	return &SpotPoller{
		url:  spotURL,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetURL overrides the endpoint, used in tests.
func (p *SpotPoller) SetURL(u string) { p.url = u }

type spotResponse struct {
	Data struct {
		Amount string `json:"amount"`
	} `json:"data"`
}

// Sample fetches the current BTC-USD spot price.
func (p *SpotPoller) Sample(ctx context.Context) (types.PriceSample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return types.PriceSample{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return types.PriceSample{}, fmt.Errorf("coinbase spot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return types.PriceSample{}, fmt.Errorf("coinbase spot: status %d: %s", resp.StatusCode, body)
	}

	var sr spotResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return types.PriceSample{}, fmt.Errorf("decode spot response: %w", err)
	}
	price, err := decimal.NewFromString(sr.Data.Amount)
	if err != nil {
		return types.PriceSample{}, fmt.Errorf("parse spot amount %q: %w", sr.Data.Amount, err)
	}

	return types.PriceSample{Time: time.Now().UTC(), Price: price}, nil
}
