package kalshi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jjkirby/kalshipaper/internal/types"
)

func TestOpenMarketPicksEarliestFutureClose(t *testing.T) {
	now := time.Now().UTC()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("series_ticker"); got != "KXBTC15M" {
			t.Errorf("series_ticker = %q", got)
		}
		fmt.Fprintf(w, `{"markets":[
			{"ticker":"LATER","yes_ask":50,"no_ask":52,"close_time":%q},
			{"ticker":"SOON","yes_ask":48,"no_ask":54,"close_time":%q},
			{"ticker":"CLOSED","yes_ask":1,"no_ask":99,"close_time":%q}
		]}`,
			now.Add(30*time.Minute).Format(time.RFC3339),
			now.Add(10*time.Minute).Format(time.RFC3339),
			now.Add(-5*time.Minute).Format(time.RFC3339))
	}))
	defer srv.Close()

	c := NewClient("KXBTC15M")
	c.SetBaseURL(srv.URL)

	mkt, err := c.OpenMarket(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if mkt == nil || mkt.Ticker != "SOON" {
		t.Fatalf("market = %+v, want SOON", mkt)
	}
	if got := mkt.YesAsk.String(); got != "0.48" {
		t.Errorf("yes ask = %s, want 0.48", got)
	}
	if got := mkt.NoAsk.String(); got != "0.54" {
		t.Errorf("no ask = %s, want 0.54", got)
	}
}

func TestOpenMarketNoneOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"markets":[]}`)
	}))
	defer srv.Close()

	c := NewClient("KXBTC15M")
	c.SetBaseURL(srv.URL)

	mkt, err := c.OpenMarket(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if mkt != nil {
		t.Errorf("market = %+v, want nil", mkt)
	}
}

func TestSettledSide(t *testing.T) {
	tests := []struct {
		result string
		want   types.Side
	}{
		{"yes", types.SideYes},
		{"no", types.SideNo},
		{"", types.SideNone},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"market":{"ticker":"T1","result":%q}}`, tt.result)
		}))
		c := NewClient("KXBTC15M")
		c.SetBaseURL(srv.URL)

		side, err := c.SettledSide(context.Background(), "T1")
		if err != nil {
			t.Fatal(err)
		}
		if side != tt.want {
			t.Errorf("result %q: side = %q, want %q", tt.result, side, tt.want)
		}
		srv.Close()
	}
}

func TestErrorStatusSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("KXBTC15M")
	c.SetBaseURL(srv.URL)

	if _, err := c.OpenMarket(context.Background()); err == nil {
		t.Fatal("expected an error for a non-200 status")
	}
}
