package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSpotPoller(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"base":"BTC","currency":"USD","amount":"50123.45"}}`)
	}))
	defer srv.Close()

	p := NewSpotPoller()
	p.SetURL(srv.URL)

	s, err := p.Sample(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Price.String(); got != "50123.45" {
		t.Errorf("price = %s, want 50123.45", got)
	}
	if s.Time.IsZero() {
		t.Error("sample must carry an observation time")
	}
}

func TestSpotPollerBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewSpotPoller()
	p.SetURL(srv.URL)
	if _, err := p.Sample(context.Background()); err == nil {
		t.Fatal("expected an error for a non-200 status")
	}
}

func TestSpotPollerBadAmount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"amount":"nan"}}`)
	}))
	defer srv.Close()

	p := NewSpotPoller()
	p.SetURL(srv.URL)
	if _, err := p.Sample(context.Background()); err == nil {
		t.Fatal("expected an error for an unparseable amount")
	}
}
