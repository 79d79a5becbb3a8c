package signal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jjkirby/kalshipaper/internal/types"
)

func sample(t time.Time, price float64) types.PriceSample {
	return types.PriceSample{Time: t, Price: decimal.NewFromFloat(price)}
}

func TestMomentumVote(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	window := 60 * time.Second

	tests := []struct {
		name     string
		samples  []types.PriceSample
		now      time.Time
		wantSide types.Side
		wantOK   bool
	}{
		{
			name:   "no history",
			now:    base,
			wantOK: false,
		},
		{
			name:    "single sample",
			samples: []types.PriceSample{sample(base, 50000)},
			now:     base.Add(window),
			wantOK:  false,
		},
		{
			name: "no sample before cutoff",
			samples: []types.PriceSample{
				sample(base.Add(30*time.Second), 50000),
				sample(base.Add(60*time.Second), 50100),
			},
			now:    base.Add(60 * time.Second),
			wantOK: false,
		},
		{
			name: "rising votes yes",
			samples: []types.PriceSample{
				sample(base, 50000),
				sample(base.Add(window), 50100),
			},
			now:      base.Add(window),
			wantSide: types.SideYes,
			wantOK:   true,
		},
		{
			name: "falling votes no",
			samples: []types.PriceSample{
				sample(base, 50000),
				sample(base.Add(window), 49900),
			},
			now:      base.Add(window),
			wantSide: types.SideNo,
			wantOK:   true,
		},
		{
			name: "flat votes no",
			samples: []types.PriceSample{
				sample(base, 50000),
				sample(base.Add(window), 50000),
			},
			now:      base.Add(window),
			wantSide: types.SideNo,
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory(window)
			for _, s := range tt.samples {
				h.Add(s)
			}
			side, _, ok := MomentumVote(h, tt.now, window)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && side != tt.wantSide {
				t.Errorf("side = %q, want %q", side, tt.wantSide)
			}
		})
	}
}

func TestMomentumVotePercent(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h := NewHistory(time.Minute)
	h.Add(sample(base, 50000))
	h.Add(sample(base.Add(time.Minute), 50500))

	_, pct, ok := MomentumVote(h, base.Add(time.Minute), time.Minute)
	if !ok {
		t.Fatal("expected a vote")
	}
	if got := pct.StringFixed(3); got != "1.000" {
		t.Errorf("pct = %s, want 1.000", got)
	}
}

func TestHistoryPrunes(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h := NewHistory(time.Minute)
	for i := 0; i < 100; i++ {
		h.Add(sample(base.Add(time.Duration(i)*5*time.Second), 50000))
	}
	// Retention is the window plus a minute of slack.
	if h.Len() > 26 {
		t.Errorf("history kept %d samples, expected pruning", h.Len())
	}
	old, ok := h.At(base.Add(495*time.Second - time.Minute))
	if !ok {
		t.Fatal("sample at window cutoff must survive pruning")
	}
	if old.Time.After(base.Add(495*time.Second - time.Minute)) {
		t.Errorf("At returned a sample after the cutoff")
	}
}

func TestArbitrageFirstSide(t *testing.T) {
	tests := []struct {
		name     string
		yes, no  float64
		wantSide types.Side
		wantOK   bool
	}{
		{"yes cheaper", 0.40, 0.62, types.SideYes, true},
		{"no cheaper", 0.62, 0.40, types.SideNo, true},
		{"tie goes to yes", 0.50, 0.50, types.SideYes, true},
		{"zero yes ask", 0, 0.50, types.SideNone, false},
		{"zero no ask", 0.50, 0, types.SideNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			side, ok := ArbitrageFirstSide(decimal.NewFromFloat(tt.yes), decimal.NewFromFloat(tt.no))
			if ok != tt.wantOK || side != tt.wantSide {
				t.Errorf("got (%q, %v), want (%q, %v)", side, ok, tt.wantSide, tt.wantOK)
			}
		})
	}
}

func TestBoardSetPerTicker(t *testing.T) {
	b := NewBoard()
	b.Get("A").Momentum = types.SideYes
	if b.Get("B").Momentum != types.SideNone {
		t.Error("vote leaked across tickers")
	}
	if b.Get("A").Momentum != types.SideYes {
		t.Error("vote not retained for its ticker")
	}
}
