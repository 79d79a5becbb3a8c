// Package signal derives the directional votes the strategies consume:
// the previous-market result, short and long BTC momentum, and the
// cheaper-side pick for the arbitrage first leg.
package signal

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jjkirby/kalshipaper/internal/types"
)

// History retains spot price samples long enough to answer the longest
// momentum lookback. Samples must be appended in time order.
type History struct {
	retention time.Duration
	samples   []types.PriceSample
}

// NewHistory creates a history buffer. Retention should be at least the
// longest momentum window; a little slack is added so the sample at or
// before the cutoff is still present.
func NewHistory(retention time.Duration) *History {
	return &History{retention: retention + time.Minute}
}

// Add appends a sample and prunes expired ones.
func (h *History) Add(s types.PriceSample) {
	h.samples = append(h.samples, s)
	cutoff := s.Time.Add(-h.retention)
	i := 0
	for i < len(h.samples)-1 && h.samples[i].Time.Before(cutoff) {
		i++
	}
	if i > 0 {
		h.samples = append(h.samples[:0], h.samples[i:]...)
	}
}

// Len returns the number of retained samples.
func (h *History) Len() int { return len(h.samples) }

// Latest returns the most recent sample.
func (h *History) Latest() (types.PriceSample, bool) {
	if len(h.samples) == 0 {
		return types.PriceSample{}, false
	}
	return h.samples[len(h.samples)-1], true
}

// At returns the latest sample at or before t.
func (h *History) At(t time.Time) (types.PriceSample, bool) {
	for i := len(h.samples) - 1; i >= 0; i-- {
		if !h.samples[i].Time.After(t) {
			return h.samples[i], true
		}
	}
	return types.PriceSample{}, false
}

// MomentumVote compares the latest price against the price at or before
// now-window. Rising price votes yes, flat or falling votes no. Returns the
// percent move alongside the vote. No vote when fewer than two samples exist
// or no sample predates the cutoff.
func MomentumVote(h *History, now time.Time, window time.Duration) (types.Side, decimal.Decimal, bool) {
	if h.Len() < 2 {
		return types.SideNone, decimal.Zero, false
	}
	old, ok := h.At(now.Add(-window))
	if !ok {
		return types.SideNone, decimal.Zero, false
	}
	latest, _ := h.Latest()

	side := types.SideNo
	if latest.Price.GreaterThan(old.Price) {
		side = types.SideYes
	}

	pct := decimal.Zero
	if !old.Price.IsZero() {
		pct = latest.Price.Sub(old.Price).Div(old.Price).Mul(decimal.NewFromInt(100))
	}
	return side, pct, true
}

// ArbitrageFirstSide picks the cheaper side for the arbitrage first leg.
// Ties go to yes. Both asks must be strictly positive.
func ArbitrageFirstSide(yesAsk, noAsk decimal.Decimal) (types.Side, bool) {
	if yesAsk.LessThanOrEqual(decimal.Zero) || noAsk.LessThanOrEqual(decimal.Zero) {
		return types.SideNone, false
	}
	if yesAsk.LessThanOrEqual(noAsk) {
		return types.SideYes, true
	}
	return types.SideNo, true
}

// Set holds the recorded votes for one ticker. Previous is written as soon as
// the prior market settles; the momentum votes are frozen at the moment the
// corresponding momentum strategy enters, so the consensus family sees the
// same vote the momentum trade acted on.
type Set struct {
	Previous   types.Side
	Momentum   types.Side
	Momentum15 types.Side
}

// Board tracks vote sets per ticker.
type Board struct {
	sets map[string]*Set
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{sets: make(map[string]*Set)}
}

// Get returns the vote set for a ticker, creating it if needed.
func (b *Board) Get(ticker string) *Set {
	s, ok := b.sets[ticker]
	if !ok {
		s = &Set{}
		b.sets[ticker] = s
	}
	return s
}
