package risk

import (
	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// ROLLING PERFORMANCE TRACKER - Break-even pause gate
// ═══════════════════════════════════════════════════════════════════════════════
//
// Keeps the most recent consensus-family outcomes and compares the rolling
// win rate against the win rate needed to break even given observed average
// win/loss sizes. The gate stays open until the window is full.
//
// ═══════════════════════════════════════════════════════════════════════════════

type rollingEntry struct {
	win bool
	net decimal.Decimal
}

// RollingTracker is a bounded FIFO window of settlement outcomes.
type RollingTracker struct {
	capacity int
	entries  []rollingEntry
}

// NewRollingTracker creates a tracker holding up to capacity outcomes.
func NewRollingTracker(capacity int) *RollingTracker {
	return &RollingTracker{capacity: capacity}
}

// Record appends an outcome, evicting the oldest when over capacity.
func (t *RollingTracker) Record(win bool, net decimal.Decimal) {
	t.entries = append(t.entries, rollingEntry{win: win, net: net})
	if len(t.entries) > t.capacity {
		t.entries = t.entries[len(t.entries)-t.capacity:]
	}
}

// Len returns the current window length.
func (t *RollingTracker) Len() int { return len(t.entries) }

// Full reports whether the window has reached capacity.
func (t *RollingTracker) Full() bool { return len(t.entries) >= t.capacity }

// WinRate returns wins / window length, zero for an empty window.
func (t *RollingTracker) WinRate() decimal.Decimal {
	if len(t.entries) == 0 {
		return decimal.Zero
	}
	wins := 0
	for _, e := range t.entries {
		if e.win {
			wins++
		}
	}
	return decimal.NewFromInt(int64(wins)).Div(decimal.NewFromInt(int64(len(t.entries))))
}

// BreakEvenRate returns avg_loss / (avg_win + avg_loss) over the window.
// With no losses the break-even is zero (unattainably low); with no wins it
// is one. The second return is false when the ratio is undefined because
// every outcome in the window netted exactly zero.
func (t *RollingTracker) BreakEvenRate() (decimal.Decimal, bool) {
	var winSum, lossSum decimal.Decimal
	winN, lossN := 0, 0
	for _, e := range t.entries {
		if e.net.GreaterThan(decimal.Zero) {
			winSum = winSum.Add(e.net)
			winN++
		} else {
			lossSum = lossSum.Add(e.net.Abs())
			lossN++
		}
	}

	var avgWin, avgLoss decimal.Decimal
	if winN > 0 {
		avgWin = winSum.Div(decimal.NewFromInt(int64(winN)))
	}
	if lossN > 0 {
		avgLoss = lossSum.Div(decimal.NewFromInt(int64(lossN)))
	}

	denom := avgWin.Add(avgLoss)
	if denom.IsZero() {
		return decimal.Zero, false
	}
	return avgLoss.Div(denom), true
}

// GatePasses reports whether consensus-family entries may proceed. The gate
// is inactive until the window is full; an exact tie with the break-even
// rate passes.
func (t *RollingTracker) GatePasses() bool {
	if !t.Full() {
		return true
	}
	breakEven, ok := t.BreakEvenRate()
	if !ok {
		return true
	}
	return t.WinRate().GreaterThanOrEqual(breakEven)
}
