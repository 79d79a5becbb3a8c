package risk

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// BANKROLL LEDGER - Shared consensus-family capital and loss budgets
// ═══════════════════════════════════════════════════════════════════════════════
//
// bankroll = base capital + realized net P&L of settled consensus trades.
// Only settlement moves it. Daily/weekly realized-loss accumulators gate new
// entries; R is recomputed from the current bankroll at check time.
//
// ═══════════════════════════════════════════════════════════════════════════════

// rFloor keeps loss caps meaningful when the bankroll is nearly gone.
var rFloor = decimal.NewFromFloat(0.01)

// Ledger owns the consensus-family bankroll and loss-budget state. It is not
// safe for concurrent use; the engine drives it from a single cycle loop.
type Ledger struct {
	base     decimal.Decimal
	realized decimal.Decimal

	riskPct    decimal.Decimal
	dailyCapR  decimal.Decimal
	weeklyCapR decimal.Decimal

	dailyLoss  decimal.Decimal
	weeklyLoss decimal.Decimal
	dayKey     string
	weekKey    string
}

// NewLedger creates a ledger with the given base capital and cap multiples.
func NewLedger(base, riskPct, dailyCapR, weeklyCapR decimal.Decimal) *Ledger {
	return &Ledger{
		base:       base,
		riskPct:    riskPct,
		dailyCapR:  dailyCapR,
		weeklyCapR: weeklyCapR,
	}
}

// Bankroll returns base capital plus realized net P&L.
func (l *Ledger) Bankroll() decimal.Decimal {
	return l.base.Add(l.realized)
}

// R returns one unit of risk: bankroll * risk fraction, floored at a cent.
func (l *Ledger) R() decimal.Decimal {
	r := l.Bankroll().Mul(l.riskPct)
	if r.LessThan(rFloor) {
		return rFloor
	}
	return r
}

// RecordSettlement applies the net P&L of a settled consensus-family trade.
// Losses accumulate into the daily and weekly budgets after rolling over any
// accumulator whose period key has changed relative to the settlement time.
func (l *Ledger) RecordSettlement(net decimal.Decimal, ts time.Time) {
	l.roll(ts)
	l.realized = l.realized.Add(net)
	if net.IsNegative() {
		l.dailyLoss = l.dailyLoss.Add(net.Abs())
		l.weeklyLoss = l.weeklyLoss.Add(net.Abs())
	}
}

// DailyCapBreached reports whether the daily realized-loss budget is spent,
// rolling the accumulators first if the observed time entered a new period.
func (l *Ledger) DailyCapBreached(now time.Time) bool {
	l.roll(now)
	return l.dailyLoss.GreaterThanOrEqual(l.dailyCapR.Mul(l.R()))
}

// WeeklyCapBreached is the weekly analogue of DailyCapBreached.
func (l *Ledger) WeeklyCapBreached(now time.Time) bool {
	l.roll(now)
	return l.weeklyLoss.GreaterThanOrEqual(l.weeklyCapR.Mul(l.R()))
}

// roll resets accumulators whose day/ISO-week key changed. Keys derive from
// the timestamps the ledger observes, not from a background clock.
func (l *Ledger) roll(ts time.Time) {
	day := dayKey(ts)
	if l.dayKey != day {
		if l.dayKey != "" && !l.dailyLoss.IsZero() {
			log.Info().
				Str("day", l.dayKey).
				Str("realized_loss", l.dailyLoss.StringFixed(2)).
				Msg("Daily loss budget reset")
		}
		l.dayKey = day
		l.dailyLoss = decimal.Zero
	}
	week := weekKey(ts)
	if l.weekKey != week {
		l.weekKey = week
		l.weeklyLoss = decimal.Zero
	}
}

func dayKey(ts time.Time) string {
	return ts.UTC().Format("2006-01-02")
}

func weekKey(ts time.Time) string {
	year, week := ts.UTC().ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}
