package risk

import (
	"time"

	"github.com/shopspring/decimal"
)

// View is a consistent snapshot of ledger and tracker state taken at the
// start of a cycle. Every consensus-family evaluator in the cycle reads the
// same view, so same-cycle settlements can never influence same-cycle gating.
type View struct {
	Bankroll          decimal.Decimal
	DailyCapBreached  bool
	WeeklyCapBreached bool
	RollingGatePasses bool
	RollingWinRate    decimal.Decimal
	RollingBreakEven  decimal.Decimal
}

// Snapshot captures the gate inputs as of now.
func Snapshot(l *Ledger, t *RollingTracker, now time.Time) View {
	breakEven, _ := t.BreakEvenRate()
	return View{
		Bankroll:          l.Bankroll(),
		DailyCapBreached:  l.DailyCapBreached(now),
		WeeklyCapBreached: l.WeeklyCapBreached(now),
		RollingGatePasses: t.GatePasses(),
		RollingWinRate:    t.WinRate(),
		RollingBreakEven:  breakEven,
	}
}
