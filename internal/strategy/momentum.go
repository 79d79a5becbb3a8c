package strategy

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jjkirby/kalshipaper/internal/risk"
	"github.com/jjkirby/kalshipaper/internal/signal"
	"github.com/jjkirby/kalshipaper/internal/types"
)

// momentumEvaluator buys the direction of the spot move over its lookback
// window, once per ticker, while a rollover is being worked. The short and
// long variants differ only in window and which signal slot they record.
type momentumEvaluator struct {
	name   string
	label  string
	window time.Duration
	stake  decimal.Decimal
	assign func(*signal.Set, types.Side)
}

func (e *momentumEvaluator) Name() string { return e.name }

func (e *momentumEvaluator) Evaluate(ctx *Context) *Decision {
	ticker := ctx.Snap.Ticker
	if ctx.Traded(e.name, ticker) {
		return nil
	}
	if ctx.Snap.PrevTicker == "" {
		return nil
	}

	vote, pct, ok := signal.MomentumVote(ctx.Hist, ctx.Now, e.window)
	if !ok {
		return nil
	}
	// Freeze the vote for the consensus family even if the entry itself is
	// blocked on a bad ask this cycle.
	e.assign(ctx.Signals, vote)

	price := ctx.Snap.Ask(vote)
	contracts, priced := risk.FixedStake(e.stake, price)
	if !priced {
		return nil
	}

	return &Decision{
		Strategy: e.name,
		Ticker:   ticker,
		Entry: &Entry{
			Side:       vote,
			Stake:      e.stake,
			Price:      price,
			Contracts:  contracts,
			PrevTicker: ctx.Snap.PrevTicker,
			Provenance: fmt.Sprintf("%s %s%%", e.label, signedFixed(pct, 3)),
		},
	}
}

// signedFixed renders a decimal with an explicit sign, e.g. "+0.123".
func signedFixed(d decimal.Decimal, places int32) string {
	s := d.StringFixed(places)
	if !d.IsNegative() {
		return "+" + s
	}
	return s
}
