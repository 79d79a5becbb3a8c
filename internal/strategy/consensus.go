package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jjkirby/kalshipaper/internal/types"
)

// consensusEvaluator enters only when the previous-result and short momentum
// votes agree. CONSENSUS treats any gate failure as terminal for the ticker;
// CONSENSUS_2 keeps waiting for its stricter discounted price every cycle
// until the market rolls over. Both share the bankroll, loss caps and
// rolling break-even gate through the risk view.
type consensusEvaluator struct {
	name          string
	priceCeiling  decimal.Decimal
	consumeOnFail bool
}

func (e *consensusEvaluator) Name() string { return e.name }

func (e *consensusEvaluator) Evaluate(ctx *Context) *Decision {
	ticker := ctx.Snap.Ticker
	if ctx.Traded(e.name, ticker) {
		return nil
	}

	prev, mom := ctx.Signals.Previous, ctx.Signals.Momentum
	if prev == types.SideNone || mom == types.SideNone {
		return nil
	}
	if prev != mom {
		// Disagreement is final for this ticker for both variants.
		return &Decision{Strategy: e.name, Ticker: ticker, Reason: "signals disagree"}
	}

	fail := func(reason string) *Decision {
		if !e.consumeOnFail {
			return nil
		}
		return &Decision{Strategy: e.name, Ticker: ticker, Reason: reason}
	}

	side := prev
	price := ctx.Snap.Ask(side)
	if price.LessThanOrEqual(decimal.Zero) {
		return fail("invalid price")
	}
	if price.GreaterThan(e.priceCeiling) {
		return fail("ask above price ceiling")
	}
	if ctx.Risk.Bankroll.LessThanOrEqual(decimal.Zero) {
		return fail("bankroll depleted")
	}
	if ctx.Risk.DailyCapBreached {
		return fail("daily loss cap hit")
	}
	if ctx.Risk.WeeklyCapBreached {
		return fail("weekly loss cap hit")
	}
	if !ctx.Risk.RollingGatePasses {
		return fail("rolling win rate below break-even")
	}

	contracts, stake, ok := ctx.Sizer.Consensus(ctx.Risk.Bankroll, price)
	if !ok {
		return fail("stake too small for ask")
	}

	return &Decision{
		Strategy: e.name,
		Ticker:   ticker,
		Entry: &Entry{
			Side:       side,
			Stake:      stake,
			Price:      price,
			Contracts:  contracts,
			Provenance: fmt.Sprintf("PREV=%s MOM=%s", prev, mom),
		},
	}
}
