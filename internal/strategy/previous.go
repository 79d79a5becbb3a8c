package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/jjkirby/kalshipaper/internal/risk"
	"github.com/jjkirby/kalshipaper/internal/types"
)

// previousEvaluator buys the same side the previous market in the series
// settled on, as soon as that settlement is known.
type previousEvaluator struct {
	stake decimal.Decimal
}

func (e *previousEvaluator) Name() string { return types.StrategyPrevious }

func (e *previousEvaluator) Evaluate(ctx *Context) *Decision {
	ticker := ctx.Snap.Ticker
	if ctx.Traded(e.Name(), ticker) {
		return nil
	}
	side := ctx.Snap.PrevResult
	if side == types.SideNone {
		return nil
	}

	price := ctx.Snap.Ask(side)
	contracts, ok := risk.FixedStake(e.stake, price)
	if !ok {
		// Invalid ask this cycle; retry until the market closes.
		return nil
	}

	return &Decision{
		Strategy: e.Name(),
		Ticker:   ticker,
		Entry: &Entry{
			Side:       side,
			Stake:      e.stake,
			Price:      price,
			Contracts:  contracts,
			PrevTicker: ctx.Snap.PrevTicker,
			Provenance: string(side),
		},
	}
}

// previousDelayedEvaluator waits for the previous-result side to be offered
// at or below a discounted price ceiling. It may never trigger for a ticker.
type previousDelayedEvaluator struct {
	stake   decimal.Decimal
	ceiling decimal.Decimal
}

func (e *previousDelayedEvaluator) Name() string { return types.StrategyPrevious2 }

func (e *previousDelayedEvaluator) Evaluate(ctx *Context) *Decision {
	ticker := ctx.Snap.Ticker
	if ctx.Traded(e.Name(), ticker) {
		return nil
	}
	side := ctx.Signals.Previous
	if side == types.SideNone {
		return nil
	}

	price := ctx.Snap.Ask(side)
	if price.LessThanOrEqual(decimal.Zero) || price.GreaterThan(e.ceiling) {
		return nil
	}
	contracts, _ := risk.FixedStake(e.stake, price)

	return &Decision{
		Strategy: e.Name(),
		Ticker:   ticker,
		Entry: &Entry{
			Side:       side,
			Stake:      e.stake,
			Price:      price,
			Contracts:  contracts,
			PrevTicker: ctx.Snap.PrevTicker,
			Provenance: string(side),
		},
	}
}
