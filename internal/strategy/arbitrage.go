package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jjkirby/kalshipaper/internal/risk"
	"github.com/jjkirby/kalshipaper/internal/signal"
	"github.com/jjkirby/kalshipaper/internal/types"
)

// hedgeEpsilon keeps the hedge stake strictly below the notional ceiling.
var hedgeEpsilon = decimal.NewFromFloat(0.0001)

// arbFirstLegEvaluator opens the cheaper side immediately, once per ticker.
type arbFirstLegEvaluator struct {
	stake decimal.Decimal
}

func (e *arbFirstLegEvaluator) Name() string { return types.StrategyArbitrage }

func (e *arbFirstLegEvaluator) Evaluate(ctx *Context) *Decision {
	ticker := ctx.Snap.Ticker
	if ctx.Traded(e.Name(), ticker) {
		return nil
	}

	side, ok := signal.ArbitrageFirstSide(ctx.Snap.YesAsk, ctx.Snap.NoAsk)
	if !ok {
		return nil
	}
	price := ctx.Snap.Ask(side)
	contracts, _ := risk.FixedStake(e.stake, price)

	return &Decision{
		Strategy: e.Name(),
		Ticker:   ticker,
		Entry: &Entry{
			Side:       side,
			Stake:      e.stake,
			Price:      price,
			Contracts:  contracts,
			Provenance: "first_leg",
		},
	}
}

// arbHedgeEvaluator watches an open first leg and buys the opposite side the
// first time the combined cost drops below $1. One shot: once hedged, the
// pair is locked even if the edge later improves. If the market closes
// before an edge appears, the first leg settles alone.
type arbHedgeEvaluator struct {
	maxBet decimal.Decimal
}

func (e *arbHedgeEvaluator) Name() string { return types.StrategyArbitrageHedge }

func (e *arbHedgeEvaluator) Evaluate(ctx *Context) *Decision {
	ticker := ctx.Snap.Ticker
	if ctx.Traded(e.Name(), ticker) {
		return nil
	}
	pos := ctx.Arb(ticker)
	if pos == nil || pos.Hedged {
		return nil
	}

	opposite := pos.Side.Opposite()
	oppPrice := ctx.Snap.Ask(opposite)
	if oppPrice.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	edge := decimal.NewFromInt(1).Sub(pos.Price.Add(oppPrice))
	if edge.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	maxByBet := e.maxBet.Sub(hedgeEpsilon).Div(oppPrice).Floor()
	contracts := decimal.Min(pos.Contracts.Floor(), maxByBet)
	if contracts.LessThan(decimal.NewFromInt(1)) {
		return nil
	}

	return &Decision{
		Strategy: e.Name(),
		Ticker:   ticker,
		Entry: &Entry{
			Side:       opposite,
			Stake:      contracts.Mul(oppPrice),
			Price:      oppPrice,
			Contracts:  contracts,
			Provenance: fmt.Sprintf("hedge_of=%s edge=%s", pos.Side, edge.StringFixed(4)),
		},
	}
}
