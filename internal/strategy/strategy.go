// Package strategy implements the entry evaluators. Each evaluator inspects
// the cycle context and emits at most one decision per ticker; the arbitrage
// pair contributes one evaluator per leg. Near-duplicate variants share one
// parameterized implementation instead of copied logic.
package strategy

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jjkirby/kalshipaper/internal/risk"
	"github.com/jjkirby/kalshipaper/internal/signal"
	"github.com/jjkirby/kalshipaper/internal/types"
)

// ArbState is the pending first leg of an arbitrage pair for one ticker.
type ArbState struct {
	Side      types.Side
	Price     decimal.Decimal
	Contracts decimal.Decimal
	Hedged    bool
}

// Context is everything an evaluator may read during one cycle. Risk is a
// snapshot taken at cycle start; evaluators never see mid-cycle mutations.
type Context struct {
	Snap    types.Snapshot
	Signals *signal.Set
	Hist    *signal.History
	Risk    risk.View
	Sizer   *risk.Sizer
	Now     time.Time

	// Traded reports whether a (strategy, ticker) slot is already consumed.
	Traded func(strategy, ticker string) bool
	// Arb returns the pending arbitrage first leg for a ticker, nil if none.
	Arb func(ticker string) *ArbState
}

// Entry is a concrete trade to open.
type Entry struct {
	Side       types.Side
	Stake      decimal.Decimal
	Price      decimal.Decimal
	Contracts  decimal.Decimal
	PrevTicker string
	Provenance string
}

// Decision is the outcome of one evaluation. A nil Entry consumes the
// (strategy, ticker) slot without opening a trade, which is how terminal
// gate failures are remembered.
type Decision struct {
	Strategy string
	Ticker   string
	Entry    *Entry
	Reason   string
}

// Evaluator is one strategy variant.
type Evaluator interface {
	Name() string
	Evaluate(ctx *Context) *Decision
}

// Params carries the strategy-level configuration shared by the table.
type Params struct {
	Stake             decimal.Decimal
	DealMaxPrice      decimal.Decimal
	ConsensusMaxPrice decimal.Decimal
	ArbMaxBet         decimal.Decimal
	MomentumWindow    time.Duration
	Momentum15Window  time.Duration
}

// DefaultSet returns the evaluators in their fixed cycle order. The order is
// load-bearing: momentum votes recorded earlier in the pass feed the
// consensus variants later in the same pass, and the arbitrage hedge leg
// runs after the first leg so a positive edge can be locked within one cycle.
func DefaultSet(p Params) []Evaluator {
	return []Evaluator{
		&previousEvaluator{stake: p.Stake},
		&momentumEvaluator{
			name:   types.StrategyMomentum,
			label:  "BTC",
			window: p.MomentumWindow,
			stake:  p.Stake,
			assign: func(s *signal.Set, v types.Side) { s.Momentum = v },
		},
		&momentumEvaluator{
			name:   types.StrategyMomentum15,
			label:  "BTC15",
			window: p.Momentum15Window,
			stake:  p.Stake,
			assign: func(s *signal.Set, v types.Side) { s.Momentum15 = v },
		},
		&consensusEvaluator{
			name:          types.StrategyConsensus,
			priceCeiling:  p.ConsensusMaxPrice,
			consumeOnFail: true,
		},
		&previousDelayedEvaluator{stake: p.Stake, ceiling: p.DealMaxPrice},
		&consensusEvaluator{
			name:          types.StrategyConsensus2,
			priceCeiling:  p.DealMaxPrice,
			consumeOnFail: false,
		},
		&arbFirstLegEvaluator{stake: p.Stake},
		&arbHedgeEvaluator{maxBet: p.ArbMaxBet},
	}
}
