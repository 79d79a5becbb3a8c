package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SHARED TYPES - Avoid import cycles
// ═══════════════════════════════════════════════════════════════════════════════

// Side is a binary market side. The empty value means "no side" and doubles
// as the no-signal vote.
type Side string

const (
	SideNone Side = ""
	SideYes  Side = "yes"
	SideNo   Side = "no"
)

// Opposite returns the other side of the market.
func (s Side) Opposite() Side {
	switch s {
	case SideYes:
		return SideNo
	case SideNo:
		return SideYes
	}
	return SideNone
}

// Outcome of a settled trade.
type Outcome string

const (
	OutcomeWin  Outcome = "WIN"
	OutcomeLoss Outcome = "LOSS"
)

// Strategy identifiers. ARBITRAGE_HEDGE is the second leg of ARBITRAGE and
// is recorded as its own strategy, as in the trade log schema.
const (
	StrategyPrevious       = "PREVIOUS"
	StrategyMomentum       = "MOMENTUM"
	StrategyMomentum15     = "MOMENTUM_15"
	StrategyConsensus      = "CONSENSUS"
	StrategyPrevious2      = "PREVIOUS_2"
	StrategyConsensus2     = "CONSENSUS_2"
	StrategyArbitrage      = "ARBITRAGE"
	StrategyArbitrageHedge = "ARBITRAGE_HEDGE"
)

// ConsensusFamily reports whether a strategy shares the consensus bankroll,
// loss caps and rolling performance window.
func ConsensusFamily(strategy string) bool {
	return strategy == StrategyConsensus || strategy == StrategyConsensus2
}

// Market is one open binary market.
type Market struct {
	Ticker    string
	YesAsk    decimal.Decimal
	NoAsk     decimal.Decimal
	CloseTime time.Time
}

// Ask returns the ask price for a side.
func (m Market) Ask(side Side) decimal.Decimal {
	if side == SideYes {
		return m.YesAsk
	}
	return m.NoAsk
}

// Snapshot is the per-cycle view of the active market plus rollover state.
// PrevTicker is set while a just-closed market in the same series is awaiting
// settlement; PrevResult carries its settled side once known.
type Snapshot struct {
	Market
	IsNewlyOpen bool
	PrevTicker  string
	PrevResult  Side
}

// PriceSample is one spot price observation.
type PriceSample struct {
	Time  time.Time
	Price decimal.Decimal
}

// Position is a pending (unsettled) simulated trade.
type Position struct {
	ID          string
	Strategy    string
	Ticker      string
	Side        Side
	Stake       decimal.Decimal
	Price       decimal.Decimal
	Contracts   decimal.Decimal
	PrevTicker  string
	Provenance  string // signal context, e.g. "BTC +0.123%" or "PREV=yes MOM=yes"
	FeeReserved decimal.Decimal
	OpenedAt    time.Time
}

// SettledTrade is a finalized Position. Immutable once created.
type SettledTrade struct {
	Position
	SettledSide Side
	Outcome     Outcome
	Payout      decimal.Decimal
	GrossProfit decimal.Decimal
	Fee         decimal.Decimal
	NetProfit   decimal.Decimal
	SettledAt   time.Time
}

// TradeRecord is the flat persisted form of a trade, pending or settled.
// Outcome == "" marks a pending row.
type TradeRecord struct {
	TradeID        string
	Time           time.Time
	Strategy       string
	PreviousTicker string
	PreviousResult string
	BuyTicker      string
	BuySide        Side
	Stake          decimal.Decimal
	Price          decimal.Decimal
	Contracts      decimal.Decimal
	Outcome        Outcome
	Payout         decimal.Decimal
	GrossProfit    decimal.Decimal
	Fee            decimal.Decimal
	Profit         decimal.Decimal
}

// StrategyStats aggregates realized results for one strategy.
type StrategyStats struct {
	Staked  decimal.Decimal
	Profit  decimal.Decimal
	Wins    int
	Losses  int
	Pending int
}
