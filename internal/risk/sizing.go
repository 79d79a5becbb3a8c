package risk

import (
	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// POSITION SIZING - Bankroll-relative and fixed-stake
// ═══════════════════════════════════════════════════════════════════════════════
//
// Consensus family: whole contracts, stake = min(risk%, max risk%) of the
// bankroll, never exceeding the bankroll itself. Fewer than one contract
// means no trade.
//
// Fixed-stake strategies: fractional contracts = stake / price, no bankroll
// dependency.
//
// ═══════════════════════════════════════════════════════════════════════════════

// Sizer converts bankroll and price into contract counts.
type Sizer struct {
	riskPct    decimal.Decimal
	maxRiskPct decimal.Decimal
}

// NewSizer creates a sizer with target and maximum risk fractions.
func NewSizer(riskPct, maxRiskPct decimal.Decimal) *Sizer {
	return &Sizer{riskPct: riskPct, maxRiskPct: maxRiskPct}
}

// Consensus sizes a bankroll-relative entry. The returned stake is snapped to
// contracts * price after truncation. ok is false when the bankroll or price
// is non-positive or the stake buys less than one whole contract.
func (s *Sizer) Consensus(bankroll, price decimal.Decimal) (contracts, stake decimal.Decimal, ok bool) {
	if bankroll.LessThanOrEqual(decimal.Zero) || price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero, false
	}

	target := bankroll.Mul(s.riskPct)
	if target.LessThan(rFloor) {
		target = rFloor
	}
	maxStake := bankroll.Mul(s.maxRiskPct)

	stake = decimal.Min(target, maxStake, bankroll)
	contracts = stake.Div(price).Floor()
	if contracts.LessThan(decimal.NewFromInt(1)) {
		return decimal.Zero, decimal.Zero, false
	}

	// Hard cap regardless of the target fraction.
	maxContracts := maxStake.Div(price).Floor()
	contracts = decimal.Min(contracts, maxContracts)
	if contracts.LessThan(decimal.NewFromInt(1)) {
		return decimal.Zero, decimal.Zero, false
	}

	return contracts, contracts.Mul(price), true
}

// FixedStake sizes a fixed-stake entry as fractional contracts.
func FixedStake(stake, price decimal.Decimal) (decimal.Decimal, bool) {
	if price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	return stake.Div(price), true
}
