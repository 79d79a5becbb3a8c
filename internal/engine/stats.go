package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jjkirby/kalshipaper/internal/types"
)

// statsOrder fixes the display order. The two arbitrage legs are reported
// combined under ARBITRAGE.
var statsOrder = []string{
	types.StrategyPrevious,
	types.StrategyMomentum,
	types.StrategyConsensus,
	types.StrategyMomentum15,
	types.StrategyPrevious2,
	types.StrategyConsensus2,
	types.StrategyArbitrage,
}

// emitStats logs the cycle status line and invokes the stats callback.
func (e *Engine) emitStats(snap types.Snapshot, now time.Time) {
	btc := "?"
	if latest, ok := e.hist.Latest(); ok {
		btc = latest.Price.StringFixed(0)
	}

	ev := log.Info().
		Str("ticker", snap.Ticker).
		Str("yes", snap.YesAsk.StringFixed(2)).
		Str("no", snap.NoAsk.StringFixed(2)).
		Str("btc", btc).
		Str("bankroll", e.ledger.Bankroll().StringFixed(2))
	for _, name := range statsOrder {
		ev = ev.Str(shortLabel(name), e.profitFor(name).StringFixed(2))
	}
	ev.Msg("Cycle")

	if e.statsFn != nil {
		e.statsFn(CycleStats{
			Time:        now,
			Ticker:      snap.Ticker,
			Bankroll:    e.ledger.Bankroll(),
			PerStrategy: e.Stats(),
		})
	}
}

// profitFor returns realized profit for a strategy, folding the hedge leg
// into ARBITRAGE.
func (e *Engine) profitFor(name string) decimal.Decimal {
	p := e.statsFor(name).Profit
	if name == types.StrategyArbitrage {
		p = p.Add(e.statsFor(types.StrategyArbitrageHedge).Profit)
	}
	return p
}

// FormatSummary renders the final per-strategy report printed at shutdown.
func (e *Engine) FormatSummary() string {
	var b strings.Builder
	b.WriteString("=== FINAL STATS ===\n")

	var total types.StrategyStats
	for _, st := range e.stats {
		total.Profit = total.Profit.Add(st.Profit)
		total.Wins += st.Wins
		total.Losses += st.Losses
		total.Pending += st.Pending
	}

	for _, name := range statsOrder {
		st := *e.statsFor(name)
		if name == types.StrategyArbitrage {
			hedge := e.statsFor(types.StrategyArbitrageHedge)
			st.Profit = st.Profit.Add(hedge.Profit)
			st.Wins += hedge.Wins
			st.Losses += hedge.Losses
			st.Pending += hedge.Pending
		}
		fmt.Fprintf(&b, "%-12s $%s | %dW/%dL | %d pending\n",
			name+":", signed(st.Profit), st.Wins, st.Losses, st.Pending)
	}
	fmt.Fprintf(&b, "%-12s $%s | %dW/%dL\n", "TOTAL:", signed(total.Profit), total.Wins, total.Losses)
	fmt.Fprintf(&b, "Bankroll: $%s\n", e.ledger.Bankroll().StringFixed(2))
	return b.String()
}

func shortLabel(name string) string {
	switch name {
	case types.StrategyPrevious:
		return "p"
	case types.StrategyMomentum:
		return "m"
	case types.StrategyConsensus:
		return "c"
	case types.StrategyMomentum15:
		return "m15"
	case types.StrategyPrevious2:
		return "p2"
	case types.StrategyConsensus2:
		return "c2"
	case types.StrategyArbitrage:
		return "a"
	}
	return strings.ToLower(name)
}

func signed(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if !d.IsNegative() {
		return "+" + s
	}
	return s
}
