// Package engine runs the per-cycle decision loop: refresh signals, evaluate
// every strategy against a consistent risk snapshot, then apply settlements.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jjkirby/kalshipaper/internal/config"
	"github.com/jjkirby/kalshipaper/internal/risk"
	"github.com/jjkirby/kalshipaper/internal/signal"
	"github.com/jjkirby/kalshipaper/internal/strategy"
	"github.com/jjkirby/kalshipaper/internal/types"
)

// MarketSource supplies the active market and settlement facts.
type MarketSource interface {
	// OpenMarket returns the next-expiring open market in the series, or
	// (nil, nil) when none is open.
	OpenMarket(ctx context.Context) (*types.Market, error)
	// SettledSide returns the settled side of a market, SideNone while the
	// market is still pending.
	SettledSide(ctx context.Context, ticker string) (types.Side, error)
}

// PriceSource supplies spot price samples.
type PriceSource interface {
	Sample(ctx context.Context) (types.PriceSample, error)
}

// TradeLog persists trade intents and settlements.
type TradeLog interface {
	LogOpen(p *types.Position) error
	LogSettle(t *types.SettledTrade) error
}

// Notifier announces trade events out of band.
type Notifier interface {
	TradeOpened(p types.Position)
	TradeSettled(t types.SettledTrade)
}

// CycleStats is the aggregate surfaced after every cycle.
type CycleStats struct {
	Time        time.Time
	Ticker      string
	Bankroll    decimal.Decimal
	PerStrategy map[string]types.StrategyStats
}

// Engine owns all mutable strategy state and drives it single-threaded:
// one RunCycle at a time, entries always committed before that cycle's
// settlements are applied.
type Engine struct {
	cfg     *config.Config
	markets MarketSource
	prices  PriceSource

	hist       *signal.History
	board      *signal.Board
	store      *Store
	ledger     *risk.Ledger
	tracker    *risk.RollingTracker
	sizer      *risk.Sizer
	evaluators []strategy.Evaluator

	tradeLog TradeLog
	notifier Notifier
	statsFn  func(CycleStats)

	currentTicker string
	pendingPrev   string
	pendingResult types.Side

	stats map[string]*types.StrategyStats
}

// New creates an engine wired to its external collaborators.
func New(cfg *config.Config, markets MarketSource, prices PriceSource) *Engine {
	return &Engine{
		cfg:        cfg,
		markets:    markets,
		prices:     prices,
		hist:       signal.NewHistory(cfg.Momentum15Window),
		board:      signal.NewBoard(),
		store:      NewStore(),
		ledger:     risk.NewLedger(cfg.InitialBankroll, cfg.RiskPct, cfg.DailyLossCapR, cfg.WeeklyLossCapR),
		tracker:    risk.NewRollingTracker(cfg.RollingWindow),
		sizer:      risk.NewSizer(cfg.RiskPct, cfg.MaxRiskPct),
		evaluators: strategy.DefaultSet(strategy.Params{
			Stake:             cfg.Stake,
			DealMaxPrice:      cfg.DealMaxPrice,
			ConsensusMaxPrice: cfg.MaxPrice,
			ArbMaxBet:         cfg.ArbMaxBet,
			MomentumWindow:    cfg.MomentumWindow,
			Momentum15Window:  cfg.Momentum15Window,
		}),
		stats: make(map[string]*types.StrategyStats),
	}
}

// SetTradeLog sets the persistence sink.
func (e *Engine) SetTradeLog(l TradeLog) { e.tradeLog = l }

// SetNotifier sets the out-of-band trade announcer.
func (e *Engine) SetNotifier(n Notifier) { e.notifier = n }

// SetStatsFunc sets the per-cycle stats callback.
func (e *Engine) SetStatsFunc(fn func(CycleStats)) { e.statsFn = fn }

// Restore replays persisted trade records, rebuilding consumed slots,
// pending positions, the bankroll ledger and the rolling window. Records
// must be in chronological order.
func (e *Engine) Restore(records []types.TradeRecord) {
	for _, r := range records {
		e.store.MarkTraded(r.Strategy, r.BuyTicker)
		st := e.statsFor(r.Strategy)
		st.Staked = st.Staked.Add(r.Stake)

		if r.Outcome == "" {
			pos := &types.Position{
				ID:         r.TradeID,
				Strategy:   r.Strategy,
				Ticker:     r.BuyTicker,
				Side:       r.BuySide,
				Stake:      r.Stake,
				Price:      r.Price,
				Contracts:  r.Contracts,
				PrevTicker: r.PreviousTicker,
				Provenance: r.PreviousResult,
				OpenedAt:   r.Time,
			}
			if types.ConsensusFamily(r.Strategy) {
				pos.FeeReserved = r.Stake.Mul(e.cfg.FeePct)
			}
			e.store.AddPosition(pos)
			st.Pending++

			if r.Strategy == types.StrategyArbitrage {
				e.store.SetArb(r.BuyTicker, &strategy.ArbState{
					Side:      r.BuySide,
					Price:     r.Price,
					Contracts: r.Contracts,
				})
			}
			continue
		}

		st.Profit = st.Profit.Add(r.Profit)
		if r.Profit.GreaterThan(decimal.Zero) {
			st.Wins++
		} else {
			st.Losses++
		}
		if types.ConsensusFamily(r.Strategy) {
			e.ledger.RecordSettlement(r.Profit, r.Time)
			e.tracker.Record(r.Profit.GreaterThan(decimal.Zero), r.Profit)
		}
	}

	// Hedged flags come from the hedge leg's consumed slot.
	for _, p := range e.store.Open() {
		if p.Strategy == types.StrategyArbitrage {
			if arb := e.store.Arb(p.Ticker); arb != nil {
				arb.Hedged = e.store.Traded(types.StrategyArbitrageHedge, p.Ticker)
			}
		}
	}

	log.Info().
		Int("records", len(records)).
		Str("bankroll", e.ledger.Bankroll().StringFixed(2)).
		Int("rolling_window", e.tracker.Len()).
		Msg("Trade history restored")
}

// Run drives cycles until the context is cancelled. Cycles never overlap:
// the next tick is handled only after the previous cycle returns.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.RunCycle(ctx, time.Now().UTC()); err != nil {
				log.Error().Err(err).Msg("Cycle skipped")
			}
		}
	}
}

// RunCycle performs one full pass: fetch inputs, evaluate entries, apply
// settlements, surface stats. A collaborator failure before evaluation
// aborts the cycle with no state mutated.
func (e *Engine) RunCycle(ctx context.Context, now time.Time) error {
	if sample, err := e.prices.Sample(ctx); err != nil {
		log.Warn().Err(err).Msg("BTC price fetch failed")
	} else {
		e.hist.Add(sample)
	}

	mkt, err := e.markets.OpenMarket(ctx)
	if err != nil {
		return fmt.Errorf("fetch open market: %w", err)
	}
	if mkt == nil {
		log.Info().Str("series", e.cfg.SeriesTicker).Msg("No open market found")
		return nil
	}

	newlyOpen := false
	switch {
	case e.currentTicker == "":
		e.currentTicker = mkt.Ticker
		newlyOpen = true
	case mkt.Ticker != e.currentTicker:
		e.pendingPrev = e.currentTicker
		e.pendingResult = types.SideNone
		e.currentTicker = mkt.Ticker
		newlyOpen = true
		log.Info().
			Str("closed", e.pendingPrev).
			Str("opened", mkt.Ticker).
			Msg("Market rollover")
	}

	facts := e.fetchSettlementFacts(ctx)
	if e.pendingPrev != "" && e.pendingResult == types.SideNone {
		if side, ok := facts[e.pendingPrev]; ok {
			e.pendingResult = side
		}
	}

	snap := types.Snapshot{
		Market:      *mkt,
		IsNewlyOpen: newlyOpen,
		PrevTicker:  e.pendingPrev,
		PrevResult:  e.pendingResult,
	}
	set := e.board.Get(mkt.Ticker)
	if e.pendingResult != types.SideNone {
		set.Previous = e.pendingResult
	}

	// Phase 1: entries. Every evaluator reads the same start-of-cycle risk
	// snapshot; settlements collected above are not applied yet, so sizing
	// can never see P&L that was unrealized at entry time.
	view := risk.Snapshot(e.ledger, e.tracker, now)
	sctx := &strategy.Context{
		Snap:    snap,
		Signals: set,
		Hist:    e.hist,
		Risk:    view,
		Sizer:   e.sizer,
		Now:     now,
		Traded:  e.store.Traded,
		Arb:     e.store.Arb,
	}
	for _, ev := range e.evaluators {
		if d := ev.Evaluate(sctx); d != nil {
			e.apply(d, now)
		}
	}

	// The rollover is worked until both rollover-driven strategies have
	// traded the new ticker.
	if e.pendingPrev != "" &&
		e.store.Traded(types.StrategyPrevious, mkt.Ticker) &&
		e.store.Traded(types.StrategyMomentum, mkt.Ticker) {
		e.pendingPrev = ""
		e.pendingResult = types.SideNone
	}

	// Phase 2: settlements.
	for _, pos := range e.store.Open() {
		if side, ok := facts[pos.Ticker]; ok {
			e.settle(pos, side, now)
		}
	}

	e.emitStats(snap, now)
	return nil
}

// fetchSettlementFacts queries settlement once per ticker of interest. A
// failed lookup just leaves that ticker pending until the next cycle.
func (e *Engine) fetchSettlementFacts(ctx context.Context) map[string]types.Side {
	want := make(map[string]bool)
	if e.pendingPrev != "" && e.pendingResult == types.SideNone {
		want[e.pendingPrev] = true
	}
	for _, p := range e.store.Open() {
		want[p.Ticker] = true
	}

	facts := make(map[string]types.Side, len(want))
	for ticker := range want {
		side, err := e.markets.SettledSide(ctx, ticker)
		if err != nil {
			log.Debug().Err(err).Str("ticker", ticker).Msg("Settlement check failed")
			continue
		}
		if side != types.SideNone {
			facts[ticker] = side
		}
	}
	return facts
}

// apply commits one decision: the slot is always consumed, a position is
// opened when the decision carries an entry.
func (e *Engine) apply(d *strategy.Decision, now time.Time) {
	e.store.MarkTraded(d.Strategy, d.Ticker)

	if d.Entry == nil {
		log.Info().
			Str("strategy", d.Strategy).
			Str("ticker", d.Ticker).
			Str("reason", d.Reason).
			Msg("No entry")
		return
	}

	en := d.Entry
	pos := &types.Position{
		ID:         fmt.Sprintf("%s_%d", strings.ToLower(d.Strategy), now.UnixNano()),
		Strategy:   d.Strategy,
		Ticker:     d.Ticker,
		Side:       en.Side,
		Stake:      en.Stake,
		Price:      en.Price,
		Contracts:  en.Contracts,
		PrevTicker: en.PrevTicker,
		Provenance: en.Provenance,
		OpenedAt:   now,
	}
	if types.ConsensusFamily(d.Strategy) {
		pos.FeeReserved = en.Stake.Mul(e.cfg.FeePct)
	}

	e.store.AddPosition(pos)
	switch d.Strategy {
	case types.StrategyArbitrage:
		e.store.SetArb(d.Ticker, &strategy.ArbState{
			Side:      en.Side,
			Price:     en.Price,
			Contracts: en.Contracts,
		})
	case types.StrategyArbitrageHedge:
		if arb := e.store.Arb(d.Ticker); arb != nil {
			arb.Hedged = true
		}
	}

	st := e.statsFor(d.Strategy)
	st.Staked = st.Staked.Add(en.Stake)
	st.Pending++

	log.Info().
		Str("strategy", d.Strategy).
		Str("ticker", d.Ticker).
		Str("side", string(en.Side)).
		Str("stake", en.Stake.StringFixed(2)).
		Str("price", en.Price.StringFixed(4)).
		Str("contracts", en.Contracts.StringFixed(4)).
		Str("signal", en.Provenance).
		Msg("BUY")

	if e.tradeLog != nil {
		if err := e.tradeLog.LogOpen(pos); err != nil {
			log.Error().Err(err).Str("id", pos.ID).Msg("Failed to persist trade")
		}
	}
	if e.notifier != nil {
		e.notifier.TradeOpened(*pos)
	}
}

// settle finalizes one position against a settlement fact and feeds the
// consensus-family ledger and rolling window. Removing the position from
// the open set makes a second settlement attempt a no-op.
func (e *Engine) settle(pos *types.Position, settledSide types.Side, now time.Time) {
	won := pos.Side == settledSide

	payout := decimal.Zero
	if won {
		payout = pos.Contracts
	}
	gross := payout.Sub(pos.Stake)
	fee := pos.FeeReserved
	net := gross.Sub(fee)

	outcome := types.OutcomeLoss
	if won {
		outcome = types.OutcomeWin
	}

	settled := types.SettledTrade{
		Position:    *pos,
		SettledSide: settledSide,
		Outcome:     outcome,
		Payout:      payout,
		GrossProfit: gross,
		Fee:         fee,
		NetProfit:   net,
		SettledAt:   now,
	}

	e.store.Remove(pos.ID)

	st := e.statsFor(pos.Strategy)
	st.Pending--
	st.Profit = st.Profit.Add(net)
	if net.GreaterThan(decimal.Zero) {
		st.Wins++
	} else {
		st.Losses++
	}

	if types.ConsensusFamily(pos.Strategy) {
		e.ledger.RecordSettlement(net, now)
		e.tracker.Record(net.GreaterThan(decimal.Zero), net)
	}

	log.Info().
		Str("strategy", pos.Strategy).
		Str("ticker", pos.Ticker).
		Str("outcome", string(outcome)).
		Str("payout", payout.StringFixed(4)).
		Str("fee", fee.StringFixed(4)).
		Str("net", net.StringFixed(2)).
		Msg("SETTLED")

	if e.tradeLog != nil {
		if err := e.tradeLog.LogSettle(&settled); err != nil {
			log.Error().Err(err).Str("id", pos.ID).Msg("Failed to persist settlement")
		}
	}
	if e.notifier != nil {
		e.notifier.TradeSettled(settled)
	}
}

func (e *Engine) statsFor(strategyName string) *types.StrategyStats {
	st, ok := e.stats[strategyName]
	if !ok {
		st = &types.StrategyStats{}
		e.stats[strategyName] = st
	}
	return st
}

// Bankroll returns the current consensus-family bankroll.
func (e *Engine) Bankroll() decimal.Decimal {
	return e.ledger.Bankroll()
}

// Stats returns a copy of the per-strategy aggregates.
func (e *Engine) Stats() map[string]types.StrategyStats {
	out := make(map[string]types.StrategyStats, len(e.stats))
	for name, st := range e.stats {
		out[name] = *st
	}
	return out
}
