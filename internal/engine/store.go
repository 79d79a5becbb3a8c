package engine

import (
	"github.com/jjkirby/kalshipaper/internal/strategy"
	"github.com/jjkirby/kalshipaper/internal/types"
)

// Store is the trade state store: which (strategy, ticker) slots have been
// consumed, which positions are still pending, and the arbitrage first-leg
// state per ticker. Consumed slots are never released; that is what enforces
// one trade per ticker per strategy for the life of the process.
type Store struct {
	traded map[string]map[string]bool
	open   map[string]*types.Position
	order  []string
	arbs   map[string]*strategy.ArbState
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		traded: make(map[string]map[string]bool),
		open:   make(map[string]*types.Position),
		arbs:   make(map[string]*strategy.ArbState),
	}
}

// Traded reports whether a (strategy, ticker) slot is consumed.
func (s *Store) Traded(strategyName, ticker string) bool {
	return s.traded[strategyName][ticker]
}

// MarkTraded consumes a (strategy, ticker) slot.
func (s *Store) MarkTraded(strategyName, ticker string) {
	m, ok := s.traded[strategyName]
	if !ok {
		m = make(map[string]bool)
		s.traded[strategyName] = m
	}
	m[ticker] = true
}

// AddPosition registers a pending position.
func (s *Store) AddPosition(p *types.Position) {
	s.open[p.ID] = p
	s.order = append(s.order, p.ID)
}

// Open returns the pending positions in open order.
func (s *Store) Open() []*types.Position {
	out := make([]*types.Position, 0, len(s.open))
	for _, id := range s.order {
		if p, ok := s.open[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Remove drops a settled position from the open set. The consumed slot
// stays, so settling is idempotent and re-entry is impossible.
func (s *Store) Remove(id string) {
	delete(s.open, id)
}

// Arb returns the pending arbitrage first leg for a ticker, nil if none.
func (s *Store) Arb(ticker string) *strategy.ArbState {
	return s.arbs[ticker]
}

// SetArb records the arbitrage first leg for a ticker.
func (s *Store) SetArb(ticker string, st *strategy.ArbState) {
	s.arbs[ticker] = st
}
