package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jjkirby/kalshipaper/internal/types"
)

const (
	wsFeedURL = "wss://ws-feed.exchange.coinbase.com"

	// maxTickAge bounds how stale a streamed print may be before Sample
	// refuses to serve it.
	maxTickAge = 30 * time.Second
)

// Stream holds a Coinbase websocket ticker subscription open and serves the
// most recent BTC-USD print. It reconnects with backoff until Close.
type Stream struct {
	url string

	mu     sync.RWMutex
	last   types.PriceSample
	hasOne bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewStream creates the streaming price source and starts the read loop.
func NewStream() *Stream {
	s := &Stream{url: wsFeedURL, done: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(ctx)
	return s
}

// Sample returns the latest streamed print. It fails while the stream has
// not yet produced a tick or the last tick is too old.
func (s *Stream) Sample(ctx context.Context) (types.PriceSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasOne {
		return types.PriceSample{}, fmt.Errorf("coinbase stream: no tick yet")
	}
	if age := time.Since(s.last.Time); age > maxTickAge {
		return types.PriceSample{}, fmt.Errorf("coinbase stream: last tick %s old", age.Round(time.Second))
	}
	return s.last, nil
}

// Close stops the read loop.
func (s *Stream) Close() {
	s.cancel()
	<-s.done
}

type wsSubscribe struct {
	Type     string      `json:"type"`
	Channels []wsChannel `json:"channels"`
}

type wsChannel struct {
	Name       string   `json:"name"`
	ProductIDs []string `json:"product_ids"`
}

type wsTicker struct {
	Type  string `json:"type"`
	Price string `json:"price"`
}

func (s *Stream) run(ctx context.Context) {
	defer close(s.done)

	backoff := time.Second
	for {
		if err := s.connect(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("Coinbase stream dropped")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (s *Stream) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	sub := wsSubscribe{
		Type:     "subscribe",
		Channels: []wsChannel{{Name: "ticker", ProductIDs: []string{"BTC-USD"}}},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	log.Info().Msg("Coinbase ticker stream connected")

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		var tick wsTicker
		if err := json.Unmarshal(msg, &tick); err != nil || tick.Type != "ticker" {
			continue
		}
		price, err := decimal.NewFromString(tick.Price)
		if err != nil {
			continue
		}
		s.mu.Lock()
		s.last = types.PriceSample{Time: time.Now().UTC(), Price: price}
		s.hasOne = true
		s.mu.Unlock()
	}
}
