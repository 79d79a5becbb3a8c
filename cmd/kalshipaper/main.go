package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jjkirby/kalshipaper/internal/config"
	"github.com/jjkirby/kalshipaper/internal/engine"
	"github.com/jjkirby/kalshipaper/internal/feeds"
	"github.com/jjkirby/kalshipaper/internal/kalshi"
	"github.com/jjkirby/kalshipaper/internal/notify"
	"github.com/jjkirby/kalshipaper/internal/storage"
)

func main() {
	godotenv.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().Msg("═══════════════════════════════════════════")
	log.Info().Msg("  Kalshi 15-minute BTC paper trader")
	log.Info().Msg("═══════════════════════════════════════════")
	log.Info().Str("series", cfg.SeriesTicker).Dur("poll", cfg.PollInterval).Msg("Market")
	log.Info().
		Str("stake", cfg.Stake.StringFixed(2)).
		Str("deal_max", cfg.DealMaxPrice.StringFixed(2)).
		Str("arb_max_bet", cfg.ArbMaxBet.StringFixed(2)).
		Msg("Fixed-stake strategies: PREVIOUS MOMENTUM MOMENTUM_15 PREVIOUS_2 ARBITRAGE")
	log.Info().
		Str("bankroll", cfg.InitialBankroll.StringFixed(2)).
		Str("risk_pct", cfg.RiskPct.String()).
		Str("max_price", cfg.MaxPrice.StringFixed(2)).
		Int("rolling_window", cfg.RollingWindow).
		Msg("Consensus strategies: CONSENSUS CONSENSUS_2")

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open trade log")
	}
	defer store.Close()

	markets := kalshi.NewClient(cfg.SeriesTicker)

	var prices engine.PriceSource
	if cfg.CoinbaseWS {
		stream := feeds.NewStream()
		defer stream.Close()
		prices = stream
	} else {
		prices = feeds.NewSpotPoller()
	}

	tg, err := notify.New(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect Telegram")
	}

	eng := engine.New(cfg, markets, prices)
	eng.SetTradeLog(store)
	if tg != nil {
		eng.SetNotifier(tg)
	}

	records, err := store.All()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load trade history")
	}
	eng.Restore(records)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("Starting decision loop, Ctrl-C to stop")
	eng.Run(ctx)

	summary := eng.FormatSummary()
	fmt.Print(summary)
	tg.Summary(summary)

	if err := store.ExportCSV(cfg.TradesCSV); err != nil {
		log.Error().Err(err).Msg("CSV export failed")
	} else {
		log.Info().Str("path", cfg.TradesCSV).Msg("Trade log exported")
	}
}
