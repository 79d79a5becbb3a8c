package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration for the bot
type Config struct {
	// Market series
	SeriesTicker string
	PollInterval time.Duration

	// Fixed-stake strategies
	Stake            decimal.Decimal
	MomentumWindow   time.Duration
	Momentum15Window time.Duration
	DealMaxPrice     decimal.Decimal
	ArbMaxBet        decimal.Decimal

	// Consensus risk and execution controls
	InitialBankroll decimal.Decimal
	RiskPct         decimal.Decimal
	MaxRiskPct      decimal.Decimal
	MaxPrice        decimal.Decimal
	FeePct          decimal.Decimal
	RollingWindow   int
	DailyLossCapR   decimal.Decimal
	WeeklyLossCapR  decimal.Decimal

	// Collaborators
	DatabasePath   string
	TradesCSV      string
	CoinbaseWS     bool
	TelegramToken  string
	TelegramChatID int64

	Debug bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		SeriesTicker: getEnv("SERIES_TICKER", "KXBTC15M"),
		PollInterval: time.Duration(getEnvInt("POLL_SECONDS", 5)) * time.Second,

		Stake:            getEnvDecimal("STAKE_USD", decimal.NewFromInt(5)),
		MomentumWindow:   time.Duration(getEnvInt("MOMENTUM_WINDOW_SECONDS", 60)) * time.Second,
		Momentum15Window: time.Duration(getEnvInt("MOMENTUM_15_WINDOW_SECONDS", 900)) * time.Second,
		DealMaxPrice:     getEnvDecimal("DEAL_MAX_PRICE", decimal.NewFromFloat(0.45)),
		ArbMaxBet:        getEnvDecimal("ARBITRAGE_MAX_BET_USD", decimal.NewFromInt(10)),

		InitialBankroll: getEnvDecimal("INITIAL_BANKROLL_USD", decimal.NewFromInt(500)),
		RiskPct:         getEnvDecimal("CONSENSUS_RISK_PCT", decimal.NewFromFloat(0.01)),
		MaxRiskPct:      getEnvDecimal("CONSENSUS_MAX_RISK_PCT", decimal.NewFromFloat(0.02)),
		MaxPrice:        getEnvDecimal("CONSENSUS_MAX_PRICE", decimal.NewFromFloat(0.55)),
		FeePct:          getEnvDecimal("CONSENSUS_FEE_PCT", decimal.Zero),
		RollingWindow:   getEnvInt("CONSENSUS_ROLLING_WINDOW", 30),
		DailyLossCapR:   getEnvDecimal("CONSENSUS_DAILY_LOSS_CAP_R", decimal.NewFromInt(3)),
		WeeklyLossCapR:  getEnvDecimal("CONSENSUS_WEEKLY_LOSS_CAP_R", decimal.NewFromInt(8)),

		DatabasePath:  getEnv("DATABASE_PATH", "data/kalshipaper.db"),
		TradesCSV:     getEnv("TRADES_CSV", "data/mock_trades.csv"),
		CoinbaseWS:    getEnvBool("COINBASE_WS", false),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		Debug: getEnvBool("DEBUG", false),
	}

	// DATABASE_URL (postgres DSN) overrides the local sqlite path
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabasePath = url
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_SECONDS must be positive")
	}
	if cfg.RollingWindow <= 0 {
		return nil, fmt.Errorf("CONSENSUS_ROLLING_WINDOW must be positive")
	}
	if cfg.Stake.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("STAKE_USD must be positive")
	}

	return cfg, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
