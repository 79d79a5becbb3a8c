package config

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SeriesTicker != "KXBTC15M" {
		t.Errorf("series = %q", cfg.SeriesTicker)
	}
	if !cfg.Stake.Equal(decimal.NewFromInt(5)) {
		t.Errorf("stake = %s", cfg.Stake)
	}
	if !cfg.DealMaxPrice.Equal(decimal.NewFromFloat(0.45)) {
		t.Errorf("deal max price = %s", cfg.DealMaxPrice)
	}
	if cfg.RollingWindow != 30 {
		t.Errorf("rolling window = %d", cfg.RollingWindow)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STAKE_USD", "2.50")
	t.Setenv("CONSENSUS_MAX_PRICE", "0.60")
	t.Setenv("DATABASE_URL", "postgres://bot:pw@db/kalshipaper")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Stake.Equal(decimal.NewFromFloat(2.5)) {
		t.Errorf("stake = %s", cfg.Stake)
	}
	if !cfg.MaxPrice.Equal(decimal.NewFromFloat(0.6)) {
		t.Errorf("max price = %s", cfg.MaxPrice)
	}
	if cfg.DatabasePath != "postgres://bot:pw@db/kalshipaper" {
		t.Errorf("database = %q", cfg.DatabasePath)
	}
}

func TestLoadRejectsBadChatID(t *testing.T) {
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a non-numeric chat id")
	}
}

func TestLoadRejectsNonPositivePoll(t *testing.T) {
	t.Setenv("POLL_SECONDS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a zero poll interval")
	}
}
