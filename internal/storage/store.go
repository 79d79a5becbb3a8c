// Package storage persists the trade log through gorm, so a restarted
// process can rebuild its traded slots, pending positions and bankroll from
// the database. SQLite by default, Postgres when the DSN says so.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jjkirby/kalshipaper/internal/types"
)

// TradeRow is the gorm model for one trade, pending or settled. Settlement
// updates the row in place keyed by TradeID.
type TradeRow struct {
	ID             uint            `gorm:"primaryKey"`
	TradeID        string          `gorm:"uniqueIndex;size:64"`
	Time           time.Time       `gorm:"index"`
	Strategy       string          `gorm:"index;size:32"`
	PreviousTicker string          `gorm:"size:64"`
	PreviousResult string          `gorm:"size:64"`
	BuyTicker      string          `gorm:"index;size:64"`
	BuySide        string          `gorm:"size:8"`
	Stake          decimal.Decimal `gorm:"type:decimal(20,8)"`
	Price          decimal.Decimal `gorm:"type:decimal(20,8)"`
	Contracts      decimal.Decimal `gorm:"type:decimal(20,8)"`
	Outcome        string          `gorm:"size:8"`
	Payout         decimal.Decimal `gorm:"type:decimal(20,8)"`
	GrossProfit    decimal.Decimal `gorm:"type:decimal(20,8)"`
	Fee            decimal.Decimal `gorm:"type:decimal(20,8)"`
	Profit         decimal.Decimal `gorm:"type:decimal(20,8)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName keeps the table name stable.
func (TradeRow) TableName() string { return "trades" }

// Store wraps the gorm handle.
type Store struct {
	db *gorm.DB
}

// Open connects and migrates. A DSN starting with postgres:// selects the
// Postgres driver, anything else is treated as a SQLite file path.
func Open(dsn string) (*Store, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
		log.Info().Msg("Using PostgreSQL trade log")
	} else {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
		dialector = sqlite.Open(dsn)
		log.Info().Str("path", dsn).Msg("Using SQLite trade log")
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&TradeRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// LogOpen inserts a pending trade row.
func (s *Store) LogOpen(p *types.Position) error {
	row := TradeRow{
		TradeID:        p.ID,
		Time:           p.OpenedAt,
		Strategy:       p.Strategy,
		PreviousTicker: p.PrevTicker,
		PreviousResult: p.Provenance,
		BuyTicker:      p.Ticker,
		BuySide:        string(p.Side),
		Stake:          p.Stake,
		Price:          p.Price,
		Contracts:      p.Contracts,
		Fee:            p.FeeReserved,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("insert trade %s: %w", p.ID, err)
	}
	return nil
}

// LogSettle finalizes the row for a settled trade.
func (s *Store) LogSettle(t *types.SettledTrade) error {
	res := s.db.Model(&TradeRow{}).Where("trade_id = ?", t.ID).Updates(map[string]any{
		"outcome":      string(t.Outcome),
		"payout":       t.Payout,
		"gross_profit": t.GrossProfit,
		"fee":          t.Fee,
		"profit":       t.NetProfit,
		"updated_at":   t.SettledAt,
	})
	if res.Error != nil {
		return fmt.Errorf("settle trade %s: %w", t.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("settle trade %s: no such row", t.ID)
	}
	return nil
}

// All returns every trade in chronological order, for state restore and the
// CSV export.
func (s *Store) All() ([]types.TradeRecord, error) {
	var rows []TradeRow
	if err := s.db.Order("time asc, id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	out := make([]types.TradeRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.TradeRecord{
			TradeID:        r.TradeID,
			Time:           r.Time,
			Strategy:       r.Strategy,
			PreviousTicker: r.PreviousTicker,
			PreviousResult: r.PreviousResult,
			BuyTicker:      r.BuyTicker,
			BuySide:        types.Side(r.BuySide),
			Stake:          r.Stake,
			Price:          r.Price,
			Contracts:      r.Contracts,
			Outcome:        types.Outcome(r.Outcome),
			Payout:         r.Payout,
			GrossProfit:    r.GrossProfit,
			Fee:            r.Fee,
			Profit:         r.Profit,
		})
	}
	return out, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
