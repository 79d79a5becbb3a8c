package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jjkirby/kalshipaper/internal/types"
)

var csvHeader = []string{
	"time", "strategy", "previous_ticker", "previous_result",
	"buy_ticker", "buy_side", "stake_usd", "price_usd", "contracts",
	"outcome", "payout_usd", "gross_profit_usd", "fee_usd", "profit_usd",
}

// WriteCSV renders trade records in the flat spreadsheet schema. Pending
// trades leave the settlement columns empty.
func WriteCSV(w io.Writer, recs []types.TradeRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{
			r.Time.UTC().Format("2006-01-02 15:04:05"),
			r.Strategy,
			r.PreviousTicker,
			r.PreviousResult,
			r.BuyTicker,
			string(r.BuySide),
			r.Stake.StringFixed(2),
			r.Price.StringFixed(4),
			r.Contracts.StringFixed(4),
			"",
			"",
			"",
			r.Fee.StringFixed(4),
			"",
		}
		if r.Outcome != "" {
			row[9] = string(r.Outcome)
			row[10] = r.Payout.StringFixed(4)
			row[11] = r.GrossProfit.StringFixed(4)
			row[13] = r.Profit.StringFixed(4)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the full trade log to a file, creating parent directories
// as needed.
func (s *Store) ExportCSV(path string) error {
	recs, err := s.All()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := WriteCSV(f, recs); err != nil {
		f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}
