package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/mwessel/indexdata/internal/csvfs"
	"github.com/mwessel/indexdata/internal/model"
)

// OHLCLoader appends price-bar staging files to the ohlc_data table.
//
// There is no existence check and no ON CONFLICT clause: correct
// watermarking guarantees non-overlapping fetch windows, so a
// (ticker, date) violation means the windowing logic is broken and the
// error must surface rather than be swallowed. The violating file rolls
// back whole; the run continues with the next file.
type OHLCLoader struct {
	db  *pgxpool.Pool
	log zerolog.Logger
	now func() time.Time
}

// NewOHLCLoader creates an OHLCLoader.
func NewOHLCLoader(db *pgxpool.Pool, log zerolog.Logger) *OHLCLoader {
	return &OHLCLoader{
		db:  db,
		log: log.With().Str("component", "ohlc_loader").Logger(),
		now: time.Now,
	}
}

var ohlcColumns = []string{
	"index", "ticker", "date", "open", "high", "low", "close",
	"volume", "dividends", "stock_splits", "ingestion_timestamp", "ingestion_date",
}

// LoadFile bulk-appends one staging file inside a transaction.
func (l *OHLCLoader) LoadFile(ctx context.Context, path string) (int, error) {
	bars, err := csvfs.ReadBars(path)
	if err != nil {
		return 0, err
	}

	now := l.now().UTC()
	today := model.Day(now)

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx for %s: %w", path, err)
	}
	defer tx.Rollback(ctx)

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"ohlc_data"},
		ohlcColumns,
		pgx.CopyFromSlice(len(bars), func(i int) ([]any, error) {
			b := bars[i]
			return []any{
				b.Index, b.Ticker, b.Date, b.Open, b.High, b.Low, b.Close,
				b.Volume, b.Dividends, b.StockSplits, now, today,
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("bulk insert %s: %w", path, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit %s: %w", path, err)
	}

	l.log.Info().
		Str("file", path).
		Int64("rows", copied).
		Msg("Price bars appended")

	return int(copied), nil
}
