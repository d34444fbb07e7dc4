package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mwessel/indexdata/internal/model"
)

// CompanyFilter narrows a membership listing. Zero values mean "any".
type CompanyFilter struct {
	Index         string
	Sector        string
	IngestionDate *time.Time
}

// IndexSummary is one row of the indices overview.
type IndexSummary struct {
	Index          string    `json:"index"`
	Companies      int       `json:"companies"`
	LatestSnapshot time.Time `json:"latest_snapshot"`
}

// Store is the read-only query surface the handlers depend on.
type Store interface {
	Companies(ctx context.Context, filter CompanyFilter) ([]model.Company, error)
	Indices(ctx context.Context) ([]IndexSummary, error)
	History(ctx context.Context, ticker string, limit int) ([]model.PriceBar, error)
}

// PGStore implements Store over a pgx connection pool.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a PGStore.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// Companies lists membership rows matching the filter, newest snapshot
// first within each index.
func (s *PGStore) Companies(ctx context.Context, filter CompanyFilter) ([]model.Company, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Index != "" {
		args = append(args, filter.Index)
		conds = append(conds, fmt.Sprintf(`"index" = $%d`, len(args)))
	}
	if filter.Sector != "" {
		args = append(args, filter.Sector)
		conds = append(conds, fmt.Sprintf(`sector = $%d`, len(args)))
	}
	if filter.IngestionDate != nil {
		args = append(args, *filter.IngestionDate)
		conds = append(conds, fmt.Sprintf(`ingestion_date = $%d`, len(args)))
	}

	query := `SELECT ticker, "index", company, sector, ingestion_timestamp, ingestion_date FROM companies`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY "index", ticker`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.Ticker, &c.Index, &c.Name, &c.Sector, &c.IngestionTimestamp, &c.IngestionDate); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read companies: %w", err)
	}
	return companies, nil
}

// Indices summarizes the latest snapshot per index.
func (s *PGStore) Indices(ctx context.Context) ([]IndexSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT "index", COUNT(*), MAX(ingestion_date)
		FROM companies
		GROUP BY "index"
		ORDER BY "index"`)
	if err != nil {
		return nil, fmt.Errorf("query indices: %w", err)
	}
	defer rows.Close()

	var summaries []IndexSummary
	for rows.Next() {
		var sum IndexSummary
		if err := rows.Scan(&sum.Index, &sum.Companies, &sum.LatestSnapshot); err != nil {
			return nil, fmt.Errorf("scan index summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read indices: %w", err)
	}
	return summaries, nil
}

// History returns the most recent bars for a ticker, newest first.
func (s *PGStore) History(ctx context.Context, ticker string, limit int) ([]model.PriceBar, error) {
	rows, err := s.db.Query(ctx, `
		SELECT ticker, "index", date, open, high, low, close,
		       volume, dividends, stock_splits, ingestion_timestamp, ingestion_date
		FROM ohlc_data
		WHERE ticker = $1
		ORDER BY date DESC
		LIMIT $2`, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("query history for %s: %w", ticker, err)
	}
	defer rows.Close()

	var bars []model.PriceBar
	for rows.Next() {
		var b model.PriceBar
		if err := rows.Scan(&b.Ticker, &b.Index, &b.Date, &b.Open, &b.High, &b.Low, &b.Close,
			&b.Volume, &b.Dividends, &b.StockSplits, &b.IngestionTimestamp, &b.IngestionDate); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history for %s: %w", ticker, err)
	}
	return bars, nil
}
