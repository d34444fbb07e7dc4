package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Member is one (ticker, index) pair from the latest membership snapshot.
type Member struct {
	Ticker string
	Index  string
}

// Resolver answers watermark queries against the store. All methods are
// read-only.
type Resolver struct {
	db *pgxpool.Pool
}

// NewResolver creates a Resolver over a connection pool.
func NewResolver(db *pgxpool.Pool) *Resolver {
	return &Resolver{db: db}
}

// PriceWatermark returns the newest persisted bar date for a ticker, or
// nil when no bars exist.
func (r *Resolver) PriceWatermark(ctx context.Context, ticker, index string) (*time.Time, error) {
	var max *time.Time
	err := r.db.QueryRow(ctx,
		`SELECT MAX(date) FROM ohlc_data WHERE ticker = $1 AND "index" = $2`,
		ticker, index,
	).Scan(&max)
	if err != nil {
		return nil, fmt.Errorf("price watermark for %s/%s: %w", ticker, index, err)
	}
	return max, nil
}

// LatestMembers returns the (ticker, index) pairs of the most recent
// membership snapshot per index. Older snapshots are kept in the table
// but only the newest one drives price fetching.
func (r *Resolver) LatestMembers(ctx context.Context) ([]Member, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ticker, "index"
		FROM companies
		WHERE ("index", ingestion_date) IN (
			SELECT "index", MAX(ingestion_date)
			FROM companies
			GROUP BY "index"
		)
		ORDER BY "index", ticker`)
	if err != nil {
		return nil, fmt.Errorf("query latest members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.Ticker, &m.Index); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read members: %w", err)
	}
	return members, nil
}
