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

// CompanyLoader reconciles membership snapshot files into the companies
// table. Each file is one transaction: either every insert and
// timestamp touch commits, or none do.
type CompanyLoader struct {
	db  *pgxpool.Pool
	log zerolog.Logger
	now func() time.Time
}

// NewCompanyLoader creates a CompanyLoader.
func NewCompanyLoader(db *pgxpool.Pool, log zerolog.Logger) *CompanyLoader {
	return &CompanyLoader{
		db:  db,
		log: log.With().Str("component", "company_loader").Logger(),
		now: time.Now,
	}
}

// LoadFile reconciles one snapshot file. Rows that failed validation
// were already dropped by the reader; re-sighted (ticker, index) keys
// get their ingestion timestamp refreshed, new keys are inserted. The
// company name and sector of an existing row are never overwritten.
func (l *CompanyLoader) LoadFile(ctx context.Context, path string) (int, error) {
	companies, skipped, err := csvfs.ReadCompanies(path)
	if err != nil {
		return 0, err
	}
	if skipped > 0 {
		l.log.Warn().Str("file", path).Int("skipped", skipped).Msg("Skipped invalid rows")
	}

	now := l.now().UTC()
	today := model.Day(now)

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx for %s: %w", path, err)
	}
	defer tx.Rollback(ctx)

	existing, err := existingKeys(ctx, tx, companies)
	if err != nil {
		return 0, err
	}

	plan := planCompanies(existing, companies)

	batch := &pgx.Batch{}
	for _, c := range plan.updates {
		batch.Queue(`
			UPDATE companies
			SET ingestion_timestamp = $1, ingestion_date = $2
			WHERE ticker = $3 AND "index" = $4
		`, now, today, c.Ticker, c.Index)
	}
	for _, c := range plan.inserts {
		batch.Queue(`
			INSERT INTO companies (ticker, "index", company, sector, ingestion_timestamp, ingestion_date)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, c.Ticker, c.Index, c.Name, c.Sector, now, today)
	}

	if err := flushBatch(ctx, tx, batch); err != nil {
		return 0, fmt.Errorf("reconcile %s: %w", path, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit %s: %w", path, err)
	}

	l.log.Info().
		Str("file", path).
		Int("inserted", len(plan.inserts)).
		Int("updated", len(plan.updates)).
		Msg("Snapshot reconciled")

	return len(plan.inserts) + len(plan.updates), nil
}

// existingKeys fetches the already-persisted natural keys for the
// indices present in the file.
func existingKeys(ctx context.Context, tx pgx.Tx, companies []model.Company) (map[model.CompanyKey]struct{}, error) {
	indices := make(map[string]struct{})
	for _, c := range companies {
		indices[c.Index] = struct{}{}
	}

	existing := make(map[model.CompanyKey]struct{})
	for index := range indices {
		rows, err := tx.Query(ctx,
			`SELECT ticker, "index" FROM companies WHERE "index" = $1`, index)
		if err != nil {
			return nil, fmt.Errorf("query existing keys for %s: %w", index, err)
		}
		for rows.Next() {
			var k model.CompanyKey
			if err := rows.Scan(&k.Ticker, &k.Index); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan existing key: %w", err)
			}
			existing[k] = struct{}{}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("read existing keys for %s: %w", index, err)
		}
	}
	return existing, nil
}

// companyPlan is the outcome of reconciling a snapshot against the
// existing keys: rows to insert and rows whose timestamp to refresh.
type companyPlan struct {
	inserts []model.Company
	updates []model.Company
}

// planCompanies decides insert vs. touch per incoming record. Duplicate
// keys within one file collapse to their first occurrence.
func planCompanies(existing map[model.CompanyKey]struct{}, incoming []model.Company) companyPlan {
	var plan companyPlan
	seen := make(map[model.CompanyKey]struct{}, len(incoming))

	for _, c := range incoming {
		key := c.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if _, ok := existing[key]; ok {
			plan.updates = append(plan.updates, c)
		} else {
			plan.inserts = append(plan.inserts, c)
		}
	}
	return plan
}

// flushBatch sends a batch and surfaces the first per-statement error.
func flushBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return results.Close()
}
