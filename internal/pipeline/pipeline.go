package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/mwessel/indexdata/internal/config"
	"github.com/mwessel/indexdata/internal/csvfs"
	"github.com/mwessel/indexdata/internal/ingest"
	"github.com/mwessel/indexdata/internal/prices"
	"github.com/mwessel/indexdata/internal/scrape"
)

// Pipeline bundles the configured steps over one database pool.
type Pipeline struct {
	cfg *config.Config
	db  *pgxpool.Pool
	log zerolog.Logger
}

// New creates a Pipeline. db may be nil for scrape-only use.
func New(cfg *config.Config, db *pgxpool.Pool, log zerolog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, db: db, log: log}
}

// Scrape fetches every configured index-membership page and stages each
// as a CSV snapshot. A failed index is logged and the rest proceed.
func (p *Pipeline) Scrape(ctx context.Context) error {
	scraper := scrape.New(p.log)

	names := make([]string, 0, len(p.cfg.Sources.Wikipedia.Indices))
	for name := range p.cfg.Sources.Wikipedia.Indices {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := 0
	for _, name := range names {
		src := p.cfg.Sources.Wikipedia.Indices[name]
		target := scrape.Target{
			Index:       name,
			URL:         src.URL,
			TableIndex:  src.TableIndex,
			ExpectedMin: src.ExpectedRange[0],
			ExpectedMax: src.ExpectedRange[1],
			Columns:     src.Columns,
		}

		companies, err := scraper.FetchIndex(ctx, target)
		if err != nil {
			failed++
			p.log.Error().Err(err).Str("index", name).Msg("Scrape failed")
			continue
		}

		path, err := csvfs.WriteCompanies(p.cfg.Paths.WikiDir, name, companies)
		if err != nil {
			failed++
			p.log.Error().Err(err).Str("index", name).Msg("Failed to stage snapshot")
			continue
		}
		p.log.Info().Str("index", name).Int("companies", len(companies)).Str("file", path).Msg("Snapshot staged")
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d indices failed to scrape", failed, len(names))
	}
	return nil
}

// Fetch pulls incremental price history for every member of the latest
// snapshots and stages the bars as CSV.
func (p *Pipeline) Fetch(ctx context.Context) error {
	resolver := ingest.NewResolver(p.db)

	members, err := resolver.LatestMembers(ctx)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		p.log.Warn().Msg("No members in store, nothing to fetch")
		return nil
	}

	client := prices.NewClient(p.cfg.Sources.Prices.BaseURL, p.log,
		prices.WithInterval(p.cfg.Sources.Prices.Interval),
		prices.WithTimeout(p.cfg.Sources.Prices.Timeout),
		prices.WithRetries(uint64(p.cfg.Sources.Prices.MaxRetries), time.Second),
	)

	runner := ingest.NewRunner(p.log)
	results := runner.FetchPrices(ctx, members, resolver, client, p.cfg.Paths.OHLCDir)
	return failures(results, "fetch")
}

// Load reconciles every staged CSV into the store: membership snapshots
// first so the fetch step's member list stays current, then price bars.
func (p *Pipeline) Load(ctx context.Context) error {
	runner := ingest.NewRunner(p.log)

	companyResults := runner.LoadDir(ctx, p.cfg.Paths.WikiDir, ingest.NewCompanyLoader(p.db, p.log))
	barResults := runner.LoadDir(ctx, p.cfg.Paths.OHLCDir, ingest.NewOHLCLoader(p.db, p.log))

	return failures(append(companyResults, barResults...), "load")
}

// Cleanup deletes staged CSVs older than the configured retention.
func (p *Pipeline) Cleanup() error {
	for _, dir := range []string{p.cfg.Paths.WikiDir, p.cfg.Paths.OHLCDir} {
		if _, err := csvfs.Cleanup(dir, p.cfg.Paths.RetentionDays, p.log); err != nil {
			return err
		}
	}
	return nil
}

func failures(results []ingest.UnitResult, step string) error {
	failed := 0
	for _, r := range results {
		if r.State == ingest.StateFailed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%s: %d of %d units failed", step, failed, len(results))
	}
	return nil
}
