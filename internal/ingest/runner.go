package ingest

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mwessel/indexdata/internal/csvfs"
	"github.com/mwessel/indexdata/internal/model"
)

// State is the lifecycle of one unit of work (a file or an entity).
type State string

const (
	StatePending     State = "PENDING"
	StateFetching    State = "FETCHING"
	StateReconciling State = "RECONCILING"
	StateCommitted   State = "COMMITTED"
	StateSkipped     State = "SKIPPED"
	StateFailed      State = "FAILED"
)

// UnitResult records the outcome of one unit within a run. FAILED is
// terminal for the unit only; the run always proceeds to the next unit.
type UnitResult struct {
	Unit  string
	State State
	Rows  int
	Err   error
}

// FileLoader loads one staging file into the store.
type FileLoader interface {
	LoadFile(ctx context.Context, path string) (rows int, err error)
}

// HistorySource fetches price bars for a ticker over a date range.
type HistorySource interface {
	History(ctx context.Context, ticker, index string, start, end time.Time) ([]model.PriceBar, error)
}

// WatermarkSource answers price watermark queries.
type WatermarkSource interface {
	PriceWatermark(ctx context.Context, ticker, index string) (*time.Time, error)
}

// Runner drives units of work sequentially and logs every state
// transition under a per-run ID.
type Runner struct {
	log zerolog.Logger
	now func() time.Time
}

// NewRunner creates a Runner.
func NewRunner(log zerolog.Logger) *Runner {
	return &Runner{log: log, now: time.Now}
}

// LoadDir walks dir for CSV staging files and loads each through
// loader. Empty files are no-ops; a failed file is logged and the walk
// continues.
func (r *Runner) LoadDir(ctx context.Context, dir string, loader FileLoader) []UnitResult {
	runID := uuid.New()
	log := r.log.With().Stringer("run_id", runID).Logger()

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".csv") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("Failed to walk staging directory")
		return nil
	}

	results := make([]UnitResult, 0, len(paths))
	for _, path := range paths {
		res := UnitResult{Unit: path, State: StatePending}
		log.Info().Str("file", path).Msg("Loading data")

		res.State = StateReconciling
		rows, err := loader.LoadFile(ctx, path)
		switch {
		case err == nil:
			res.State = StateCommitted
			res.Rows = rows
		case errors.Is(err, csvfs.ErrEmptyFile):
			res.State = StateSkipped
			res.Err = err
			log.Warn().Str("file", path).Msg("No data in file, skipping")
		default:
			res.State = StateFailed
			res.Err = err
			log.Error().Err(err).Str("file", path).Msg("Failed to load file")
		}
		results = append(results, res)
	}

	log.Info().
		Int("files", len(results)).
		Int("committed", countState(results, StateCommitted)).
		Int("skipped", countState(results, StateSkipped)).
		Int("failed", countState(results, StateFailed)).
		Msg("Load run finished")

	return results
}

// FetchPrices fetches incremental OHLC history for every member and
// stages the result as CSV under dir/<index>/. A member whose watermark
// is current is skipped; a fetch failure is treated as "no new data"
// for this run, not as fatal.
func (r *Runner) FetchPrices(ctx context.Context, members []Member, wm WatermarkSource, src HistorySource, dir string) []UnitResult {
	runID := uuid.New()
	log := r.log.With().Stringer("run_id", runID).Logger()
	today := r.now().UTC()

	results := make([]UnitResult, 0, len(members))
	for _, m := range members {
		res := r.fetchOne(ctx, log, m, wm, src, dir, today)
		results = append(results, res)
	}

	log.Info().
		Int("tickers", len(results)).
		Int("committed", countState(results, StateCommitted)).
		Int("skipped", countState(results, StateSkipped)).
		Int("failed", countState(results, StateFailed)).
		Msg("Fetch run finished")

	return results
}

func (r *Runner) fetchOne(ctx context.Context, log zerolog.Logger, m Member, wm WatermarkSource, src HistorySource, dir string, today time.Time) UnitResult {
	unit := m.Ticker + "/" + m.Index
	res := UnitResult{Unit: unit, State: StatePending}

	watermark, err := wm.PriceWatermark(ctx, m.Ticker, m.Index)
	if err != nil {
		res.State = StateFailed
		res.Err = err
		log.Error().Err(err).Str("entity", unit).Msg("Failed to resolve watermark")
		return res
	}

	window := NextWindow(watermark, today)
	if window.Empty() {
		res.State = StateSkipped
		log.Debug().Str("entity", unit).Msg("Watermark is current, nothing to fetch")
		return res
	}

	res.State = StateFetching
	log.Info().
		Str("entity", unit).
		Time("start", window.Start).
		Time("end", window.End).
		Msg("Fetching price history")

	bars, err := src.History(ctx, m.Ticker, m.Index, window.Start, window.End)
	if err != nil {
		res.State = StateSkipped
		res.Err = err
		log.Warn().Err(err).Str("entity", unit).Msg("Fetch failed, treating as no new data")
		return res
	}

	path := csvfs.BarFileName(filepath.Join(dir, m.Index), m.Ticker, r.now())
	if err := csvfs.WriteBars(path, bars); err != nil {
		res.State = StateFailed
		res.Err = err
		log.Error().Err(err).Str("entity", unit).Msg("Failed to stage bars")
		return res
	}

	res.State = StateCommitted
	res.Rows = len(bars)
	log.Info().Str("entity", unit).Int("bars", len(bars)).Str("file", path).Msg("Staged price history")
	return res
}

func countState(results []UnitResult, s State) int {
	n := 0
	for _, r := range results {
		if r.State == s {
			n++
		}
	}
	return n
}
