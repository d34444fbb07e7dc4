package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mwessel/indexdata/internal/csvfs"
	"github.com/mwessel/indexdata/internal/model"
)

type fakeLoader struct {
	errs  map[string]error
	calls []string
}

func (f *fakeLoader) LoadFile(_ context.Context, path string) (int, error) {
	f.calls = append(f.calls, path)
	if err, ok := f.errs[filepath.Base(path)]; ok {
		return 0, err
	}
	return 3, nil
}

type fakeWatermarks struct {
	marks map[string]*time.Time
	errs  map[string]error
}

func (f *fakeWatermarks) PriceWatermark(_ context.Context, ticker, _ string) (*time.Time, error) {
	if err, ok := f.errs[ticker]; ok {
		return nil, err
	}
	return f.marks[ticker], nil
}

type fakeHistory struct {
	bars  map[string][]model.PriceBar
	errs  map[string]error
	calls []string
}

func (f *fakeHistory) History(_ context.Context, ticker, _ string, _, _ time.Time) ([]model.PriceBar, error) {
	f.calls = append(f.calls, ticker)
	if err, ok := f.errs[ticker]; ok {
		return nil, err
	}
	return f.bars[ticker], nil
}

func testBar(ticker string) model.PriceBar {
	return model.PriceBar{
		Ticker: ticker,
		Index:  "sp500",
		Date:   time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		Open:   100, High: 110, Low: 95, Close: 105,
		Volume: 1000,
	}
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func stateOf(t *testing.T, results []UnitResult, suffix string) UnitResult {
	t.Helper()
	for _, r := range results {
		if filepath.Base(r.Unit) == suffix || r.Unit == suffix {
			return r
		}
	}
	t.Fatalf("no result for %q in %+v", suffix, results)
	return UnitResult{}
}

func TestLoadDirContinuesPastFailure(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.csv", "b.csv", "c.csv", "notes.txt")

	loader := &fakeLoader{errs: map[string]error{"b.csv": errors.New("constraint violation")}}
	r := NewRunner(zerolog.Nop())

	results := r.LoadDir(context.Background(), dir, loader)

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3 (txt file must be ignored)", len(results))
	}
	if got := stateOf(t, results, "a.csv").State; got != StateCommitted {
		t.Errorf("a.csv state = %s, want COMMITTED", got)
	}
	if got := stateOf(t, results, "b.csv").State; got != StateFailed {
		t.Errorf("b.csv state = %s, want FAILED", got)
	}
	if got := stateOf(t, results, "c.csv").State; got != StateCommitted {
		t.Errorf("c.csv state = %s, want COMMITTED after earlier failure", got)
	}
	if len(loader.calls) != 3 {
		t.Errorf("loader called %d times, want 3", len(loader.calls))
	}
}

func TestLoadDirEmptyFileSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "empty.csv")

	loader := &fakeLoader{errs: map[string]error{"empty.csv": csvfs.ErrEmptyFile}}
	r := NewRunner(zerolog.Nop())

	results := r.LoadDir(context.Background(), dir, loader)

	if got := stateOf(t, results, "empty.csv").State; got != StateSkipped {
		t.Errorf("state = %s, want SKIPPED", got)
	}
}

func TestFetchPricesCurrentWatermarkSkips(t *testing.T) {
	today := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	wm := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	wms := &fakeWatermarks{marks: map[string]*time.Time{"AAPL": &wm}}
	src := &fakeHistory{}
	r := NewRunner(zerolog.Nop())
	r.now = func() time.Time { return today }

	results := r.FetchPrices(context.Background(),
		[]Member{{Ticker: "AAPL", Index: "sp500"}}, wms, src, t.TempDir())

	if got := stateOf(t, results, "AAPL/sp500").State; got != StateSkipped {
		t.Errorf("state = %s, want SKIPPED", got)
	}
	if len(src.calls) != 0 {
		t.Errorf("history fetched %d times for a current watermark, want 0", len(src.calls))
	}
}

func TestFetchPricesStagesBars(t *testing.T) {
	dir := t.TempDir()
	src := &fakeHistory{bars: map[string][]model.PriceBar{"AAPL": {testBar("AAPL")}}}
	r := NewRunner(zerolog.Nop())

	results := r.FetchPrices(context.Background(),
		[]Member{{Ticker: "AAPL", Index: "sp500"}},
		&fakeWatermarks{}, src, dir)

	res := stateOf(t, results, "AAPL/sp500")
	if res.State != StateCommitted {
		t.Fatalf("state = %s, want COMMITTED (err: %v)", res.State, res.Err)
	}
	if res.Rows != 1 {
		t.Errorf("rows = %d, want 1", res.Rows)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "sp500", "AAPL_*.csv"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("staged files = %v (err %v), want one AAPL file under sp500/", matches, err)
	}
	bars, err := csvfs.ReadBars(matches[0])
	if err != nil {
		t.Fatalf("reading staged file: %v", err)
	}
	if len(bars) != 1 || bars[0].Ticker != "AAPL" {
		t.Errorf("staged bars = %+v, want the fetched AAPL bar", bars)
	}
}

func TestFetchPricesFetchFailureIsNonFatal(t *testing.T) {
	dir := t.TempDir()
	src := &fakeHistory{
		bars: map[string][]model.PriceBar{"MSFT": {testBar("MSFT")}},
		errs: map[string]error{"AAPL": errors.New("status 500")},
	}
	r := NewRunner(zerolog.Nop())

	results := r.FetchPrices(context.Background(),
		[]Member{
			{Ticker: "AAPL", Index: "sp500"},
			{Ticker: "MSFT", Index: "sp500"},
		},
		&fakeWatermarks{}, src, dir)

	if got := stateOf(t, results, "AAPL/sp500").State; got != StateSkipped {
		t.Errorf("AAPL state = %s, want SKIPPED on fetch failure", got)
	}
	if got := stateOf(t, results, "MSFT/sp500").State; got != StateCommitted {
		t.Errorf("MSFT state = %s, want COMMITTED after AAPL failure", got)
	}
}

func TestFetchPricesWatermarkErrorFails(t *testing.T) {
	wms := &fakeWatermarks{errs: map[string]error{"AAPL": errors.New("connection refused")}}
	r := NewRunner(zerolog.Nop())

	results := r.FetchPrices(context.Background(),
		[]Member{{Ticker: "AAPL", Index: "sp500"}}, wms, &fakeHistory{}, t.TempDir())

	res := stateOf(t, results, "AAPL/sp500")
	if res.State != StateFailed {
		t.Errorf("state = %s, want FAILED", res.State)
	}
	if res.Err == nil {
		t.Error("expected the watermark error to be recorded")
	}
}
