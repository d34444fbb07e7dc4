package csvfs

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mwessel/indexdata/internal/model"
)

var barHeader = []string{
	"date", "open", "high", "low", "close", "volume",
	"dividends", "stock_splits", "ticker", "index",
}

const dateLayout = "2006-01-02"

// BarFileName returns the staging file name for one ticker fetch. The
// timestamp keeps successive fetch runs from clobbering each other.
func BarFileName(dir, ticker string, at time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", ticker, at.Format("20060102_150405")))
}

// WriteBars writes fetched price bars to dir, creating it if needed.
func WriteBars(path string, bars []model.PriceBar) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(barHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, b := range bars {
		row := []string{
			b.Date.Format(dateLayout),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			strconv.FormatInt(b.Volume, 10),
			formatNullable(b.Dividends),
			formatNullable(b.StockSplits),
			b.Ticker,
			b.Index,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// ReadBars reads a price-bar staging file. Unlike company files, price
// files are all-or-nothing: any missing column, malformed cell, or
// invariant violation fails the whole file.
func ReadBars(path string) ([]model.PriceBar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	cols, err := columnIndex(header, barHeader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var bars []model.PriceBar
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row of %s: %w", path, err)
		}

		bar, err := parseBar(row, cols)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if err := bar.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}
	return bars, nil
}

func parseBar(row []string, cols map[string]int) (model.PriceBar, error) {
	var bar model.PriceBar
	var err error

	if bar.Date, err = time.ParseInLocation(dateLayout, cell(row, cols["date"]), time.UTC); err != nil {
		return bar, fmt.Errorf("parse date: %w", err)
	}
	if bar.Open, err = parseFloat(row, cols, "open"); err != nil {
		return bar, err
	}
	if bar.High, err = parseFloat(row, cols, "high"); err != nil {
		return bar, err
	}
	if bar.Low, err = parseFloat(row, cols, "low"); err != nil {
		return bar, err
	}
	if bar.Close, err = parseFloat(row, cols, "close"); err != nil {
		return bar, err
	}
	if bar.Volume, err = strconv.ParseInt(cell(row, cols["volume"]), 10, 64); err != nil {
		return bar, fmt.Errorf("parse volume: %w", err)
	}
	if bar.Dividends, err = parseNullable(row, cols, "dividends"); err != nil {
		return bar, err
	}
	if bar.StockSplits, err = parseNullable(row, cols, "stock_splits"); err != nil {
		return bar, err
	}
	bar.Ticker = cell(row, cols["ticker"])
	bar.Index = cell(row, cols["index"])
	return bar, nil
}

func parseFloat(row []string, cols map[string]int, name string) (float64, error) {
	v, err := strconv.ParseFloat(cell(row, cols[name]), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return v, nil
}

func parseNullable(row []string, cols map[string]int, name string) (*float64, error) {
	s := cell(row, cols[name])
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return &v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatNullable(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
