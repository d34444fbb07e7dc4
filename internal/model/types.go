package model

import (
	"errors"
	"fmt"
	"time"
)

// Company is one row of the companies table: membership of a ticker in a
// stock index, as scraped from a membership snapshot.
type Company struct {
	Ticker             string    // Ticker symbol (e.g., "AAPL")
	Index              string    // Index name (e.g., "SP500"), part of the natural key
	Name               string    // Company display name
	Sector             string    // GICS sector or equivalent
	IngestionTimestamp time.Time // When this row was (last) ingested
	IngestionDate      time.Time // Calendar date of ingestion (snapshot grouping key)
}

// Key returns the natural key of the company record.
func (c Company) Key() CompanyKey {
	return CompanyKey{Ticker: c.Ticker, Index: c.Index}
}

// CompanyKey is the natural key of a companies row.
type CompanyKey struct {
	Ticker string
	Index  string
}

func (k CompanyKey) String() string {
	return k.Ticker + "/" + k.Index
}

// PriceBar is one row of the ohlc_data table: a single trading day for a
// ticker. Rows are append-only; the (ticker, date) pair is unique.
type PriceBar struct {
	Ticker             string
	Index              string
	Date               time.Time // Trading date (midnight UTC)
	Open               float64
	High               float64
	Low                float64
	Close              float64
	Volume             int64
	Dividends          *float64 // nil when the source reports no dividend
	StockSplits        *float64 // nil when the source reports no split
	IngestionTimestamp time.Time
	IngestionDate      time.Time
}

// Validation errors for records that fail table invariants.
var (
	ErrEmptyField    = errors.New("required field is empty")
	ErrNegativeValue = errors.New("negative value")
	ErrHighBelowLow  = errors.New("high is below low")
	ErrOutOfRange    = errors.New("price outside [low, high]")
)

// Validate checks the companies table invariants: all key and metadata
// fields must be non-empty.
func (c Company) Validate() error {
	for _, f := range []struct{ name, val string }{
		{"ticker", c.Ticker},
		{"index", c.Index},
		{"company", c.Name},
		{"sector", c.Sector},
	} {
		if f.val == "" {
			return fmt.Errorf("company %s: %s: %w", c.Key(), f.name, ErrEmptyField)
		}
	}
	return nil
}

// Validate checks the ohlc_data table invariants: non-empty keys,
// non-negative prices and volume, high >= low, and open/close within
// [low, high]. A flat day (open == high == low == close) is valid.
func (b PriceBar) Validate() error {
	if b.Ticker == "" {
		return fmt.Errorf("price bar: ticker: %w", ErrEmptyField)
	}
	if b.Index == "" {
		return fmt.Errorf("price bar %s: index: %w", b.Ticker, ErrEmptyField)
	}
	if b.Date.IsZero() {
		return fmt.Errorf("price bar %s: date: %w", b.Ticker, ErrEmptyField)
	}
	for _, p := range []struct {
		name string
		val  float64
	}{
		{"open", b.Open},
		{"high", b.High},
		{"low", b.Low},
		{"close", b.Close},
	} {
		if p.val < 0 {
			return fmt.Errorf("price bar %s %s: %s: %w", b.Ticker, b.Date.Format("2006-01-02"), p.name, ErrNegativeValue)
		}
	}
	if b.Volume < 0 {
		return fmt.Errorf("price bar %s %s: volume: %w", b.Ticker, b.Date.Format("2006-01-02"), ErrNegativeValue)
	}
	if b.High < b.Low {
		return fmt.Errorf("price bar %s %s: high %.4f < low %.4f: %w", b.Ticker, b.Date.Format("2006-01-02"), b.High, b.Low, ErrHighBelowLow)
	}
	if b.Open < b.Low || b.Open > b.High {
		return fmt.Errorf("price bar %s %s: open %.4f: %w", b.Ticker, b.Date.Format("2006-01-02"), b.Open, ErrOutOfRange)
	}
	if b.Close < b.Low || b.Close > b.High {
		return fmt.Errorf("price bar %s %s: close %.4f: %w", b.Ticker, b.Date.Format("2006-01-02"), b.Close, ErrOutOfRange)
	}
	return nil
}

// Day truncates t to midnight UTC, the representation used for all
// calendar-date columns.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
