package prices

import (
	"errors"
	"fmt"
	"time"

	"github.com/mwessel/indexdata/internal/model"
)

// Errors returned by the converter.
var (
	ErrNoData         = errors.New("no data for ticker")
	ErrLengthMismatch = errors.New("quote array length mismatch")
)

func unixDay(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}

// convert turns a chart payload into validated price bars. Entries where
// any OHLC value is null are skipped; an invariant violation in a
// non-null entry fails the conversion.
func convert(resp chartResponse, ticker, index string) ([]model.PriceBar, error) {
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("%s: %s: %w", resp.Chart.Error.Code, resp.Chart.Error.Description, ErrNoData)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, ErrNoData
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, ErrNoData
	}

	q := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	for name, l := range map[string]int{
		"open":   len(q.Open),
		"high":   len(q.High),
		"low":    len(q.Low),
		"close":  len(q.Close),
		"volume": len(q.Volume),
	} {
		if l != n {
			return nil, fmt.Errorf("%s has %d entries, timestamp has %d: %w", name, l, n, ErrLengthMismatch)
		}
	}

	dividends, splits := eventsByDay(result.Events)

	bars := make([]model.PriceBar, 0, n)
	for i, ts := range result.Timestamp {
		if q.Open[i] == nil || q.High[i] == nil || q.Low[i] == nil || q.Close[i] == nil {
			continue
		}

		day := model.Day(unixDay(ts))
		bar := model.PriceBar{
			Ticker: ticker,
			Index:  index,
			Date:   day,
			Open:   *q.Open[i],
			High:   *q.High[i],
			Low:    *q.Low[i],
			Close:  *q.Close[i],
		}
		if q.Volume[i] != nil {
			bar.Volume = *q.Volume[i]
		}
		if amount, ok := dividends[day.Unix()]; ok {
			bar.Dividends = &amount
		}
		if ratio, ok := splits[day.Unix()]; ok {
			bar.StockSplits = &ratio
		}

		if err := bar.Validate(); err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return bars, nil
}

// eventsByDay indexes dividend amounts and split ratios by the midnight
// UTC unix time of their trading day.
func eventsByDay(events *chartEvents) (dividends, splits map[int64]float64) {
	dividends = make(map[int64]float64)
	splits = make(map[int64]float64)
	if events == nil {
		return dividends, splits
	}
	for _, d := range events.Dividends {
		dividends[model.Day(unixDay(d.Date)).Unix()] = d.Amount
	}
	for _, s := range events.Splits {
		if s.Denominator != 0 {
			splits[model.Day(unixDay(s.Date)).Unix()] = s.Numerator / s.Denominator
		}
	}
	return dividends, splits
}
