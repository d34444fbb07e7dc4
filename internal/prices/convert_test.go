package prices

import (
	"errors"
	"testing"

	"github.com/mwessel/indexdata/internal/model"
)

func f(v float64) *float64 { return &v }
func i(v int64) *int64     { return &v }

func TestConvertLengthMismatch(t *testing.T) {
	resp := chartResponse{}
	resp.Chart.Result = []chartResult{{Timestamp: []int64{1709251200, 1709337600}}}
	resp.Chart.Result[0].Indicators.Quote = []quote{{
		Open:   []*float64{f(1)},
		High:   []*float64{f(2), f(2)},
		Low:    []*float64{f(1), f(1)},
		Close:  []*float64{f(1.5), f(1.5)},
		Volume: []*int64{i(10), i(10)},
	}}

	_, err := convert(resp, "AAPL", "SP500")
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("convert() err = %v, want ErrLengthMismatch", err)
	}
}

func TestConvertAPIError(t *testing.T) {
	resp := chartResponse{}
	resp.Chart.Error = &chartError{Code: "Not Found", Description: "No data found"}

	_, err := convert(resp, "ZZZ", "SP500")
	if !errors.Is(err, ErrNoData) {
		t.Errorf("convert() err = %v, want ErrNoData", err)
	}
}

func TestConvertRejectsInvalidBar(t *testing.T) {
	resp := chartResponse{}
	resp.Chart.Result = []chartResult{{Timestamp: []int64{1709251200}}}
	resp.Chart.Result[0].Indicators.Quote = []quote{{
		Open:   []*float64{f(95)},
		High:   []*float64{f(90)}, // high < low
		Low:    []*float64{f(100)},
		Close:  []*float64{f(95)},
		Volume: []*int64{i(10)},
	}}

	_, err := convert(resp, "AAPL", "SP500")
	if !errors.Is(err, model.ErrHighBelowLow) {
		t.Errorf("convert() err = %v, want ErrHighBelowLow", err)
	}
}

func TestConvertAllNullsIsNoData(t *testing.T) {
	resp := chartResponse{}
	resp.Chart.Result = []chartResult{{Timestamp: []int64{1709251200}}}
	resp.Chart.Result[0].Indicators.Quote = []quote{{
		Open:   []*float64{nil},
		High:   []*float64{nil},
		Low:    []*float64{nil},
		Close:  []*float64{nil},
		Volume: []*int64{nil},
	}}

	_, err := convert(resp, "AAPL", "SP500")
	if !errors.Is(err, ErrNoData) {
		t.Errorf("convert() err = %v, want ErrNoData", err)
	}
}
