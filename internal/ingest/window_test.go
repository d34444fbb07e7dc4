package ingest

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextWindowNoWatermark(t *testing.T) {
	today := date(2024, 3, 15)
	w := NextWindow(nil, today)

	if !w.Start.Equal(Epoch) {
		t.Errorf("Start = %v, want %v", w.Start, Epoch)
	}
	if !w.End.Equal(today) {
		t.Errorf("End = %v, want %v", w.End, today)
	}
	if w.Empty() {
		t.Error("full-history window should not be empty")
	}
}

func TestNextWindowAdvancesPastWatermark(t *testing.T) {
	wm := date(2024, 3, 10)
	w := NextWindow(&wm, date(2024, 3, 15))

	if want := date(2024, 3, 11); !w.Start.Equal(want) {
		t.Errorf("Start = %v, want %v", w.Start, want)
	}
	if want := date(2024, 3, 15); !w.End.Equal(want) {
		t.Errorf("End = %v, want %v", w.End, want)
	}
}

func TestNextWindowCurrentWatermarkIsEmpty(t *testing.T) {
	tests := []struct {
		name      string
		watermark time.Time
		today     time.Time
	}{
		{"watermark is today", date(2024, 3, 15), date(2024, 3, 15)},
		{"watermark past today", date(2024, 3, 16), date(2024, 3, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NextWindow(&tt.watermark, tt.today)
			if !w.Empty() {
				t.Errorf("window [%v, %v] should be empty", w.Start, w.End)
			}
		})
	}
}

func TestNextWindowTruncatesToDay(t *testing.T) {
	wm := time.Date(2024, 3, 10, 15, 30, 45, 0, time.UTC)
	today := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)

	w := NextWindow(&wm, today)

	if want := date(2024, 3, 11); !w.Start.Equal(want) {
		t.Errorf("Start = %v, want %v", w.Start, want)
	}
	if want := date(2024, 3, 15); !w.End.Equal(want) {
		t.Errorf("End = %v, want %v", w.End, want)
	}
}

func TestNextWindowYesterdayWatermarkSingleDay(t *testing.T) {
	wm := date(2024, 3, 14)
	w := NextWindow(&wm, date(2024, 3, 15))

	if w.Empty() {
		t.Fatal("yesterday's watermark should yield a one-day window")
	}
	if !w.Start.Equal(w.End) {
		t.Errorf("expected single-day window, got [%v, %v]", w.Start, w.End)
	}
}
