package ingest

import "time"

// Epoch is the lower bound for full-history fetches when no watermark
// exists for an entity.
var Epoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// Window is a [Start, End] fetch range in calendar days.
type Window struct {
	Start time.Time
	End   time.Time
}

// Empty reports whether there is nothing to fetch.
func (w Window) Empty() bool {
	return w.Start.After(w.End)
}

// NextWindow computes the fetch range that follows a watermark.
//
// No watermark means full history from Epoch. Otherwise the window opens
// the day after the watermark. A watermark at or past today produces an
// empty window: this is the guard that makes repeated same-day runs
// no-ops instead of duplicate fetches.
func NextWindow(watermark *time.Time, today time.Time) Window {
	today = day(today)
	if watermark == nil {
		return Window{Start: Epoch, End: today}
	}
	return Window{Start: day(*watermark).AddDate(0, 0, 1), End: today}
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
