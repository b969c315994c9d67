package stats

import (
	"time"

	"storeledger/backend/internal/domain"
)

// Windows returns the calendar window of period containing now and the
// window immediately before it, both in now's location. Weeks start on
// Monday.
func Windows(period domain.Period, now time.Time) (current domain.Window, previous domain.Window) {
	loc := now.Location()
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)

	var start time.Time
	var step func(t time.Time, n int) time.Time
	switch period {
	case domain.PeriodDaily:
		start = midnight
		step = func(t time.Time, n int) time.Time { return t.AddDate(0, 0, n) }
	case domain.PeriodWeekly:
		sinceMonday := (int(now.Weekday()) + 6) % 7
		start = midnight.AddDate(0, 0, -sinceMonday)
		step = func(t time.Time, n int) time.Time { return t.AddDate(0, 0, 7*n) }
	case domain.PeriodAnnual:
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		step = func(t time.Time, n int) time.Time { return t.AddDate(n, 0, 0) }
	default:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		step = func(t time.Time, n int) time.Time { return t.AddDate(0, n, 0) }
	}

	current = domain.Window{Start: start, End: step(start, 1)}
	previous = domain.Window{Start: step(start, -1), End: start}
	return current, previous
}

// inWindow compares full timestamps, except for daily windows where only
// the calendar date in the window's location counts.
func inWindow(period domain.Period, w domain.Window, t time.Time) bool {
	if period == domain.PeriodDaily {
		return sameDate(t.In(w.Start.Location()), w.Start)
	}
	return w.Contains(t)
}

func sameDate(a time.Time, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
