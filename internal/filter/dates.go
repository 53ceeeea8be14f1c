package filter

import (
	"time"

	"timetable_bot/internal/model"
)

// Date returns midnight of t's calendar date in loc.
func Date(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Days lists every calendar date from..to (inclusive) in loc.
func Days(from, to time.Time, loc *time.Location) []time.Time {
	var days []time.Time
	last := Date(to, loc)
	for d := Date(from, loc); !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// InRange keeps the events whose start falls on a date from..to
// (inclusive) in loc. Order is preserved.
func InRange(events []model.Event, from, to time.Time, loc *time.Location) []model.Event {
	first, last := Date(from, loc), Date(to, loc)
	var out []model.Event
	for _, ev := range events {
		d := Date(ev.Start, loc)
		if !d.Before(first) && !d.After(last) {
			out = append(out, ev)
		}
	}
	return out
}
