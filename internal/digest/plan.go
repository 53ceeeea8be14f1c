package digest

import (
	"time"

	"timetable_bot/internal/dedupe"
	"timetable_bot/internal/filter"
	"timetable_bot/internal/model"
)

// Plan describes one posting occasion.
type Plan struct {
	Mode model.Mode
	// From and To are the first and last target dates, midnight in the
	// canonical zone.
	From, To time.Time
	Key      string
	Stamp    string
}

// PlanFor computes the occasion mode targets at now. Today and tomorrow
// target a single date; week targets next Monday through Sunday.
func PlanFor(mode model.Mode, now time.Time, loc *time.Location) Plan {
	today := filter.Date(now, loc)

	var from, to time.Time
	switch mode {
	case model.ModeTomorrow:
		from = today.AddDate(0, 0, 1)
		to = from
	case model.ModeWeek:
		sinceMonday := (int(today.Weekday()) + 6) % 7
		from = today.AddDate(0, 0, 7-sinceMonday)
		to = from.AddDate(0, 0, 6)
	default:
		from, to = today, today
	}

	return Plan{
		Mode:  mode,
		From:  from,
		To:    to,
		Key:   mode.StateKey(),
		Stamp: dedupe.Stamp(mode, from, to),
	}
}
