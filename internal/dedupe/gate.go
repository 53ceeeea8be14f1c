// Package dedupe decides whether an occasion has already been posted.
package dedupe

import (
	"time"

	"timetable_bot/internal/model"
)

const dateLayout = "2006-01-02"

// ShouldPost reports whether stamp differs from the one stored under key.
// A missing key always posts.
func ShouldPost(state model.State, key, stamp string) bool {
	prev, ok := state[key]
	return !ok || prev != stamp
}

// MarkPosted records stamp as the last posted occasion for key.
func MarkPosted(state model.State, key, stamp string) {
	state[key] = stamp
}

// Stamp encodes the occasion a mode targets. Daily modes use the target
// date, the weekly mode uses its first and last day.
func Stamp(mode model.Mode, from, to time.Time) string {
	switch mode {
	case model.ModeWeek:
		return string(mode) + ":" + from.Format(dateLayout) + ":" + to.Format(dateLayout)
	default:
		return string(mode) + ":" + from.Format(dateLayout)
	}
}
