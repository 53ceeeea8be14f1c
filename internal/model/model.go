// Package model defines the domain types used across the application.
package model

import (
	"fmt"
	"time"
)

// Event is a single calendar entry normalized into the canonical timezone.
type Event struct {
	Start       time.Time
	End         time.Time
	Summary     string
	Description string
	Location    string
}

// Fragments holds the metadata extracted from an event's free-text fields.
// Empty strings mean "not found".
type Fragments struct {
	Discipline  string
	SessionType string
	Teacher     string
	Passcode    string
	Place       string
	Links       []string
}

// Mode selects which occasion an invocation posts.
type Mode string

// Supported posting modes.
const (
	ModeToday    Mode = "today"
	ModeTomorrow Mode = "tomorrow"
	ModeWeek     Mode = "week"
)

// Modes lists every posting mode in a stable order.
var Modes = []Mode{ModeToday, ModeTomorrow, ModeWeek}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q, use: today, tomorrow, week", s)
}

// StateKey returns the dedupe state key used by the mode.
func (m Mode) StateKey() string {
	return "last_" + string(m)
}

// State maps a state key to the stamp of the occasion last posted for it.
type State map[string]string

// Weather is a daily forecast summary.
type Weather struct {
	Code        int
	Description string
	MinTemp     int
	MaxTemp     int
	// PrecipProbability is nil when the provider has no value for the day.
	PrecipProbability *int
}
