// Package extract mines schedule metadata out of free-text event fields.
//
// Every extractor is a pure function of its input text and the rule data
// held by Rules. Rule lists are ordered: earlier entries win.
package extract

import (
	"regexp"
	"strings"
)

// SessionType maps a lower-case keyword stem to a display label.
type SessionType struct {
	Stem  string
	Label string
}

// Conference is a known videoconferencing service.
type Conference struct {
	Domain string
	Name   string
}

// PlaceLabels holds the texts produced by place classification.
type PlaceLabels struct {
	Online         string // online only
	OnlineWithRoom string // format verb receives the room label
	Room           string // format verb receives the room label
	RoomPrefix     string // rendered before the room number
	Location       string // format verb receives the raw location
	Unknown        string
}

// Rules is the complete, ordered rule set used by the extractors.
type Rules struct {
	// Separators split a summary into discipline and session type.
	Separators   []string
	SessionTypes []SessionType

	// TeacherPatterns are matched against each trimmed description line.
	// The first capture group is the teacher name.
	TeacherPatterns []*regexp.Regexp

	// PasscodeKeywords are alternatives; the leftmost hit in the text wins.
	PasscodeKeywords []string

	Conferences []Conference

	// OnlineHints are lower-case substrings marking an online session.
	OnlineHints []string
	// RoomPattern captures a room number in lower-cased text.
	RoomPattern *regexp.Regexp

	Labels PlaceLabels

	passcode *regexp.Regexp
}

// Default returns the Ukrainian university rule set.
func Default() *Rules {
	r := &Rules{
		Separators: []string{"—", "-"},
		SessionTypes: []SessionType{
			{Stem: "лекці", Label: "Лекція"},
			{Stem: "практич", Label: "Практичне"},
			{Stem: "лаб", Label: "Лабораторна"},
			{Stem: "семінар", Label: "Семінар"},
		},
		TeacherPatterns: []*regexp.Regexp{
			rolePattern(`доцент|доц\.?`),
			rolePattern(`викладач|викл\.?`),
			rolePattern(`старший викладач|ст\.?\s*викл\.?`),
			rolePattern(`професор|проф\.?`),
			rolePattern(`асистент|асист\.?`),
		},
		PasscodeKeywords: []string{
			"Код доступу",
			"Код доступа",
			"Passcode",
			"Password",
			"Пароль",
		},
		Conferences: []Conference{
			{Domain: "zoom.us", Name: "Zoom"},
			{Domain: "meet.google.com", Name: "Meet"},
			{Domain: "teams.microsoft.com", Name: "Teams"},
		},
		OnlineHints: []string{"online", "онлайн", "zoom"},
		RoomPattern: regexp.MustCompile(`(?:аудиторія|ауд\.?)\s*(\d+)`),
		Labels: PlaceLabels{
			Online:         "🌐 Online",
			OnlineWithRoom: "🌐 Online • 🏫 %s",
			Room:           "🏫 %s",
			RoomPrefix:     "ауд. ",
			Location:       "📍 %s",
			Unknown:        "📍 (місце не вказано)",
		},
	}
	r.Compile()
	return r
}

// Compile rebuilds derived matchers after the exported rule data changed.
func (r *Rules) Compile() {
	alts := make([]string, 0, len(r.PasscodeKeywords))
	for _, k := range r.PasscodeKeywords {
		alts = append(alts, regexp.QuoteMeta(k))
	}
	r.passcode = regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)\s*[:\-]?\s*([A-Za-zА-Яа-яІіЇїЄєҐґ0-9\-_]+)`)
}

func rolePattern(role string) *regexp.Regexp {
	return regexp.MustCompile(roleExpr(role))
}

func roleExpr(role string) string {
	return `(?i)^(?:` + role + `)\s*[:\-]?\s*(.+)$`
}
