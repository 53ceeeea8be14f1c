// Package filter selects which events end up in a digest.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"timetable_bot/internal/model"
)

// Kind defines the type of filter rule.
type Kind string

// Supported rule kinds.
const (
	Include   Kind = "include"
	Exclude   Kind = "exclude"
	IncludeRe Kind = "include_re"
	ExcludeRe Kind = "exclude_re"
)

// regexPrefix marks a configured rule value as a regular expression.
const regexPrefix = "re:"

// Rule is a single include/exclude rule matched against an event's summary
// and description.
type Rule struct {
	Kind  Kind
	Value string
}

// Match checks whether an event passes the given set of rules.
// If no rules are provided, the event always passes.
// Include rules use OR logic (at least one must match).
// Exclude rules use AND logic (none must match).
func Match(ev model.Event, rules []Rule) bool {
	if len(rules) == 0 {
		return true
	}

	hasIncludes := false
	anyIncludeMatched := false

	for _, r := range rules {
		switch r.Kind {
		case Include, IncludeRe:
			hasIncludes = true
			if matchesRule(ev, r) {
				anyIncludeMatched = true
			}
		case Exclude, ExcludeRe:
			if matchesRule(ev, r) {
				return false
			}
		}
	}

	if hasIncludes && !anyIncludeMatched {
		return false
	}
	return true
}

// Apply returns the events that pass rules, preserving order.
func Apply(events []model.Event, rules []Rule) []model.Event {
	if len(rules) == 0 {
		return events
	}
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if Match(ev, rules) {
			out = append(out, ev)
		}
	}
	return out
}

func matchesRule(ev model.Event, r Rule) bool {
	text := strings.ToLower(ev.Summary + " " + ev.Description)
	switch r.Kind {
	case Include, Exclude:
		return strings.Contains(text, strings.ToLower(r.Value))
	case IncludeRe, ExcludeRe:
		re, err := regexp.Compile("(?i)" + r.Value)
		if err != nil {
			return false
		}
		return re.MatchString(text)
	}
	return false
}

// ParseRules builds rules from a comma-separated list. Entries prefixed
// with "re:" become regex rules. include selects the include kinds.
func ParseRules(raw string, include bool) ([]Rule, error) {
	var rules []Rule
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		r := Rule{Kind: Exclude, Value: s}
		if include {
			r.Kind = Include
		}
		if v, ok := strings.CutPrefix(s, regexPrefix); ok {
			if err := ValidateRegex(v); err != nil {
				return nil, fmt.Errorf("rule %q: %w", s, err)
			}
			r.Value = v
			r.Kind = ExcludeRe
			if include {
				r.Kind = IncludeRe
			}
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// ValidateRegex checks whether a pattern is a valid regular expression.
func ValidateRegex(pattern string) error {
	_, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	return nil
}
