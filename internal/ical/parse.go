package ical

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"timetable_bot/internal/model"
)

// Block markers.
const (
	BeginEvent = "BEGIN:VEVENT"
	EndEvent   = "END:VEVENT"
)

// Recognized property keys.
const (
	KeyStart       = "DTSTART"
	KeyEnd         = "DTEND"
	KeySummary     = "SUMMARY"
	KeyDescription = "DESCRIPTION"
	KeyLocation    = "LOCATION"
)

// IssueKind classifies a malformed or dropped block.
type IssueKind string

// Issue kinds reported by Parse.
const (
	IssueMissingTime   IssueKind = "missing_time"
	IssueBadTime       IssueKind = "bad_time"
	IssueOrphanClose   IssueKind = "orphan_close"
	IssueNestedOpen    IssueKind = "nested_open"
	IssueUnclosedBlock IssueKind = "unclosed_block"
)

// Issue describes input the parser tolerated instead of failing on.
type Issue struct {
	Line   int // 1-based logical line number
	Kind   IssueKind
	Detail string
}

// Result is the outcome of parsing a feed.
type Result struct {
	// Events are sorted by start, stable with respect to feed order.
	Events []model.Event
	Issues []Issue
}

type state int

const (
	outsideBlock state = iota
	insideBlock
)

type field struct {
	tzid  string
	value string
}

// accumulator collects the recognized fields of the block being read.
type accumulator struct {
	fields map[string]field
	opened int
}

func (a *accumulator) reset(line int) {
	a.fields = make(map[string]field, 5)
	a.opened = line
}

func (a *accumulator) get(key string) field {
	return a.fields[key]
}

// Parse reads every VEVENT block in text. Times are normalized into
// canonical. Blocks without a start or end, or with an unparsable time, are
// dropped and reported as issues.
func Parse(text string, canonical *time.Location) *Result {
	res := &Result{}
	st := outsideBlock
	var acc accumulator

	for i, line := range Unfold(text) {
		lineNo := i + 1
		switch {
		case line == BeginEvent:
			if st == insideBlock {
				res.Issues = append(res.Issues, Issue{
					Line:   lineNo,
					Kind:   IssueNestedOpen,
					Detail: fmt.Sprintf("block opened at line %d discarded", acc.opened),
				})
			}
			st = insideBlock
			acc.reset(lineNo)
		case line == EndEvent:
			if st == outsideBlock {
				res.Issues = append(res.Issues, Issue{Line: lineNo, Kind: IssueOrphanClose})
				continue
			}
			if ev, issue, ok := build(&acc, canonical); ok {
				res.Events = append(res.Events, ev)
			} else {
				issue.Line = acc.opened
				res.Issues = append(res.Issues, issue)
			}
			st = outsideBlock
			acc.reset(0)
		case st == insideBlock:
			acc.add(line)
		}
	}

	if st == insideBlock {
		res.Issues = append(res.Issues, Issue{
			Line:   acc.opened,
			Kind:   IssueUnclosedBlock,
			Detail: "end of input inside block",
		})
	}

	slices.SortStableFunc(res.Events, func(a, b model.Event) int {
		return a.Start.Compare(b.Start)
	})
	return res
}

// add parses key[;param=value...]:value and keeps recognized keys.
func (a *accumulator) add(line string) {
	left, value, ok := strings.Cut(line, ":")
	if !ok {
		return
	}
	key, params, _ := strings.Cut(left, ";")
	key = strings.ToUpper(strings.TrimSpace(key))
	switch key {
	case KeyStart, KeyEnd, KeySummary, KeyDescription, KeyLocation:
		a.fields[key] = field{tzid: paramTZID(params), value: strings.TrimSpace(value)}
	}
}

func paramTZID(params string) string {
	for _, p := range strings.Split(params, ";") {
		name, val, ok := strings.Cut(p, "=")
		if ok && strings.EqualFold(strings.TrimSpace(name), "TZID") {
			return val
		}
	}
	return ""
}

func build(acc *accumulator, canonical *time.Location) (model.Event, Issue, bool) {
	start, end := acc.get(KeyStart), acc.get(KeyEnd)
	if start.value == "" || end.value == "" {
		return model.Event{}, Issue{Kind: IssueMissingTime, Detail: "block without DTSTART or DTEND"}, false
	}

	startAt, err := ParseTime(start.value, start.tzid, canonical)
	if err != nil {
		return model.Event{}, Issue{Kind: IssueBadTime, Detail: err.Error()}, false
	}
	endAt, err := ParseTime(end.value, end.tzid, canonical)
	if err != nil {
		return model.Event{}, Issue{Kind: IssueBadTime, Detail: err.Error()}, false
	}

	return model.Event{
		Start:       startAt,
		End:         endAt,
		Summary:     acc.get(KeySummary).value,
		Description: acc.get(KeyDescription).value,
		Location:    acc.get(KeyLocation).value,
	}, Issue{}, true
}
