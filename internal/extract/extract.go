package extract

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"timetable_bot/internal/model"
)

// linkPattern accepts only ASCII URL characters, so adjacent Cyrillic text is
// never absorbed into a link. The scheme is matched case-insensitively by
// hand: (?i) would fold the ASCII class onto U+212A and U+017F.
var linkPattern = regexp.MustCompile(`[hH][tT][tT][pP][sS]?://[A-Za-z0-9\-._~:/?#\[\]@!$&'()*+,;=%]+`)

var cleaner = strings.NewReplacer(
	`\n`, "\n",
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\u2060", "",
	"\ufeff", "",
	"\u00a0", " ",
)

// Normalize converts literal \n sequences to newlines, drops zero-width
// characters and composes the text to NFC.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	return norm.NFC.String(cleaner.Replace(text))
}

// Summary is the result of splitting an event title.
type Summary struct {
	Discipline  string
	SessionType string
}

// SplitSummary splits "Discipline — Type" titles. Separators are tried in
// order; the first one whose last part names a session type wins.
func (r *Rules) SplitSummary(title string) Summary {
	s := strings.TrimSpace(title)
	for _, sep := range r.Separators {
		parts := strings.Split(s, sep)
		if len(parts) < 2 {
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if label, ok := r.sessionType(parts[len(parts)-1]); ok {
			return Summary{
				Discipline:  strings.TrimSpace(strings.Join(parts[:len(parts)-1], sep)),
				SessionType: label,
			}
		}
	}
	return Summary{Discipline: s}
}

func (r *Rules) sessionType(tail string) (string, bool) {
	tail = strings.ToLower(tail)
	for _, st := range r.SessionTypes {
		if strings.Contains(tail, st.Stem) {
			return st.Label, true
		}
	}
	return "", false
}

// Teacher returns the name following the first role prefix found, scanning
// lines in order and patterns in order within each line.
func (r *Rules) Teacher(description string) string {
	for _, line := range strings.Split(Normalize(description), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, re := range r.TeacherPatterns {
			if m := re.FindStringSubmatch(line); m != nil {
				return strings.TrimSpace(m[1])
			}
		}
	}
	return ""
}

// Passcode returns the token after the leftmost passcode keyword.
func (r *Rules) Passcode(description string) string {
	if description == "" || r.passcode == nil {
		return ""
	}
	m := r.passcode.FindStringSubmatch(Normalize(description))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Links returns every URL in text, videoconference links first. Order is
// otherwise preserved.
func (r *Rules) Links(text string) []string {
	// No NFC here: composition maps some non-ASCII runes (U+212A, U+037E)
	// onto ASCII, which would extend a link.
	found := linkPattern.FindAllString(cleaner.Replace(text), -1)
	if len(found) == 0 {
		return nil
	}
	conf := make([]string, 0, len(found))
	var rest []string
	for _, l := range found {
		if _, ok := r.Conference(l); ok {
			conf = append(conf, l)
		} else {
			rest = append(rest, l)
		}
	}
	return append(conf, rest...)
}

// Conference reports which known videoconference service a link points to.
func (r *Rules) Conference(link string) (Conference, bool) {
	lower := strings.ToLower(link)
	for _, c := range r.Conferences {
		if strings.Contains(lower, c.Domain) {
			return c, true
		}
	}
	return Conference{}, false
}

// Place classifies where a session happens. Online plus a room beats
// online alone, which beats a room alone; the raw location and the
// placeholder come last.
func (r *Rules) Place(location, description string) string {
	blob := strings.ToLower(Normalize(location + "\n" + description))

	room := ""
	if m := r.RoomPattern.FindStringSubmatch(blob); m != nil {
		room = r.Labels.RoomPrefix + m[1]
	}

	if r.isOnline(blob) {
		if room != "" {
			return fmt.Sprintf(r.Labels.OnlineWithRoom, room)
		}
		return r.Labels.Online
	}
	if room != "" {
		return fmt.Sprintf(r.Labels.Room, room)
	}
	if loc := strings.TrimSpace(location); loc != "" {
		return fmt.Sprintf(r.Labels.Location, loc)
	}
	return r.Labels.Unknown
}

func (r *Rules) isOnline(blob string) bool {
	for _, h := range r.OnlineHints {
		if strings.Contains(blob, h) {
			return true
		}
	}
	for _, c := range r.Conferences {
		if strings.Contains(blob, c.Domain) {
			return true
		}
	}
	return false
}

// Extract applies every extractor to an event.
func (r *Rules) Extract(ev model.Event) model.Fragments {
	s := r.SplitSummary(ev.Summary)
	return model.Fragments{
		Discipline:  s.Discipline,
		SessionType: s.SessionType,
		Teacher:     r.Teacher(ev.Description),
		Passcode:    r.Passcode(ev.Description),
		Place:       r.Place(ev.Location, ev.Description),
		Links:       r.Links(ev.Description + "\n" + ev.Location),
	}
}
