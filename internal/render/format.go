// Package render composes the HTML digest messages posted to the chat.
package render

import (
	"fmt"
	"strings"
	"time"

	"timetable_bot/internal/extract"
	"timetable_bot/internal/filter"
	"timetable_bot/internal/model"
)

// Separator is placed around every day of a weekly digest.
const Separator = "━━━━━━━━━━━━━━━━━━━━"

// NoSessions is rendered for a day without events.
const NoSessions = "— (пар немає)"

var weekdays = [...]string{
	time.Sunday:    "Неділя",
	time.Monday:    "Понеділок",
	time.Tuesday:   "Вівторок",
	time.Wednesday: "Середа",
	time.Thursday:  "Четвер",
	time.Friday:    "Пʼятниця",
	time.Saturday:  "Субота",
}

var (
	htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// EscapeHTML escapes the characters reserved by Telegram's HTML mode.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// EscapeAttr escapes text placed inside a double-quoted attribute.
func EscapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// Composer turns events into digest text. Fragments are extracted at render
// time with Rules; dates and times are shown in Location.
type Composer struct {
	Rules    *extract.Rules
	Location *time.Location
	// City is shown in the weather block, e.g. "Дніпрі".
	City string
}

// New creates a Composer.
func New(rules *extract.Rules, loc *time.Location, city string) *Composer {
	return &Composer{Rules: rules, Location: loc, City: city}
}

// DayHeader renders the weekday and short date of day.
func (c *Composer) DayHeader(day time.Time) string {
	day = day.In(c.Location)
	return fmt.Sprintf("📅 <b>%s</b> • <b>%s</b>", weekdays[day.Weekday()], shortDate(day))
}

// Day renders one day: a header, then either the "no sessions" line or one
// stanza per event in the order given.
func (c *Composer) Day(events []model.Event, day time.Time) string {
	lines := []string{c.DayHeader(day), ""}

	if len(events) == 0 {
		lines = append(lines, NoSessions)
		return strings.Join(lines, "\n")
	}

	for _, ev := range events {
		lines = append(lines, c.stanza(ev)...)
		lines = append(lines, "")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func (c *Composer) stanza(ev model.Event) []string {
	f := c.Rules.Extract(ev)

	lines := []string{
		fmt.Sprintf("🕒 <b>%s–%s</b>", c.clock(ev.Start), c.clock(ev.End)),
		fmt.Sprintf("📚 <b>%s</b>", EscapeHTML(f.Discipline)),
	}
	if f.SessionType != "" {
		lines = append(lines, "🎓 "+EscapeHTML(f.SessionType))
	}
	if f.Teacher != "" {
		lines = append(lines, "👩‍🏫 "+EscapeHTML(f.Teacher))
	}
	lines = append(lines, EscapeHTML(f.Place))

	if len(f.Links) > 0 {
		link := f.Links[0]
		lines = append(lines,
			fmt.Sprintf(`🔗 <a href="%s">%s</a>`, EscapeAttr(link), EscapeHTML(c.linkLabel(link))),
			fmt.Sprintf("📎 <code>%s</code>", EscapeHTML(link)),
		)
	}
	if f.Passcode != "" {
		lines = append(lines, fmt.Sprintf("🔑 Код доступу: <b>%s</b>", EscapeHTML(f.Passcode)))
	}
	return lines
}

func (c *Composer) linkLabel(link string) string {
	if conf, ok := c.Rules.Conference(link); ok {
		return "Відкрити " + conf.Name
	}
	return "Відкрити посилання"
}

// Week renders every calendar day from..to (inclusive), each preceded by a
// separator, with a closing separator after the last day.
func (c *Composer) Week(events []model.Event, from, to time.Time) string {
	var blocks []string
	for _, day := range filter.Days(from, to, c.Location) {
		blocks = append(blocks, Separator, c.Day(filter.InRange(events, day, day, c.Location), day))
	}
	blocks = append(blocks, Separator)
	return strings.Join(blocks, "\n")
}

// TodayMessage renders the morning post for day.
func (c *Composer) TodayMessage(events []model.Event, day time.Time, w *model.Weather, updated time.Time) string {
	var b strings.Builder
	b.WriteString("<b>Доброго ранку шановні студенти!</b> ☀️\n\n")
	b.WriteString(c.WeatherBlock(w, "сьогодні"))
	fmt.Fprintf(&b, "🗓️ <b>Розклад на сьогодні (%s)</b>\n\n", shortDate(day.In(c.Location)))
	b.WriteString(c.Day(events, day))
	b.WriteString(c.footer(updated))
	return b.String()
}

// TomorrowMessage renders the evening post for day.
func (c *Composer) TomorrowMessage(events []model.Event, day time.Time, w *model.Weather, updated time.Time) string {
	var b strings.Builder
	b.WriteString("<b>Добрий вечір шановні студенти!</b> 🌙\n\n")
	b.WriteString(c.WeatherBlock(w, "завтра"))
	fmt.Fprintf(&b, "🗓️ <b>Розклад на завтра (%s)</b>\n\n", shortDate(day.In(c.Location)))
	b.WriteString(c.Day(events, day))
	b.WriteString(c.footer(updated))
	return b.String()
}

// WeekMessage renders the weekly post covering from..to.
func (c *Composer) WeekMessage(events []model.Event, from, to, updated time.Time) string {
	var b strings.Builder
	b.WriteString("🗓️ <b>Розклад на тиждень</b>\n")
	fmt.Fprintf(&b, "<b>%s – %s</b>\n\n", shortDate(from.In(c.Location)), shortDate(to.In(c.Location)))
	b.WriteString(c.Week(events, from, to))
	b.WriteString(c.footer(updated))
	return b.String()
}

// WeatherBlock renders the forecast, or nothing when w is nil.
func (c *Composer) WeatherBlock(w *model.Weather, label string) string {
	if w == nil {
		return ""
	}
	lines := []string{
		fmt.Sprintf("⛅ Погода в %s на %s:", EscapeHTML(c.City), label),
		"• " + EscapeHTML(w.Description),
		fmt.Sprintf("• 🌡️ Мін/Макс: %d°C / %d°C", w.MinTemp, w.MaxTemp),
	}
	if w.PrecipProbability != nil {
		lines = append(lines, fmt.Sprintf("• ☔ Ймовірність опадів: %d%%", *w.PrecipProbability))
	}
	return strings.Join(lines, "\n") + "\n\n"
}

func (c *Composer) footer(updated time.Time) string {
	return "\n\n⏱️ Оновлено: " + c.clock(updated)
}

func (c *Composer) clock(t time.Time) string {
	return t.In(c.Location).Format("15:04")
}

func shortDate(t time.Time) string {
	return t.Format("02.01")
}
