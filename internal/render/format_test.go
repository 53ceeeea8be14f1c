package render

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/go-cmp/cmp"

	"timetable_bot/internal/extract"
	"timetable_bot/internal/model"
)

const teacherIcon = "👩‍🏫"

func newComposer(t *testing.T) (*Composer, *time.Location) {
	t.Helper()
	kyiv, err := time.LoadLocation("Europe/Kyiv")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return New(extract.Default(), kyiv, "Дніпрі"), kyiv
}

func TestDayStanza(t *testing.T) {
	c, kyiv := newComposer(t)
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, kyiv)

	events := []model.Event{{
		Start:       time.Date(2024, 3, 4, 9, 0, 0, 0, kyiv),
		End:         time.Date(2024, 3, 4, 10, 30, 0, 0, kyiv),
		Summary:     "Математика — Лекція",
		Description: "Доц.: Іванов І.І.\nhttps://zoom.us/j/123 \nКод доступу: AB12",
	}}

	want := strings.Join([]string{
		"📅 <b>Понеділок</b> • <b>04.03</b>",
		"",
		"🕒 <b>09:00–10:30</b>",
		"📚 <b>Математика</b>",
		"🎓 Лекція",
		teacherIcon + " Іванов І.І.",
		"🌐 Online",
		`🔗 <a href="https://zoom.us/j/123">Відкрити Zoom</a>`,
		"📎 <code>https://zoom.us/j/123</code>",
		"🔑 Код доступу: <b>AB12</b>",
	}, "\n")

	if diff := cmp.Diff(want, c.Day(events, day)); diff != "" {
		t.Errorf("Day() mismatch (-want +got):\n%s", diff)
	}
}

func TestDayEmpty(t *testing.T) {
	c, kyiv := newComposer(t)
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, kyiv)

	want := "📅 <b>Субота</b> • <b>09.03</b>\n\n" + NoSessions
	if diff := cmp.Diff(want, c.Day(nil, day)); diff != "" {
		t.Errorf("Day() mismatch (-want +got):\n%s", diff)
	}
}

func TestDayMinimalStanzas(t *testing.T) {
	c, kyiv := newComposer(t)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, kyiv)

	events := []model.Event{
		{
			Start:    time.Date(2024, 3, 5, 8, 0, 0, 0, kyiv),
			End:      time.Date(2024, 3, 5, 9, 20, 0, 0, kyiv),
			Summary:  "Історія",
			Location: "Корпус 3",
		},
		{
			// UTC instants are shown in the composer's zone.
			Start:   time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC),
			End:     time.Date(2024, 3, 5, 9, 20, 0, 0, time.UTC),
			Summary: "Хімія - Практичне заняття",
		},
	}

	want := strings.Join([]string{
		"📅 <b>Вівторок</b> • <b>05.03</b>",
		"",
		"🕒 <b>08:00–09:20</b>",
		"📚 <b>Історія</b>",
		"📍 Корпус 3",
		"",
		"🕒 <b>10:00–11:20</b>",
		"📚 <b>Хімія</b>",
		"🎓 Практичне",
		"📍 (місце не вказано)",
	}, "\n")

	if diff := cmp.Diff(want, c.Day(events, day)); diff != "" {
		t.Errorf("Day() mismatch (-want +got):\n%s", diff)
	}
}

func TestStanzaEscaping(t *testing.T) {
	c, kyiv := newComposer(t)

	ev := model.Event{
		Start:       time.Date(2024, 3, 4, 9, 0, 0, 0, kyiv),
		End:         time.Date(2024, 3, 4, 10, 0, 0, 0, kyiv),
		Summary:     "R&D <intro> — Семінар",
		Description: "https://example.com/a?x=1&y=2",
	}

	want := []string{
		"🕒 <b>09:00–10:00</b>",
		"📚 <b>R&amp;D &lt;intro&gt;</b>",
		"🎓 Семінар",
		"📍 (місце не вказано)",
		`🔗 <a href="https://example.com/a?x=1&amp;y=2">Відкрити посилання</a>`,
		"📎 <code>https://example.com/a?x=1&amp;y=2</code>",
	}
	if diff := cmp.Diff(want, c.stanza(ev)); diff != "" {
		t.Errorf("stanza() mismatch (-want +got):\n%s", diff)
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		html string
		attr string
	}{
		{name: "plain", in: "Фізика", html: "Фізика", attr: "Фізика"},
		{name: "ampersand first", in: "&lt;", html: "&amp;lt;", attr: "&amp;lt;"},
		{name: "tags", in: "<b>", html: "&lt;b&gt;", attr: "&lt;b&gt;"},
		{name: "quotes", in: `a"b`, html: `a"b`, attr: "a&quot;b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.html, EscapeHTML(tt.in)); diff != "" {
				t.Errorf("EscapeHTML() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.attr, EscapeAttr(tt.in)); diff != "" {
				t.Errorf("EscapeAttr() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWeek(t *testing.T) {
	c, kyiv := newComposer(t)
	from := time.Date(2024, 3, 4, 0, 0, 0, 0, kyiv)
	to := time.Date(2024, 3, 10, 0, 0, 0, 0, kyiv)

	events := []model.Event{{
		Start:   time.Date(2024, 3, 6, 9, 0, 0, 0, kyiv),
		End:     time.Date(2024, 3, 6, 10, 30, 0, 0, kyiv),
		Summary: "Фізика — Лабораторна робота",
	}}

	got := c.Week(events, from, to)

	if n := strings.Count(got, Separator); n != 8 {
		t.Errorf("separator count = %d, want 8", n)
	}
	if n := strings.Count(got, NoSessions); n != 6 {
		t.Errorf("empty days = %d, want 6", n)
	}
	if !strings.HasPrefix(got, Separator+"\n📅 <b>Понеділок</b> • <b>04.03</b>") {
		t.Errorf("week does not start with Monday block:\n%s", got)
	}
	if !strings.HasSuffix(got, "📅 <b>Неділя</b> • <b>10.03</b>\n\n"+NoSessions+"\n"+Separator) {
		t.Errorf("week does not end with Sunday block:\n%s", got)
	}
	wed := Separator + "\n📅 <b>Середа</b> • <b>06.03</b>\n\n🕒 <b>09:00–10:30</b>\n📚 <b>Фізика</b>\n🎓 Лабораторна\n📍 (місце не вказано)\n" + Separator
	if !strings.Contains(got, wed) {
		t.Errorf("wednesday block missing:\n%s", got)
	}
}

func TestMessages(t *testing.T) {
	c, kyiv := newComposer(t)
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, kyiv)
	updated := time.Date(2024, 3, 9, 5, 0, 0, 0, time.UTC)
	precip := 40

	w := &model.Weather{Code: 61, Description: "дощ", MinTemp: -2, MaxTemp: 5, PrecipProbability: &precip}

	want := strings.Join([]string{
		"<b>Доброго ранку шановні студенти!</b> ☀️",
		"",
		"⛅ Погода в Дніпрі на сьогодні:",
		"• дощ",
		"• 🌡️ Мін/Макс: -2°C / 5°C",
		"• ☔ Ймовірність опадів: 40%",
		"",
		"🗓️ <b>Розклад на сьогодні (09.03)</b>",
		"",
		"📅 <b>Субота</b> • <b>09.03</b>",
		"",
		NoSessions,
		"",
		"⏱️ Оновлено: 07:00",
	}, "\n")
	if diff := cmp.Diff(want, c.TodayMessage(nil, day, w, updated)); diff != "" {
		t.Errorf("TodayMessage() mismatch (-want +got):\n%s", diff)
	}

	got := c.TomorrowMessage(nil, day, nil, updated)
	if strings.Contains(got, "Погода") {
		t.Errorf("TomorrowMessage() without weather rendered a weather block:\n%s", got)
	}
	if !strings.HasPrefix(got, "<b>Добрий вечір шановні студенти!</b> 🌙\n\n🗓️ <b>Розклад на завтра (09.03)</b>") {
		t.Errorf("TomorrowMessage() header mismatch:\n%s", got)
	}

	week := c.WeekMessage(nil, time.Date(2024, 3, 11, 0, 0, 0, 0, kyiv), time.Date(2024, 3, 17, 0, 0, 0, 0, kyiv), updated)
	if !strings.HasPrefix(week, "🗓️ <b>Розклад на тиждень</b>\n<b>11.03 – 17.03</b>\n\n"+Separator) {
		t.Errorf("WeekMessage() header mismatch:\n%s", week)
	}
	if !strings.HasSuffix(week, Separator+"\n\n⏱️ Оновлено: 07:00") {
		t.Errorf("WeekMessage() footer mismatch:\n%s", week)
	}
}

func TestWeatherBlockWithoutPrecip(t *testing.T) {
	c, _ := newComposer(t)
	w := &model.Weather{Code: 0, Description: "ясно", MinTemp: 3, MaxTemp: 12}

	want := "⛅ Погода в Дніпрі на завтра:\n• ясно\n• 🌡️ Мін/Макс: 3°C / 12°C\n\n"
	if diff := cmp.Diff(want, c.WeatherBlock(w, "завтра")); diff != "" {
		t.Errorf("WeatherBlock() mismatch (-want +got):\n%s", diff)
	}
}
