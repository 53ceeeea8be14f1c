package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"timetable_bot/internal/model"
)

func sampleEvent() model.Event {
	return model.Event{
		Summary:     "Бази даних — Практичне заняття",
		Description: `Викл. Руденко А.В.\nПосилання: https://meet.google.com/abc-defg-hij\nPasscode: 55-aa`,
		Location:    "ауд. 207",
	}
}

func TestParseOverrides(t *testing.T) {
	data := []byte(`
session_types:
  - stem: лекці
    label: Лекція
  - stem: консульт
    label: Консультація
teacher_roles:
  - 'лектор'
passcode_keywords: ["PIN"]
conferences:
  - domain: webex.com
    name: Webex
online_hints: ["дистанційно"]
room_pattern: 'каб\.?\s*(\d+)'
labels:
  online: "💻 Дистанційно"
  room_prefix: "каб. "
`)

	r, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := []string{
		r.SplitSummary("Історія — Консультація").SessionType,
		r.Teacher("Лектор: Шевченко Т.Г."),
		r.Passcode("PIN: 7788"),
		r.Passcode("Пароль: q1w2"),
		r.Place("", "дистанційно"),
		r.Place("каб. 12", ""),
		r.Place("https://webex.com/meet/x", ""),
	}
	want := []string{
		"Консультація",
		"Шевченко Т.Г.",
		"7788",
		"",
		"💻 Дистанційно",
		"🏫 каб. 12",
		"💻 Дистанційно",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("overridden rules mismatch (-want +got):\n%s", diff)
	}

	// Unset entries keep their defaults.
	if diff := cmp.Diff(Default().Separators, r.Separators); diff != "" {
		t.Errorf("separators mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Default().Labels.Unknown, r.Labels.Unknown); diff != "" {
		t.Errorf("unknown label mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	r, err := Parse(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := r.Extract(sampleEvent())
	want := Default().Extract(sampleEvent())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "bad yaml", data: "separators: [unclosed"},
		{name: "bad teacher role", data: "teacher_roles: ['(']"},
		{name: "bad room pattern", data: "room_pattern: '['"},
		{name: "room pattern without group", data: `room_pattern: 'ауд\d+'`},
		{name: "session type without label", data: "session_types: [{stem: лаб}]"},
		{name: "empty teacher role", data: "teacher_roles: ['']"},
		{name: "blank teacher role", data: "teacher_roles: ['доцент', '  ']"},
		{name: "empty separator", data: "separators: ['']"},
		{name: "empty online hint", data: "online_hints: ['онлайн', '']"},
		{name: "conference without domain", data: "conferences: [{name: Webex}]"},
		{name: "room label without verb", data: "labels: {room: 'кімната'}"},
		{name: "location label with two verbs", data: "labels: {location: '%s / %s'}"},
		{name: "room label with wrong verb", data: "labels: {online_with_room: 'Online %d'}"},
		{name: "online label with verb", data: "labels: {online: '%s онлайн'}"},
		{name: "online label with percent", data: "labels: {online: 'Online 100%'}"},
		{name: "unknown label with verb", data: "labels: {unknown: '%v'}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestParseLabels(t *testing.T) {
	data := []byte(`
labels:
  room: "🏫 %s (100%%)"
`)
	r, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff("🏫 ауд. 5 (100%)", r.Place("ауд. 5", "")); diff != "" {
		t.Errorf("Place() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("separators: ['|']\n"), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	r, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Summary{Discipline: "Хімія", SessionType: "Семінар"}
	if diff := cmp.Diff(want, r.SplitSummary("Хімія | Семінар")); diff != "" {
		t.Errorf("SplitSummary() mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
