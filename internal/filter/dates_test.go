package filter

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/go-cmp/cmp"

	"timetable_bot/internal/model"
)

func TestInRange(t *testing.T) {
	kyiv, err := time.LoadLocation("Europe/Kyiv")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	events := []model.Event{
		{Summary: "sunday late", Start: time.Date(2024, 3, 3, 23, 30, 0, 0, kyiv)},
		// 22:30 UTC on the 3rd is 00:30 on the 4th in Kyiv.
		{Summary: "monday early utc", Start: time.Date(2024, 3, 3, 22, 30, 0, 0, time.UTC)},
		{Summary: "monday", Start: time.Date(2024, 3, 4, 9, 0, 0, 0, kyiv)},
		{Summary: "tuesday", Start: time.Date(2024, 3, 5, 9, 0, 0, 0, kyiv)},
		{Summary: "wednesday", Start: time.Date(2024, 3, 6, 9, 0, 0, 0, kyiv)},
	}

	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want []string
	}{
		{
			name: "single day",
			from: time.Date(2024, 3, 4, 0, 0, 0, 0, kyiv),
			to:   time.Date(2024, 3, 4, 0, 0, 0, 0, kyiv),
			want: []string{"monday early utc", "monday"},
		},
		{
			name: "inclusive range",
			from: time.Date(2024, 3, 4, 0, 0, 0, 0, kyiv),
			to:   time.Date(2024, 3, 5, 0, 0, 0, 0, kyiv),
			want: []string{"monday early utc", "monday", "tuesday"},
		},
		{
			name: "bounds with time of day",
			from: time.Date(2024, 3, 5, 18, 0, 0, 0, kyiv),
			to:   time.Date(2024, 3, 6, 1, 0, 0, 0, kyiv),
			want: []string{"tuesday", "wednesday"},
		},
		{
			name: "empty day",
			from: time.Date(2024, 3, 10, 0, 0, 0, 0, kyiv),
			to:   time.Date(2024, 3, 10, 0, 0, 0, 0, kyiv),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, ev := range InRange(events, tt.from, tt.to, kyiv) {
				got = append(got, ev.Summary)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("InRange() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDays(t *testing.T) {
	kyiv, err := time.LoadLocation("Europe/Kyiv")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// Spans the switch to summer time on 2024-03-31.
	days := Days(time.Date(2024, 3, 25, 12, 0, 0, 0, kyiv), time.Date(2024, 3, 31, 23, 0, 0, 0, kyiv), kyiv)

	var got []string
	for _, d := range days {
		got = append(got, d.Format("2006-01-02 15:04"))
	}
	want := []string{
		"2024-03-25 00:00",
		"2024-03-26 00:00",
		"2024-03-27 00:00",
		"2024-03-28 00:00",
		"2024-03-29 00:00",
		"2024-03-30 00:00",
		"2024-03-31 00:00",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Days() mismatch (-want +got):\n%s", diff)
	}
}
