package utils

import (
	"testing"
	"time"
)

func TestTimeToMinutes(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"07:30", 450},
		{"23:59", 1439},
		{"7am", -1},
		{"", -1},
	}
	for _, tc := range cases {
		if got := TimeToMinutes(tc.in); got != tc.want {
			t.Fatalf("TimeToMinutes(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestDateKeyRoundTrip(t *testing.T) {
	t.Parallel()
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	key := DateKey(day)
	if key != "2026-03-09" {
		t.Fatalf("DateKey = %q", key)
	}
	if !IsDateKey(key) {
		t.Fatalf("IsDateKey rejected %q", key)
	}
	parsed, err := ParseDateKey(key)
	if err != nil {
		t.Fatalf("ParseDateKey failed: %v", err)
	}
	if !parsed.Equal(day) {
		t.Fatalf("round trip lost the date: %v", parsed)
	}
}

func TestIsDateKeyRejectsWeekdayNames(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"monday", "03-09-2026", "2026/03/09", ""} {
		if IsDateKey(s) {
			t.Fatalf("IsDateKey accepted %q", s)
		}
	}
}

func TestParseWeekday(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want time.Weekday
	}{
		{"monday", time.Monday},
		{"Mon", time.Monday},
		{"WEDNESDAY", time.Wednesday},
		{"sun", time.Sunday},
	}
	for _, tc := range cases {
		got, ok := ParseWeekday(tc.in)
		if !ok || got != tc.want {
			t.Fatalf("ParseWeekday(%q) = %v, %v", tc.in, got, ok)
		}
	}
	if _, ok := ParseWeekday("someday"); ok {
		t.Fatalf("ParseWeekday accepted an unknown token")
	}
}
