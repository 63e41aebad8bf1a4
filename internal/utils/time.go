package utils

import "time"

const DateKeyFormat = "2006-01-02"

// TimeToMinutes converts an "HH:MM" string to minutes since midnight.
// Returns -1 when the string does not parse.
func TimeToMinutes(timeStr string) int {
	t, err := time.Parse("15:04", timeStr)
	if err != nil {
		return -1
	}
	return t.Hour()*60 + t.Minute()
}

// DateKey formats t as a canonical YYYY-MM-DD date key.
func DateKey(t time.Time) string {
	return t.Format(DateKeyFormat)
}

// IsDateKey reports whether s is a well-formed date key.
func IsDateKey(s string) bool {
	_, err := time.Parse(DateKeyFormat, s)
	return err == nil
}

// ParseDateKey parses a canonical date key.
func ParseDateKey(s string) (time.Time, error) {
	return time.Parse(DateKeyFormat, s)
}

// ParseWeekday maps a weekday name (case-insensitive, full or three-letter)
// to its time.Weekday. The second return reports success.
func ParseWeekday(s string) (time.Weekday, bool) {
	switch normalizeWeekday(s) {
	case "sunday", "sun":
		return time.Sunday, true
	case "monday", "mon":
		return time.Monday, true
	case "tuesday", "tue":
		return time.Tuesday, true
	case "wednesday", "wed":
		return time.Wednesday, true
	case "thursday", "thu":
		return time.Thursday, true
	case "friday", "fri":
		return time.Friday, true
	case "saturday", "sat":
		return time.Saturday, true
	}
	return time.Sunday, false
}

func normalizeWeekday(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c >= 'a' && c <= 'z' {
			b = append(b, c)
		}
	}
	return string(b)
}
