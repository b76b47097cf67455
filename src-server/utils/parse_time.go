package utils

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
)

// DefaultMeetingDuration is used when a meeting request carries no end time.
const DefaultMeetingDuration = time.Hour

// ParseFlexibleTime accepts RFC3339, a bare ISO datetime, or natural language
// ("tomorrow 3pm") and resolves it relative to ref.
func ParseFlexibleTime(w *when.Parser, text string, ref time.Time) (time.Time, error) {
	if text == "" {
		return time.Time{}, fmt.Errorf("ParseFlexibleTime: text is blank")
	}
	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", text, ref.Location()); err == nil {
		return t, nil
	}
	result, err := w.Parse(text, ref)
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseFlexibleTime: %w", err)
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("ParseFlexibleTime: can't understand %q", text)
	}
	return result.Time, nil
}

// CalculateEndTime derives the end from the start; non-positive durations
// fall back to the default.
func CalculateEndTime(start time.Time, duration time.Duration) time.Time {
	if duration <= 0 {
		duration = DefaultMeetingDuration
	}
	return start.Add(duration)
}

// FormatForGoogle renders t the way the calendar API expects.
func FormatForGoogle(t time.Time) string {
	return t.Format(time.RFC3339)
}
