package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format bookings are keyed by.
const DateLayout = "2006-01-02"

var (
	// ErrInvalidClock is returned when a time of day is not in HH:MM form.
	ErrInvalidClock = errors.New("booking: invalid clock time")
	// ErrInvalidDate is returned when a date is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("booking: invalid date")
)

// ClockTime is a wall-clock time of day expressed in minutes after midnight.
type ClockTime int

// EndOfDay is the latest value a clock time may hold ("24:00").
const EndOfDay ClockTime = 24 * 60

// ParseClock parses a 24 hour "HH:MM" value. "24:00" is accepted as end of day.
func ParseClock(value string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	hours, ok := twoDigits(hh)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	minutes, ok := twoDigits(mm)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	if minutes > 59 || hours > 24 || (hours == 24 && minutes != 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return ClockTime(hours*60 + minutes), nil
}

func twoDigits(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// String renders the clock time as "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// ParseDate validates a "YYYY-MM-DD" calendar date and returns it normalised.
func ParseDate(value string) (string, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return parsed.Format(DateLayout), nil
}
