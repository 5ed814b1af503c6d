package booking

import "errors"

// ErrInvalidInterval is returned when an interval does not start strictly before it ends.
var ErrInvalidInterval = errors.New("booking: end time must be after start time")

// Interval is a half-open [Start, End) span within a single day.
type Interval struct {
	Start ClockTime
	End   ClockTime
}

// NewInterval builds an interval, rejecting empty or inverted spans.
func NewInterval(start, end ClockTime) (Interval, error) {
	interval := Interval{Start: start, End: end}
	if !interval.Valid() {
		return Interval{}, ErrInvalidInterval
	}
	return interval, nil
}

// ParseInterval parses two "HH:MM" values into an interval.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	return NewInterval(s, e)
}

// Valid reports whether the interval starts strictly before it ends.
func (i Interval) Valid() bool {
	return i.Start < i.End
}

// Overlaps reports whether the two half-open intervals share any instant.
// Touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}
