package booking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustInterval(t *testing.T, start, end string) Interval {
	t.Helper()
	interval, err := ParseInterval(start, end)
	require.NoError(t, err)
	return interval
}

func TestNewIntervalRejectsEmptyAndInverted(t *testing.T) {
	_, err := ParseInterval("10:00", "10:00")
	require.ErrorIs(t, err, ErrInvalidInterval)

	_, err = ParseInterval("11:00", "10:00")
	require.ErrorIs(t, err, ErrInvalidInterval)

	_, err = ParseInterval("10:00", "xx")
	require.ErrorIs(t, err, ErrInvalidClock)
}

func TestIntervalOverlaps(t *testing.T) {
	base := mustInterval(t, "09:00", "10:00")

	cases := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"identical", "09:00", "10:00", true},
		{"straddles end", "09:30", "10:30", true},
		{"straddles start", "08:30", "09:30", true},
		{"contained", "09:15", "09:45", true},
		{"contains", "08:00", "11:00", true},
		{"touches end", "10:00", "11:00", false},
		{"touches start", "08:00", "09:00", false},
		{"disjoint", "12:00", "13:00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other := mustInterval(t, tc.start, tc.end)
			require.Equal(t, tc.want, base.Overlaps(other))
			require.Equal(t, tc.want, other.Overlaps(base), "overlap must be symmetric")
		})
	}
}
