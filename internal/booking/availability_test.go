package booking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAvailable(t *testing.T) {
	existing := []Slot{
		{ID: 1, ClassroomID: "CL101", Date: "2024-05-01", Interval: mustInterval(t, "09:00", "10:00"), Status: StatusApproved},
		{ID: 2, ClassroomID: "CL102", Date: "2024-05-01", Interval: mustInterval(t, "09:00", "12:00"), Status: StatusPending},
		{ID: 3, ClassroomID: "CL101", Date: "2024-05-02", Interval: mustInterval(t, "09:00", "12:00"), Status: StatusPending},
	}

	t.Run("overlapping request is rejected", func(t *testing.T) {
		candidate := Slot{ClassroomID: "CL101", Date: "2024-05-01", Interval: mustInterval(t, "09:30", "10:30")}
		require.False(t, Available(existing, candidate))
		conflicts := DefaultPolicy.Conflicts(existing, candidate)
		require.Len(t, conflicts, 1)
		require.Equal(t, int64(1), conflicts[0].ID)
	})

	t.Run("back to back request is accepted", func(t *testing.T) {
		candidate := Slot{ClassroomID: "CL101", Date: "2024-05-01", Interval: mustInterval(t, "10:00", "11:00")}
		require.True(t, Available(existing, candidate))
	})

	t.Run("other classrooms and dates do not block", func(t *testing.T) {
		candidate := Slot{ClassroomID: "CL103", Date: "2024-05-01", Interval: mustInterval(t, "09:00", "10:00")}
		require.True(t, Available(existing, candidate))
	})

	t.Run("update ignores its own slot", func(t *testing.T) {
		candidate := Slot{ID: 1, ClassroomID: "CL101", Date: "2024-05-01", Interval: mustInterval(t, "09:30", "10:30")}
		require.True(t, Available(existing, candidate))
	})

	t.Run("empty room is available", func(t *testing.T) {
		candidate := Slot{ClassroomID: "CL101", Date: "2024-05-01", Interval: mustInterval(t, "09:00", "10:00")}
		require.True(t, Available(nil, candidate))
	})
}

func TestPolicyRejectedBookings(t *testing.T) {
	existing := []Slot{
		{ID: 7, ClassroomID: "CL101", Date: "2024-05-01", Interval: mustInterval(t, "09:00", "10:00"), Status: StatusRejected},
	}
	candidate := Slot{ClassroomID: "CL101", Date: "2024-05-01", Interval: mustInterval(t, "09:00", "10:00")}

	require.False(t, DefaultPolicy.Available(existing, candidate))
	require.True(t, Policy{ReleaseRejected: true}.Available(existing, candidate))
}
