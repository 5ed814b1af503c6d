package booking

// Slot is the portion of a booking that takes part in conflict detection.
type Slot struct {
	ID          int64
	ClassroomID string
	Date        string
	Interval    Interval
	Status      Status
}

// Policy decides which booking statuses occupy a classroom.
type Policy struct {
	// ReleaseRejected frees the slot held by rejected bookings.
	ReleaseRejected bool
}

// DefaultPolicy treats every stored booking as occupying its slot.
var DefaultPolicy = Policy{}

// Blocks reports whether a booking in the given status occupies its slot.
func (p Policy) Blocks(status Status) bool {
	if status == StatusRejected {
		return !p.ReleaseRejected
	}
	return true
}

// Conflicts returns the existing slots that collide with the candidate. Slots
// sharing the candidate's ID are ignored so updates do not conflict with themselves.
func (p Policy) Conflicts(existing []Slot, candidate Slot) []Slot {
	var conflicts []Slot
	for _, slot := range existing {
		if candidate.ID != 0 && slot.ID == candidate.ID {
			continue
		}
		if slot.ClassroomID != candidate.ClassroomID || slot.Date != candidate.Date {
			continue
		}
		if !p.Blocks(slot.Status) {
			continue
		}
		if slot.Interval.Overlaps(candidate.Interval) {
			conflicts = append(conflicts, slot)
		}
	}
	return conflicts
}

// Available reports whether the candidate fits around every existing slot.
func (p Policy) Available(existing []Slot, candidate Slot) bool {
	return len(p.Conflicts(existing, candidate)) == 0
}

// Available applies DefaultPolicy.
func Available(existing []Slot, candidate Slot) bool {
	return DefaultPolicy.Available(existing, candidate)
}
