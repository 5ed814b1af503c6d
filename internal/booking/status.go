package booking

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the review state of a booking.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var (
	// ErrInvalidStatus is returned for status values outside the lifecycle.
	ErrInvalidStatus = errors.New("booking: invalid status")
	// ErrTransitionNotAllowed is returned when a status change violates the lifecycle guard.
	ErrTransitionNotAllowed = errors.New("booking: status transition not allowed")
)

// ParseStatus validates a status name.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
}

// InitialStatus is the status a new booking starts in. Bookings requested by
// roles that approve their own bookings start approved.
func InitialStatus(autoApproved bool) Status {
	if autoApproved {
		return StatusApproved
	}
	return StatusPending
}

// CheckTransition validates moving a booking from current to target.
// An approved booking whose owner auto-approves cannot return to pending.
func CheckTransition(current, target Status, ownerAutoApproves bool) error {
	if _, err := ParseStatus(string(target)); err != nil {
		return err
	}
	if ownerAutoApproves && current == StatusApproved && target == StatusPending {
		return ErrTransitionNotAllowed
	}
	return nil
}
