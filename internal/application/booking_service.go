package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/campus-portal/internal/booking"
)

// Transactor runs a unit of work inside one storage transaction. Repositories
// called with the context passed to fn take part in the transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// BookingRepository captures the persistence operations needed by the booking service.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	UpdateBooking(ctx context.Context, booking Booking) (Booking, error)
	GetBooking(ctx context.Context, id int64) (Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
}

// ClassroomCatalog resolves classrooms referenced by bookings.
type ClassroomCatalog interface {
	GetClassroom(ctx context.Context, id string) (Classroom, error)
}

// BookingEventType names a booking lifecycle event.
type BookingEventType string

const (
	BookingCreated       BookingEventType = "booking.created"
	BookingUpdated       BookingEventType = "booking.updated"
	BookingStatusChanged BookingEventType = "booking.status_changed"
	BookingDeleted       BookingEventType = "booking.deleted"
)

// BookingEvent describes a committed booking change.
type BookingEvent struct {
	Type       BookingEventType
	Booking    Booking
	ActorID    string
	OccurredAt time.Time
}

// EventPublisher delivers booking events to downstream consumers.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, event BookingEvent) error
}

var (
	errBookingNotFound   = newDomainError(ErrNotFound, "Booking not found.")
	errInvalidInterval   = newDomainError(ErrInvalidInput, "End time must be after start time.")
	errSlotUnavailable   = newDomainError(ErrConflict, "Requested time slot is not available.")
	errUpdateConflict    = newDomainError(ErrConflict, "Requested new time conflicts with existing booking.")
	errApprovedToPending = newDomainError(ErrConflict, "Approved bookings made by advisors cannot be reset to pending.")
)

// BookingService coordinates availability checks, the booking lifecycle and event publication.
type BookingService struct {
	tx         Transactor
	bookings   BookingRepository
	classrooms ClassroomCatalog
	events     EventPublisher
	policy     booking.Policy
	now        func() time.Time
	logger     *slog.Logger
}

// BookingServiceOption customises a BookingService.
type BookingServiceOption func(*BookingService)

// WithBookingPolicy overrides which statuses occupy a slot.
func WithBookingPolicy(policy booking.Policy) BookingServiceOption {
	return func(s *BookingService) { s.policy = policy }
}

// WithEventPublisher sets the publisher notified after each committed change.
func WithEventPublisher(events EventPublisher) BookingServiceOption {
	return func(s *BookingService) { s.events = events }
}

// WithBookingLogger sets the fallback logger used when the context carries none.
func WithBookingLogger(logger *slog.Logger) BookingServiceOption {
	return func(s *BookingService) { s.logger = logger }
}

// NewBookingService constructs a booking service. A nil transactor runs each
// unit of work directly against the repositories.
func NewBookingService(tx Transactor, bookings BookingRepository, classrooms ClassroomCatalog, now func() time.Time, opts ...BookingServiceOption) *BookingService {
	if now == nil {
		now = time.Now
	}
	s := &BookingService{
		tx:         tx,
		bookings:   bookings,
		classrooms: classrooms,
		policy:     booking.DefaultPolicy,
		now:        now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = defaultLogger(s.logger)
	return s
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

func (s *BookingService) ensureConfigured() error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return fmt.Errorf("booking repository not configured")
	}
	if s.classrooms == nil {
		return fmt.Errorf("classroom catalog not configured")
	}
	return nil
}

func (s *BookingService) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.WithinTransaction(ctx, fn)
}

// CheckAvailability reports whether the classroom is free for the requested slot.
func (s *BookingService) CheckAvailability(ctx context.Context, query AvailabilityQuery) (bool, error) {
	if err := s.ensureConfigured(); err != nil {
		return false, err
	}

	slot, err := parseSlot(query.ClassroomID, query.Date, query.StartTime, query.EndTime)
	if err != nil {
		return false, err
	}
	if _, err := s.classrooms.GetClassroom(ctx, slot.ClassroomID); err != nil {
		return false, mapClassroomRepoError(err)
	}

	existing, err := s.slotsFor(ctx, slot.ClassroomID, slot.Date)
	if err != nil {
		return false, err
	}
	return s.policy.Available(existing, slot), nil
}

// CreateBooking validates the request, checks availability and stores the booking
// in one transaction. Bookings by roles that approve their own start approved.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (created Booking, err error) {
	if err = s.ensureConfigured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "CreateBooking",
		"principal_id", params.Principal.UserID,
		"classroom_id", params.Input.ClassroomID,
		"date", params.Input.Date,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", created.ID, "status", created.Status).InfoContext(ctx, "booking created")
	}()

	if err = authorize(params.Principal, CapCreateBookings); err != nil {
		return
	}

	in := params.Input
	var slot booking.Slot
	slot, err = parseSlot(in.ClassroomID, in.Date, in.StartTime, in.EndTime)
	if err != nil {
		return
	}

	now := s.now()
	candidate := Booking{
		ClassroomID: slot.ClassroomID,
		Date:        slot.Date,
		StartTime:   slot.Interval.Start.String(),
		EndTime:     slot.Interval.End.String(),
		OwnerID:     params.Principal.UserID,
		OwnerRole:   params.Principal.Role,
		Purpose:     strings.TrimSpace(in.Purpose),
		Status:      booking.InitialStatus(params.Principal.Role.AutoApprovesBookings()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.inTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.classrooms.GetClassroom(ctx, slot.ClassroomID); err != nil {
			return mapClassroomRepoError(err)
		}
		existing, err := s.slotsFor(ctx, slot.ClassroomID, slot.Date)
		if err != nil {
			return err
		}
		if !s.policy.Available(existing, slot) {
			return errSlotUnavailable
		}
		stored, err := s.bookings.CreateBooking(ctx, candidate)
		if err != nil {
			return mapBookingRepoError(err)
		}
		created = stored
		return nil
	})
	if err != nil {
		created = Booking{}
		return
	}

	s.publish(ctx, logger, BookingCreated, created, params.Principal.UserID)
	return
}

// UpdateBooking merges the patch into the booking and re-checks availability
// against every other booking on the target classroom and date. Changing the
// slot resets the status to what a new booking by the owner would get.
func (s *BookingService) UpdateBooking(ctx context.Context, params UpdateBookingParams) (updated Booking, err error) {
	if err = s.ensureConfigured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "UpdateBooking",
		"principal_id", params.Principal.UserID,
		"booking_id", params.BookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking updated")
	}()

	err = s.inTransaction(ctx, func(ctx context.Context) error {
		current, err := s.bookings.GetBooking(ctx, params.BookingID)
		if err != nil {
			return mapBookingRepoError(err)
		}
		if !canModifyBooking(params.Principal, current) {
			return ErrUnauthorized
		}

		merged := applyBookingPatch(current, params.Patch)
		slot, err := parseSlot(merged.ClassroomID, merged.Date, merged.StartTime, merged.EndTime)
		if err != nil {
			return err
		}
		slot.ID = current.ID

		if slot.ClassroomID != current.ClassroomID {
			if _, err := s.classrooms.GetClassroom(ctx, slot.ClassroomID); err != nil {
				return mapClassroomRepoError(err)
			}
		}
		existing, err := s.slotsFor(ctx, slot.ClassroomID, slot.Date)
		if err != nil {
			return err
		}
		if !s.policy.Available(existing, slot) {
			return errUpdateConflict
		}

		merged.ClassroomID = slot.ClassroomID
		merged.Date = slot.Date
		merged.StartTime = slot.Interval.Start.String()
		merged.EndTime = slot.Interval.End.String()
		if merged.ClassroomID != current.ClassroomID || merged.Date != current.Date ||
			merged.StartTime != current.StartTime || merged.EndTime != current.EndTime {
			// A moved booking goes back through review.
			merged.Status = booking.InitialStatus(current.OwnerRole.AutoApprovesBookings())
		}
		merged.UpdatedAt = s.now()

		stored, err := s.bookings.UpdateBooking(ctx, merged)
		if err != nil {
			return mapBookingRepoError(err)
		}
		updated = stored
		return nil
	})
	if err != nil {
		updated = Booking{}
		return
	}

	s.publish(ctx, logger, BookingUpdated, updated, params.Principal.UserID)
	return
}

// ChangeStatus moves a booking through its review lifecycle. An approved booking
// owned by a self-approving role cannot be reset to pending, and a released
// booking only blocks again if its slot is still free.
func (s *BookingService) ChangeStatus(ctx context.Context, params ChangeBookingStatusParams) (updated Booking, err error) {
	if err = s.ensureConfigured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ChangeStatus",
		"principal_id", params.Principal.UserID,
		"booking_id", params.BookingID,
		"target_status", params.Status,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to change booking status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking status changed")
	}()

	if err = authorize(params.Principal, CapReviewBookings); err != nil {
		return
	}

	target, parseErr := booking.ParseStatus(params.Status)
	if parseErr != nil {
		err = fieldError("status", "status must be one of pending, approved, rejected")
		return
	}

	err = s.inTransaction(ctx, func(ctx context.Context) error {
		current, err := s.bookings.GetBooking(ctx, params.BookingID)
		if err != nil {
			return mapBookingRepoError(err)
		}
		if err := booking.CheckTransition(current.Status, target, current.OwnerRole.AutoApprovesBookings()); err != nil {
			if errors.Is(err, booking.ErrTransitionNotAllowed) {
				return errApprovedToPending
			}
			return err
		}
		if !s.policy.Blocks(current.Status) && s.policy.Blocks(target) {
			slot, err := parseSlot(current.ClassroomID, current.Date, current.StartTime, current.EndTime)
			if err != nil {
				return err
			}
			slot.ID = current.ID
			existing, err := s.slotsFor(ctx, slot.ClassroomID, slot.Date)
			if err != nil {
				return err
			}
			if !s.policy.Available(existing, slot) {
				return errSlotUnavailable
			}
		}

		current.Status = target
		current.UpdatedAt = s.now()
		stored, err := s.bookings.UpdateBooking(ctx, current)
		if err != nil {
			return mapBookingRepoError(err)
		}
		updated = stored
		return nil
	})
	if err != nil {
		updated = Booking{}
		return
	}

	s.publish(ctx, logger, BookingStatusChanged, updated, params.Principal.UserID)
	return
}

// CancelBooking removes a booking on behalf of its owner or an administrator.
func (s *BookingService) CancelBooking(ctx context.Context, principal Principal, bookingID int64) (err error) {
	if err = s.ensureConfigured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "CancelBooking",
		"principal_id", principal.UserID,
		"booking_id", bookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking cancelled")
	}()

	var removed Booking
	err = s.inTransaction(ctx, func(ctx context.Context) error {
		current, err := s.bookings.GetBooking(ctx, bookingID)
		if err != nil {
			return mapBookingRepoError(err)
		}
		if !canModifyBooking(principal, current) {
			return ErrUnauthorized
		}
		if err := s.bookings.DeleteBooking(ctx, bookingID); err != nil {
			return mapBookingRepoError(err)
		}
		removed = current
		return nil
	})
	if err != nil {
		return
	}

	s.publish(ctx, logger, BookingDeleted, removed, principal.UserID)
	return nil
}

// GetBooking returns a booking to its owner or to a reviewer.
func (s *BookingService) GetBooking(ctx context.Context, principal Principal, bookingID int64) (Booking, error) {
	if err := s.ensureConfigured(); err != nil {
		return Booking{}, err
	}
	if principal.UserID == "" {
		return Booking{}, ErrUnauthorized
	}

	found, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return Booking{}, mapBookingRepoError(err)
	}
	if found.OwnerID != principal.UserID && !principal.Can(CapReviewBookings) {
		return Booking{}, ErrUnauthorized
	}
	return found, nil
}

// ListBookings returns bookings visible to the principal. Reviewers see every
// booking; other roles only their own.
func (s *BookingService) ListBookings(ctx context.Context, params ListBookingsParams) ([]Booking, error) {
	if err := s.ensureConfigured(); err != nil {
		return nil, err
	}
	if params.Principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	filter := BookingFilter{ClassroomID: strings.TrimSpace(params.ClassroomID)}

	vErr := &ValidationError{}
	if date := strings.TrimSpace(params.Date); date != "" {
		normalized, err := booking.ParseDate(date)
		if err != nil {
			vErr.add("date", "date must be formatted as YYYY-MM-DD")
		}
		filter.Date = normalized
	}
	if status := strings.TrimSpace(params.Status); status != "" {
		parsed, err := booking.ParseStatus(status)
		if err != nil {
			vErr.add("status", "status must be one of pending, approved, rejected")
		}
		filter.Status = string(parsed)
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	if !params.Principal.Can(CapReviewBookings) {
		filter.OwnerID = params.Principal.UserID
	}

	bookings, err := s.bookings.ListBookings(ctx, filter)
	if err != nil {
		return nil, mapBookingRepoError(err)
	}
	return bookings, nil
}

// PendingBookings lists bookings awaiting review.
func (s *BookingService) PendingBookings(ctx context.Context, principal Principal) ([]Booking, error) {
	if err := authorize(principal, CapReviewBookings); err != nil {
		return nil, err
	}
	return s.ListBookings(ctx, ListBookingsParams{Principal: principal, Status: string(booking.StatusPending)})
}

func (s *BookingService) slotsFor(ctx context.Context, classroomID, date string) ([]booking.Slot, error) {
	existing, err := s.bookings.ListBookings(ctx, BookingFilter{ClassroomID: classroomID, Date: date})
	if err != nil {
		return nil, mapBookingRepoError(err)
	}

	slots := make([]booking.Slot, 0, len(existing))
	for _, b := range existing {
		interval, err := booking.ParseInterval(b.StartTime, b.EndTime)
		if err != nil {
			return nil, fmt.Errorf("booking %d has an invalid interval: %w", b.ID, err)
		}
		slots = append(slots, booking.Slot{
			ID:          b.ID,
			ClassroomID: b.ClassroomID,
			Date:        b.Date,
			Interval:    interval,
			Status:      b.Status,
		})
	}
	return slots, nil
}

func (s *BookingService) publish(ctx context.Context, logger *slog.Logger, eventType BookingEventType, b Booking, actorID string) {
	if s.events == nil {
		return
	}
	event := BookingEvent{Type: eventType, Booking: b, ActorID: actorID, OccurredAt: s.now()}
	if err := s.events.PublishBookingEvent(ctx, event); err != nil {
		logger.WarnContext(ctx, "failed to publish booking event", "event_type", string(eventType), "error", err)
	}
}

// parseSlot validates the fields of a booking slot. Missing or malformed fields
// are reported together; an inverted interval is reported on its own.
func parseSlot(classroomID, date, start, end string) (booking.Slot, error) {
	classroomID = strings.TrimSpace(classroomID)
	date = strings.TrimSpace(date)
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)

	vErr := &ValidationError{}
	if classroomID == "" {
		vErr.add("classroom_id", "classroom_id is required")
	}

	var normalizedDate string
	if date == "" {
		vErr.add("date", "date is required")
	} else if d, err := booking.ParseDate(date); err != nil {
		vErr.add("date", "date must be formatted as YYYY-MM-DD")
	} else {
		normalizedDate = d
	}

	var startClock, endClock booking.ClockTime
	if start == "" {
		vErr.add("start_time", "start_time is required")
	} else if c, err := booking.ParseClock(start); err != nil {
		vErr.add("start_time", "start_time must be formatted as HH:MM")
	} else {
		startClock = c
	}
	if end == "" {
		vErr.add("end_time", "end_time is required")
	} else if c, err := booking.ParseClock(end); err != nil {
		vErr.add("end_time", "end_time must be formatted as HH:MM")
	} else {
		endClock = c
	}

	if vErr.HasErrors() {
		return booking.Slot{}, vErr
	}

	interval, err := booking.NewInterval(startClock, endClock)
	if err != nil {
		return booking.Slot{}, errInvalidInterval
	}

	return booking.Slot{ClassroomID: classroomID, Date: normalizedDate, Interval: interval}, nil
}

func applyBookingPatch(current Booking, patch BookingPatch) Booking {
	merged := current
	if patch.ClassroomID != nil {
		merged.ClassroomID = *patch.ClassroomID
	}
	if patch.Date != nil {
		merged.Date = *patch.Date
	}
	if patch.StartTime != nil {
		merged.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		merged.EndTime = *patch.EndTime
	}
	if patch.Purpose != nil {
		merged.Purpose = strings.TrimSpace(*patch.Purpose)
	}
	return merged
}

func canModifyBooking(principal Principal, b Booking) bool {
	if principal.UserID == "" {
		return false
	}
	return principal.IsAdmin() || b.OwnerID == principal.UserID
}

func mapBookingRepoError(err error) error {
	mapped := mapRepoError(err)
	if mapped == ErrNotFound {
		return errBookingNotFound
	}
	return mapped
}
