package main

import (
	"context"
	"time"

	"github.com/example/campus-portal/internal/application"
	"github.com/example/campus-portal/internal/booking"
	"github.com/example/campus-portal/internal/persistence"
)

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(user, passwordHash)); err != nil {
		return application.User{}, err
	}
	return a.GetUser(ctx, user.ID)
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUserByEmail(ctx context.Context, email string) (application.User, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) UpdateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	if passwordHash == "" {
		current, err := a.repo.GetUser(ctx, user.ID)
		if err != nil {
			return application.User{}, err
		}
		passwordHash = current.PasswordHash
	}
	if err := a.repo.UpdateUser(ctx, toPersistenceUser(user, passwordHash)); err != nil {
		return application.User{}, err
	}
	return a.GetUser(ctx, user.ID)
}

func (a *userRepositoryAdapter) DeleteUser(ctx context.Context, id string) error {
	return a.repo.DeleteUser(ctx, id)
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context, filter application.UserFilter) ([]application.User, error) {
	stored, err := a.repo.ListUsers(ctx, persistence.UserFilter{Role: string(filter.Role), AdvisorID: filter.AdvisorID})
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, nil
	}
	users := make([]application.User, 0, len(stored))
	for _, model := range stored {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (a *credentialStoreAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, id string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) UpdateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.UpdateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, id string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, id, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

type classroomRepositoryAdapter struct {
	repo persistence.ClassroomRepository
}

func newClassroomRepositoryAdapter(repo persistence.ClassroomRepository) *classroomRepositoryAdapter {
	return &classroomRepositoryAdapter{repo: repo}
}

func (a *classroomRepositoryAdapter) CreateClassroom(ctx context.Context, classroom application.Classroom) (application.Classroom, error) {
	if err := a.repo.CreateClassroom(ctx, toPersistenceClassroom(classroom)); err != nil {
		return application.Classroom{}, err
	}
	return a.GetClassroom(ctx, classroom.ID)
}

func (a *classroomRepositoryAdapter) GetClassroom(ctx context.Context, id string) (application.Classroom, error) {
	stored, err := a.repo.GetClassroom(ctx, id)
	if err != nil {
		return application.Classroom{}, err
	}
	return toApplicationClassroom(stored), nil
}

func (a *classroomRepositoryAdapter) UpdateClassroom(ctx context.Context, classroom application.Classroom) (application.Classroom, error) {
	if err := a.repo.UpdateClassroom(ctx, toPersistenceClassroom(classroom)); err != nil {
		return application.Classroom{}, err
	}
	return a.GetClassroom(ctx, classroom.ID)
}

func (a *classroomRepositoryAdapter) DeleteClassroom(ctx context.Context, id string) error {
	return a.repo.DeleteClassroom(ctx, id)
}

func (a *classroomRepositoryAdapter) ListClassrooms(ctx context.Context) ([]application.Classroom, error) {
	stored, err := a.repo.ListClassrooms(ctx)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, nil
	}
	classrooms := make([]application.Classroom, 0, len(stored))
	for _, model := range stored {
		classrooms = append(classrooms, toApplicationClassroom(model))
	}
	return classrooms, nil
}

type bookingRepositoryAdapter struct {
	repo persistence.BookingRepository
}

func newBookingRepositoryAdapter(repo persistence.BookingRepository) *bookingRepositoryAdapter {
	return &bookingRepositoryAdapter{repo: repo}
}

func (a *bookingRepositoryAdapter) CreateBooking(ctx context.Context, b application.Booking) (application.Booking, error) {
	stored, err := a.repo.CreateBooking(ctx, toPersistenceBooking(b))
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) UpdateBooking(ctx context.Context, b application.Booking) (application.Booking, error) {
	if err := a.repo.UpdateBooking(ctx, toPersistenceBooking(b)); err != nil {
		return application.Booking{}, err
	}
	return a.GetBooking(ctx, b.ID)
}

func (a *bookingRepositoryAdapter) GetBooking(ctx context.Context, id int64) (application.Booking, error) {
	stored, err := a.repo.GetBooking(ctx, id)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) ListBookings(ctx context.Context, filter application.BookingFilter) ([]application.Booking, error) {
	stored, err := a.repo.ListBookings(ctx, persistence.BookingFilter{
		ClassroomID: filter.ClassroomID,
		Date:        filter.Date,
		OwnerID:     filter.OwnerID,
		Status:      filter.Status,
	})
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, nil
	}
	bookings := make([]application.Booking, 0, len(stored))
	for _, model := range stored {
		bookings = append(bookings, toApplicationBooking(model))
	}
	return bookings, nil
}

func (a *bookingRepositoryAdapter) DeleteBooking(ctx context.Context, id int64) error {
	return a.repo.DeleteBooking(ctx, id)
}

type courseRepositoryAdapter struct {
	repo persistence.CourseRepository
}

func newCourseRepositoryAdapter(repo persistence.CourseRepository) *courseRepositoryAdapter {
	return &courseRepositoryAdapter{repo: repo}
}

func (a *courseRepositoryAdapter) CreateCourse(ctx context.Context, course application.Course) error {
	return a.repo.CreateCourse(ctx, toPersistenceCourse(course))
}

func (a *courseRepositoryAdapter) UpdateCourse(ctx context.Context, course application.Course) error {
	return a.repo.UpdateCourse(ctx, toPersistenceCourse(course))
}

func (a *courseRepositoryAdapter) GetCourse(ctx context.Context, id string) (application.Course, error) {
	stored, err := a.repo.GetCourse(ctx, id)
	if err != nil {
		return application.Course{}, err
	}
	return toApplicationCourse(stored), nil
}

func (a *courseRepositoryAdapter) ListCourses(ctx context.Context, filter application.CourseFilter) ([]application.Course, error) {
	stored, err := a.repo.ListCourses(ctx, persistence.CourseFilter{InstructorID: filter.InstructorID})
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, nil
	}
	courses := make([]application.Course, 0, len(stored))
	for _, model := range stored {
		courses = append(courses, toApplicationCourse(model))
	}
	return courses, nil
}

type enrollmentRepositoryAdapter struct {
	repo persistence.EnrollmentRepository
}

func newEnrollmentRepositoryAdapter(repo persistence.EnrollmentRepository) *enrollmentRepositoryAdapter {
	return &enrollmentRepositoryAdapter{repo: repo}
}

func (a *enrollmentRepositoryAdapter) CreateEnrollment(ctx context.Context, enrollment application.Enrollment) error {
	return a.repo.CreateEnrollment(ctx, toPersistenceEnrollment(enrollment))
}

func (a *enrollmentRepositoryAdapter) UpdateEnrollment(ctx context.Context, enrollment application.Enrollment) error {
	return a.repo.UpdateEnrollment(ctx, toPersistenceEnrollment(enrollment))
}

func (a *enrollmentRepositoryAdapter) GetEnrollment(ctx context.Context, id string) (application.Enrollment, error) {
	stored, err := a.repo.GetEnrollment(ctx, id)
	if err != nil {
		return application.Enrollment{}, err
	}
	return toApplicationEnrollment(stored), nil
}

func (a *enrollmentRepositoryAdapter) ListEnrollments(ctx context.Context, filter application.EnrollmentFilter) ([]application.Enrollment, error) {
	stored, err := a.repo.ListEnrollments(ctx, persistence.EnrollmentFilter{
		StudentID: filter.StudentID,
		CourseID:  filter.CourseID,
		Status:    string(filter.Status),
	})
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, nil
	}
	enrollments := make([]application.Enrollment, 0, len(stored))
	for _, model := range stored {
		enrollments = append(enrollments, toApplicationEnrollment(model))
	}
	return enrollments, nil
}

type courseRequestRepositoryAdapter struct {
	repo persistence.CourseRequestRepository
}

func newCourseRequestRepositoryAdapter(repo persistence.CourseRequestRepository) *courseRequestRepositoryAdapter {
	return &courseRequestRepositoryAdapter{repo: repo}
}

func (a *courseRequestRepositoryAdapter) CreateCourseRequest(ctx context.Context, request application.CourseRequest) error {
	return a.repo.CreateCourseRequest(ctx, toPersistenceCourseRequest(request))
}

func (a *courseRequestRepositoryAdapter) UpdateCourseRequest(ctx context.Context, request application.CourseRequest) error {
	return a.repo.UpdateCourseRequest(ctx, toPersistenceCourseRequest(request))
}

func (a *courseRequestRepositoryAdapter) GetCourseRequest(ctx context.Context, id string) (application.CourseRequest, error) {
	stored, err := a.repo.GetCourseRequest(ctx, id)
	if err != nil {
		return application.CourseRequest{}, err
	}
	return toApplicationCourseRequest(stored), nil
}

func (a *courseRequestRepositoryAdapter) ListCourseRequests(ctx context.Context, filter application.CourseRequestFilter) ([]application.CourseRequest, error) {
	stored, err := a.repo.ListCourseRequests(ctx, persistence.CourseRequestFilter{
		StudentID: filter.StudentID,
		CourseID:  filter.CourseID,
		Status:    string(filter.Status),
	})
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, nil
	}
	requests := make([]application.CourseRequest, 0, len(stored))
	for _, model := range stored {
		requests = append(requests, toApplicationCourseRequest(model))
	}
	return requests, nil
}

type assignmentRepositoryAdapter struct {
	repo persistence.AssignmentRepository
}

func newAssignmentRepositoryAdapter(repo persistence.AssignmentRepository) *assignmentRepositoryAdapter {
	return &assignmentRepositoryAdapter{repo: repo}
}

func (a *assignmentRepositoryAdapter) CreateAssignment(ctx context.Context, assignment application.Assignment) error {
	return a.repo.CreateAssignment(ctx, persistence.Assignment{
		ID:          assignment.ID,
		CourseID:    assignment.CourseID,
		Title:       assignment.Title,
		Description: assignment.Description,
		DueAt:       cloneTime(assignment.DueAt),
		CreatedBy:   assignment.CreatedBy,
		CreatedAt:   assignment.CreatedAt,
		UpdatedAt:   assignment.UpdatedAt,
	})
}

func (a *assignmentRepositoryAdapter) GetAssignment(ctx context.Context, id string) (application.Assignment, error) {
	stored, err := a.repo.GetAssignment(ctx, id)
	if err != nil {
		return application.Assignment{}, err
	}
	return toApplicationAssignment(stored), nil
}

func (a *assignmentRepositoryAdapter) ListAssignments(ctx context.Context, courseID string) ([]application.Assignment, error) {
	stored, err := a.repo.ListAssignments(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, nil
	}
	assignments := make([]application.Assignment, 0, len(stored))
	for _, model := range stored {
		assignments = append(assignments, toApplicationAssignment(model))
	}
	return assignments, nil
}

func (a *assignmentRepositoryAdapter) UpsertSubmission(ctx context.Context, submission application.Submission) (application.Submission, error) {
	stored, err := a.repo.UpsertSubmission(ctx, toPersistenceSubmission(submission))
	if err != nil {
		return application.Submission{}, err
	}
	return toApplicationSubmission(stored), nil
}

func (a *assignmentRepositoryAdapter) UpdateSubmission(ctx context.Context, submission application.Submission) error {
	return a.repo.UpdateSubmission(ctx, toPersistenceSubmission(submission))
}

func (a *assignmentRepositoryAdapter) GetSubmission(ctx context.Context, id string) (application.Submission, error) {
	stored, err := a.repo.GetSubmission(ctx, id)
	if err != nil {
		return application.Submission{}, err
	}
	return toApplicationSubmission(stored), nil
}

func (a *assignmentRepositoryAdapter) ListSubmissions(ctx context.Context, assignmentID string) ([]application.Submission, error) {
	stored, err := a.repo.ListSubmissions(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, nil
	}
	submissions := make([]application.Submission, 0, len(stored))
	for _, model := range stored {
		submissions = append(submissions, toApplicationSubmission(model))
	}
	return submissions, nil
}

type attributeRepositoryAdapter struct {
	repo persistence.AttributeRepository
}

func newAttributeRepositoryAdapter(repo persistence.AttributeRepository) *attributeRepositoryAdapter {
	return &attributeRepositoryAdapter{repo: repo}
}

func (a *attributeRepositoryAdapter) ListAttributes(ctx context.Context, entityType, entityID string) (map[string]string, error) {
	stored, err := a.repo.ListAttributes(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(stored))
	for _, attr := range stored {
		values[attr.Name] = attr.Value
	}
	return values, nil
}

func (a *attributeRepositoryAdapter) SetAttributes(ctx context.Context, entityType, entityID string, values map[string]string, updatedAt time.Time) error {
	return a.repo.SetAttributes(ctx, entityType, entityID, values, updatedAt)
}

type statsRepositoryAdapter struct {
	repo persistence.StatsRepository
}

func newStatsRepositoryAdapter(repo persistence.StatsRepository) *statsRepositoryAdapter {
	return &statsRepositoryAdapter{repo: repo}
}

func (a *statsRepositoryAdapter) Stats(ctx context.Context) (application.SystemStats, error) {
	stats, err := a.repo.Stats(ctx)
	if err != nil {
		return application.SystemStats{}, err
	}
	return application.SystemStats{
		UsersByRole:           stats.UsersByRole,
		Courses:               stats.Courses,
		ActiveEnrollments:     stats.ActiveEnrollments,
		PendingCourseRequests: stats.PendingCourseRequests,
		BookingsByStatus:      stats.BookingsByStatus,
	}, nil
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:          model.ID,
		Email:       model.Email,
		DisplayName: model.DisplayName,
		Role:        application.Role(model.Role),
		AdvisorID:   cloneString(model.AdvisorID),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceUser(user application.User, passwordHash string) persistence.User {
	return persistence.User{
		ID:           user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		Role:         string(user.Role),
		AdvisorID:    cloneString(user.AdvisorID),
		PasswordHash: passwordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		UserID:    model.UserID,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func toApplicationClassroom(model persistence.Classroom) application.Classroom {
	return application.Classroom{
		ID:        model.ID,
		Name:      model.Name,
		Location:  model.Location,
		Capacity:  model.Capacity,
		Features:  append([]string(nil), model.Features...),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceClassroom(classroom application.Classroom) persistence.Classroom {
	return persistence.Classroom{
		ID:        classroom.ID,
		Name:      classroom.Name,
		Location:  classroom.Location,
		Capacity:  classroom.Capacity,
		Features:  append([]string(nil), classroom.Features...),
		CreatedAt: classroom.CreatedAt,
		UpdatedAt: classroom.UpdatedAt,
	}
}

func toApplicationBooking(model persistence.Booking) application.Booking {
	return application.Booking{
		ID:          model.ID,
		ClassroomID: model.ClassroomID,
		Date:        model.Date,
		StartTime:   model.StartTime,
		EndTime:     model.EndTime,
		OwnerID:     model.OwnerID,
		OwnerRole:   application.Role(model.OwnerRole),
		Purpose:     model.Purpose,
		Status:      booking.Status(model.Status),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceBooking(b application.Booking) persistence.Booking {
	return persistence.Booking{
		ID:          b.ID,
		ClassroomID: b.ClassroomID,
		Date:        b.Date,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		OwnerID:     b.OwnerID,
		OwnerRole:   string(b.OwnerRole),
		Purpose:     b.Purpose,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toApplicationCourse(model persistence.Course) application.Course {
	return application.Course{
		ID:           model.ID,
		Title:        model.Title,
		Credits:      model.Credits,
		Capacity:     model.Capacity,
		InstructorID: cloneString(model.InstructorID),
		Semester:     model.Semester,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toPersistenceCourse(course application.Course) persistence.Course {
	return persistence.Course{
		ID:           course.ID,
		Title:        course.Title,
		Credits:      course.Credits,
		Capacity:     course.Capacity,
		InstructorID: cloneString(course.InstructorID),
		Semester:     course.Semester,
		CreatedAt:    course.CreatedAt,
		UpdatedAt:    course.UpdatedAt,
	}
}

func toApplicationEnrollment(model persistence.Enrollment) application.Enrollment {
	return application.Enrollment{
		ID:        model.ID,
		StudentID: model.StudentID,
		CourseID:  model.CourseID,
		Status:    application.EnrollmentStatus(model.Status),
		Grade:     cloneString(model.Grade),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceEnrollment(enrollment application.Enrollment) persistence.Enrollment {
	return persistence.Enrollment{
		ID:        enrollment.ID,
		StudentID: enrollment.StudentID,
		CourseID:  enrollment.CourseID,
		Status:    string(enrollment.Status),
		Grade:     cloneString(enrollment.Grade),
		CreatedAt: enrollment.CreatedAt,
		UpdatedAt: enrollment.UpdatedAt,
	}
}

func toApplicationCourseRequest(model persistence.CourseRequest) application.CourseRequest {
	return application.CourseRequest{
		ID:         model.ID,
		StudentID:  model.StudentID,
		CourseID:   model.CourseID,
		Kind:       application.RequestKind(model.Kind),
		Status:     application.RequestStatus(model.Status),
		ReviewerID: cloneString(model.ReviewerID),
		Note:       model.Note,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

func toPersistenceCourseRequest(request application.CourseRequest) persistence.CourseRequest {
	return persistence.CourseRequest{
		ID:         request.ID,
		StudentID:  request.StudentID,
		CourseID:   request.CourseID,
		Kind:       string(request.Kind),
		Status:     string(request.Status),
		ReviewerID: cloneString(request.ReviewerID),
		Note:       request.Note,
		CreatedAt:  request.CreatedAt,
		UpdatedAt:  request.UpdatedAt,
	}
}

func toApplicationAssignment(model persistence.Assignment) application.Assignment {
	return application.Assignment{
		ID:          model.ID,
		CourseID:    model.CourseID,
		Title:       model.Title,
		Description: model.Description,
		DueAt:       cloneTime(model.DueAt),
		CreatedBy:   model.CreatedBy,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toApplicationSubmission(model persistence.Submission) application.Submission {
	return application.Submission{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		Content:      model.Content,
		Score:        cloneInt(model.Score),
		Feedback:     model.Feedback,
		SubmittedAt:  model.SubmittedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toPersistenceSubmission(submission application.Submission) persistence.Submission {
	return persistence.Submission{
		ID:           submission.ID,
		AssignmentID: submission.AssignmentID,
		StudentID:    submission.StudentID,
		Content:      submission.Content,
		Score:        cloneInt(submission.Score),
		Feedback:     submission.Feedback,
		SubmittedAt:  submission.SubmittedAt,
		UpdatedAt:    submission.UpdatedAt,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
