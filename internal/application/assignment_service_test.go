package application

import (
	"context"
	"errors"
	"testing"
)

type assignmentFixture struct {
	svc     *AssignmentService
	courses *courseFixture
	repo    *assignmentRepositoryStub
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()

	courses := newCourseFixture()
	req := courses.request(t, studentPrincipal, "CS101", RequestAdd)
	courses.approve(t, req.ID)

	repo := newAssignmentRepositoryStub()
	svc := NewAssignmentService(repo, courses.svc, sequentialIDs("asg"), fixedNow, nil)
	return &assignmentFixture{svc: svc, courses: courses, repo: repo}
}

func TestAssignmentService(t *testing.T) {
	t.Parallel()

	t.Run("instructors publish and score work", func(t *testing.T) {
		t.Parallel()

		f := newAssignmentFixture(t)
		assignment, err := f.svc.CreateAssignment(context.Background(), instructorPrincipal, "CS101", AssignmentInput{Title: " Lab 1 "})
		if err != nil {
			t.Fatalf("CreateAssignment failed: %v", err)
		}
		if assignment.Title != "Lab 1" || assignment.CreatedBy != instructorPrincipal.UserID {
			t.Fatalf("unexpected assignment %#v", assignment)
		}

		listed, err := f.svc.ListAssignments(context.Background(), studentPrincipal, "CS101")
		if err != nil || len(listed) != 1 {
			t.Fatalf("expected enrolled student to see one assignment, got %d err=%v", len(listed), err)
		}

		submission, err := f.svc.SubmitAssignment(context.Background(), studentPrincipal, assignment.ID, "my answer")
		if err != nil {
			t.Fatalf("SubmitAssignment failed: %v", err)
		}

		scored, err := f.svc.ScoreSubmission(context.Background(), ScoreSubmissionParams{Principal: instructorPrincipal, SubmissionID: submission.ID, Score: 88, Feedback: "good"})
		if err != nil {
			t.Fatalf("ScoreSubmission failed: %v", err)
		}
		if scored.Score == nil || *scored.Score != 88 {
			t.Fatalf("expected score 88, got %#v", scored.Score)
		}

		resubmitted, err := f.svc.SubmitAssignment(context.Background(), studentPrincipal, assignment.ID, "better answer")
		if err != nil {
			t.Fatalf("resubmission failed: %v", err)
		}
		if resubmitted.ID != submission.ID || resubmitted.Score != nil || resubmitted.Content != "better answer" {
			t.Fatalf("expected resubmission to replace content and clear score, got %#v", resubmitted)
		}

		all, err := f.svc.ListSubmissions(context.Background(), instructorPrincipal, assignment.ID)
		if err != nil || len(all) != 1 {
			t.Fatalf("expected one submission, got %d err=%v", len(all), err)
		}
	})

	t.Run("enforces course membership", func(t *testing.T) {
		t.Parallel()

		f := newAssignmentFixture(t)
		if _, err := f.svc.CreateAssignment(context.Background(), instructorPrincipal, "MA201", AssignmentInput{Title: "Set 1"}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for a course not taught, got %v", err)
		}
		if _, err := f.svc.CreateAssignment(context.Background(), studentPrincipal, "CS101", AssignmentInput{Title: "Set 1"}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for students, got %v", err)
		}

		assignment, err := f.svc.CreateAssignment(context.Background(), instructorPrincipal, "CS101", AssignmentInput{Title: "Lab"})
		if err != nil {
			t.Fatalf("CreateAssignment failed: %v", err)
		}

		outsider := Principal{UserID: "student-2", Role: RoleStudent}
		if _, err := f.svc.SubmitAssignment(context.Background(), outsider, assignment.ID, "answer"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for unenrolled student, got %v", err)
		}
		if _, err := f.svc.ListAssignments(context.Background(), outsider, "CS101"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized listing, got %v", err)
		}
		if _, err := f.svc.SubmitAssignment(context.Background(), studentPrincipal, "missing", "answer"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("validates scores", func(t *testing.T) {
		t.Parallel()

		f := newAssignmentFixture(t)
		for _, score := range []int{-1, 101} {
			_, err := f.svc.ScoreSubmission(context.Background(), ScoreSubmissionParams{Principal: instructorPrincipal, SubmissionID: "any", Score: score})
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("score %d: expected ValidationError, got %v", score, err)
			}
		}
	})
}

type assignmentRepositoryStub struct {
	assignments map[string]Assignment
	submissions map[string]Submission
	order       []string
}

func newAssignmentRepositoryStub() *assignmentRepositoryStub {
	return &assignmentRepositoryStub{assignments: make(map[string]Assignment), submissions: make(map[string]Submission)}
}

func (r *assignmentRepositoryStub) CreateAssignment(ctx context.Context, assignment Assignment) error {
	r.assignments[assignment.ID] = assignment
	r.order = append(r.order, assignment.ID)
	return nil
}

func (r *assignmentRepositoryStub) GetAssignment(ctx context.Context, id string) (Assignment, error) {
	assignment, ok := r.assignments[id]
	if !ok {
		return Assignment{}, ErrNotFound
	}
	return assignment, nil
}

func (r *assignmentRepositoryStub) ListAssignments(ctx context.Context, courseID string) ([]Assignment, error) {
	var out []Assignment
	for _, id := range r.order {
		if a := r.assignments[id]; a.CourseID == courseID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *assignmentRepositoryStub) UpsertSubmission(ctx context.Context, submission Submission) (Submission, error) {
	for id, existing := range r.submissions {
		if existing.AssignmentID == submission.AssignmentID && existing.StudentID == submission.StudentID {
			existing.Content = submission.Content
			existing.Score = nil
			existing.Feedback = ""
			existing.SubmittedAt = submission.SubmittedAt
			existing.UpdatedAt = submission.UpdatedAt
			r.submissions[id] = existing
			return existing, nil
		}
	}
	r.submissions[submission.ID] = submission
	return submission, nil
}

func (r *assignmentRepositoryStub) UpdateSubmission(ctx context.Context, submission Submission) error {
	if _, ok := r.submissions[submission.ID]; !ok {
		return ErrNotFound
	}
	r.submissions[submission.ID] = submission
	return nil
}

func (r *assignmentRepositoryStub) GetSubmission(ctx context.Context, id string) (Submission, error) {
	submission, ok := r.submissions[id]
	if !ok {
		return Submission{}, ErrNotFound
	}
	return submission, nil
}

func (r *assignmentRepositoryStub) ListSubmissions(ctx context.Context, assignmentID string) ([]Submission, error) {
	var out []Submission
	for _, submission := range r.submissions {
		if submission.AssignmentID == assignmentID {
			out = append(out, submission)
		}
	}
	return out, nil
}
