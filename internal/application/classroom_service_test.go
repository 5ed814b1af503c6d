package application

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"
)

func TestClassroomService(t *testing.T) {
	t.Parallel()

	t.Run("administrators manage the catalog", func(t *testing.T) {
		t.Parallel()

		repo := newClassroomRepositoryStub()
		svc := NewClassroomService(repo, sequentialIDs("room"), fixedNow)

		created, err := svc.CreateClassroom(context.Background(), CreateClassroomParams{
			Principal: adminPrincipal,
			Input:     ClassroomInput{ID: "CL101", Name: " Hall ", Capacity: 40, Features: []string{" projector ", "", "projector", "whiteboard"}},
		})
		if err != nil {
			t.Fatalf("CreateClassroom failed: %v", err)
		}
		if created.ID != "CL101" || created.Name != "Hall" {
			t.Fatalf("unexpected classroom %#v", created)
		}
		if !reflect.DeepEqual(created.Features, []string{"projector", "whiteboard"}) {
			t.Fatalf("unexpected features %#v", created.Features)
		}

		generated, err := svc.CreateClassroom(context.Background(), CreateClassroomParams{Principal: adminPrincipal, Input: ClassroomInput{Name: "Lab", Capacity: 12}})
		if err != nil || generated.ID != "room-1" {
			t.Fatalf("expected generated id, got %#v err=%v", generated, err)
		}

		updated, err := svc.UpdateClassroom(context.Background(), UpdateClassroomParams{Principal: adminPrincipal, ClassroomID: "CL101", Input: ClassroomInput{Name: "Main Hall", Capacity: 50}})
		if err != nil || updated.Name != "Main Hall" || updated.Capacity != 50 {
			t.Fatalf("unexpected update %#v err=%v", updated, err)
		}

		list, err := svc.ListClassrooms(context.Background())
		if err != nil || len(list) != 2 {
			t.Fatalf("expected two classrooms, got %d err=%v", len(list), err)
		}

		if err := svc.DeleteClassroom(context.Background(), adminPrincipal, "CL101"); err != nil {
			t.Fatalf("DeleteClassroom failed: %v", err)
		}
		_, err = svc.GetClassroom(context.Background(), "CL101")
		if !errors.Is(err, ErrNotFound) || domainMessage(err) != "Classroom not found." {
			t.Fatalf("expected classroom not found, got %v", err)
		}
	})

	t.Run("rejects non administrators and bad input", func(t *testing.T) {
		t.Parallel()

		svc := NewClassroomService(newClassroomRepositoryStub(), nil, fixedNow)

		_, err := svc.CreateClassroom(context.Background(), CreateClassroomParams{Principal: advisorPrincipal, Input: ClassroomInput{Name: "Hall", Capacity: 1}})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if err := svc.DeleteClassroom(context.Background(), studentPrincipal, "CL101"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}

		_, err = svc.CreateClassroom(context.Background(), CreateClassroomParams{Principal: adminPrincipal, Input: ClassroomInput{ID: "bad id!", Capacity: 0}})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"id", "name", "capacity"} {
			if vErr.FieldErrors[field] == "" {
				t.Fatalf("expected %s error, got %#v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("maps duplicate ids", func(t *testing.T) {
		t.Parallel()

		repo := newClassroomRepositoryStub()
		repo.classrooms["CL101"] = Classroom{ID: "CL101", Name: "Hall", Capacity: 1}
		svc := NewClassroomService(repo, nil, fixedNow)

		_, err := svc.CreateClassroom(context.Background(), CreateClassroomParams{Principal: adminPrincipal, Input: ClassroomInput{ID: "CL101", Name: "Hall", Capacity: 1}})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

type classroomRepositoryStub struct {
	classrooms map[string]Classroom
}

func newClassroomRepositoryStub() *classroomRepositoryStub {
	return &classroomRepositoryStub{classrooms: make(map[string]Classroom)}
}

func (r *classroomRepositoryStub) CreateClassroom(ctx context.Context, classroom Classroom) (Classroom, error) {
	if _, ok := r.classrooms[classroom.ID]; ok {
		return Classroom{}, ErrAlreadyExists
	}
	r.classrooms[classroom.ID] = classroom
	return classroom, nil
}

func (r *classroomRepositoryStub) GetClassroom(ctx context.Context, id string) (Classroom, error) {
	classroom, ok := r.classrooms[id]
	if !ok {
		return Classroom{}, ErrNotFound
	}
	return classroom, nil
}

func (r *classroomRepositoryStub) UpdateClassroom(ctx context.Context, classroom Classroom) (Classroom, error) {
	if _, ok := r.classrooms[classroom.ID]; !ok {
		return Classroom{}, ErrNotFound
	}
	r.classrooms[classroom.ID] = classroom
	return classroom, nil
}

func (r *classroomRepositoryStub) DeleteClassroom(ctx context.Context, id string) error {
	if _, ok := r.classrooms[id]; !ok {
		return ErrNotFound
	}
	delete(r.classrooms, id)
	return nil
}

func (r *classroomRepositoryStub) ListClassrooms(ctx context.Context) ([]Classroom, error) {
	out := make([]Classroom, 0, len(r.classrooms))
	for _, classroom := range r.classrooms {
		out = append(out, classroom)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
