package constraint

import (
	"errors"
	"testing"

	"github.com/campusgrid/timetable/core/catalog"
	"github.com/campusgrid/timetable/core/conflict"
	"github.com/campusgrid/timetable/core/model"
)

func window(t *testing.T, start, end string) model.Window {
	t.Helper()
	w, err := model.NewWindow(start, end)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	return w
}

func fixture(t *testing.T) (*catalog.Catalog, *catalog.AvailabilityRegistry, *conflict.Index) {
	t.Helper()
	cat := catalog.New()
	for _, r := range []model.Room{
		{Number: "R101", Type: model.RoomClassroom, Capacity: 30, Department: "CS", Active: true},
		{Number: "R201", Type: model.RoomClassroom, Capacity: 15, Department: "EE", Active: true},
	} {
		if err := cat.AddRoom(r); err != nil {
			t.Fatalf("add room: %v", err)
		}
	}
	if err := cat.AddSubject(model.Subject{Code: "CS201", Name: "Data Structures", Department: "CS", Credits: 4, Active: true}); err != nil {
		t.Fatalf("add subject: %v", err)
	}
	students := make([]string, 20)
	for i := range students {
		students[i] = "s" + string(rune('a'+i))
	}
	if err := cat.AddGroup(model.StudentGroup{Department: "CS", Year: 2, Section: "A", Students: students, Active: true}); err != nil {
		t.Fatalf("add group: %v", err)
	}
	return cat, catalog.NewAvailabilityRegistry(), conflict.NewIndex()
}

func TestRoomCapacityHardConstraint(t *testing.T) {
	cat, avail, idx := fixture(t)
	eng, err := New(cat, avail, idx, StaticSource{
		{Name: "capacity", Type: model.ConstraintRoomCapacity, Hard: true, Active: true},
	})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	// 20 students into a 15-seat room.
	violations, _, err := eng.Evaluate(model.Candidate{
		SubjectCode: "CS201", FacultyID: "f1", RoomNumber: "R201",
		Day: model.Monday, Window: window(t, "09:00", "10:00"), GroupKeys: []string{"CS-2-A"},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(violations) != 1 || violations[0].Type != model.ConstraintRoomCapacity {
		t.Fatalf("expected capacity violation, got %+v", violations)
	}
	var hv *HardViolationError
	if e := Err(violations); !errors.As(e, &hv) || !hv.Has("capacity") {
		t.Fatalf("expected HardViolationError naming capacity, got %v", e)
	}

	// Same cohort fits in the 30-seat room.
	violations, _, err = eng.Evaluate(model.Candidate{
		SubjectCode: "CS201", FacultyID: "f1", RoomNumber: "R101",
		Day: model.Monday, Window: window(t, "09:00", "10:00"), GroupKeys: []string{"CS-2-A"},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(violations) != 0 {
		t.Errorf("unexpected violations %+v", violations)
	}
}

func TestDepartmentPreferencePenalty(t *testing.T) {
	cat, avail, idx := fixture(t)
	eng, err := New(cat, avail, idx, StaticSource{
		{Name: "dept-rooms", Type: model.ConstraintDepartmentPreference, Weight: 5, Active: true},
	})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	_, penalty, err := eng.Evaluate(model.Candidate{
		SubjectCode: "CS201", FacultyID: "f1", RoomNumber: "R201",
		Day: model.Monday, Window: window(t, "09:00", "10:00"), GroupKeys: []string{"CS-2-A"},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if penalty != 5 {
		t.Errorf("out-of-department room should cost 5, got %d", penalty)
	}

	_, penalty, err = eng.Evaluate(model.Candidate{
		SubjectCode: "CS201", FacultyID: "f1", RoomNumber: "R101",
		Day: model.Monday, Window: window(t, "09:00", "10:00"), GroupKeys: []string{"CS-2-A"},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if penalty != 0 {
		t.Errorf("owning-department room should cost 0, got %d", penalty)
	}
}

func TestInactiveConstraintsIgnored(t *testing.T) {
	cat, avail, idx := fixture(t)
	eng, err := New(cat, avail, idx, StaticSource{
		{Name: "capacity", Type: model.ConstraintRoomCapacity, Hard: true, Active: false},
	})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	violations, _, err := eng.Evaluate(model.Candidate{
		SubjectCode: "CS201", FacultyID: "f1", RoomNumber: "R201",
		Day: model.Monday, Window: window(t, "09:00", "10:00"), GroupKeys: []string{"CS-2-A"},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(violations) != 0 {
		t.Errorf("inactive constraint must not fire: %+v", violations)
	}
}

func TestPrerequisiteOrdering(t *testing.T) {
	cat, avail, idx := fixture(t)
	if err := cat.AddSubject(model.Subject{Code: "CS101", Name: "Programming", Department: "CS", Credits: 4, Active: true}); err != nil {
		t.Fatalf("add subject: %v", err)
	}
	// CS101 committed Wednesday for the group.
	if err := idx.Add(model.ClassSchedule{
		ID: "s1", SubjectCode: "CS101", FacultyID: "f9", RoomNumber: "R101",
		Day: model.Wednesday, Window: window(t, "09:00", "10:00"), Active: true,
	}, []string{"CS-2-A"}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	eng, err := New(cat, avail, idx, StaticSource{
		{Name: "prereq-order", Type: model.ConstraintSubjectPrerequisite, Hard: true, Active: true},
	}, WithPrerequisites(map[string][]string{"CS201": {"CS101"}}))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	// CS201 on Monday precedes its prerequisite's Wednesday session.
	violations, _, err := eng.Evaluate(model.Candidate{
		SubjectCode: "CS201", FacultyID: "f1", RoomNumber: "R101",
		Day: model.Monday, Window: window(t, "09:00", "10:00"), GroupKeys: []string{"CS-2-A"},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(violations) != 1 {
		t.Fatalf("expected prerequisite violation, got %+v", violations)
	}

	// Thursday placement follows the prerequisite.
	violations, _, err = eng.Evaluate(model.Candidate{
		SubjectCode: "CS201", FacultyID: "f1", RoomNumber: "R101",
		Day: model.Thursday, Window: window(t, "09:00", "10:00"), GroupKeys: []string{"CS-2-A"},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(violations) != 0 {
		t.Errorf("unexpected violations %+v", violations)
	}
}

func TestUnknownRoomSurfacesNotFound(t *testing.T) {
	cat, avail, idx := fixture(t)
	eng, err := New(cat, avail, idx, StaticSource{
		{Name: "capacity", Type: model.ConstraintRoomCapacity, Hard: true, Active: true},
	})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	_, _, err = eng.Evaluate(model.Candidate{
		SubjectCode: "CS201", FacultyID: "f1", RoomNumber: "R999",
		Day: model.Monday, Window: window(t, "09:00", "10:00"), GroupKeys: []string{"CS-2-A"},
	})
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEvaluateIgnoringVacatesSlot(t *testing.T) {
	cat, avail, idx := fixture(t)
	if err := idx.Add(model.ClassSchedule{
		ID: "s1", SubjectCode: "CS201", FacultyID: "f1", RoomNumber: "R101",
		Day: model.Monday, Window: window(t, "09:00", "10:00"), Active: true,
	}, []string{"CS-2-A"}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	eng, err := New(cat, avail, idx, StaticSource{
		{Name: "no-clash", Type: model.ConstraintTimeConflict, Hard: true, Active: true},
	})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	// Relocating s1 within its own hour: same faculty and group, new room.
	cand := model.Candidate{
		SubjectCode: "CS201", FacultyID: "f1", RoomNumber: "R201",
		Day: model.Monday, Window: window(t, "09:00", "10:00"), GroupKeys: []string{"CS-2-A"},
	}
	violations, _, err := eng.Evaluate(cand)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(violations) != 1 {
		t.Fatalf("against the committed slot expected a clash, got %+v", violations)
	}
	violations, _, err = eng.EvaluateIgnoring(cand, map[string]bool{"s1": true})
	if err != nil {
		t.Fatalf("evaluate ignoring: %v", err)
	}
	if len(violations) != 0 {
		t.Errorf("vacated session must not clash with itself: %+v", violations)
	}
}

func TestBetterTieBreak(t *testing.T) {
	w9 := window(t, "09:00", "10:00")
	w10 := window(t, "10:00", "11:00")

	cheap := Scored{Candidate: model.Candidate{RoomNumber: "R900", Day: model.Friday, Window: w10}, Penalty: 1}
	costly := Scored{Candidate: model.Candidate{RoomNumber: "R101", Day: model.Monday, Window: w9}, Penalty: 3}
	if !Better(cheap, costly) {
		t.Error("lower penalty must win regardless of room order")
	}

	a := Scored{Candidate: model.Candidate{RoomNumber: "R101", Day: model.Monday, Window: w10}, Penalty: 2}
	b := Scored{Candidate: model.Candidate{RoomNumber: "R102", Day: model.Monday, Window: w9}, Penalty: 2}
	if !Better(a, b) {
		t.Error("on equal penalty the lower room number must win")
	}

	c := Scored{Candidate: model.Candidate{RoomNumber: "R101", Day: model.Monday, Window: w9}, Penalty: 2}
	d := Scored{Candidate: model.Candidate{RoomNumber: "R101", Day: model.Monday, Window: w10}, Penalty: 2}
	if !Better(c, d) {
		t.Error("on equal penalty and room the earlier start must win")
	}
}
