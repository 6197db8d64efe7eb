package catalog

import (
	"testing"

	"github.com/campusgrid/timetable/core/model"
)

func TestAvailabilityDenyWindow(t *testing.T) {
	r := NewAvailabilityRegistry()
	if err := r.Add(model.AvailabilityWindow{
		FacultyID: "f1", Day: model.Tuesday,
		Window: window(t, "14:00", "16:00"), Available: false, Reason: "department meeting",
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if ok, reason := r.Allows("f1", model.Tuesday, window(t, "14:30", "15:30")); ok {
		t.Error("window inside deny entry must be blocked")
	} else if reason == "" {
		t.Error("blocked window should carry a reason")
	}
	if ok, _ := r.Allows("f1", model.Tuesday, window(t, "16:00", "17:00")); !ok {
		t.Error("back-to-back window after deny entry must be allowed")
	}
	if ok, _ := r.Allows("f1", model.Wednesday, window(t, "14:30", "15:30")); !ok {
		t.Error("other days are unrestricted")
	}
}

func TestAvailabilityAllowContainment(t *testing.T) {
	r := NewAvailabilityRegistry()
	if err := r.Add(model.AvailabilityWindow{
		FacultyID: "f2", Day: model.Monday,
		Window: window(t, "09:00", "12:00"), Available: true,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if ok, _ := r.Allows("f2", model.Monday, window(t, "10:00", "11:00")); !ok {
		t.Error("window inside allow entry must pass")
	}
	if ok, _ := r.Allows("f2", model.Monday, window(t, "11:00", "13:00")); ok {
		t.Error("window crossing the allow boundary must be blocked")
	}
}

func TestAvailabilityRejectsAmbiguity(t *testing.T) {
	r := NewAvailabilityRegistry()
	if err := r.Add(model.AvailabilityWindow{
		FacultyID: "f3", Day: model.Friday,
		Window: window(t, "09:00", "12:00"), Available: true,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	err := r.Add(model.AvailabilityWindow{
		FacultyID: "f3", Day: model.Friday,
		Window: window(t, "11:00", "13:00"), Available: false,
	})
	if err == nil {
		t.Fatal("overlapping windows with conflicting flags must be rejected")
	}
	// Same flag may overlap.
	if err := r.Add(model.AvailabilityWindow{
		FacultyID: "f3", Day: model.Friday,
		Window: window(t, "11:00", "13:00"), Available: true,
	}); err != nil {
		t.Fatalf("overlapping windows with the same flag should be accepted: %v", err)
	}
}

func TestUnknownFacultyUnrestricted(t *testing.T) {
	r := NewAvailabilityRegistry()
	if ok, _ := r.Allows("ghost", model.Monday, window(t, "09:00", "10:00")); !ok {
		t.Error("faculty without entries is unrestricted")
	}
}
