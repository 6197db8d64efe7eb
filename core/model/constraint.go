package model

import "fmt"

// ConstraintType tags a scheduling rule with the aspect it governs.
type ConstraintType string

const (
	ConstraintFacultyAvailability  ConstraintType = "faculty_availability"
	ConstraintRoomCapacity         ConstraintType = "room_capacity"
	ConstraintSubjectPrerequisite  ConstraintType = "subject_prerequisite"
	ConstraintTimeConflict         ConstraintType = "time_conflict"
	ConstraintDepartmentPreference ConstraintType = "department_preference"
)

// Valid reports whether the constraint type is known.
func (t ConstraintType) Valid() bool {
	switch t {
	case ConstraintFacultyAvailability, ConstraintRoomCapacity,
		ConstraintSubjectPrerequisite, ConstraintTimeConflict,
		ConstraintDepartmentPreference:
		return true
	}
	return false
}

// SchedulingConstraint configures one rule for timetable construction. Hard
// constraints block a placement outright; soft constraints add Weight to the
// candidate penalty when violated.
type SchedulingConstraint struct {
	Name        string         `json:"name"`
	Type        ConstraintType `json:"type"`
	Description string         `json:"description,omitempty"`
	Hard        bool           `json:"hard"`
	Weight      int            `json:"weight,omitempty"`
	Active      bool           `json:"active"`
}

// Validate checks the constraint configuration is sound.
func (c SchedulingConstraint) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("constraint name is required")
	}
	if !c.Type.Valid() {
		return fmt.Errorf("constraint %s: unknown type %q", c.Name, c.Type)
	}
	if !c.Hard && c.Weight <= 0 {
		return fmt.Errorf("constraint %s: soft constraints need a positive weight", c.Name)
	}
	return nil
}
