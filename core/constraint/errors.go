package constraint

import (
	"fmt"
	"strings"

	"github.com/campusgrid/timetable/core/model"
)

// HardViolation records one breached hard constraint.
type HardViolation struct {
	Name   string
	Type   model.ConstraintType
	Detail string
}

func (v HardViolation) String() string {
	return fmt.Sprintf("%s (%s): %s", v.Name, v.Type, v.Detail)
}

// HardViolationError is returned when a candidate breaches hard constraints.
// It is recoverable: the caller picks another candidate or reports the
// session as unplaced.
type HardViolationError struct {
	Violations []HardViolation
}

func (e *HardViolationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "hard constraint violated: " + strings.Join(parts, "; ")
}

// Has reports whether the named constraint is among the violations.
func (e *HardViolationError) Has(name string) bool {
	for _, v := range e.Violations {
		if v.Name == name {
			return true
		}
	}
	return false
}
