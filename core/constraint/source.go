// Package constraint evaluates configured scheduling rules against candidate
// placements. Hard constraints veto a candidate; soft constraints add their
// weight to a penalty score the builder minimises.
package constraint

import "github.com/campusgrid/timetable/core/model"

// Source supplies the active constraint set. The engine snapshots it once at
// construction, so configuration changes mid-build are not observed until the
// next build.
type Source interface {
	ActiveConstraints() ([]model.SchedulingConstraint, error)
}

// StaticSource is a fixed constraint list, used by tests and file-based
// configuration.
type StaticSource []model.SchedulingConstraint

// ActiveConstraints returns the active subset of the list.
func (s StaticSource) ActiveConstraints() ([]model.SchedulingConstraint, error) {
	var out []model.SchedulingConstraint
	for _, c := range s {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}
