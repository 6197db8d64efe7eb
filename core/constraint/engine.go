package constraint

import (
	"fmt"

	"github.com/campusgrid/timetable/core/catalog"
	"github.com/campusgrid/timetable/core/conflict"
	"github.com/campusgrid/timetable/core/logger"
	"github.com/campusgrid/timetable/core/model"
)

// Engine evaluates the configured constraints against candidates. The
// constraint set is snapshotted at construction; build the engine once per
// builder run.
type Engine struct {
	catalog     *catalog.Catalog
	avail       *catalog.AvailabilityRegistry
	index       *conflict.Index
	detector    *conflict.Detector
	constraints []model.SchedulingConstraint
	prereqs     map[string][]string
	log         logger.Logger
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithPrerequisites declares subject prerequisites (subject code to the codes
// that must be taught before it), consumed by subject_prerequisite rules.
func WithPrerequisites(p map[string][]string) Option {
	return func(e *Engine) { e.prereqs = p }
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New snapshots the active constraints from source and returns an Engine.
func New(cat *catalog.Catalog, avail *catalog.AvailabilityRegistry, index *conflict.Index, source Source, opts ...Option) (*Engine, error) {
	active, err := source.ActiveConstraints()
	if err != nil {
		return nil, fmt.Errorf("load constraints: %w", err)
	}
	for _, c := range active {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	e := &Engine{
		catalog:     cat,
		avail:       avail,
		index:       index,
		detector:    conflict.NewDetector(index, avail),
		constraints: active,
		log:         logger.Nop{},
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Evaluate checks every active constraint against the candidate. Hard
// violations are collected (never short-circuited, so diagnostics are
// complete); soft violations accumulate weight into the penalty. The
// returned error is reserved for unresolvable references, not rule breaches.
func (e *Engine) Evaluate(c model.Candidate) ([]HardViolation, int, error) {
	return e.EvaluateIgnoring(c, nil)
}

// EvaluateIgnoring behaves like Evaluate but treats the listed schedule ids
// as vacated when a time_conflict rule consults the committed index. A
// session being relocated must not clash with its own current slot.
func (e *Engine) EvaluateIgnoring(c model.Candidate, ignore map[string]bool) ([]HardViolation, int, error) {
	var violations []HardViolation
	penalty := 0
	for _, rule := range e.constraints {
		violated, detail, err := e.check(rule.Type, c, ignore)
		if err != nil {
			return nil, 0, err
		}
		if !violated {
			continue
		}
		if rule.Hard {
			violations = append(violations, HardViolation{Name: rule.Name, Type: rule.Type, Detail: detail})
		} else {
			penalty += rule.Weight
			e.log.Debugw("soft constraint violated", map[string]any{
				"constraint": rule.Name, "weight": rule.Weight, "detail": detail,
			})
		}
	}
	return violations, penalty, nil
}

// Err wraps hard violations into a HardViolationError, nil when none.
func Err(violations []HardViolation) error {
	if len(violations) == 0 {
		return nil
	}
	return &HardViolationError{Violations: violations}
}

func (e *Engine) check(t model.ConstraintType, c model.Candidate, ignore map[string]bool) (bool, string, error) {
	switch t {
	case model.ConstraintRoomCapacity:
		return e.checkRoomCapacity(c)
	case model.ConstraintDepartmentPreference:
		return e.checkDepartmentPreference(c)
	case model.ConstraintFacultyAvailability:
		ok, reason := e.avail.Allows(c.FacultyID, c.Day, c.Window)
		return !ok, reason, nil
	case model.ConstraintTimeConflict:
		res := e.detector.CheckIgnoring(c, ignore)
		if res.Clear() {
			return false, "", nil
		}
		return true, fmt.Sprintf("conflicts: %v", res.Kinds()), nil
	case model.ConstraintSubjectPrerequisite:
		return e.checkPrerequisites(c)
	}
	return false, "", fmt.Errorf("unknown constraint type %q", t)
}

func (e *Engine) checkRoomCapacity(c model.Candidate) (bool, string, error) {
	room, err := e.catalog.Room(c.RoomNumber)
	if err != nil {
		return false, "", err
	}
	size, err := e.catalog.GroupSizes(c.GroupKeys)
	if err != nil {
		return false, "", err
	}
	if room.Capacity < size {
		return true, fmt.Sprintf("room %s seats %d, enrollment %d", room.Number, room.Capacity, size), nil
	}
	return false, "", nil
}

func (e *Engine) checkDepartmentPreference(c model.Candidate) (bool, string, error) {
	room, err := e.catalog.Room(c.RoomNumber)
	if err != nil {
		return false, "", err
	}
	subject, err := e.catalog.Subject(c.SubjectCode)
	if err != nil {
		return false, "", err
	}
	if room.Department != "" && room.Department != subject.Department {
		return true, fmt.Sprintf("room %s belongs to %s, subject to %s", room.Number, room.Department, subject.Department), nil
	}
	return false, "", nil
}

// checkPrerequisites flags a candidate scheduled before a committed session
// of one of its prerequisite subjects for the same group, i.e. the dependent
// subject would be taught earlier in the week than its prerequisite.
func (e *Engine) checkPrerequisites(c model.Candidate) (bool, string, error) {
	prereqs := e.prereqs[c.SubjectCode]
	if len(prereqs) == 0 {
		return false, "", nil
	}
	isPrereq := make(map[string]bool, len(prereqs))
	for _, p := range prereqs {
		isPrereq[p] = true
	}
	for _, cs := range e.index.All() {
		if !isPrereq[cs.SubjectCode] {
			continue
		}
		if !e.sharesGroup(cs.ID, c.GroupKeys) {
			continue
		}
		if cs.Day.Index() > c.Day.Index() ||
			(cs.Day == c.Day && cs.Window.Start >= c.Window.Start) {
			return true, fmt.Sprintf("%s scheduled before prerequisite %s (%s %s)",
				c.SubjectCode, cs.SubjectCode, cs.Day, cs.Window), nil
		}
	}
	return false, "", nil
}

func (e *Engine) sharesGroup(scheduleID string, groups []string) bool {
	linked := e.index.GroupsOf(scheduleID)
	for _, g := range groups {
		for _, l := range linked {
			if g == l {
				return true
			}
		}
	}
	return false
}
