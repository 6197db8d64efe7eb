package workflow

import (
	"errors"
	"fmt"
)

// Action names a state-changing core operation for capability checks.
type Action string

const (
	ActionCreateTimetable Action = "timetable.create"
	ActionEditEntries     Action = "timetable.edit_entries"
	ActionSubmit          Action = "timetable.submit"
	ActionApprove         Action = "timetable.approve"
	ActionReject          Action = "timetable.reject"
	ActionActivate        Action = "timetable.activate"
	ActionDelete          Action = "timetable.delete"
	ActionSubmitRequest   Action = "request.submit"
	ActionResolveRequest  Action = "request.resolve"
)

// ErrDenied is wrapped by every authorization failure.
var ErrDenied = errors.New("workflow: permission denied")

// Authorizer is the single capability check consulted before any
// state-changing operation, independent of transport.
type Authorizer interface {
	Allow(actor string, action Action, resource string) error
}

// AllowAll grants every capability. Used by tests and single-operator CLIs.
type AllowAll struct{}

func (AllowAll) Allow(string, Action, string) error { return nil }

// RoleAuthorizer grants actions per role, with an actor-to-role map.
type RoleAuthorizer struct {
	Roles   map[string]string   // actor -> role
	Granted map[string][]Action // role -> allowed actions
}

// Allow checks the actor's role covers the action.
func (a RoleAuthorizer) Allow(actor string, action Action, resource string) error {
	role, ok := a.Roles[actor]
	if !ok {
		return fmt.Errorf("actor %s has no role: %w", actor, ErrDenied)
	}
	for _, g := range a.Granted[role] {
		if g == action {
			return nil
		}
	}
	return fmt.Errorf("actor %s (%s) may not %s on %s: %w", actor, role, action, resource, ErrDenied)
}
