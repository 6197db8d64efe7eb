// Package directory defines the identity collaborator consumed by the core.
// The core only ever sees opaque identifiers; resolving them to people is the
// directory service's concern.
package directory

import "context"

// Directory answers existence and active-status checks for faculty and
// student group identifiers.
type Directory interface {
	FacultyActive(ctx context.Context, facultyID string) (bool, error)
	GroupActive(ctx context.Context, groupKey string) (bool, error)
}

// Static is an in-memory Directory used by tests and the CLI. Identifiers
// absent from the maps are inactive.
type Static struct {
	Faculty map[string]bool
	Groups  map[string]bool
}

// FacultyActive reports whether the faculty id is known and active.
func (s Static) FacultyActive(_ context.Context, facultyID string) (bool, error) {
	return s.Faculty[facultyID], nil
}

// GroupActive reports whether the group key is known and active.
func (s Static) GroupActive(_ context.Context, groupKey string) (bool, error) {
	return s.Groups[groupKey], nil
}

// AllowAll accepts every identifier. Useful when the directory integration is
// disabled in configuration.
type AllowAll struct{}

func (AllowAll) FacultyActive(context.Context, string) (bool, error) { return true, nil }
func (AllowAll) GroupActive(context.Context, string) (bool, error)  { return true, nil }
