package conflict

import (
	"fmt"
	"strings"
)

// Error wraps the hits of a failed conflict check. Callers can match it with
// errors.As and inspect the kinds to decide whether to try another candidate.
type Error struct {
	Hits []Hit
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Hits))
	for _, h := range e.Hits {
		if h.ScheduleID != "" {
			parts = append(parts, fmt.Sprintf("%s conflict with %s", h.Kind, h.ScheduleID))
		} else {
			parts = append(parts, fmt.Sprintf("%s conflict (%s)", h.Kind, h.Detail))
		}
	}
	return "conflict: " + strings.Join(parts, "; ")
}

// Has reports whether the error contains a hit of the given kind.
func (e *Error) Has(kind Kind) bool {
	for _, h := range e.Hits {
		if h.Kind == kind {
			return true
		}
	}
	return false
}
