package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/campusgrid/timetable/core/model"
)

// AvailabilityRegistry stores per-faculty allow and deny windows. It is
// reference data mutated by administrators and read-only to the builder.
type AvailabilityRegistry struct {
	mu      sync.RWMutex
	windows map[string][]model.AvailabilityWindow // by faculty id
}

// NewAvailabilityRegistry creates an empty registry.
func NewAvailabilityRegistry() *AvailabilityRegistry {
	return &AvailabilityRegistry{windows: make(map[string][]model.AvailabilityWindow)}
}

// Add validates and stores an availability window. A window overlapping an
// existing window for the same faculty and day with the opposite flag is
// rejected: availability must never be ambiguous.
func (r *AvailabilityRegistry) Add(w model.AvailabilityWindow) error {
	if err := w.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.windows[w.FacultyID] {
		if existing.Day == w.Day && existing.Window.Overlaps(w.Window) && existing.Available != w.Available {
			return fmt.Errorf("availability for %s on %s: window %s conflicts with %s",
				w.FacultyID, w.Day, w.Window, existing.Window)
		}
	}
	r.windows[w.FacultyID] = append(r.windows[w.FacultyID], w)
	sort.SliceStable(r.windows[w.FacultyID], func(i, j int) bool {
		a, b := r.windows[w.FacultyID][i], r.windows[w.FacultyID][j]
		if a.Day != b.Day {
			return a.Day.Index() < b.Day.Index()
		}
		return a.Window.Start < b.Window.Start
	})
	return nil
}

// For returns the faculty's windows on one day, sorted by start time.
func (r *AvailabilityRegistry) For(facultyID string, day model.Day) []model.AvailabilityWindow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.AvailabilityWindow
	for _, w := range r.windows[facultyID] {
		if w.Day == day {
			out = append(out, w)
		}
	}
	return out
}

// Allows reports whether the faculty member may teach during the window. A
// window intersecting a deny entry is never allowed. When the faculty has
// allow entries for the day, the window must lie entirely inside one of them;
// a faculty member with no entries for the day is unrestricted. The blocking
// or missing window is returned for diagnostics.
func (r *AvailabilityRegistry) Allows(facultyID string, day model.Day, w model.Window) (bool, string) {
	entries := r.For(facultyID, day)
	hasAllow := false
	contained := false
	for _, e := range entries {
		if !e.Available {
			if e.Window.Overlaps(w) {
				reason := e.Reason
				if reason == "" {
					reason = "unavailable"
				}
				return false, fmt.Sprintf("%s %s: %s", day, e.Window, reason)
			}
			continue
		}
		hasAllow = true
		if e.Window.Contains(w) {
			contained = true
		}
	}
	if hasAllow && !contained {
		return false, fmt.Sprintf("%s %s outside declared availability", day, w)
	}
	return true, ""
}
