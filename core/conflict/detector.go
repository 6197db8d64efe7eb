package conflict

import (
	"sort"

	"github.com/campusgrid/timetable/core/catalog"
	"github.com/campusgrid/timetable/core/model"
)

// Kind classifies a detected conflict.
type Kind string

const (
	KindRoom         Kind = "room"
	KindFaculty      Kind = "faculty"
	KindGroup        Kind = "group"
	KindAvailability Kind = "availability"
)

// Hit is one detected collision. ScheduleID names the conflicting committed
// session; it is empty for availability hits, where Detail carries the window.
type Hit struct {
	Kind       Kind
	ScheduleID string
	Detail     string
}

// Result is the outcome of a conflict check. An empty result means the
// candidate is placeable.
type Result struct {
	Hits []Hit
}

// Clear reports whether no conflict was found.
func (r Result) Clear() bool { return len(r.Hits) == 0 }

// Kinds returns the distinct conflict kinds in deterministic order.
func (r Result) Kinds() []Kind {
	seen := make(map[Kind]struct{})
	var out []Kind
	for _, h := range r.Hits {
		if _, ok := seen[h.Kind]; !ok {
			seen[h.Kind] = struct{}{}
			out = append(out, h.Kind)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Err converts a non-clear result into a typed error, nil otherwise.
func (r Result) Err() error {
	if r.Clear() {
		return nil
	}
	return &Error{Hits: r.Hits}
}

// Detector checks candidates against the committed index and the faculty
// availability registry. Checks are read-only and idempotent; commit-time
// re-checks run under the placement locks.
type Detector struct {
	index *Index
	avail *catalog.AvailabilityRegistry
}

// NewDetector creates a Detector over the given state.
func NewDetector(index *Index, avail *catalog.AvailabilityRegistry) *Detector {
	return &Detector{index: index, avail: avail}
}

// Check reports every conflict between the candidate and committed state.
func (d *Detector) Check(c model.Candidate) Result {
	return d.CheckIgnoring(c, nil)
}

// CheckIgnoring behaves like Check but treats the listed schedule ids as
// vacated. Change and swap requests use it to exclude the slots they are
// about to free.
func (d *Detector) CheckIgnoring(c model.Candidate, ignore map[string]bool) Result {
	var hits []Hit

	d.index.mu.RLock()
	for _, cs := range d.index.byRoomDay(c.RoomNumber, c.Day) {
		if !ignore[cs.ID] && cs.Window.Overlaps(c.Window) {
			hits = append(hits, Hit{Kind: KindRoom, ScheduleID: cs.ID, Detail: cs.RoomNumber})
		}
	}
	for _, cs := range d.index.byFacultyDay(c.FacultyID, c.Day) {
		if !ignore[cs.ID] && cs.Window.Overlaps(c.Window) {
			hits = append(hits, Hit{Kind: KindFaculty, ScheduleID: cs.ID, Detail: cs.FacultyID})
		}
	}
	for _, g := range c.GroupKeys {
		for _, cs := range d.index.byGroupDay(g, c.Day) {
			if !ignore[cs.ID] && cs.Window.Overlaps(c.Window) {
				hits = append(hits, Hit{Kind: KindGroup, ScheduleID: cs.ID, Detail: g})
			}
		}
	}
	d.index.mu.RUnlock()

	if ok, reason := d.avail.Allows(c.FacultyID, c.Day, c.Window); !ok {
		hits = append(hits, Hit{Kind: KindAvailability, Detail: reason})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Kind != hits[j].Kind {
			return hits[i].Kind < hits[j].Kind
		}
		return hits[i].ScheduleID < hits[j].ScheduleID
	})
	return Result{Hits: hits}
}
