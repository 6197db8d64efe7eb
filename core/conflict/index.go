// Package conflict detects collisions between a candidate placement and the
// committed schedule state: double-booked rooms, faculty, student groups and
// breached availability windows.
package conflict

import (
	"fmt"
	"sort"
	"sync"

	"github.com/campusgrid/timetable/core/model"
)

// Index is the in-memory view of committed class schedules and their group
// links. The builder and the workflow controller mutate it as placements
// commit so subsequent checks observe the new state.
type Index struct {
	mu       sync.RWMutex
	byID     map[string]model.ClassSchedule
	byGroup  map[string][]string // group key -> schedule ids
	groupsOf map[string][]string // schedule id -> group keys
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{
		byID:     make(map[string]model.ClassSchedule),
		byGroup:  make(map[string][]string),
		groupsOf: make(map[string][]string),
	}
}

// Add commits a schedule with its group links. The id must be unused.
func (x *Index) Add(cs model.ClassSchedule, groupKeys []string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.byID[cs.ID]; ok {
		return fmt.Errorf("schedule %s already committed", cs.ID)
	}
	x.byID[cs.ID] = cs
	for _, g := range groupKeys {
		x.byGroup[g] = append(x.byGroup[g], cs.ID)
	}
	x.groupsOf[cs.ID] = append([]string(nil), groupKeys...)
	return nil
}

// Remove deletes a schedule and its group links. Removing an unknown id is a
// no-op so retried workflow mutations stay idempotent.
func (x *Index) Remove(id string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.byID, id)
	for _, g := range x.groupsOf[id] {
		ids := x.byGroup[g]
		for i, sid := range ids {
			if sid == id {
				x.byGroup[g] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		if len(x.byGroup[g]) == 0 {
			delete(x.byGroup, g)
		}
	}
	delete(x.groupsOf, id)
}

// Replace atomically swaps the (room, day, window) of a committed schedule.
func (x *Index) Replace(cs model.ClassSchedule) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.byID[cs.ID]; !ok {
		return fmt.Errorf("schedule %s not committed", cs.ID)
	}
	x.byID[cs.ID] = cs
	return nil
}

// Get returns a committed schedule by id.
func (x *Index) Get(id string) (model.ClassSchedule, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	cs, ok := x.byID[id]
	return cs, ok
}

// GroupsOf returns the group keys linked to a committed schedule.
func (x *Index) GroupsOf(id string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]string(nil), x.groupsOf[id]...)
}

// All returns every committed schedule sorted by id.
func (x *Index) All() []model.ClassSchedule {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]model.ClassSchedule, 0, len(x.byID))
	for _, cs := range x.byID {
		out = append(out, cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (x *Index) byRoomDay(room string, day model.Day) []model.ClassSchedule {
	var out []model.ClassSchedule
	for _, cs := range x.byID {
		if cs.RoomNumber == room && cs.Day == day {
			out = append(out, cs)
		}
	}
	return out
}

func (x *Index) byFacultyDay(faculty string, day model.Day) []model.ClassSchedule {
	var out []model.ClassSchedule
	for _, cs := range x.byID {
		if cs.FacultyID == faculty && cs.Day == day {
			out = append(out, cs)
		}
	}
	return out
}

func (x *Index) byGroupDay(group string, day model.Day) []model.ClassSchedule {
	var out []model.ClassSchedule
	for _, id := range x.byGroup[group] {
		if cs, ok := x.byID[id]; ok && cs.Day == day {
			out = append(out, cs)
		}
	}
	return out
}
