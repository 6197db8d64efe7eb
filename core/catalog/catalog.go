// Package catalog holds the scheduling reference data: subjects, rooms, time
// slots and student groups. The catalog is loaded once per scheduling session
// and treated as immutable by the builder; administrators mutate it between
// sessions.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/campusgrid/timetable/core/model"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("catalog: not found")

// Catalog is an in-memory snapshot of the scheduling entities.
type Catalog struct {
	mu       sync.RWMutex
	subjects map[string]model.Subject
	rooms    map[string]model.Room
	slots    map[string]model.TimeSlot
	groups   map[string]model.StudentGroup
}

// New creates an empty Catalog.
func New() *Catalog {
	return &Catalog{
		subjects: make(map[string]model.Subject),
		rooms:    make(map[string]model.Room),
		slots:    make(map[string]model.TimeSlot),
		groups:   make(map[string]model.StudentGroup),
	}
}

// AddSubject validates and stores a subject, replacing any previous entry
// with the same code.
func (c *Catalog) AddSubject(s model.Subject) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.subjects[s.Code] = s
	c.mu.Unlock()
	return nil
}

// AddRoom validates and stores a room.
func (c *Catalog) AddRoom(r model.Room) error {
	if err := r.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.rooms[r.Number] = r
	c.mu.Unlock()
	return nil
}

// AddTimeSlot validates and stores a time slot. Slots are unique per
// (day, start, end); re-adding an existing slot is rejected.
func (c *Catalog) AddTimeSlot(t model.TimeSlot) error {
	if err := t.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.slots[t.Key()]; ok {
		return fmt.Errorf("timeslot %s already exists", t.Key())
	}
	c.slots[t.Key()] = t
	return nil
}

// AddGroup validates and stores a student group.
func (c *Catalog) AddGroup(g model.StudentGroup) error {
	if err := g.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.groups[g.Key()] = g
	c.mu.Unlock()
	return nil
}

// Subject returns the subject with the given code.
func (c *Catalog) Subject(code string) (model.Subject, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.subjects[code]
	if !ok {
		return model.Subject{}, fmt.Errorf("subject %s: %w", code, ErrNotFound)
	}
	return s, nil
}

// Room returns the room with the given number.
func (c *Catalog) Room(number string) (model.Room, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.rooms[number]
	if !ok {
		return model.Room{}, fmt.Errorf("room %s: %w", number, ErrNotFound)
	}
	return r, nil
}

// Group returns the student group with the given key.
func (c *Catalog) Group(key string) (model.StudentGroup, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.groups[key]
	if !ok {
		return model.StudentGroup{}, fmt.Errorf("group %s: %w", key, ErrNotFound)
	}
	return g, nil
}

// ActiveRooms returns all active rooms sorted by room number so candidate
// enumeration is reproducible across runs.
func (c *Catalog) ActiveRooms() []model.Room {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rooms := make([]model.Room, 0, len(c.rooms))
	for _, r := range c.rooms {
		if r.Active {
			rooms = append(rooms, r)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Number < rooms[j].Number })
	return rooms
}

// ActiveSlots returns all active time slots sorted by (day, start, end).
func (c *Catalog) ActiveSlots() []model.TimeSlot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	slots := make([]model.TimeSlot, 0, len(c.slots))
	for _, t := range c.slots {
		if t.Active {
			slots = append(slots, t)
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.Day != b.Day {
			return a.Day.Index() < b.Day.Index()
		}
		if a.Window.Start != b.Window.Start {
			return a.Window.Start < b.Window.Start
		}
		return a.Window.End < b.Window.End
	})
	return slots
}

// GroupSizes resolves the combined enrollment of the given groups. Unknown
// groups are reported via ErrNotFound.
func (c *Catalog) GroupSizes(keys []string) (int, error) {
	total := 0
	for _, k := range keys {
		g, err := c.Group(k)
		if err != nil {
			return 0, err
		}
		total += g.Size()
	}
	return total, nil
}
