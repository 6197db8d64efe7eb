package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/campusgrid/timetable/core/model"
)

// Memory is the in-process Store used by tests and the CLI.
type Memory struct {
	mu         sync.RWMutex
	timetables map[string]model.Timetable
	entries    map[string][]model.TimetableEntry // by timetable id
	schedules  map[string]model.ClassSchedule
	links      map[string][]string // schedule id -> group keys
	requests   map[string]model.SchedulingRequest
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		timetables: make(map[string]model.Timetable),
		entries:    make(map[string][]model.TimetableEntry),
		schedules:  make(map[string]model.ClassSchedule),
		links:      make(map[string][]string),
		requests:   make(map[string]model.SchedulingRequest),
	}
}

func (m *Memory) PutTimetable(_ context.Context, tt model.Timetable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timetables[tt.ID] = tt
	return nil
}

func (m *Memory) Timetable(_ context.Context, id string) (model.Timetable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tt, ok := m.timetables[id]
	if !ok {
		return model.Timetable{}, fmt.Errorf("timetable %s: %w", id, ErrNotFound)
	}
	return tt, nil
}

func (m *Memory) TimetablesByKey(_ context.Context, key model.TimetableKey) ([]model.Timetable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Timetable
	for _, tt := range m.timetables {
		if tt.Key == key {
			out = append(out, tt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ActiveTimetable(_ context.Context, key model.TimetableKey) (model.Timetable, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, tt := range m.timetables {
		if tt.Key == key && tt.Status == model.TimetableActive {
			return tt, true, nil
		}
	}
	return model.Timetable{}, false, nil
}

func (m *Memory) DeleteTimetable(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.timetables, id)
	return nil
}

func (m *Memory) PutEntries(_ context.Context, entries []model.TimetableEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[e.TimetableID] = append(m.entries[e.TimetableID], e)
	}
	return nil
}

func (m *Memory) Entries(_ context.Context, timetableID string) ([]model.TimetableEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.TimetableEntry(nil), m.entries[timetableID]...), nil
}

func (m *Memory) DeleteEntries(_ context.Context, timetableID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, timetableID)
	return nil
}

func (m *Memory) PutSchedule(_ context.Context, cs model.ClassSchedule, groupKeys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules[cs.ID] = cs
	m.links[cs.ID] = append([]string(nil), groupKeys...)
	return nil
}

func (m *Memory) Schedule(_ context.Context, id string) (model.ClassSchedule, []string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cs, ok := m.schedules[id]
	if !ok {
		return model.ClassSchedule{}, nil, fmt.Errorf("schedule %s: %w", id, ErrNotFound)
	}
	return cs, append([]string(nil), m.links[id]...), nil
}

func (m *Memory) Schedules(_ context.Context) ([]ScheduleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ScheduleRecord, 0, len(m.schedules))
	for id, cs := range m.schedules {
		out = append(out, ScheduleRecord{Schedule: cs, GroupKeys: append([]string(nil), m.links[id]...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Schedule.ID < out[j].Schedule.ID })
	return out, nil
}

func (m *Memory) DeleteSchedule(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.schedules, id)
	delete(m.links, id)
	return nil
}

func (m *Memory) PutRequest(_ context.Context, r model.SchedulingRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[r.ID] = r
	return nil
}

func (m *Memory) Request(_ context.Context, id string) (model.SchedulingRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return model.SchedulingRequest{}, fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	return r, nil
}

func (m *Memory) PendingRequests(_ context.Context) ([]model.SchedulingRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.SchedulingRequest
	for _, r := range m.requests {
		if r.Status == model.RequestPending {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
