// Package storage defines the persistence collaborator for the scheduling
// core. Implementations must enforce the catalog uniqueness rules as storage
// constraints as well, so writers bypassing the core cannot corrupt the
// schedule.
package storage

import (
	"context"
	"errors"

	"github.com/campusgrid/timetable/core/model"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("storage: not found")

// ScheduleRecord pairs a committed schedule with its group links.
type ScheduleRecord struct {
	Schedule  model.ClassSchedule
	GroupKeys []string
}

// Store persists timetables, their entries, committed class schedules and
// scheduling requests.
type Store interface {
	// PutTimetable inserts or updates a timetable.
	PutTimetable(ctx context.Context, tt model.Timetable) error
	// Timetable returns a timetable by id, or ErrNotFound.
	Timetable(ctx context.Context, id string) (model.Timetable, error)
	// TimetablesByKey returns every timetable for a scope, any status.
	TimetablesByKey(ctx context.Context, key model.TimetableKey) ([]model.Timetable, error)
	// ActiveTimetable returns the single active timetable for a scope.
	ActiveTimetable(ctx context.Context, key model.TimetableKey) (model.Timetable, bool, error)
	// DeleteTimetable removes a timetable record. Entries are cascaded by
	// the caller via DeleteEntries; shared class schedules are not touched.
	DeleteTimetable(ctx context.Context, id string) error

	// PutEntries stores timetable entries.
	PutEntries(ctx context.Context, entries []model.TimetableEntry) error
	// Entries returns all entries of a timetable.
	Entries(ctx context.Context, timetableID string) ([]model.TimetableEntry, error)
	// DeleteEntries removes every entry of a timetable. Shared class
	// schedules are not touched.
	DeleteEntries(ctx context.Context, timetableID string) error

	// PutSchedule inserts or updates a committed class schedule with its
	// group links.
	PutSchedule(ctx context.Context, cs model.ClassSchedule, groupKeys []string) error
	// Schedule returns a schedule and its group links, or ErrNotFound.
	Schedule(ctx context.Context, id string) (model.ClassSchedule, []string, error)
	// Schedules returns every committed schedule with its group links,
	// sorted by id. Used to rebuild the conflict index on startup.
	Schedules(ctx context.Context) ([]ScheduleRecord, error)
	// DeleteSchedule removes a schedule and its group links.
	DeleteSchedule(ctx context.Context, id string) error

	// PutRequest inserts or updates a scheduling request.
	PutRequest(ctx context.Context, r model.SchedulingRequest) error
	// Request returns a request by id, or ErrNotFound.
	Request(ctx context.Context, id string) (model.SchedulingRequest, error)
	// PendingRequests returns all requests still awaiting review.
	PendingRequests(ctx context.Context) ([]model.SchedulingRequest, error)
}
