// Package events defines the notification payloads emitted by the workflow
// controller and the timetable builder. Delivery is fire-and-forget; core
// correctness never depends on a subscriber observing an event.
package events

import (
	"time"

	"github.com/campusgrid/timetable/core/model"
)

// TimetableTransition is published for every timetable state change.
type TimetableTransition struct {
	TimetableID string
	Key         model.TimetableKey
	From        model.TimetableStatus
	To          model.TimetableStatus
	Actor       string
	At          time.Time
}

// RequestResolved is published when a scheduling request leaves pending.
type RequestResolved struct {
	RequestID string
	Type      model.RequestType
	From      model.RequestStatus
	To        model.RequestStatus
	Actor     string
	At        time.Time
}

// Placement is published when the builder commits a session.
type Placement struct {
	TimetableID string
	ScheduleID  string
	SubjectCode string
	RoomNumber  string
	Day         model.Day
	Window      model.Window
	GroupKeys   []string
}

// BuildCompleted summarises a builder run.
type BuildCompleted struct {
	TimetableID string
	Placed      int
	Unplaced    int
	Duration    time.Duration
}
