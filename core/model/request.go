package model

import (
	"fmt"
	"time"
)

// RequestType is the kind of mutation a scheduling request proposes.
type RequestType string

const (
	RequestChangeTime  RequestType = "change_time"
	RequestChangeRoom  RequestType = "change_room"
	RequestAddClass    RequestType = "add_class"
	RequestRemoveClass RequestType = "remove_class"
	RequestSwapClasses RequestType = "swap_classes"
)

// Valid reports whether the request type is known.
func (t RequestType) Valid() bool {
	switch t {
	case RequestChangeTime, RequestChangeRoom, RequestAddClass,
		RequestRemoveClass, RequestSwapClasses:
		return true
	}
	return false
}

// RequestStatus is the review state of a scheduling request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// SchedulingRequest proposes a change to a committed session after the
// timetable is published. Resolution is terminal: approval applies the
// mutation, rejection has no side effect.
type SchedulingRequest struct {
	ID          string      `json:"id"`
	Requester   string      `json:"requester"`
	Type        RequestType `json:"type"`
	SubjectCode string      `json:"subject_code"`
	// ScheduleID references the session being changed; empty for add_class.
	ScheduleID string `json:"schedule_id,omitempty"`
	// CounterpartID references the second session of a swap.
	CounterpartID  string        `json:"counterpart_id,omitempty"`
	ProposedDay    Day           `json:"proposed_day,omitempty"`
	ProposedWindow *Window       `json:"proposed_window,omitempty"`
	ProposedRoom   string        `json:"proposed_room,omitempty"`
	GroupKeys      []string      `json:"group_keys,omitempty"`
	FacultyID      string        `json:"faculty_id,omitempty"`
	Reason         string        `json:"reason"`
	Status         RequestStatus `json:"status"`
	ReviewedBy     string        `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time    `json:"reviewed_at,omitempty"`
	ReviewNotes    string        `json:"review_notes,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// IsPending reports whether the request still awaits review.
func (r *SchedulingRequest) IsPending() bool { return r.Status == RequestPending }

// Validate checks the request carries the fields its type needs.
func (r *SchedulingRequest) Validate() error {
	if !r.Type.Valid() {
		return fmt.Errorf("request: unknown type %q", r.Type)
	}
	switch r.Type {
	case RequestChangeTime:
		if r.ScheduleID == "" || r.ProposedWindow == nil || !r.ProposedDay.Valid() {
			return fmt.Errorf("change_time request needs a schedule, day and window")
		}
	case RequestChangeRoom:
		if r.ScheduleID == "" || r.ProposedRoom == "" {
			return fmt.Errorf("change_room request needs a schedule and a room")
		}
	case RequestAddClass:
		if r.SubjectCode == "" || r.FacultyID == "" || r.ProposedRoom == "" ||
			r.ProposedWindow == nil || !r.ProposedDay.Valid() {
			return fmt.Errorf("add_class request needs subject, faculty, room, day and window")
		}
	case RequestRemoveClass:
		if r.ScheduleID == "" {
			return fmt.Errorf("remove_class request needs a schedule")
		}
	case RequestSwapClasses:
		if r.ScheduleID == "" || r.CounterpartID == "" {
			return fmt.Errorf("swap_classes request needs both schedules")
		}
		if r.ScheduleID == r.CounterpartID {
			return fmt.Errorf("swap_classes request cannot swap a schedule with itself")
		}
	}
	return nil
}
