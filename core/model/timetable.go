package model

import (
	"fmt"
	"time"
)

// TimetableStatus is the lifecycle state of a timetable.
type TimetableStatus string

const (
	TimetableDraft           TimetableStatus = "draft"
	TimetablePendingApproval TimetableStatus = "pending_approval"
	TimetableApproved        TimetableStatus = "approved"
	TimetableRejected        TimetableStatus = "rejected"
	TimetableActive          TimetableStatus = "active"
)

// TimetableKey identifies the scope a timetable covers. At most one timetable
// may be active per key at a time.
type TimetableKey struct {
	Department   string `json:"department"`
	AcademicYear string `json:"academic_year"`
	Semester     int    `json:"semester"`
}

func (k TimetableKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.Department, k.AcademicYear, k.Semester)
}

// Timetable is a weekly schedule for one (department, academic year,
// semester). Entries may only change while the timetable is a draft.
type Timetable struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Key        TimetableKey    `json:"key"`
	Status     TimetableStatus `json:"status"`
	CreatedBy  string          `json:"created_by"`
	ApprovedBy string          `json:"approved_by,omitempty"`
	ApprovedAt *time.Time      `json:"approved_at,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TimetableEntry assigns a committed session to a group within a timetable.
// The triple is unique. Entries are owned by their timetable; the referenced
// ClassSchedule is shared and survives entry removal.
type TimetableEntry struct {
	TimetableID string `json:"timetable_id"`
	GroupKey    string `json:"group_key"`
	ScheduleID  string `json:"schedule_id"`
}
