package model

import "time"

// ClassSchedule is a committed class session: a subject taught by one faculty
// member in one room during one (day, window). Sessions are unique per
// (room, day, start); a faculty member holds at most one active session per
// overlapping (day, window).
type ClassSchedule struct {
	ID          string    `json:"id"`
	SubjectCode string    `json:"subject_code"`
	FacultyID   string    `json:"faculty_id"`
	RoomNumber  string    `json:"room_number"`
	Day         Day       `json:"day"`
	Window      Window    `json:"window"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Candidate is a proposed but not yet committed placement. GroupKeys lists
// every group that would attend the session.
type Candidate struct {
	SubjectCode string
	FacultyID   string
	RoomNumber  string
	Day         Day
	Window      Window
	GroupKeys   []string
}
