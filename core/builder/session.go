package builder

import (
	"fmt"
	"strings"

	"github.com/campusgrid/timetable/core/model"
)

// SessionRequest asks the builder to place one weekly class session.
type SessionRequest struct {
	SubjectCode string   `json:"subject_code"`
	FacultyID   string   `json:"faculty_id"`
	GroupKeys   []string `json:"group_keys"`
	// Duration restricts candidate slots to windows of exactly this many
	// minutes. Zero accepts any slot length.
	Duration int `json:"duration,omitempty"`
}

// key orders sessions deterministically by subject code then group keys.
func (s SessionRequest) key() string {
	return s.SubjectCode + "|" + strings.Join(s.GroupKeys, ",")
}

// Validate checks the request names a subject, a faculty member and at least
// one group.
func (s SessionRequest) Validate() error {
	if s.SubjectCode == "" || s.FacultyID == "" {
		return fmt.Errorf("session needs a subject and a faculty member")
	}
	if len(s.GroupKeys) == 0 {
		return fmt.Errorf("session %s: at least one group is required", s.SubjectCode)
	}
	return nil
}

// PlacedEntry is a successfully committed session.
type PlacedEntry struct {
	Session  SessionRequest
	Schedule model.ClassSchedule
	Entries  []model.TimetableEntry
	Penalty  int
}

// Unplaced is a session no candidate could satisfy, with the distinct
// reasons observed across all rejected candidates.
type Unplaced struct {
	Session SessionRequest
	Reasons []string
}
