package model

import "fmt"

// AvailabilityWindow declares a faculty member available or unavailable for a
// (day, window). Reason is informational and usually set for unavailability.
type AvailabilityWindow struct {
	FacultyID string `json:"faculty_id"`
	Day       Day    `json:"day"`
	Window    Window `json:"window"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Validate checks the window configuration is sound.
func (a AvailabilityWindow) Validate() error {
	if a.FacultyID == "" {
		return fmt.Errorf("availability: faculty id is required")
	}
	if !a.Day.Valid() {
		return fmt.Errorf("availability for %s: unknown day %q", a.FacultyID, a.Day)
	}
	if err := a.Window.Validate(); err != nil {
		return fmt.Errorf("availability for %s: %w", a.FacultyID, err)
	}
	return nil
}
