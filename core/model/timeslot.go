package model

import "fmt"

// TimeSlot is a bookable (day, window) pair from the institutional grid.
// Slots are unique per (day, start, end).
type TimeSlot struct {
	Day    Day    `json:"day"`
	Window Window `json:"window"`
	Active bool   `json:"active"`
}

// Key returns the unique identity of the slot.
func (t TimeSlot) Key() string {
	return fmt.Sprintf("%s %s", t.Day, t.Window)
}

// Validate checks the slot configuration is sound.
func (t TimeSlot) Validate() error {
	if !t.Day.Valid() {
		return fmt.Errorf("timeslot: unknown day %q", t.Day)
	}
	if err := t.Window.Validate(); err != nil {
		return fmt.Errorf("timeslot %s: %w", t.Day, err)
	}
	return nil
}
