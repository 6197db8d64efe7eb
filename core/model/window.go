package model

import "fmt"

// Minute is a time of day expressed as minutes since midnight.
type Minute int

const minutesPerDay = 24 * 60

// ParseMinute parses a wall clock time in "HH:MM" form.
func ParseMinute(s string) (Minute, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return Minute(h*60 + m), nil
}

// String renders the minute as "HH:MM".
func (m Minute) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// Window is a half-open time range [Start, End) within a single day. Two
// back-to-back windows sharing a boundary do not overlap.
type Window struct {
	Start Minute `json:"start"`
	End   Minute `json:"end"`
}

// NewWindow parses a window from "HH:MM" start and end times.
func NewWindow(start, end string) (Window, error) {
	s, err := ParseMinute(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseMinute(end)
	if err != nil {
		return Window{}, err
	}
	w := Window{Start: s, End: e}
	return w, w.Validate()
}

// Validate checks the start precedes the end and both lie within a day.
func (w Window) Validate() error {
	if w.Start < 0 || w.End > minutesPerDay {
		return fmt.Errorf("window %s outside the day", w)
	}
	if w.Start >= w.End {
		return fmt.Errorf("window %s: start must precede end", w)
	}
	return nil
}

// Overlaps reports whether two half-open windows intersect.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && o.Start < w.End
}

// Contains reports whether o lies entirely inside w.
func (w Window) Contains(o Window) bool {
	return w.Start <= o.Start && o.End <= w.End
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}
