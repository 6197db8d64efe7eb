package model

import "fmt"

// Day identifies a teaching weekday. Sunday is not a teaching day.
type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
	Saturday  Day = "saturday"
)

// Days lists all teaching days in week order. Iteration over this slice keeps
// candidate enumeration deterministic.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

var dayIndex = map[Day]int{
	Monday: 0, Tuesday: 1, Wednesday: 2, Thursday: 3, Friday: 4, Saturday: 5,
}

// ParseDay converts a lowercase day name into a Day.
func ParseDay(s string) (Day, error) {
	d := Day(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown day %q", s)
	}
	return d, nil
}

// Valid reports whether the day is one of the six teaching days.
func (d Day) Valid() bool {
	_, ok := dayIndex[d]
	return ok
}

// Index returns the position of the day within the week, Monday being 0.
func (d Day) Index() int { return dayIndex[d] }
