package model

import "fmt"

// RoomType classifies a teaching space.
type RoomType string

const (
	RoomClassroom  RoomType = "classroom"
	RoomLab        RoomType = "lab"
	RoomAuditorium RoomType = "auditorium"
	RoomSeminar    RoomType = "seminar"
	RoomConference RoomType = "conference"
)

// Valid reports whether the room type is known.
func (t RoomType) Valid() bool {
	switch t {
	case RoomClassroom, RoomLab, RoomAuditorium, RoomSeminar, RoomConference:
		return true
	}
	return false
}

// Room is a teaching space. Number is the unique identifier; Department is
// empty for shared rooms.
type Room struct {
	Number     string   `json:"number"`
	Name       string   `json:"name,omitempty"`
	Type       RoomType `json:"type"`
	Capacity   int      `json:"capacity"`
	Department string   `json:"department,omitempty"`
	Facilities string   `json:"facilities,omitempty"`
	Active     bool     `json:"active"`
}

// Validate checks the room configuration is sound.
func (r Room) Validate() error {
	if r.Number == "" {
		return fmt.Errorf("room number is required")
	}
	if !r.Type.Valid() {
		return fmt.Errorf("room %s: unknown type %q", r.Number, r.Type)
	}
	if r.Capacity <= 0 {
		return fmt.Errorf("room %s: capacity must be positive", r.Number)
	}
	return nil
}
