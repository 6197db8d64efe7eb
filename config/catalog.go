package config

import (
	"fmt"

	"github.com/campusgrid/timetable/core/builder"
	"github.com/campusgrid/timetable/core/catalog"
	"github.com/campusgrid/timetable/core/model"
)

// CatalogConfig seeds the entity catalog from configuration. Times are
// HH:MM strings on a 24-hour clock.
type CatalogConfig struct {
	Subjects     []model.Subject      `json:"subjects"`
	Rooms        []model.Room         `json:"rooms"`
	Groups       []model.StudentGroup `json:"groups"`
	Slots        []SlotConfig         `json:"slots"`
	Availability []AvailabilityConfig `json:"availability"`
	Sessions     []SessionConfig      `json:"sessions"`
}

// SlotConfig is one teaching slot of the weekly grid.
type SlotConfig struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailabilityConfig is one faculty availability window.
type AvailabilityConfig struct {
	Faculty   string `json:"faculty"`
	Day       string `json:"day"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
	Reason    string `json:"reason"`
}

// SessionConfig is one weekly session to place during a build.
type SessionConfig struct {
	Subject  string   `json:"subject"`
	Faculty  string   `json:"faculty"`
	Groups   []string `json:"groups"`
	Duration int      `json:"duration"`
}

// BuildCatalog materialises the configured entities into a catalog and an
// availability registry.
func (c CatalogConfig) BuildCatalog() (*catalog.Catalog, *catalog.AvailabilityRegistry, error) {
	cat := catalog.New()
	for _, s := range c.Subjects {
		if err := cat.AddSubject(s); err != nil {
			return nil, nil, err
		}
	}
	for _, r := range c.Rooms {
		if err := cat.AddRoom(r); err != nil {
			return nil, nil, err
		}
	}
	for _, g := range c.Groups {
		if err := cat.AddGroup(g); err != nil {
			return nil, nil, err
		}
	}
	for _, s := range c.Slots {
		day, err := model.ParseDay(s.Day)
		if err != nil {
			return nil, nil, fmt.Errorf("slot: %w", err)
		}
		w, err := model.NewWindow(s.Start, s.End)
		if err != nil {
			return nil, nil, fmt.Errorf("slot %s: %w", s.Day, err)
		}
		if err := cat.AddTimeSlot(model.TimeSlot{Day: day, Window: w, Active: true}); err != nil {
			return nil, nil, err
		}
	}

	avail := catalog.NewAvailabilityRegistry()
	for _, a := range c.Availability {
		day, err := model.ParseDay(a.Day)
		if err != nil {
			return nil, nil, fmt.Errorf("availability %s: %w", a.Faculty, err)
		}
		w, err := model.NewWindow(a.Start, a.End)
		if err != nil {
			return nil, nil, fmt.Errorf("availability %s: %w", a.Faculty, err)
		}
		err = avail.Add(model.AvailabilityWindow{
			FacultyID: a.Faculty, Day: day, Window: w,
			Available: a.Available, Reason: a.Reason,
		})
		if err != nil {
			return nil, nil, err
		}
	}
	return cat, avail, nil
}

// SessionRequests converts the configured sessions into builder input.
func (c CatalogConfig) SessionRequests() []builder.SessionRequest {
	out := make([]builder.SessionRequest, 0, len(c.Sessions))
	for _, s := range c.Sessions {
		out = append(out, builder.SessionRequest{
			SubjectCode: s.Subject,
			FacultyID:   s.Faculty,
			GroupKeys:   s.Groups,
			Duration:    s.Duration,
		})
	}
	return out
}
