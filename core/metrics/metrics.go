// Package metrics defines the observability sinks fed by the builder and the
// workflow controller. Sinks are optional; recording failures are logged by
// callers and never affect scheduling decisions.
package metrics

import (
	"time"

	"github.com/campusgrid/timetable/core/model"
)

// PlacementResult records the outcome of one session placement attempt.
type PlacementResult struct {
	TimetableID string
	SubjectCode string
	RoomNumber  string
	Day         model.Day
	Penalty     int
	Placed      bool
	// Reason carries the conflict kind or constraint name for failed
	// placements.
	Reason string
}

// BuildResult summarises one builder run.
type BuildResult struct {
	TimetableID string
	Placed      int
	Unplaced    int
	Duration    time.Duration
}

// TransitionEvent records a workflow state change for auditing.
type TransitionEvent struct {
	EntityKind string // "timetable" or "request"
	EntityID   string
	From       string
	To         string
	Actor      string
	Time       time.Time
}

// Sink records builder outcomes.
type Sink interface {
	RecordPlacement(PlacementResult) error
	RecordBuild(BuildResult) error
}

// TransitionRecorder records workflow transitions. Sinks implement it when
// the backend stores audit trails.
type TransitionRecorder interface {
	RecordTransition(TransitionEvent) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordPlacement(PlacementResult) error    { return nil }
func (NopSink) RecordBuild(BuildResult) error            { return nil }
func (NopSink) RecordTransition(TransitionEvent) error   { return nil }

// MultiSink fans records out to several sinks, returning the first error.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordPlacement(r PlacementResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordPlacement(r); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) RecordBuild(r BuildResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordBuild(r); err != nil {
			return err
		}
	}
	return nil
}

// RecordTransition forwards transition events to sinks that keep audit
// trails.
func (m *MultiSink) RecordTransition(ev TransitionEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(TransitionRecorder); ok {
			if err := rec.RecordTransition(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Config selects and configures the enabled sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}
