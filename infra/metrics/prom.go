package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/campusgrid/timetable/core/metrics"
)

// PromSink records scheduling outcomes in Prometheus metrics.
type PromSink struct {
	placements  *prometheus.CounterVec
	penalty     *prometheus.HistogramVec
	builds      *prometheus.HistogramVec
	transitions *prometheus.CounterVec
}

// NewPromSink registers scheduling metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	placements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_placements_total",
		Help: "Total number of session placement attempts",
	}, []string{"subject", "placed"})
	penalty := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_placement_penalty",
		Help:    "Soft constraint penalty of committed placements",
		Buckets: prometheus.LinearBuckets(0, 5, 10),
	}, []string{"subject"})
	builds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_build_duration_seconds",
		Help:    "Duration of timetable build runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"timetable_id"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_workflow_transitions_total",
		Help: "Total number of workflow state transitions",
	}, []string{"entity", "from", "to"})

	if err := register(reg, &placements); err != nil {
		return nil, err
	}
	if err := register(reg, &penalty); err != nil {
		return nil, err
	}
	if err := register(reg, &builds); err != nil {
		return nil, err
	}
	if err := register(reg, &transitions); err != nil {
		return nil, err
	}
	return &PromSink{placements: placements, penalty: penalty, builds: builds, transitions: transitions}, nil
}

// register keeps the existing collector when one with the same descriptor is
// already registered, so repeated sink construction is safe.
func register[C prometheus.Collector](reg prometheus.Registerer, c *C) error {
	if err := reg.Register(*c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			*c = are.ExistingCollector.(C)
			return nil
		}
		return err
	}
	return nil
}

// RecordPlacement counts the attempt and observes the penalty of successful
// placements.
func (s *PromSink) RecordPlacement(r coremetrics.PlacementResult) error {
	s.placements.WithLabelValues(r.SubjectCode, strconv.FormatBool(r.Placed)).Inc()
	if r.Placed {
		s.penalty.WithLabelValues(r.SubjectCode).Observe(float64(r.Penalty))
	}
	return nil
}

// RecordBuild observes the run duration.
func (s *PromSink) RecordBuild(r coremetrics.BuildResult) error {
	s.builds.WithLabelValues(r.TimetableID).Observe(r.Duration.Seconds())
	return nil
}

// RecordTransition counts workflow transitions per edge.
func (s *PromSink) RecordTransition(ev coremetrics.TransitionEvent) error {
	s.transitions.WithLabelValues(ev.EntityKind, ev.From, ev.To).Inc()
	return nil
}
