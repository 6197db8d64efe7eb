// Package metrics provides the Prometheus and InfluxDB implementations of the
// core metrics sinks.
package metrics

import (
	coremetrics "github.com/campusgrid/timetable/core/metrics"
)

// NewSink assembles the configured sinks into one. With nothing enabled a
// NopSink is returned.
func NewSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	var sinks []coremetrics.Sink
	if cfg.PrometheusEnabled {
		prom, err := NewPromSink(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, prom)
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, NewInfluxSinkWithFallback(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket))
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return coremetrics.NewMultiSink(sinks...), nil
	}
}
