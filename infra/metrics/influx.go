package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	coremetrics "github.com/campusgrid/timetable/core/metrics"
	"github.com/campusgrid/timetable/infra/logger"
)

// InfluxSink writes scheduling events to an InfluxDB instance using the
// official client. It keeps the full audit trail: every placement, build and
// workflow transition becomes a point.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
	now      func() time.Time
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	client := influxdb2.NewClientWithOptions(url, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink", "info"),
		now:      time.Now,
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns a
// NopSink if the health check fails, so a down metrics backend never blocks
// scheduling.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordPlacement writes the placement outcome as a point.
func (s *InfluxSink) RecordPlacement(r coremetrics.PlacementResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := influxdb2.NewPointWithMeasurement("placement_event").
		AddTag("timetable_id", r.TimetableID).
		AddTag("subject", r.SubjectCode).
		AddTag("placed", strconv.FormatBool(r.Placed)).
		AddField("penalty", r.Penalty).
		SetTime(s.now())
	if r.Placed {
		p.AddTag("room", r.RoomNumber).AddTag("day", string(r.Day))
	} else {
		p.AddField("reason", r.Reason)
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordBuild writes the build summary as a point.
func (s *InfluxSink) RecordBuild(r coremetrics.BuildResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := influxdb2.NewPointWithMeasurement("build_event").
		AddTag("timetable_id", r.TimetableID).
		AddField("placed", r.Placed).
		AddField("unplaced", r.Unplaced).
		AddField("duration_ms", r.Duration.Milliseconds()).
		SetTime(s.now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTransition writes a workflow transition audit point.
func (s *InfluxSink) RecordTransition(ev coremetrics.TransitionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := influxdb2.NewPointWithMeasurement("workflow_transition").
		AddTag("entity", ev.EntityKind).
		AddTag("from", ev.From).
		AddTag("to", ev.To).
		AddField("entity_id", ev.EntityID).
		AddField("actor", ev.Actor).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
