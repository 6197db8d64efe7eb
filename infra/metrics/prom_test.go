package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/campusgrid/timetable/core/metrics"
	"github.com/campusgrid/timetable/core/model"
)

func TestPromSinkRecordsPlacements(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordPlacement(coremetrics.PlacementResult{
		TimetableID: "tt-1", SubjectCode: "CS201", RoomNumber: "R101",
		Day: model.Monday, Penalty: 5, Placed: true,
	}))
	require.NoError(t, sink.RecordPlacement(coremetrics.PlacementResult{
		TimetableID: "tt-1", SubjectCode: "CS301", Placed: false, Reason: "capacity",
	}))

	require.Equal(t, float64(1), testutil.ToFloat64(sink.placements.WithLabelValues("CS201", "true")))
	require.Equal(t, float64(1), testutil.ToFloat64(sink.placements.WithLabelValues("CS301", "false")))
}

func TestPromSinkRecordsTransitions(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordTransition(coremetrics.TransitionEvent{
		EntityKind: "timetable", EntityID: "tt-1",
		From: "draft", To: "pending_approval", Actor: "admin", Time: time.Now(),
	}))
	require.Equal(t, float64(1),
		testutil.ToFloat64(sink.transitions.WithLabelValues("timetable", "draft", "pending_approval")))
}

func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)
	// A second sink on the same registry reuses the existing collectors.
	_, err = NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)
}
