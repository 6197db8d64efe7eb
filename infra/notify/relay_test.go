package notify

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/campusgrid/timetable/core/events"
	"github.com/campusgrid/timetable/core/model"
	"github.com/campusgrid/timetable/internal/eventbus"
)

// mockPublisher records published payloads per topic.
type mockPublisher struct {
	mu       sync.Mutex
	messages map[string][][]byte
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{messages: make(map[string][][]byte)}
}

func (m *mockPublisher) Publish(topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[topic] = append(m.messages[topic], payload)
	return nil
}

func (m *mockPublisher) Close() {}

func (m *mockPublisher) wait(t *testing.T, topic string, n int) [][]byte {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		got := m.messages[topic]
		m.mu.Unlock()
		if len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("topic %s never reached %d messages", topic, n)
	return nil
}

func TestRelayForwardsTransitions(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	pub := newMockPublisher()

	relay := NewRelay(bus, pub, "campus", nil)
	relay.Start()
	defer relay.Stop()

	bus.Publish(events.TimetableTransition{
		TimetableID: "tt-1",
		Key:         model.TimetableKey{Department: "CS", AcademicYear: "2025-26", Semester: 3},
		From:        model.TimetableDraft,
		To:          model.TimetablePendingApproval,
		Actor:       "admin",
		At:          time.Now(),
	})

	msgs := pub.wait(t, "campus/timetables", 1)
	var got events.TimetableTransition
	if err := json.Unmarshal(msgs[0], &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TimetableID != "tt-1" || got.To != model.TimetablePendingApproval {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestRelayRoutesPerKind(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	pub := newMockPublisher()

	relay := NewRelay(bus, pub, "campus", nil)
	relay.Start()
	defer relay.Stop()

	bus.Publish(events.Placement{TimetableID: "tt-1", ScheduleID: "s1", SubjectCode: "CS201"})
	bus.Publish(events.BuildCompleted{TimetableID: "tt-1", Placed: 3, Unplaced: 1})

	pub.wait(t, "campus/placements", 1)
	pub.wait(t, "campus/builds", 1)
}

func TestRelayIgnoresUnknownEvents(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	pub := newMockPublisher()

	relay := NewRelay(bus, pub, "campus", nil)
	relay.Start()

	bus.Publish(struct{ X int }{1})
	bus.Publish(events.BuildCompleted{TimetableID: "tt-1"})
	pub.wait(t, "campus/builds", 1)
	relay.Stop()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.messages) != 1 {
		t.Fatalf("unexpected topics: %v", len(pub.messages))
	}
}
