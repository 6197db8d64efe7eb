package notify

import (
	"encoding/json"

	"github.com/campusgrid/timetable/core/events"
	"github.com/campusgrid/timetable/core/logger"
	"github.com/campusgrid/timetable/internal/eventbus"
)

// Relay consumes the core event bus and republishes each event as JSON on a
// per-kind MQTT topic. Delivery is best effort; a failed publish is logged
// and dropped, never retried, so a flaky broker cannot back up the bus.
type Relay struct {
	bus    *eventbus.Bus
	pub    Publisher
	prefix string
	log    logger.Logger
	sub    <-chan eventbus.Event
	done   chan struct{}
}

// NewRelay wires a relay between the bus and the publisher.
func NewRelay(bus *eventbus.Bus, pub Publisher, prefix string, log logger.Logger) *Relay {
	if prefix == "" {
		prefix = "timetable"
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Relay{bus: bus, pub: pub, prefix: prefix, log: log}
}

// Start subscribes and begins forwarding. Call Stop to end the relay.
func (r *Relay) Start() {
	r.sub = r.bus.Subscribe()
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		for e := range r.sub {
			r.forward(e)
		}
	}()
}

// Stop unsubscribes and waits for the forwarding loop to drain.
func (r *Relay) Stop() {
	r.bus.Unsubscribe(r.sub)
	<-r.done
}

func (r *Relay) forward(e eventbus.Event) {
	var topic string
	switch e.(type) {
	case events.TimetableTransition:
		topic = r.prefix + "/timetables"
	case events.RequestResolved:
		topic = r.prefix + "/requests"
	case events.Placement:
		topic = r.prefix + "/placements"
	case events.BuildCompleted:
		topic = r.prefix + "/builds"
	default:
		return
	}
	payload, err := json.Marshal(e)
	if err != nil {
		r.log.Errorf("encode event: %v", err)
		return
	}
	if err := r.pub.Publish(topic, payload); err != nil {
		r.log.Errorf("publish %s: %v", topic, err)
	}
}
