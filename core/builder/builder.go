// Package builder places requested class sessions into a timetable, using
// the conflict detector to reject impossible candidates and the constraint
// engine to rank the rest. Placement is greedy and deterministic: sessions
// are processed in a fixed order and each takes the lowest-penalty candidate
// available at that point.
package builder

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/campusgrid/timetable/core/catalog"
	"github.com/campusgrid/timetable/core/conflict"
	"github.com/campusgrid/timetable/core/constraint"
	"github.com/campusgrid/timetable/core/directory"
	"github.com/campusgrid/timetable/core/events"
	"github.com/campusgrid/timetable/core/logger"
	"github.com/campusgrid/timetable/core/metrics"
	"github.com/campusgrid/timetable/core/model"
	"github.com/campusgrid/timetable/internal/eventbus"
	"github.com/campusgrid/timetable/internal/keylock"
)

// Builder orchestrates session placement for one timetable.
type Builder struct {
	catalog  *catalog.Catalog
	avail    *catalog.AvailabilityRegistry
	index    *conflict.Index
	detector *conflict.Detector
	engine   *constraint.Engine
	locks    *keylock.Manager
	dir      directory.Directory
	bus      eventbus.EventBus
	sink     metrics.Sink
	log      logger.Logger
	clock    func() time.Time
	newID    func() string
}

// Option configures optional builder collaborators.
type Option func(*Builder)

// WithDirectory sets the identity directory consulted before placement.
func WithDirectory(d directory.Directory) Option {
	return func(b *Builder) { b.dir = d }
}

// WithBus sets the event bus placements are announced on.
func WithBus(bus eventbus.EventBus) Option {
	return func(b *Builder) { b.bus = bus }
}

// WithSink sets the metrics sink.
func WithSink(s metrics.Sink) Option {
	return func(b *Builder) { b.sink = s }
}

// WithLogger sets the builder logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// WithClock overrides the wall clock, keeping commit timestamps
// deterministic in tests.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.clock = now }
}

// WithIDGenerator overrides schedule id generation, keeping build output
// reproducible in tests.
func WithIDGenerator(f func() string) Option {
	return func(b *Builder) { b.newID = f }
}

// New creates a Builder over the shared scheduling state.
func New(cat *catalog.Catalog, avail *catalog.AvailabilityRegistry, index *conflict.Index, engine *constraint.Engine, locks *keylock.Manager, opts ...Option) (*Builder, error) {
	if cat == nil || avail == nil || index == nil || engine == nil || locks == nil {
		return nil, fmt.Errorf("builder: nil collaborator")
	}
	b := &Builder{
		catalog:  cat,
		avail:    avail,
		index:    index,
		detector: conflict.NewDetector(index, avail),
		engine:   engine,
		locks:    locks,
		dir:      directory.AllowAll{},
		bus:      nil,
		sink:     metrics.NopSink{},
		log:      logger.Nop{},
		clock:    time.Now,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(b)
	}
	return b, nil
}

// Build places the requested sessions into the timetable. It always returns
// both collections: sessions the builder committed and sessions no candidate
// could satisfy, each with its reasons. A single unplaceable session never
// fails the build. On context cancellation, entries already committed stay
// committed and the remaining sessions are reported unplaced.
func (b *Builder) Build(ctx context.Context, tt model.Timetable, sessions []SessionRequest) ([]PlacedEntry, []Unplaced, error) {
	if tt.Status != model.TimetableDraft {
		return nil, nil, fmt.Errorf("timetable %s is %s, entries can only be added to a draft", tt.ID, tt.Status)
	}
	ordered := append([]SessionRequest(nil), sessions...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].key() < ordered[j].key() })

	start := b.clock()
	var placed []PlacedEntry
	var unplaced []Unplaced
	for i, sess := range ordered {
		if ctx.Err() != nil {
			for _, rest := range ordered[i:] {
				unplaced = append(unplaced, Unplaced{Session: rest, Reasons: []string{"build canceled"}})
			}
			break
		}
		entry, reasons, err := b.place(ctx, tt, sess)
		if err != nil {
			return placed, unplaced, err
		}
		if entry != nil {
			placed = append(placed, *entry)
			continue
		}
		unplaced = append(unplaced, Unplaced{Session: sess, Reasons: reasons})
		b.record(metrics.PlacementResult{
			TimetableID: tt.ID, SubjectCode: sess.SubjectCode,
			Placed: false, Reason: firstOr(reasons, "no candidates"),
		})
	}

	b.record(metrics.BuildResult{
		TimetableID: tt.ID, Placed: len(placed), Unplaced: len(unplaced),
		Duration: b.clock().Sub(start),
	})
	if b.bus != nil {
		b.bus.Publish(events.BuildCompleted{
			TimetableID: tt.ID, Placed: len(placed), Unplaced: len(unplaced),
			Duration: b.clock().Sub(start),
		})
	}
	b.log.Infof("build %s: %d placed, %d unplaced", tt.ID, len(placed), len(unplaced))
	return placed, unplaced, nil
}

// place tries every candidate for one session and commits the best survivor.
// A nil entry with reasons means the session is unplaceable.
func (b *Builder) place(ctx context.Context, tt model.Timetable, sess SessionRequest) (*PlacedEntry, []string, error) {
	if err := sess.Validate(); err != nil {
		return nil, []string{err.Error()}, nil
	}
	if ok, err := b.dir.FacultyActive(ctx, sess.FacultyID); err != nil {
		return nil, nil, fmt.Errorf("directory lookup for %s: %w", sess.FacultyID, err)
	} else if !ok {
		return nil, []string{fmt.Sprintf("faculty %s not active", sess.FacultyID)}, nil
	}
	for _, g := range sess.GroupKeys {
		if ok, err := b.dir.GroupActive(ctx, g); err != nil {
			return nil, nil, fmt.Errorf("directory lookup for %s: %w", g, err)
		} else if !ok {
			return nil, []string{fmt.Sprintf("group %s not active", g)}, nil
		}
	}
	if _, err := b.catalog.Subject(sess.SubjectCode); err != nil {
		return nil, []string{err.Error()}, nil
	}

	best, reasons, err := b.bestCandidate(sess)
	if err != nil {
		return nil, nil, err
	}
	if best == nil {
		return nil, dedupe(reasons), nil
	}
	return b.commit(ctx, tt, sess, *best)
}

// bestCandidate enumerates (room, slot) pairs and returns the survivor with
// the lowest soft penalty under the deterministic tie-break.
func (b *Builder) bestCandidate(sess SessionRequest) (*constraint.Scored, []string, error) {
	var best *constraint.Scored
	var reasons []string
	for _, room := range b.catalog.ActiveRooms() {
		for _, slot := range b.catalog.ActiveSlots() {
			if sess.Duration > 0 && int(slot.Window.End-slot.Window.Start) != sess.Duration {
				continue
			}
			cand := model.Candidate{
				SubjectCode: sess.SubjectCode,
				FacultyID:   sess.FacultyID,
				RoomNumber:  room.Number,
				Day:         slot.Day,
				Window:      slot.Window,
				GroupKeys:   sess.GroupKeys,
			}
			if res := b.detector.Check(cand); !res.Clear() {
				for _, k := range res.Kinds() {
					reasons = append(reasons, string(k)+" conflict")
				}
				continue
			}
			violations, penalty, err := b.engine.Evaluate(cand)
			if err != nil {
				return nil, nil, err
			}
			if len(violations) > 0 {
				for _, v := range violations {
					reasons = append(reasons, v.Name)
				}
				continue
			}
			scored := constraint.Scored{Candidate: cand, Penalty: penalty}
			if best == nil || constraint.Better(scored, *best) {
				s := scored
				best = &s
			}
		}
	}
	if best == nil && len(reasons) == 0 {
		reasons = append(reasons, "no candidate slots")
	}
	return best, reasons, nil
}

// commit re-checks the candidate under its placement locks and publishes the
// schedule. The re-check makes stale pre-lock checks harmless: a conflicting
// concurrent commit turns this candidate into an unplaced session, never
// into a double booking.
func (b *Builder) commit(ctx context.Context, tt model.Timetable, sess SessionRequest, scored constraint.Scored) (*PlacedEntry, []string, error) {
	cand := scored.Candidate
	keys := []string{
		keylock.RoomKey(cand.RoomNumber, string(cand.Day)),
		keylock.FacultyKey(cand.FacultyID, string(cand.Day)),
	}
	for _, g := range cand.GroupKeys {
		keys = append(keys, keylock.GroupKey(g, string(cand.Day)))
	}
	release, err := b.locks.Acquire(ctx, keys...)
	if err != nil {
		return nil, []string{err.Error()}, nil
	}
	defer release()

	if res := b.detector.Check(cand); !res.Clear() {
		reasons := make([]string, 0, len(res.Kinds()))
		for _, k := range res.Kinds() {
			reasons = append(reasons, string(k)+" conflict")
		}
		return nil, reasons, nil
	}

	cs := model.ClassSchedule{
		ID:          b.newID(),
		SubjectCode: cand.SubjectCode,
		FacultyID:   cand.FacultyID,
		RoomNumber:  cand.RoomNumber,
		Day:         cand.Day,
		Window:      cand.Window,
		Active:      true,
		CreatedAt:   b.clock(),
	}
	if err := b.index.Add(cs, cand.GroupKeys); err != nil {
		return nil, nil, err
	}

	entries := make([]model.TimetableEntry, len(cand.GroupKeys))
	for i, g := range cand.GroupKeys {
		entries[i] = model.TimetableEntry{TimetableID: tt.ID, GroupKey: g, ScheduleID: cs.ID}
	}

	b.record(metrics.PlacementResult{
		TimetableID: tt.ID, SubjectCode: cs.SubjectCode, RoomNumber: cs.RoomNumber,
		Day: cs.Day, Penalty: scored.Penalty, Placed: true,
	})
	if b.bus != nil {
		b.bus.Publish(events.Placement{
			TimetableID: tt.ID, ScheduleID: cs.ID, SubjectCode: cs.SubjectCode,
			RoomNumber: cs.RoomNumber, Day: cs.Day, Window: cs.Window,
			GroupKeys: cand.GroupKeys,
		})
	}
	b.log.Debugw("session placed", map[string]any{
		"subject": cs.SubjectCode, "room": cs.RoomNumber,
		"day": string(cs.Day), "window": cs.Window.String(), "penalty": scored.Penalty,
	})
	return &PlacedEntry{Session: sess, Schedule: cs, Entries: entries, Penalty: scored.Penalty}, nil, nil
}

func (b *Builder) record(v any) {
	var err error
	switch r := v.(type) {
	case metrics.PlacementResult:
		err = b.sink.RecordPlacement(r)
	case metrics.BuildResult:
		err = b.sink.RecordBuild(r)
	}
	if err != nil {
		b.log.Errorf("metrics: %v", err)
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func firstOr(in []string, fallback string) string {
	if len(in) > 0 {
		return in[0]
	}
	return fallback
}
