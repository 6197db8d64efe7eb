// Package workflow drives the two scheduling state machines: the timetable
// lifecycle (draft through active) and post-publication scheduling requests.
// Every transition is atomic, authorized through a single capability check,
// timestamped by an injected clock, and announced on the event bus.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campusgrid/timetable/core/catalog"
	"github.com/campusgrid/timetable/core/conflict"
	"github.com/campusgrid/timetable/core/constraint"
	"github.com/campusgrid/timetable/core/events"
	"github.com/campusgrid/timetable/core/logger"
	"github.com/campusgrid/timetable/core/metrics"
	"github.com/campusgrid/timetable/core/model"
	"github.com/campusgrid/timetable/core/storage"
	"github.com/campusgrid/timetable/internal/eventbus"
	"github.com/campusgrid/timetable/internal/keylock"
)

// timetableFlow connects the legal timetable transitions.
var timetableFlow = map[model.TimetableStatus][]model.TimetableStatus{
	model.TimetableDraft:           {model.TimetablePendingApproval},
	model.TimetablePendingApproval: {model.TimetableApproved, model.TimetableRejected},
	model.TimetableApproved:        {model.TimetableActive},
	// Deactivation when a newer timetable takes over.
	model.TimetableActive: {model.TimetableApproved},
}

func timetableCanMove(from, to model.TimetableStatus) bool {
	for _, s := range timetableFlow[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Controller executes workflow operations over shared scheduling state.
type Controller struct {
	store storage.Store
	index *conflict.Index
	det   *conflict.Detector
	eng   *constraint.Engine
	locks *keylock.Manager
	auth  Authorizer
	clock Clock
	bus   eventbus.EventBus
	sink  metrics.Sink
	log   logger.Logger
	newID func() string
}

// Option configures optional controller collaborators.
type Option func(*Controller)

// WithAuthorizer sets the capability check.
func WithAuthorizer(a Authorizer) Option { return func(c *Controller) { c.auth = a } }

// WithClock sets the transition clock.
func WithClock(cl Clock) Option { return func(c *Controller) { c.clock = cl } }

// WithBus sets the event bus transitions are announced on.
func WithBus(b eventbus.EventBus) Option { return func(c *Controller) { c.bus = b } }

// WithSink sets the metrics/audit sink.
func WithSink(s metrics.Sink) Option { return func(c *Controller) { c.sink = s } }

// WithLogger sets the controller logger.
func WithLogger(l logger.Logger) Option { return func(c *Controller) { c.log = l } }

// WithIDGenerator overrides id generation for deterministic tests.
func WithIDGenerator(f func() string) Option { return func(c *Controller) { c.newID = f } }

// New creates a Controller. The engine evaluates request mutations with the
// same rules a fresh placement would face.
func New(store storage.Store, index *conflict.Index, avail *catalog.AvailabilityRegistry, eng *constraint.Engine, locks *keylock.Manager, opts ...Option) (*Controller, error) {
	if store == nil || index == nil || avail == nil || eng == nil || locks == nil {
		return nil, fmt.Errorf("workflow: nil collaborator")
	}
	c := &Controller{
		store: store,
		index: index,
		det:   conflict.NewDetector(index, avail),
		eng:   eng,
		locks: locks,
		auth:  AllowAll{},
		clock: SystemClock{},
		sink:  metrics.NopSink{},
		log:   logger.Nop{},
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// CreateTimetable opens a new draft for the scope. A scope holds at most one
// unresolved timetable (draft or pending approval) at a time; approved,
// active and rejected timetables do not block a new revision, which
// supersedes the active one on activation.
func (c *Controller) CreateTimetable(ctx context.Context, actor, name string, key model.TimetableKey) (model.Timetable, error) {
	if err := c.auth.Allow(actor, ActionCreateTimetable, key.String()); err != nil {
		return model.Timetable{}, err
	}
	release, err := c.locks.Acquire(ctx, keylock.ScopeKey(key.String()))
	if err != nil {
		return model.Timetable{}, err
	}
	defer release()

	existing, err := c.store.TimetablesByKey(ctx, key)
	if err != nil {
		return model.Timetable{}, err
	}
	for _, tt := range existing {
		if tt.Status == model.TimetableDraft || tt.Status == model.TimetablePendingApproval {
			return model.Timetable{}, fmt.Errorf("scope %s already has timetable %s in state %s", key, tt.ID, tt.Status)
		}
	}

	now := c.clock.Now()
	tt := model.Timetable{
		ID:        c.newID(),
		Name:      name,
		Key:       key,
		Status:    model.TimetableDraft,
		CreatedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.store.PutTimetable(ctx, tt); err != nil {
		return model.Timetable{}, err
	}
	c.emitTimetable(tt, "", model.TimetableDraft, actor, now)
	return tt, nil
}

// AddEntries attaches builder output to a draft timetable.
func (c *Controller) AddEntries(ctx context.Context, actor, timetableID string, entries []model.TimetableEntry) error {
	if err := c.auth.Allow(actor, ActionEditEntries, timetableID); err != nil {
		return err
	}
	tt, err := c.store.Timetable(ctx, timetableID)
	if err != nil {
		return err
	}
	if tt.Status != model.TimetableDraft {
		return &InvalidTransitionError{Entity: "timetable", ID: tt.ID, From: string(tt.Status), To: "entry mutation"}
	}
	for i := range entries {
		entries[i].TimetableID = tt.ID
	}
	return c.store.PutEntries(ctx, entries)
}

// Submit freezes entry mutation and hands the draft to review.
func (c *Controller) Submit(ctx context.Context, actor, timetableID string) (model.Timetable, error) {
	return c.move(ctx, actor, ActionSubmit, timetableID, model.TimetablePendingApproval, func(tt *model.Timetable) {})
}

// Approve accepts a pending timetable.
func (c *Controller) Approve(ctx context.Context, actor, timetableID, notes string) (model.Timetable, error) {
	return c.move(ctx, actor, ActionApprove, timetableID, model.TimetableApproved, func(tt *model.Timetable) {
		now := c.clock.Now()
		tt.ApprovedBy = actor
		tt.ApprovedAt = &now
		if notes != "" {
			tt.Notes = notes
		}
	})
}

// Reject refuses a pending timetable. Rejection is terminal: the scope needs
// a fresh draft, the rejected timetable is never reopened.
func (c *Controller) Reject(ctx context.Context, actor, timetableID, notes string) (model.Timetable, error) {
	return c.move(ctx, actor, ActionReject, timetableID, model.TimetableRejected, func(tt *model.Timetable) {
		if notes != "" {
			tt.Notes = notes
		}
	})
}

// Activate puts an approved timetable into effect, atomically deactivating
// any currently active timetable for the same scope.
func (c *Controller) Activate(ctx context.Context, actor, timetableID string) (model.Timetable, error) {
	if err := c.auth.Allow(actor, ActionActivate, timetableID); err != nil {
		return model.Timetable{}, err
	}
	tt, err := c.store.Timetable(ctx, timetableID)
	if err != nil {
		return model.Timetable{}, err
	}
	release, err := c.locks.Acquire(ctx, keylock.ScopeKey(tt.Key.String()))
	if err != nil {
		return model.Timetable{}, err
	}
	defer release()

	// Re-read under the scope lock.
	tt, err = c.store.Timetable(ctx, timetableID)
	if err != nil {
		return model.Timetable{}, err
	}
	if !timetableCanMove(tt.Status, model.TimetableActive) {
		return model.Timetable{}, &InvalidTransitionError{Entity: "timetable", ID: tt.ID, From: string(tt.Status), To: string(model.TimetableActive)}
	}

	now := c.clock.Now()
	current, found, err := c.store.ActiveTimetable(ctx, tt.Key)
	if err != nil {
		return model.Timetable{}, err
	}
	if found && current.ID != tt.ID {
		from := current.Status
		current.Status = model.TimetableApproved
		current.UpdatedAt = now
		if err := c.store.PutTimetable(ctx, current); err != nil {
			return model.Timetable{}, err
		}
		c.emitTimetable(current, from, current.Status, actor, now)
	}

	from := tt.Status
	tt.Status = model.TimetableActive
	tt.UpdatedAt = now
	if err := c.store.PutTimetable(ctx, tt); err != nil {
		return model.Timetable{}, err
	}
	c.emitTimetable(tt, from, tt.Status, actor, now)
	return tt, nil
}

// DeleteTimetable removes a timetable and cascades over its entries. The
// referenced class schedules are shared and stay committed; removing them is
// a separate scheduling-request concern.
func (c *Controller) DeleteTimetable(ctx context.Context, actor, timetableID string) error {
	if err := c.auth.Allow(actor, ActionDelete, timetableID); err != nil {
		return err
	}
	tt, err := c.store.Timetable(ctx, timetableID)
	if err != nil {
		return err
	}
	if tt.Status == model.TimetableActive {
		return &InvalidTransitionError{Entity: "timetable", ID: tt.ID, From: string(tt.Status), To: "deleted"}
	}
	if err := c.store.DeleteEntries(ctx, timetableID); err != nil {
		return err
	}
	return c.store.DeleteTimetable(ctx, timetableID)
}

// move runs one authorized, validated timetable transition.
func (c *Controller) move(ctx context.Context, actor string, action Action, timetableID string, to model.TimetableStatus, mutate func(*model.Timetable)) (model.Timetable, error) {
	if err := c.auth.Allow(actor, action, timetableID); err != nil {
		return model.Timetable{}, err
	}
	tt, err := c.store.Timetable(ctx, timetableID)
	if err != nil {
		return model.Timetable{}, err
	}
	release, err := c.locks.Acquire(ctx, keylock.ScopeKey(tt.Key.String()))
	if err != nil {
		return model.Timetable{}, err
	}
	defer release()

	tt, err = c.store.Timetable(ctx, timetableID)
	if err != nil {
		return model.Timetable{}, err
	}
	if !timetableCanMove(tt.Status, to) {
		return model.Timetable{}, &InvalidTransitionError{Entity: "timetable", ID: tt.ID, From: string(tt.Status), To: string(to)}
	}
	from := tt.Status
	now := c.clock.Now()
	tt.Status = to
	tt.UpdatedAt = now
	mutate(&tt)
	if err := c.store.PutTimetable(ctx, tt); err != nil {
		return model.Timetable{}, err
	}
	c.emitTimetable(tt, from, to, actor, now)
	return tt, nil
}

func (c *Controller) emitTimetable(tt model.Timetable, from, to model.TimetableStatus, actor string, at time.Time) {
	if c.bus != nil {
		c.bus.Publish(events.TimetableTransition{
			TimetableID: tt.ID, Key: tt.Key, From: from, To: to, Actor: actor, At: at,
		})
	}
	if rec, ok := c.sink.(metrics.TransitionRecorder); ok {
		if err := rec.RecordTransition(metrics.TransitionEvent{
			EntityKind: "timetable", EntityID: tt.ID,
			From: string(from), To: string(to), Actor: actor, Time: at,
		}); err != nil {
			c.log.Errorf("audit: %v", err)
		}
	}
	c.log.Infof("timetable %s: %s -> %s by %s", tt.ID, from, to, actor)
}

// IsNotFound reports whether the error marks a missing entity in either the
// catalog or the store.
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound) || errors.Is(err, catalog.ErrNotFound)
}
