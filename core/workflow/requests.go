package workflow

import (
	"context"
	"fmt"

	"github.com/campusgrid/timetable/core/constraint"
	"github.com/campusgrid/timetable/core/events"
	"github.com/campusgrid/timetable/core/metrics"
	"github.com/campusgrid/timetable/core/model"
	"github.com/campusgrid/timetable/core/storage"
	"github.com/campusgrid/timetable/internal/keylock"
)

// Request returns a scheduling request by id.
func (c *Controller) Request(ctx context.Context, id string) (model.SchedulingRequest, error) {
	return c.store.Request(ctx, id)
}

// PendingRequests lists every request awaiting review.
func (c *Controller) PendingRequests(ctx context.Context) ([]model.SchedulingRequest, error) {
	return c.store.PendingRequests(ctx)
}

// SubmitRequest files a scheduling request against the published schedule.
// The request enters review as pending; submission never touches committed
// sessions.
func (c *Controller) SubmitRequest(ctx context.Context, actor string, r model.SchedulingRequest) (model.SchedulingRequest, error) {
	if err := c.auth.Allow(actor, ActionSubmitRequest, string(r.Type)); err != nil {
		return model.SchedulingRequest{}, err
	}
	r.Requester = actor
	if err := r.Validate(); err != nil {
		return model.SchedulingRequest{}, err
	}
	now := c.clock.Now()
	r.ID = c.newID()
	r.Status = model.RequestPending
	r.CreatedAt = now
	r.UpdatedAt = now
	if err := c.store.PutRequest(ctx, r); err != nil {
		return model.SchedulingRequest{}, err
	}
	c.log.Infof("request %s (%s) submitted by %s", r.ID, r.Type, actor)
	return r, nil
}

// ApproveRequest applies the request's mutation to the committed schedule and
// marks the request approved, as one atomic step under the affected resource
// locks. If the mutation would collide or breach a hard constraint the store
// is left untouched, the request stays pending and a ConstraintViolationError
// is returned so the reviewer can retry after the schedule changes. Soft
// constraint weight never blocks an approval; accepting a penalty is the
// reviewer's call.
func (c *Controller) ApproveRequest(ctx context.Context, actor, requestID, notes string) (model.SchedulingRequest, error) {
	if err := c.auth.Allow(actor, ActionResolveRequest, requestID); err != nil {
		return model.SchedulingRequest{}, err
	}
	r, err := c.store.Request(ctx, requestID)
	if err != nil {
		return model.SchedulingRequest{}, err
	}
	if !r.IsPending() {
		return model.SchedulingRequest{}, &InvalidTransitionError{Entity: "request", ID: r.ID, From: string(r.Status), To: string(model.RequestApproved)}
	}

	if err := c.apply(ctx, &r); err != nil {
		return model.SchedulingRequest{}, err
	}

	return c.resolve(ctx, r, model.RequestApproved, actor, notes)
}

// RejectRequest closes a pending request without side effects.
func (c *Controller) RejectRequest(ctx context.Context, actor, requestID, notes string) (model.SchedulingRequest, error) {
	if err := c.auth.Allow(actor, ActionResolveRequest, requestID); err != nil {
		return model.SchedulingRequest{}, err
	}
	r, err := c.store.Request(ctx, requestID)
	if err != nil {
		return model.SchedulingRequest{}, err
	}
	if !r.IsPending() {
		return model.SchedulingRequest{}, &InvalidTransitionError{Entity: "request", ID: r.ID, From: string(r.Status), To: string(model.RequestRejected)}
	}
	return c.resolve(ctx, r, model.RequestRejected, actor, notes)
}

func (c *Controller) resolve(ctx context.Context, r model.SchedulingRequest, to model.RequestStatus, actor, notes string) (model.SchedulingRequest, error) {
	from := r.Status
	now := c.clock.Now()
	r.Status = to
	r.ReviewedBy = actor
	r.ReviewedAt = &now
	r.ReviewNotes = notes
	r.UpdatedAt = now
	if err := c.store.PutRequest(ctx, r); err != nil {
		return model.SchedulingRequest{}, err
	}
	if c.bus != nil {
		c.bus.Publish(events.RequestResolved{
			RequestID: r.ID, Type: r.Type, From: from, To: to, Actor: actor, At: now,
		})
	}
	if rec, ok := c.sink.(metrics.TransitionRecorder); ok {
		if err := rec.RecordTransition(metrics.TransitionEvent{
			EntityKind: "request", EntityID: r.ID,
			From: string(from), To: string(to), Actor: actor, Time: now,
		}); err != nil {
			c.log.Errorf("audit: %v", err)
		}
	}
	c.log.Infof("request %s (%s): %s -> %s by %s", r.ID, r.Type, from, to, actor)
	return r, nil
}

// apply executes the request's mutation against the index and the store.
func (c *Controller) apply(ctx context.Context, r *model.SchedulingRequest) error {
	switch r.Type {
	case model.RequestChangeTime:
		return c.applyMove(ctx, r, func(cs *model.ClassSchedule) {
			cs.Day = r.ProposedDay
			cs.Window = *r.ProposedWindow
		})
	case model.RequestChangeRoom:
		return c.applyMove(ctx, r, func(cs *model.ClassSchedule) {
			cs.RoomNumber = r.ProposedRoom
		})
	case model.RequestAddClass:
		return c.applyAdd(ctx, r)
	case model.RequestRemoveClass:
		return c.applyRemove(ctx, r)
	case model.RequestSwapClasses:
		return c.applySwap(ctx, r)
	}
	return fmt.Errorf("request: unknown type %q", r.Type)
}

// applyMove relocates one committed session, validating the new slot with the
// old one treated as vacated.
func (c *Controller) applyMove(ctx context.Context, r *model.SchedulingRequest, mutate func(*model.ClassSchedule)) error {
	cs, ok := c.index.Get(r.ScheduleID)
	if !ok {
		return fmt.Errorf("schedule %s: %w", r.ScheduleID, storage.ErrNotFound)
	}
	groups := c.index.GroupsOf(cs.ID)

	next := cs
	mutate(&next)

	release, err := c.locks.Acquire(ctx, scheduleKeys(cs, groups, next)...)
	if err != nil {
		return err
	}
	defer release()

	if err := c.validate(*r, next, groups, map[string]bool{cs.ID: true}); err != nil {
		return err
	}
	if err := c.index.Replace(next); err != nil {
		return err
	}
	if err := c.store.PutSchedule(ctx, next, groups); err != nil {
		// Put the index back so it keeps mirroring the store.
		_ = c.index.Replace(cs)
		return err
	}
	return nil
}

func (c *Controller) applyAdd(ctx context.Context, r *model.SchedulingRequest) error {
	cs := model.ClassSchedule{
		ID:          c.newID(),
		SubjectCode: r.SubjectCode,
		FacultyID:   r.FacultyID,
		RoomNumber:  r.ProposedRoom,
		Day:         r.ProposedDay,
		Window:      *r.ProposedWindow,
		Active:      true,
		CreatedAt:   c.clock.Now(),
	}
	release, err := c.locks.Acquire(ctx, scheduleKeys(cs, r.GroupKeys, cs)...)
	if err != nil {
		return err
	}
	defer release()

	if err := c.validate(*r, cs, r.GroupKeys, nil); err != nil {
		return err
	}
	if err := c.index.Add(cs, r.GroupKeys); err != nil {
		return err
	}
	if err := c.store.PutSchedule(ctx, cs, r.GroupKeys); err != nil {
		c.index.Remove(cs.ID)
		return err
	}
	return nil
}

func (c *Controller) applyRemove(ctx context.Context, r *model.SchedulingRequest) error {
	cs, ok := c.index.Get(r.ScheduleID)
	if !ok {
		return fmt.Errorf("schedule %s: %w", r.ScheduleID, storage.ErrNotFound)
	}
	groups := c.index.GroupsOf(cs.ID)

	release, err := c.locks.Acquire(ctx, scheduleKeys(cs, groups, cs)...)
	if err != nil {
		return err
	}
	defer release()

	c.index.Remove(cs.ID)
	if err := c.store.DeleteSchedule(ctx, cs.ID); err != nil {
		_ = c.index.Add(cs, groups)
		return err
	}
	return nil
}

// applySwap exchanges the (room, day, window) slots of two committed sessions.
// Both halves are validated with both originals treated as vacated, then both
// are replaced; either both move or neither does.
func (c *Controller) applySwap(ctx context.Context, r *model.SchedulingRequest) error {
	a, ok := c.index.Get(r.ScheduleID)
	if !ok {
		return fmt.Errorf("schedule %s: %w", r.ScheduleID, storage.ErrNotFound)
	}
	b, ok := c.index.Get(r.CounterpartID)
	if !ok {
		return fmt.Errorf("schedule %s: %w", r.CounterpartID, storage.ErrNotFound)
	}
	groupsA := c.index.GroupsOf(a.ID)
	groupsB := c.index.GroupsOf(b.ID)

	nextA, nextB := a, b
	nextA.RoomNumber, nextA.Day, nextA.Window = b.RoomNumber, b.Day, b.Window
	nextB.RoomNumber, nextB.Day, nextB.Window = a.RoomNumber, a.Day, a.Window

	keys := scheduleKeys(a, groupsA, nextA)
	keys = append(keys, scheduleKeys(b, groupsB, nextB)...)
	release, err := c.locks.Acquire(ctx, keys...)
	if err != nil {
		return err
	}
	defer release()

	vacated := map[string]bool{a.ID: true, b.ID: true}
	if err := c.validate(*r, nextA, groupsA, vacated); err != nil {
		return err
	}
	if err := c.validate(*r, nextB, groupsB, vacated); err != nil {
		return err
	}
	if err := c.index.Replace(nextA); err != nil {
		return err
	}
	if err := c.index.Replace(nextB); err != nil {
		// Roll the first half back so the index never holds a torn swap.
		_ = c.index.Replace(a)
		return err
	}
	if err := c.store.PutSchedule(ctx, nextA, groupsA); err != nil {
		_ = c.index.Replace(a)
		_ = c.index.Replace(b)
		return err
	}
	if err := c.store.PutSchedule(ctx, nextB, groupsB); err != nil {
		// Undo the first half's write as well; the store must never hold
		// half a swap while the request stays pending.
		_ = c.store.PutSchedule(ctx, a, groupsA)
		_ = c.index.Replace(a)
		_ = c.index.Replace(b)
		return err
	}
	return nil
}

// validate runs the target slot through the detector and the constraint
// engine, mapping any breach to a ConstraintViolationError.
func (c *Controller) validate(r model.SchedulingRequest, cs model.ClassSchedule, groups []string, vacated map[string]bool) error {
	cand := model.Candidate{
		SubjectCode: cs.SubjectCode,
		FacultyID:   cs.FacultyID,
		RoomNumber:  cs.RoomNumber,
		Day:         cs.Day,
		Window:      cs.Window,
		GroupKeys:   groups,
	}
	if res := c.det.CheckIgnoring(cand, vacated); !res.Clear() {
		return &ConstraintViolationError{RequestID: r.ID, Cause: res.Err()}
	}
	violations, _, err := c.eng.EvaluateIgnoring(cand, vacated)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return &ConstraintViolationError{RequestID: r.ID, Cause: &constraint.HardViolationError{Violations: violations}}
	}
	return nil
}

// scheduleKeys covers every resource a move between the two session states
// touches: room, faculty and group days on both sides. The lock manager
// deduplicates, so passing the same state twice is fine.
func scheduleKeys(from model.ClassSchedule, groups []string, to model.ClassSchedule) []string {
	keys := []string{
		keylock.RoomKey(from.RoomNumber, string(from.Day)),
		keylock.FacultyKey(from.FacultyID, string(from.Day)),
		keylock.RoomKey(to.RoomNumber, string(to.Day)),
		keylock.FacultyKey(to.FacultyID, string(to.Day)),
	}
	for _, g := range groups {
		keys = append(keys, keylock.GroupKey(g, string(from.Day)), keylock.GroupKey(g, string(to.Day)))
	}
	return keys
}
