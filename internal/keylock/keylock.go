// Package keylock provides exclusive sections scoped to string keys, used to
// serialise placement commits and workflow transitions on the smallest
// contended resource: a (room, day), a (faculty, day) or a timetable scope.
package keylock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrBusy is returned when a lock cannot be acquired within the bounded wait.
// It is safe to retry with backoff; the manager never retries internally.
var ErrBusy = errors.New("keylock: resource busy")

// DefaultWait bounds lock acquisition when no explicit wait is configured.
const DefaultWait = 2 * time.Second

// Manager hands out per-key exclusive sections with a bounded wait.
type Manager struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
	wait  time.Duration
}

// New creates a Manager. A non-positive wait falls back to DefaultWait.
func New(wait time.Duration) *Manager {
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Manager{locks: make(map[string]chan struct{}), wait: wait}
}

func (m *Manager) sem(key string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.locks[key]
	if !ok {
		s = make(chan struct{}, 1)
		m.locks[key] = s
	}
	return s
}

// Acquire takes every key exclusively and returns a release function. Keys
// are sorted and deduplicated before acquisition so two callers contending on
// overlapping key sets cannot deadlock. On timeout or context cancellation
// all partially held keys are released and ErrBusy or the context error is
// returned.
func (m *Manager) Acquire(ctx context.Context, keys ...string) (func(), error) {
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			uniq = append(uniq, k)
		}
	}
	sort.Strings(uniq)

	timer := time.NewTimer(m.wait)
	defer timer.Stop()

	held := make([]chan struct{}, 0, len(uniq))
	releaseHeld := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}
	for _, k := range uniq {
		s := m.sem(k)
		select {
		case s <- struct{}{}:
			held = append(held, s)
		case <-timer.C:
			releaseHeld()
			return nil, fmt.Errorf("acquire %q: %w", k, ErrBusy)
		case <-ctx.Done():
			releaseHeld()
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() { once.Do(releaseHeld) }, nil
}

// RoomKey scopes a lock to a room on one day.
func RoomKey(room string, day string) string { return "room/" + room + "/" + day }

// FacultyKey scopes a lock to a faculty member on one day.
func FacultyKey(faculty string, day string) string { return "faculty/" + faculty + "/" + day }

// GroupKey scopes a lock to a student group on one day.
func GroupKey(group string, day string) string { return "group/" + group + "/" + day }

// ScopeKey scopes a lock to a timetable (department, year, semester) scope.
func ScopeKey(scope string) string { return "timetable/" + scope }
