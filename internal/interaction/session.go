package interaction

import (
	"sync"

	"github.com/mapmedia/mapview/internal/queue"
)

// Session is one viewer's interaction state. Actions can be applied one at
// a time with Dispatch, or queued with Enqueue and applied together by
// Flush. Queued runs of actions that supersede each other are collapsed,
// which never changes the state Flush ends in.
type Session struct {
	ctrl    *Controller
	mu      sync.Mutex
	state   State
	pending *queue.Queue[Action]
}

// NewSession starts a session from initial.
func (c *Controller) NewSession(initial State) *Session {
	s := &Session{ctrl: c, state: initial.Normalize()}
	s.pending = queue.New[Action](s.coalesce)
	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies one action immediately.
func (s *Session) Dispatch(a Action) (State, *Navigation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, nav, err := s.ctrl.Apply(s.state, a)
	s.state = next
	return next, nav, err
}

// Enqueue queues actions for the next Flush.
func (s *Session) Enqueue(actions ...Action) {
	s.pending.Push(actions...)
}

// Pending is the number of queued actions after coalescing.
func (s *Session) Pending() int {
	return s.pending.Len()
}

// Flush applies all queued actions in order as one step. Observers only
// ever see the state before or after the whole batch. Failed actions (a
// navigation miss, an invalid range) leave the state as it was and are
// returned alongside the navigations that did happen.
func (s *Session) Flush() (State, []Navigation, []error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending.Empty() {
		return s.state, nil, nil
	}

	var (
		navs []Navigation
		errs []error
	)
	st := s.state
	for _, a := range s.pending.Drain() {
		next, nav, err := s.ctrl.Apply(st, a)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		st = next
		if nav != nil {
			navs = append(navs, *nav)
		}
	}
	s.state = st
	return st, navs, errs
}

// coalesce merges next into last when applying only next gives the same
// state as applying both. Actions that can fail only replace a predecessor
// when they are known to succeed.
func (s *Session) coalesce(last, next Action) (Action, bool) {
	if last.Type != next.Type {
		return last, false
	}
	switch next.Type {
	case ActionSetSearch, ActionSetKinds, ActionClearTimeRange, ActionClearSelection, ActionReset:
		return next, true
	case ActionSetKind:
		if last.Kind == next.Kind {
			return next, true
		}
	case ActionSetTimeRange:
		if next.Range.Valid() {
			return next, true
		}
	case ActionSelectEntry:
		if _, err := s.ctrl.Navigate(State{}, next.EntryID); err == nil {
			return next, true
		}
	}
	return last, false
}
