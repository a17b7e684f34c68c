package waypoint

import (
	"sync"

	"github.com/samber/lo"
)

// ChangeFunc receives the full waypoint list after a mutation.
type ChangeFunc func([]Waypoint)

// Store is an ordered, thread-safe set of waypoints keyed by coordinate.
// Every mutation notifies the registered listeners once with the new list.
type Store struct {
	mu        sync.RWMutex
	items     []Waypoint
	listeners []ChangeFunc
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		items: make([]Waypoint, 0),
	}
}

// OnChange registers a listener. Listeners run outside the store lock on the
// goroutine that performed the mutation.
func (s *Store) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Add appends w. It returns false when a waypoint already sits at the same
// coordinate.
func (s *Store) Add(w Waypoint) bool {
	s.mu.Lock()
	if s.indexLocked(w.x, w.y, w.z) >= 0 {
		s.mu.Unlock()
		return false
	}
	s.items = append(s.items, w)
	snap, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, snap)
	return true
}

// Remove deletes the waypoint at the coordinate.
func (s *Store) Remove(x, y, z int32) bool {
	s.mu.Lock()
	i := s.indexLocked(x, y, z)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	snap, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, snap)
	return true
}

// Toggle flips the waypoint at the coordinate and returns its new state.
func (s *Store) Toggle(x, y, z int32) (enabled bool, ok bool) {
	s.mu.Lock()
	i := s.indexLocked(x, y, z)
	if i < 0 {
		s.mu.Unlock()
		return false, false
	}
	s.items[i].Toggle()
	enabled = s.items[i].enabled
	snap, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, snap)
	return enabled, true
}

// Move relocates the waypoint found at from to the coordinate of to. It fails
// when nothing sits at from or when to is already taken by another waypoint.
func (s *Store) Move(from, to [3]int32) bool {
	s.mu.Lock()
	i := s.indexLocked(from[0], from[1], from[2])
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	if j := s.indexLocked(to[0], to[1], to[2]); j >= 0 && j != i {
		s.mu.Unlock()
		return false
	}
	s.items[i].Set(to[0], to[1], to[2])
	snap, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, snap)
	return true
}

// Get returns the waypoint at the coordinate.
func (s *Store) Get(x, y, z int32) (Waypoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(x, y, z); i >= 0 {
		return s.items[i], true
	}
	return Waypoint{}, false
}

// All returns a copy of every waypoint in insertion order.
func (s *Store) All() []Waypoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.items)
}

// Enabled returns a copy of the enabled waypoints in insertion order.
func (s *Store) Enabled() []Waypoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Filter(s.items, func(w Waypoint, _ int) bool { return w.enabled })
}

// Len returns the number of waypoints.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Replace swaps the whole list, dropping later duplicates. It is the load
// path and does not notify listeners.
func (s *Store) Replace(items []Waypoint) {
	next := lo.UniqBy(items, func(w Waypoint) [3]int32 { return [3]int32{w.x, w.y, w.z} })

	s.mu.Lock()
	s.items = next
	s.mu.Unlock()
}

func (s *Store) indexLocked(x, y, z int32) int {
	for i, w := range s.items {
		if w.EqualsXYZ(x, y, z) {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() ([]Waypoint, []ChangeFunc) {
	return clone(s.items), append([]ChangeFunc(nil), s.listeners...)
}

func clone(items []Waypoint) []Waypoint {
	out := make([]Waypoint, len(items))
	copy(out, items)
	return out
}

func notify(listeners []ChangeFunc, items []Waypoint) {
	for _, fn := range listeners {
		fn(items)
	}
}
