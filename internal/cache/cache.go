package cache

import (
	"math"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

// World caches the last world snapshot pushed on the logic tick so the
// frame path can read it without waiting on the host.
type World struct {
	mu    sync.RWMutex
	snap  core.WorldSnapshot
	valid bool
	ticks SafeCounter
}

func NewWorld() *World {
	return &World{}
}

// Update replaces the cached snapshot. A zero UpdatedAt is stamped with now.
func (w *World) Update(snap core.WorldSnapshot) {
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now()
	}
	snap.Entities = append([]core.Entity(nil), snap.Entities...)

	w.mu.Lock()
	w.snap = snap
	w.valid = true
	w.mu.Unlock()

	w.ticks.Inc()
}

// Reset drops the cached snapshot, e.g. when the player leaves a world.
func (w *World) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snap = core.WorldSnapshot{}
	w.valid = false
}

// Player returns the local player of the last snapshot.
func (w *World) Player() (core.LocalPlayer, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snap.Player, w.valid
}

// EntitiesWithin returns the cached entities whose horizontal distance to
// the local player is at most radius.
func (w *World) EntitiesWithin(radius float64) []core.Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.valid {
		return nil
	}
	p := w.snap.Player.Position
	return lo.Filter(w.snap.Entities, func(e core.Entity, _ int) bool {
		return math.Hypot(e.Position.X-p.X, e.Position.Z-p.Z) <= radius
	})
}

// Snapshot returns a copy of the cached snapshot.
func (w *World) Snapshot() (core.WorldSnapshot, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	snap := w.snap
	snap.Entities = append([]core.Entity(nil), w.snap.Entities...)
	return snap, w.valid
}

// Ticks returns how many snapshots have been pushed.
func (w *World) Ticks() int {
	return w.ticks.Value()
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
