// Package memory implements the storage.Backend interface in process
// memory. Nothing survives a restart; it backs tests and the simulator.
package memory

import (
	"sync"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/radar"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/waypoint"
)

// Backend keeps everything in maps.
type Backend struct {
	mu        sync.RWMutex
	settings  map[string]radar.Settings
	waypoints map[string][]waypoint.Waypoint
	saves     int
}

// New creates a new memory storage backend.
func New() *Backend {
	return &Backend{
		settings:  make(map[string]radar.Settings),
		waypoints: make(map[string][]waypoint.Waypoint),
	}
}

func (b *Backend) Name() string { return "memory" }

func (b *Backend) Init() error  { return nil }
func (b *Backend) Close() error { return nil }

func (b *Backend) LoadSettings(key string) (radar.Settings, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.settings[key]
	if !ok {
		return radar.Settings{}, false, nil
	}
	return s.Clone(), true, nil
}

func (b *Backend) SaveSettings(key string, s radar.Settings) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings[key] = s.Clone()
	b.saves++
	return nil
}

func (b *Backend) LoadWaypoints(key string) ([]waypoint.Waypoint, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]waypoint.Waypoint{}, b.waypoints[key]...), nil
}

func (b *Backend) SaveWaypoints(key string, items []waypoint.Waypoint) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.waypoints[key] = append([]waypoint.Waypoint(nil), items...)
	b.saves++
	return nil
}

// Saves returns how many writes the backend accepted.
func (b *Backend) Saves() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.saves
}
