// Package storage defines where radar settings and waypoints are persisted.
package storage

import (
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/radar"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/waypoint"
)

// Backend is the interface all storage implementations must satisfy.
// Keys identify a session (world or server) so each keeps its own radar
// layout and waypoint list.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Radar settings. found is false when nothing was saved under key.
	LoadSettings(key string) (s radar.Settings, found bool, err error)
	SaveSettings(key string, s radar.Settings) error

	// Waypoints, in list order. A missing key loads an empty list.
	LoadWaypoints(key string) ([]waypoint.Waypoint, error)
	SaveWaypoints(key string, items []waypoint.Waypoint) error
}

// Namer is an optional interface for backends that report a display name.
type Namer interface {
	Name() string
}

// Name returns the backend's display name, or "unknown".
func Name(b Backend) string {
	if n, ok := b.(Namer); ok {
		return n.Name()
	}
	return "unknown"
}
