// Package waypoint holds the saved 3D markers shown on the radar and the
// ordered store that owns them.
package waypoint

import (
	"encoding/json"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

// DefaultColor is the color a waypoint gets when none is given.
var DefaultColor = core.Magenta

// Waypoint is a fixed block coordinate that can be switched on and off.
// Two waypoints are the same waypoint when their coordinates match; the
// enabled flag, name and color do not take part in identity.
type Waypoint struct {
	x, y, z int32
	enabled bool
	name    string
	color   core.Color
	hash    int32
}

// New creates a disabled waypoint at the given block.
func New(x, y, z int32) Waypoint {
	w := Waypoint{color: DefaultColor}
	w.Set(x, y, z)
	return w
}

// Named creates a disabled waypoint with a label and color.
func Named(x, y, z int32, name string, color core.Color) Waypoint {
	w := New(x, y, z)
	w.name = name
	w.color = color
	return w
}

// X returns the block x coordinate.
func (w Waypoint) X() int32 { return w.x }

// Y returns the block y coordinate.
func (w Waypoint) Y() int32 { return w.y }

// Z returns the block z coordinate.
func (w Waypoint) Z() int32 { return w.z }

// Enabled reports whether the waypoint is drawn.
func (w Waypoint) Enabled() bool { return w.enabled }

// Name returns the label, which may be empty.
func (w Waypoint) Name() string { return w.name }

// Color returns the waypoint's own color.
func (w Waypoint) Color() core.Color { return w.color }

// Hash returns the coordinate hash, (x*31) ^ (y*31) ^ (z*31).
func (w Waypoint) Hash() int32 {
	return w.hash
}

// Set moves the waypoint. The hash follows the new coordinates.
func (w *Waypoint) Set(x, y, z int32) {
	w.x, w.y, w.z = x, y, z
	w.hash = hashOf(x, y, z)
}

// Toggle flips the enabled flag.
func (w *Waypoint) Toggle() {
	w.enabled = !w.enabled
}

// SetEnabled forces the enabled flag.
func (w *Waypoint) SetEnabled(enabled bool) {
	w.enabled = enabled
}

// SetName replaces the label.
func (w *Waypoint) SetName(name string) {
	w.name = name
}

// SetColor replaces the waypoint's own color.
func (w *Waypoint) SetColor(c core.Color) {
	w.color = c
}

// Equals compares coordinates only.
func (w Waypoint) Equals(o Waypoint) bool {
	return w.EqualsXYZ(o.x, o.y, o.z)
}

// EqualsXYZ reports whether w sits at the given block.
func (w Waypoint) EqualsXYZ(x, y, z int32) bool {
	return w.x == x && w.y == y && w.z == z
}

// Center returns the world position of the middle of the waypoint block
// on the horizontal plane.
func (w Waypoint) Center() core.Position3D {
	return core.Position3D{X: float64(w.x) + 0.5, Y: float64(w.y), Z: float64(w.z) + 0.5}
}

func hashOf(x, y, z int32) int32 {
	return (x * 31) ^ (y * 31) ^ (z * 31)
}

// jsonWaypoint is the wire shape of a waypoint.
type jsonWaypoint struct {
	X       int32      `json:"x"`
	Y       int32      `json:"y"`
	Z       int32      `json:"z"`
	Enabled bool       `json:"enabled"`
	Name    string     `json:"name,omitempty"`
	Color   core.Color `json:"color"`
}

// MarshalJSON encodes the waypoint.
func (w Waypoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonWaypoint{
		X: w.x, Y: w.y, Z: w.z,
		Enabled: w.enabled,
		Name:    w.name,
		Color:   w.color,
	})
}

// UnmarshalJSON decodes a waypoint; a missing color falls back to DefaultColor.
func (w *Waypoint) UnmarshalJSON(data []byte) error {
	raw := jsonWaypoint{Color: DefaultColor}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*w = Named(raw.X, raw.Y, raw.Z, raw.Name, raw.Color)
	w.enabled = raw.Enabled
	return nil
}
