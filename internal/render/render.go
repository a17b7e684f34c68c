// Package render projects the world around the local player onto the radar
// panel and emits the resulting points to a draw surface.
package render

import (
	"context"
	"time"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/waypoint"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

// WorldQuery is the live world as seen from the local player.
type WorldQuery interface {
	Player() (core.LocalPlayer, bool)
	EntitiesWithin(radius float64) []core.Entity
}

// WaypointSource supplies the waypoints that should appear on the radar.
type WaypointSource interface {
	Enabled() []waypoint.Waypoint
}

// Surface accepts radar draw primitives.
type Surface interface {
	DrawPanel(bounds core.Box2D, backdrop core.Color)
	DrawPoint(pos core.Point2D, color core.Color, size int)
}

// FrameSurface is a Surface that wants to know where a frame starts and ends.
type FrameSurface interface {
	Surface
	BeginFrame()
	EndFrame()
}

// StatsSink receives per-frame statistics.
type StatsSink interface {
	RecordFrame(ctx context.Context, stats Stats)
}

// Stats summarizes one rendered frame.
type Stats struct {
	Candidates  int
	Hidden      int
	Clipped     int
	Emitted     int
	PerCategory map[core.Category]int
	Duration    time.Duration
}

// Frame is the outcome of one projection.
type Frame struct {
	Bounds core.Box2D             `json:"bounds"`
	Points []core.DrawInstruction `json:"points"`
	Stats  Stats                  `json:"-"`
}
