package render

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/radar"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/waypoint"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

// DefaultBackdrop is the translucent panel background.
var DefaultBackdrop = core.NewColor(0, 0, 0, 96)

// Option configures an Engine.
type Option func(*Engine)

// WithWaypoints sets where enabled waypoints come from.
func WithWaypoints(src WaypointSource) Option {
	return func(e *Engine) {
		e.waypoints = src
	}
}

// WithBackdrop overrides the panel background color.
func WithBackdrop(c core.Color) Option {
	return func(e *Engine) {
		e.backdrop = c
	}
}

// WithStatsSink forwards per-frame statistics to sink after each Render.
func WithStatsSink(sink StatsSink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// Engine turns a world snapshot into radar draw instructions.
type Engine struct {
	cfg       *radar.Config
	waypoints WaypointSource
	backdrop  core.Color
	sink      StatsSink

	frames   metric.Int64Counter
	emitted  metric.Int64Counter
	clipped  metric.Int64Counter
	duration metric.Float64Histogram
}

// candidate is something that may end up on the radar.
type candidate struct {
	category core.Category
	x, z     float64
	color    core.Color
}

// NewEngine creates an engine reading its settings from cfg.
// Uses the global OTel meter for metrics (no-op if not configured).
func NewEngine(cfg *radar.Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:      cfg,
		backdrop: DefaultBackdrop,
	}
	for _, opt := range opts {
		opt(e)
	}

	m := meter()

	var err error

	e.frames, err = m.Int64Counter(
		"radar.frames",
		metric.WithDescription("Total radar frames rendered"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frames counter: %w", err)
	}

	e.emitted, err = m.Int64Counter(
		"radar.points.emitted",
		metric.WithDescription("Total radar points drawn"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating emitted counter: %w", err)
	}

	e.clipped, err = m.Int64Counter(
		"radar.points.clipped",
		metric.WithDescription("Total radar points discarded outside the panel"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating clipped counter: %w", err)
	}

	e.duration, err = m.Float64Histogram(
		"radar.frame.duration",
		metric.WithDescription("Time spent rendering one radar frame"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return e, nil
}

// Render draws one radar frame onto surface. It never blocks on I/O; a
// world with no player yet draws only the panel.
func (e *Engine) Render(ctx context.Context, world WorldQuery, surface Surface) Frame {
	start := time.Now()
	s := e.cfg.Settings()
	bounds := panelBounds(s)

	fs, framed := surface.(FrameSurface)
	if framed {
		fs.BeginFrame()
	}
	surface.DrawPanel(bounds, e.backdrop)

	frame := Frame{Bounds: bounds, Points: []core.DrawInstruction{}}
	if player, ok := world.Player(); ok {
		entities := world.EntitiesWithin(QueryRadius(s))
		frame = e.project(s, player, entities, e.enabledWaypoints(s))
		for _, p := range frame.Points {
			surface.DrawPoint(p.Position, p.Color, p.Size)
		}
	}

	if framed {
		fs.EndFrame()
	}

	frame.Stats.Duration = time.Since(start)
	e.record(ctx, frame.Stats)
	return frame
}

// Project computes the draw instructions for a snapshot without drawing.
// Waypoints are taken from the configured source.
func (e *Engine) Project(snap core.WorldSnapshot) Frame {
	s := e.cfg.Settings()
	return e.project(s, snap.Player, snap.Entities, e.enabledWaypoints(s))
}

func (e *Engine) enabledWaypoints(s radar.Settings) []waypoint.Waypoint {
	if e.waypoints == nil || !s.Visible[core.CategoryWaypoint] {
		return nil
	}
	return e.waypoints.Enabled()
}

func (e *Engine) project(s radar.Settings, player core.LocalPlayer, entities []core.Entity, waypoints []waypoint.Waypoint) Frame {
	bounds := panelBounds(s)
	stats := Stats{PerCategory: make(map[core.Category]int, len(core.Categories))}

	candidates := lo.Map(entities, func(ent core.Entity, _ int) candidate {
		return candidate{
			category: ent.Category,
			x:        ent.Position.X,
			z:        ent.Position.Z,
			color:    s.Colors[ent.Category],
		}
	})
	for _, w := range waypoints {
		color := w.Color()
		if s.UseWaypointColor {
			color = s.Colors[core.CategoryWaypoint]
		}
		c := w.Center()
		candidates = append(candidates, candidate{category: core.CategoryWaypoint, x: c.X, z: c.Z, color: color})
	}
	stats.Candidates = len(candidates)

	visible := lo.Filter(candidates, func(c candidate, _ int) bool {
		return s.Visible[c.category]
	})
	stats.Hidden = len(candidates) - len(visible)

	center := bounds.Center()
	half := float64(s.Size) / 2
	forward, right := basis(player.Rotation)
	origin := mgl64.Vec2{player.Position.X, player.Position.Z}

	points := make([]core.DrawInstruction, 0, len(visible))
	for _, c := range visible {
		local := toPanel(mgl64.Vec2{c.x, c.z}.Sub(origin), forward, right, float64(s.Scale))
		if local.Len() >= half {
			stats.Clipped++
			continue
		}
		points = append(points, core.DrawInstruction{
			Category: c.category,
			Position: center.Add(local),
			Color:    c.color,
			Size:     s.PointSize,
		})
		stats.PerCategory[c.category]++
	}
	stats.Emitted = len(points)

	return Frame{Bounds: bounds, Points: points, Stats: stats}
}

func (e *Engine) record(ctx context.Context, stats Stats) {
	e.frames.Add(ctx, 1)
	for cat, n := range stats.PerCategory {
		e.emitted.Add(ctx, int64(n), metric.WithAttributes(attribute.String("category", cat.String())))
	}
	if stats.Clipped > 0 {
		e.clipped.Add(ctx, int64(stats.Clipped))
	}
	e.duration.Record(ctx, float64(stats.Duration.Microseconds())/1000)

	if e.sink != nil {
		e.sink.RecordFrame(ctx, stats)
	}
}

// QueryRadius is the world distance covered from the panel center to its edge.
func QueryRadius(s radar.Settings) float64 {
	return float64(s.Size) / 2 * float64(s.Scale)
}

func panelBounds(s radar.Settings) core.Box2D {
	size := float64(s.Size)
	return core.NewBox2D(core.Pt(float64(s.X), float64(s.Y)), size, size)
}

// basis returns the player's facing and right-hand directions on the x/z
// plane. Yaw 0 faces +z and yaw increases clockwise seen from above, so
// yaw 90 faces -x.
func basis(r core.Rotation) (forward, right mgl64.Vec2) {
	sin, cos := math.Sincos(r.YawRadians())
	forward = mgl64.Vec2{-sin, cos}
	right = mgl64.Vec2{-cos, -sin}
	return forward, right
}

// toPanel maps a world offset to a panel offset: facing direction points up
// the screen, one pixel covers scale blocks.
func toPanel(d, forward, right mgl64.Vec2, scale float64) core.Point2D {
	return core.Pt(d.Dot(right)/scale, -d.Dot(forward)/scale)
}
