package render

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/cache"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/radar"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/surface/recorder"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/waypoint"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

type statsRecorder struct {
	mu    sync.Mutex
	stats []Stats
}

func (r *statsRecorder) RecordFrame(_ context.Context, s Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = append(r.stats, s)
}

func newWorld(yaw float32, entities ...core.Entity) *cache.World {
	w := cache.NewWorld()
	w.Update(core.WorldSnapshot{
		Player: core.LocalPlayer{
			Position: core.Position3D{X: 0, Y: 64, Z: 0},
			Rotation: core.Rotation{Yaw: yaw},
		},
		Entities: entities,
	})
	return w
}

func mob(id int64, cat core.Category, x, z float64) core.Entity {
	return core.Entity{ID: id, Category: cat, Position: core.Position3D{X: x, Y: 64, Z: z}}
}

func newTestEngine(t *testing.T, cfg *radar.Config, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, opts...)
	require.NoError(t, err)
	return e
}

func TestRender_ClipBoundaryExcluded(t *testing.T) {
	cfg := radar.New()
	e := newTestEngine(t, cfg)
	rec := recorder.New()

	// size 65, scale 4: the panel edge is 32.5 px, i.e. 130 blocks ahead.
	world := newWorld(0,
		mob(1, core.CategoryHostileMob, 0, 130),
		mob(2, core.CategoryHostileMob, 0, 126),
	)

	frame := e.Render(context.Background(), world, rec)

	require.Len(t, frame.Points, 1)
	assert.Equal(t, core.Pt(32.5, 13), frame.Points[0].Position)
	assert.Equal(t, 1, frame.Stats.Clipped)
	assert.Equal(t, 1, frame.Stats.Emitted)

	drawn := rec.Last()
	require.Len(t, drawn.Points, 1)
	assert.Equal(t, core.Pt(32.5, 13), drawn.Points[0].Position)
}

func TestRender_HiddenHostileEmitsNothing(t *testing.T) {
	cfg := radar.New()
	cfg.SetVisible(core.CategoryHostileMob, false)
	e := newTestEngine(t, cfg)

	entities := []core.Entity{mob(100, core.CategoryPeacefulMob, 4, 4)}
	for i := int64(0); i < 25; i++ {
		entities = append(entities, mob(i, core.CategoryHostileMob, float64(i), 10))
	}

	frame := e.Render(context.Background(), newWorld(0, entities...), recorder.New())

	for _, p := range frame.Points {
		assert.NotEqual(t, core.CategoryHostileMob, p.Category)
	}
	require.Len(t, frame.Points, 1)
	assert.Equal(t, core.CategoryPeacefulMob, frame.Points[0].Category)
	assert.Equal(t, 25, frame.Stats.Hidden)
}

func TestRender_ZeroCandidates(t *testing.T) {
	e := newTestEngine(t, radar.New())
	rec := recorder.New()

	frame := e.Render(context.Background(), newWorld(0), rec)

	assert.Empty(t, frame.Points)
	assert.Equal(t, 1, rec.Frames())
	require.Len(t, rec.Last().Panels, 1)
	assert.Equal(t, DefaultBackdrop, rec.Last().Panels[0].Backdrop)
}

func TestRender_NoPlayerDrawsPanelOnly(t *testing.T) {
	e := newTestEngine(t, radar.New())
	rec := recorder.New()

	frame := e.Render(context.Background(), cache.NewWorld(), rec)

	assert.NotNil(t, frame.Points)
	assert.Empty(t, frame.Points)
	assert.Len(t, rec.Last().Panels, 1)
	assert.Equal(t, core.Pt(0, 12), frame.Bounds.TopLeft())
}

func TestRender_CategoryColorsAndPointSize(t *testing.T) {
	cfg := radar.New()
	cfg.CyclePointSize()
	cfg.SetColor(core.CategoryItem, core.White)
	e := newTestEngine(t, cfg)

	frame := e.Render(context.Background(), newWorld(0,
		mob(1, core.CategoryPlayer, 1, 1),
		mob(2, core.CategoryHostileMob, 2, 2),
		mob(3, core.CategoryPeacefulMob, 3, 3),
		mob(4, core.CategoryItem, 4, 4),
	), recorder.New())

	require.Len(t, frame.Points, 4)
	want := map[core.Category]core.Color{
		core.CategoryPlayer:      core.Cyan,
		core.CategoryHostileMob:  core.Red,
		core.CategoryPeacefulMob: core.Green,
		core.CategoryItem:        core.White,
	}
	for _, p := range frame.Points {
		assert.Equal(t, want[p.Category], p.Color, "%s", p.Category)
		assert.Equal(t, 5, p.Size)
	}
}

func TestProject_FacingPointsUp(t *testing.T) {
	tests := []struct {
		name  string
		yaw   float32
		x, z  float64
		wantX float64
		wantY float64
	}{
		{"yaw 0 ahead", 0, 0, 40, 32.5, 34.5},
		{"yaw 0 right", 0, -20, 0, 37.5, 44.5},
		{"yaw 0 behind", 0, 0, -40, 32.5, 54.5},
		{"yaw 90 ahead", 90, -40, 0, 32.5, 34.5},
		{"yaw 90 right", 90, 0, -20, 37.5, 44.5},
		{"yaw 180 ahead", 180, 0, -40, 32.5, 34.5},
		{"yaw -90 ahead", -90, 40, 0, 32.5, 34.5},
	}

	e := newTestEngine(t, radar.New())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := e.Project(core.WorldSnapshot{
				Player:   core.LocalPlayer{Rotation: core.Rotation{Yaw: tt.yaw}},
				Entities: []core.Entity{mob(1, core.CategoryPlayer, tt.x, tt.z)},
			})
			require.Len(t, frame.Points, 1)
			assert.InDelta(t, tt.wantX, frame.Points[0].Position.X, 1e-9)
			assert.InDelta(t, tt.wantY, frame.Points[0].Position.Y, 1e-9)
		})
	}
}

func TestProject_ScaleControlsDistancePerPixel(t *testing.T) {
	s := radar.DefaultSettings()
	s.Scale = 8
	cfg := radar.New(radar.WithSettings(s))
	e := newTestEngine(t, cfg)

	frame := e.Project(core.WorldSnapshot{
		Entities: []core.Entity{mob(1, core.CategoryItem, 0, 40)},
	})

	require.Len(t, frame.Points, 1)
	// size 129 centered at (64.5, 76.5); 40 blocks at scale 8 is 5 px.
	assert.InDelta(t, 71.5, frame.Points[0].Position.Y, 1e-9)
	assert.InDelta(t, 64.5, frame.Points[0].Position.X, 1e-9)
}

func TestProject_PlayerOffset(t *testing.T) {
	e := newTestEngine(t, radar.New())

	frame := e.Project(core.WorldSnapshot{
		Player:   core.LocalPlayer{Position: core.Position3D{X: 1000, Y: 70, Z: -1000}},
		Entities: []core.Entity{mob(1, core.CategoryItem, 1000, -960)},
	})

	require.Len(t, frame.Points, 1)
	assert.InDelta(t, 34.5, frame.Points[0].Position.Y, 1e-9)
}

func TestRender_WaypointColor(t *testing.T) {
	store := waypoint.NewStore()
	w := waypoint.Named(0, 64, 20, "camp", core.Orange)
	w.SetEnabled(true)
	store.Add(w)
	store.Add(waypoint.New(0, 64, 10))

	cfg := radar.New()
	e := newTestEngine(t, cfg, WithWaypoints(store))
	world := newWorld(0)

	frame := e.Render(context.Background(), world, recorder.New())
	require.Len(t, frame.Points, 1, "disabled waypoints are not drawn")
	assert.Equal(t, core.CategoryWaypoint, frame.Points[0].Category)
	assert.Equal(t, core.Magenta, frame.Points[0].Color)
	assert.InDelta(t, 32.5-0.125, frame.Points[0].Position.X, 1e-9)
	assert.InDelta(t, 44.5-5.125, frame.Points[0].Position.Y, 1e-9)

	cfg.SetColor(core.CategoryWaypoint, core.Yellow)
	frame = e.Render(context.Background(), world, recorder.New())
	require.Len(t, frame.Points, 1)
	assert.Equal(t, core.Yellow, frame.Points[0].Color)

	cfg.SetUseWaypointColor(false)
	frame = e.Render(context.Background(), world, recorder.New())
	require.Len(t, frame.Points, 1)
	assert.Equal(t, core.Orange, frame.Points[0].Color)

	cfg.SetVisible(core.CategoryWaypoint, false)
	frame = e.Render(context.Background(), world, recorder.New())
	assert.Empty(t, frame.Points)
}

func TestRender_StatsSink(t *testing.T) {
	sink := &statsRecorder{}
	e := newTestEngine(t, radar.New(), WithStatsSink(sink))

	e.Render(context.Background(), newWorld(0,
		mob(1, core.CategoryHostileMob, 1, 1),
		mob(2, core.CategoryHostileMob, 2, 2),
		mob(3, core.CategoryItem, 3, 3),
	), recorder.New())

	require.Len(t, sink.stats, 1)
	s := sink.stats[0]
	assert.Equal(t, 3, s.Candidates)
	assert.Equal(t, 3, s.Emitted)
	assert.Equal(t, 2, s.PerCategory[core.CategoryHostileMob])
	assert.Equal(t, 1, s.PerCategory[core.CategoryItem])
}

func TestQueryRadius(t *testing.T) {
	assert.Equal(t, 130.0, QueryRadius(radar.DefaultSettings()))
}
