// Package sim drives the radar without a game host: a generator invents a
// moving player and the creatures around it, and a driver feeds both to the
// extension through the same call surface the host uses.
package sim

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/samber/lo"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

// Defaults for a generated world.
const (
	DefaultEntities = 40
	DefaultRadius   = 160.0
	// walkRadius is the circle the player walks around the origin.
	walkRadius = 48.0
	// ticksPerLap is how many ticks one lap takes.
	ticksPerLap = 1200
)

var movingCategories = []core.Category{
	core.CategoryPlayer,
	core.CategoryHostileMob,
	core.CategoryHostileMob,
	core.CategoryPeacefulMob,
	core.CategoryPeacefulMob,
	core.CategoryItem,
}

// mob is one generated entity and its wander direction.
type mob struct {
	entity  core.Entity
	heading float64
	speed   float64
}

// Generator produces successive world snapshots. It is not safe for
// concurrent use.
type Generator struct {
	rng    *rand.Rand
	radius float64
	mobs   []mob
	tick   uint64
}

// NewGenerator seeds count entities within radius of the origin. The same
// seed yields the same world.
func NewGenerator(seed uint64, count int, radius float64) *Generator {
	if count < 0 {
		count = 0
	}
	if radius <= 0 {
		radius = DefaultRadius
	}
	g := &Generator{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		radius: radius,
	}
	g.mobs = lo.Times(count, func(i int) mob {
		angle := g.rng.Float64() * 2 * math.Pi
		dist := g.rng.Float64() * radius
		return mob{
			entity: core.Entity{
				ID:       int64(i + 1),
				Category: movingCategories[g.rng.IntN(len(movingCategories))],
				Position: core.Position3D{
					X: math.Cos(angle) * dist,
					Y: 64,
					Z: math.Sin(angle) * dist,
				},
			},
			heading: g.rng.Float64() * 2 * math.Pi,
			speed:   0.05 + g.rng.Float64()*0.25,
		}
	})
	return g
}

// Next advances the world one tick and returns the snapshot.
func (g *Generator) Next() core.WorldSnapshot {
	g.tick++

	angle := 2 * math.Pi * float64(g.tick%ticksPerLap) / ticksPerLap
	player := core.LocalPlayer{
		Position: core.Position3D{
			X: math.Cos(angle) * walkRadius,
			Y: 64,
			Z: math.Sin(angle) * walkRadius,
		},
		// facing along the walk
		Rotation:  core.Rotation{Yaw: float32(angle * 180 / math.Pi)},
		EyeHeight: 1.62,
	}

	for i := range g.mobs {
		m := &g.mobs[i]
		if m.entity.Category == core.CategoryItem {
			continue
		}
		m.heading += (g.rng.Float64() - 0.5) * 0.3
		m.entity.Position.X += math.Cos(m.heading) * m.speed
		m.entity.Position.Z += math.Sin(m.heading) * m.speed
		// turn back toward the origin once outside the area
		if math.Hypot(m.entity.Position.X, m.entity.Position.Z) > g.radius {
			m.heading = math.Atan2(-m.entity.Position.Z, -m.entity.Position.X)
		}
	}

	return core.WorldSnapshot{
		Tick:      g.tick,
		Player:    player,
		Entities:  lo.Map(g.mobs, func(m mob, _ int) core.Entity { return m.entity }),
		UpdatedAt: time.Now(),
	}
}
