package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/antfarm/components"
	"github.com/pthm-cable/antfarm/config"
	"github.com/pthm-cable/antfarm/systems"
)

// FogOfWar covers every arena tile until an ant's visibility circle touches it.
// The colony never reads it back; it only tracks exploration.
type FogOfWar struct {
	world  *ecs.World
	metric systems.Metric
	tiles  *systems.SpatialGrid
	total  int

	candidates []systems.GridEntry
	cleared    []systems.GridEntry
}

func newFogOfWar(world *ecs.World, cfg *config.Config, metric systems.Metric) *FogOfWar {
	tile := cfg.Derived.TileSide32
	f := &FogOfWar{
		world:  world,
		metric: metric,
		tiles:  systems.NewSpatialGrid(cfg.Derived.ArenaWidth, cfg.Derived.ArenaHeight, obstacleCellTiles*tile, metric),
	}

	mapper := ecs.NewMap3[components.Position, components.Size, components.Fog](world)
	for row := 0; row < cfg.Arena.HeightTiles; row++ {
		for col := 0; col < cfg.Arena.WidthTiles; col++ {
			pos := components.Position{X: float32(col) * tile, Y: float32(row) * tile}
			size := components.Size{Factor: float32(cfg.Arena.FogSize)}
			e := mapper.NewEntity(&pos, &size, &components.Fog{})
			f.tiles.Insert(e, pos, size)
			f.total++
		}
	}
	return f
}

// Reveal removes every fog tile overlapping a viewer's circle. Returns the number removed.
func (f *FogOfWar) Reveal(viewers []systems.Body) int {
	f.cleared = f.cleared[:0]
	for _, v := range viewers {
		f.candidates = f.tiles.QueryInto(f.candidates[:0], v.Pos, v.Size, 0)
		for _, t := range f.candidates {
			if !f.metric.Collides(v.Pos, v.Size, t.Pos, t.Size) {
				continue
			}
			if f.tiles.Remove(t.E, t.Pos) {
				f.cleared = append(f.cleared, t)
			}
		}
	}
	for _, t := range f.cleared {
		f.world.RemoveEntity(t.E)
	}
	return len(f.cleared)
}

// Remaining returns the number of fog tiles still covering the arena.
func (f *FogOfWar) Remaining() int {
	if f == nil {
		return 0
	}
	return f.tiles.Len()
}

// RevealedFraction returns the share of tiles cleared so far, in [0, 1].
// A nil fog counts as fully revealed.
func (f *FogOfWar) RevealedFraction() float64 {
	if f == nil || f.total == 0 {
		return 1
	}
	return 1 - float64(f.tiles.Len())/float64(f.total)
}
