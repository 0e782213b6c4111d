package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/antfarm/components"
	"github.com/pthm-cable/antfarm/config"
	"github.com/pthm-cable/antfarm/systems"
)

// obstacleCellTiles is the obstacle grid cell size in tiles.
const obstacleCellTiles = 2

// Arena holds the fixed bounds and the index of collidable obstacles.
type Arena struct {
	Bounds    systems.Bounds
	obstacles *systems.SpatialGrid
	walls     int
}

// newArena spawns the border ring when enabled and indexes every collidable entity.
func newArena(world *ecs.World, cfg *config.Config, metric systems.Metric) *Arena {
	w, h := cfg.Derived.ArenaWidth, cfg.Derived.ArenaHeight
	a := &Arena{
		Bounds:    systems.Bounds{Width: w, Height: h},
		obstacles: systems.NewSpatialGrid(w, h, obstacleCellTiles*cfg.Derived.TileSide32, metric),
	}
	if cfg.Arena.Walls {
		a.spawnWalls(world, cfg)
	}
	a.indexObstacles(world)
	return a
}

// spawnWalls places one wall tile on every cell of the outermost rows and columns.
func (a *Arena) spawnWalls(world *ecs.World, cfg *config.Config) {
	mapper := ecs.NewMap4[components.Position, components.Size, components.Wall, components.Collides](world)
	tile := cfg.Derived.TileSide32
	cols, rows := cfg.Arena.WidthTiles, cfg.Arena.HeightTiles

	place := func(col, row int) {
		pos := components.Position{X: float32(col) * tile, Y: float32(row) * tile}
		size := components.Size{Factor: float32(cfg.Arena.WallSize)}
		mapper.NewEntity(&pos, &size, &components.Wall{}, &components.Collides{})
		a.walls++
	}

	for col := 0; col < cols; col++ {
		place(col, 0)
		place(col, rows-1)
	}
	for row := 1; row < rows-1; row++ {
		place(0, row)
		place(cols-1, row)
	}
}

// indexObstacles inserts every collidable entity into the obstacle grid.
func (a *Arena) indexObstacles(world *ecs.World) {
	filter := ecs.NewFilter3[components.Position, components.Size, components.Collides](world)
	query := filter.Query()
	for query.Next() {
		pos, size, _ := query.Get()
		a.obstacles.Insert(query.Entity(), *pos, *size)
	}
}

// Obstacles returns the collidables within reach of any of the given bodies.
func (a *Arena) Obstacles(bodies []systems.Body, reach float32) []systems.Body {
	return systems.TrimObstacles(a.obstacles, bodies, reach)
}

// Walls returns the number of border wall tiles.
func (a *Arena) Walls() int {
	return a.walls
}
