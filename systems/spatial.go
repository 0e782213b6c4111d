package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/antfarm/components"
)

// GridEntry is an indexed entity with its position and size captured at insert time.
type GridEntry struct {
	E    ecs.Entity
	Pos  components.Position
	Size components.Size
}

// SpatialGrid buckets mostly static entities (walls, fog tiles) for broad-phase lookups.
// The arena is bounded, so out-of-range positions are clamped to the edge cells.
type SpatialGrid struct {
	cellSize  float32
	cols      int
	rows      int
	maxRadius float32
	metric    Metric
	cells     [][]GridEntry
	count     int
}

// NewSpatialGrid creates a spatial grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float32, metric Metric) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]GridEntry, cols*rows)
	for i := range cells {
		cells[i] = make([]GridEntry, 0, 4)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		metric:   metric,
		cells:    cells,
	}
}

// Clear removes all entries from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.count = 0
	g.maxRadius = 0
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, pos components.Position, size components.Size) {
	idx := g.cellIndex(pos.X, pos.Y)
	g.cells[idx] = append(g.cells[idx], GridEntry{E: e, Pos: pos, Size: size})
	g.count++
	if r := g.metric.Radius(size); r > g.maxRadius {
		g.maxRadius = r
	}
}

// Remove deletes an entity previously inserted at pos.
// Returns false if it was not found in that cell.
func (g *SpatialGrid) Remove(e ecs.Entity, pos components.Position) bool {
	idx := g.cellIndex(pos.X, pos.Y)
	cell := g.cells[idx]
	for i := range cell {
		if cell[i].E == e {
			last := len(cell) - 1
			cell[i] = cell[last]
			g.cells[idx] = cell[:last]
			g.count--
			return true
		}
	}
	return false
}

// Len returns the number of indexed entries.
func (g *SpatialGrid) Len() int {
	return g.count
}

// QueryInto appends every entry whose circle may lie within reach of the circle (pos, size).
// Results are candidates only; callers apply the exact DistanceBetween test.
func (g *SpatialGrid) QueryInto(dst []GridEntry, pos components.Position, size components.Size, reach float32) []GridEntry {
	span := reach + g.metric.Radius(size) + g.maxRadius
	if span < 0 {
		span = 0
	}

	minCol, minRow := g.cellCoords(pos.X-span, pos.Y-span)
	maxCol, maxRow := g.cellCoords(pos.X+span, pos.Y+span)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			dst = append(dst, g.cells[row*g.cols+col]...)
		}
	}
	return dst
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, y float32) int {
	col, row := g.cellCoords(x, y)
	return row*g.cols + col
}

// cellCoords returns the clamped column and row for a world position.
func (g *SpatialGrid) cellCoords(x, y float32) (int, int) {
	col := int(x / g.cellSize)
	row := int(y / g.cellSize)

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return col, row
}

// TrimObstacles returns the obstacles within reach of at least one agent.
// Obstacles farther than reach from every start position cannot block a step this tick.
func TrimObstacles(grid *SpatialGrid, agents []Body, reach float32) []Body {
	var (
		trimmed   []Body
		seen      = make(map[ecs.Entity]struct{})
		candidate []GridEntry
	)

	for _, a := range agents {
		candidate = grid.QueryInto(candidate[:0], a.Pos, a.Size, reach)
		for _, c := range candidate {
			if _, ok := seen[c.E]; ok {
				continue
			}
			if grid.metric.DistanceBetween(a.Pos, a.Size, c.Pos, c.Size) < reach {
				seen[c.E] = struct{}{}
				trimmed = append(trimmed, Body{Pos: c.Pos, Size: c.Size})
			}
		}
	}
	return trimmed
}
