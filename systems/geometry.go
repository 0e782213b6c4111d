// Package systems provides the per-concern simulation logic used by the game loop.
package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/antfarm/components"
)

// Metric converts size factors into world-unit radii for a fixed tile scale.
type Metric struct {
	TileSide float32
}

// Radius returns the bounding radius for a size factor.
// The half tile extent is scaled by sqrt(2) so the circle covers the diagonal of the box.
func (m Metric) Radius(s components.Size) float32 {
	return s.Factor * m.TileSide / 2 * math.Sqrt2
}

// DistanceBetween returns center distance minus both radii.
// Negative means the two circles overlap.
func (m Metric) DistanceBetween(pa components.Position, sa components.Size, pb components.Position, sb components.Size) float32 {
	d := r2.Norm(r2.Sub(vec(pa), vec(pb)))
	return float32(d) - m.Radius(sa) - m.Radius(sb)
}

// Collides reports whether two circles overlap.
// Defined through DistanceBetween so the two never disagree on a boundary.
func (m Metric) Collides(pa components.Position, sa components.Size, pb components.Position, sb components.Size) bool {
	return m.DistanceBetween(pa, sa, pb, sb) < 0
}

// Body is a positioned extent, used for obstacle snapshots.
type Body struct {
	Pos  components.Position
	Size components.Size
}

// Lerp moves from toward to by at most step world units.
// Reaching or overshooting the target returns the target itself.
func Lerp(from, to components.Position, step float32) components.Position {
	delta := r2.Sub(vec(to), vec(from))
	dist := r2.Norm(delta)
	if dist <= float64(step) {
		return to
	}
	p := r2.Add(vec(from), r2.Scale(float64(step)/dist, delta))
	return components.Position{X: float32(p.X), Y: float32(p.Y)}
}

func vec(p components.Position) r2.Vec {
	return r2.Vec{X: float64(p.X), Y: float64(p.Y)}
}

// Bounds is the open arena rectangle (0, Width) x (0, Height).
type Bounds struct {
	Width, Height float32
}

// Contains reports whether p lies strictly inside the arena.
func (b Bounds) Contains(p components.Position) bool {
	return p.X > 0 && p.X < b.Width && p.Y > 0 && p.Y < b.Height
}
