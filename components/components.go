// Package components defines ECS components for the simulation.
package components

import "github.com/mlange-42/ark/ecs"

// Position represents an entity's arena position in world units.
type Position struct {
	X, Y float32
}

// Size is a proportional extent measured in arena tiles.
// Collision radius is derived from it, see systems.Metric.
type Size struct {
	Factor float32
}

// Health is the ant's remaining health fraction.
// It starts at 1 and only decays; death is signalled once it drops below 0.
type Health struct {
	Pct float32
}

// Hunger is the ant's satiation fraction, kept in [0, 1].
// 1 is full, 0 is starving.
type Hunger struct {
	Pct float32
}

// VisibleRange is the size of the circle an ant can see, independent of its body.
type VisibleRange struct {
	Size Size
}

// Ant holds per-ant movement parameters.
type Ant struct {
	ID    uint32
	Speed float32 // World units per second
}

// Queen tag component for the slow, large colony founder.
type Queen struct{}

// Food is a consumable resource. It is destroyed once Quantity reaches zero or below.
type Food struct {
	Quantity float32
}

// Collides tag component marks static obstacles ants must not overlap.
type Collides struct{}

// Wall tag component for border tiles.
type Wall struct{}

// Fog tag component for unrevealed arena tiles.
type Fog struct{}

// Seeking marks an ant travelling to a known food.
// The food is referenced by entity and re-validated every tick.
type Seeking struct {
	Food ecs.Entity
}

// Eating marks an ant consuming a food.
type Eating struct {
	Food ecs.Entity
}
