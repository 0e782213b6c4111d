package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/antfarm/components"
)

// FoodSighting is a known food's identity and position, snapshotted for ranking.
type FoodSighting struct {
	E   ecs.Entity
	Pos components.Position
}

// NeedsFood reports whether an idle ant is hungry enough to seek food.
func NeedsFood(h components.Hunger, threshold float32) bool {
	return h.Pct < threshold
}

// NearestFood returns the index of the sighting closest to the ant by DistanceBetween.
// Ties keep the first one seen. Returns -1 when there are no sightings.
func NearestFood(m Metric, pos components.Position, size components.Size, foods []FoodSighting, target components.Size) int {
	best := -1
	var bestDist float32
	for i, f := range foods {
		d := m.DistanceBetween(pos, size, f.Pos, target)
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// Arrived reports whether a seeking ant is close enough to start eating.
// The comparison is strict: an ant exactly at the threshold keeps seeking.
func Arrived(dist, threshold float32) bool {
	return dist < threshold
}

// Consume transfers one tick of eating from food to hunger.
// Hunger gain and food loss are equal; nothing happens once the ant is full or the food is gone.
// Several eaters may drive Quantity below zero within one tick. Returns the amount eaten.
func Consume(h *components.Hunger, f *components.Food, dt, rate float32) float32 {
	if h.Pct >= 1 || f.Quantity <= 0 {
		return 0
	}
	bite := dt * rate
	h.Pct += bite
	f.Quantity -= bite
	if h.Pct > 1 {
		h.Pct = 1
	}
	return bite
}

// EatOutcome is the state of an eating ant after consumption.
type EatOutcome uint8

const (
	EatContinue EatOutcome = iota
	EatDepleted            // Food quantity at or below zero; destroy it
	EatFull                // Ant is satiated
)

// CheckEating decides whether an eating ant stops this tick.
// Depletion wins over fullness so the food is always destroyed.
func CheckEating(h components.Hunger, f components.Food) EatOutcome {
	switch {
	case f.Quantity <= 0:
		return EatDepleted
	case h.Pct >= 1:
		return EatFull
	default:
		return EatContinue
	}
}
