package systems

import "github.com/pthm-cable/antfarm/components"

// DecayHunger lowers hunger for an ant that is not eating, clamped at zero.
func DecayHunger(h *components.Hunger, dt, rate float32) {
	h.Pct -= dt * rate
	if h.Pct < 0 {
		h.Pct = 0
	}
}

// DecayHealth lowers health while the ant is starving.
// Health is not clamped so it can cross zero. Reports whether the ant should die.
func DecayHealth(health *components.Health, h components.Hunger, dt, rate, starvation float32) bool {
	if h.Pct < starvation {
		health.Pct -= dt * rate
	}
	return health.Pct < 0
}
