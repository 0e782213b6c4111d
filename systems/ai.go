package systems

import (
	"math/rand/v2"

	"github.com/pthm-cable/antfarm/components"
)

// Step directions in candidate order: N, E, S, W, NE, SE, SW, NW.
const numDirections = 8

// biasWeights holds the relative pull of each step direction per walking bias.
// Rows follow components.Bias, columns follow the candidate order above.
var biasWeights = [components.NumBiases][numDirections]float64{
	components.BiasUniform:   {1, 1, 1, 1, 1, 1, 1, 1},
	components.BiasNorth:     {16, 4, 1, 4, 8, 1, 1, 8},
	components.BiasEast:      {4, 16, 4, 1, 8, 8, 1, 1},
	components.BiasSouth:     {1, 4, 16, 4, 1, 8, 8, 1},
	components.BiasWest:      {4, 1, 4, 16, 1, 1, 8, 8},
	components.BiasNorthEast: {4, 4, 1, 1, 16, 1, 1, 1},
	components.BiasSouthEast: {1, 4, 4, 1, 1, 16, 1, 1},
	components.BiasSouthWest: {1, 1, 4, 4, 1, 1, 16, 1},
	components.BiasNorthWest: {4, 1, 1, 4, 1, 1, 1, 16},
}

// MoveWeights returns the step weights for a walking bias.
// Biases only come from RollGoal, so an out-of-range value is a bug and panics.
func MoveWeights(b components.Bias) [numDirections]float64 {
	return biasWeights[b]
}

// RollGoal returns a fresh walking goal with a uniformly chosen bias.
func RollGoal(rng *rand.Rand, duration float32) components.AI {
	return components.AI{
		Goal:      components.GoalWalk,
		Bias:      components.Bias(rng.IntN(components.NumBiases)),
		Countdown: duration,
	}
}

// SeekGoal returns a destination goal toward target.
// The timeout is effectively infinite; arrival or target loss ends it.
func SeekGoal(target components.Position, timeout float32) components.AI {
	return components.AI{
		Goal:      components.GoalDestination,
		Target:    target,
		Countdown: timeout,
	}
}

// WaitGoal returns a goal that holds position until cleared.
func WaitGoal() components.AI {
	return components.AI{Goal: components.GoalWait}
}

// TickGoal advances a walking goal's countdown and re-rolls it on expiry.
// Wait, Destination and uninitialized goals are left untouched. Reports whether a re-roll happened.
func TickGoal(ai *components.AI, dt, duration float32, rng *rand.Rand) bool {
	if ai.Goal != components.GoalWalk {
		return false
	}
	ai.Countdown -= dt
	if ai.Countdown > 0 {
		return false
	}
	*ai = RollGoal(rng, duration)
	return true
}
