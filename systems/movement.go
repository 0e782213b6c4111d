package systems

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/antfarm/components"
)

// StepOutcome describes what the resolver did with an ant this tick.
type StepOutcome uint8

const (
	StepHeld   StepOutcome = iota // Goal does not move (None, Wait)
	StepDirect                    // Straight-line step toward the destination
	StepWalked                    // Weighted random-walk step
	StepStuck                     // No legal candidate; position unchanged
)

// String returns a short name for logs.
func (o StepOutcome) String() string {
	switch o {
	case StepHeld:
		return "held"
	case StepDirect:
		return "direct"
	case StepWalked:
		return "walked"
	default:
		return "stuck"
	}
}

// directions are unit offsets in candidate order: N, E, S, W, NE, SE, SW, NW.
var directions = [numDirections][2]float32{
	{0, 1},
	{1, 0},
	{0, -1},
	{-1, 0},
	{math.Sqrt2 / 2, math.Sqrt2 / 2},
	{math.Sqrt2 / 2, -math.Sqrt2 / 2},
	{-math.Sqrt2 / 2, -math.Sqrt2 / 2},
	{-math.Sqrt2 / 2, math.Sqrt2 / 2},
}

// Resolver moves ants against a trimmed obstacle snapshot.
// Obstacles must be captured before any position of the tick is mutated.
type Resolver struct {
	Metric    Metric
	Bounds    Bounds
	Obstacles []Body
	Src       rand.Source
}

// Step returns the ant's next position for a tick with travel budget d.
func (r *Resolver) Step(pos components.Position, size components.Size, ai components.AI, d float32) (components.Position, StepOutcome) {
	bias := components.BiasUniform

	switch ai.Goal {
	case components.GoalNone, components.GoalWait:
		return pos, StepHeld
	case components.GoalDestination:
		next := Lerp(pos, ai.Target, d)
		if r.Bounds.Contains(next) && !r.blocked(next, size) {
			return next, StepDirect
		}
		// Blocked: random-walk this tick, keep the destination for the next one
	case components.GoalWalk:
		bias = ai.Bias
	}

	return r.walk(pos, size, bias, d)
}

// walk picks one of the legal compass steps using the bias weights.
func (r *Resolver) walk(pos components.Position, size components.Size, bias components.Bias, d float32) (components.Position, StepOutcome) {
	all := MoveWeights(bias)

	var (
		candidates [numDirections]components.Position
		weights    = make([]float64, 0, numDirections)
	)
	for i, dir := range directions {
		p := components.Position{X: pos.X + dir[0]*d, Y: pos.Y + dir[1]*d}
		if !r.Bounds.Contains(p) || r.blocked(p, size) {
			continue
		}
		candidates[len(weights)] = p
		weights = append(weights, all[i])
	}

	idx := ChooseStep(weights, r.Src)
	if idx < 0 {
		return pos, StepStuck
	}
	return candidates[idx], StepWalked
}

// blocked reports whether an ant of the given size at p would overlap an obstacle.
func (r *Resolver) blocked(p components.Position, size components.Size) bool {
	for _, o := range r.Obstacles {
		if r.Metric.Collides(p, size, o.Pos, o.Size) {
			return true
		}
	}
	return false
}

// ChooseStep samples an index from weights.
// Returns -1 for no candidates and skips sampling when only one is left.
func ChooseStep(weights []float64, src rand.Source) int {
	switch len(weights) {
	case 0:
		return -1
	case 1:
		return 0
	}
	return int(distuv.NewCategorical(weights, src).Rand())
}
