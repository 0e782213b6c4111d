package systems

import (
	"math/rand/v2"
	"testing"

	"github.com/pthm-cable/antfarm/components"
)

func TestMoveWeightsFavourBias(t *testing.T) {
	tests := []struct {
		bias components.Bias
		peak int // index of the heaviest direction
	}{
		{components.BiasNorth, 0},
		{components.BiasEast, 1},
		{components.BiasSouth, 2},
		{components.BiasWest, 3},
		{components.BiasNorthEast, 4},
		{components.BiasSouthEast, 5},
		{components.BiasSouthWest, 6},
		{components.BiasNorthWest, 7},
	}
	for _, tc := range tests {
		t.Run(tc.bias.String(), func(t *testing.T) {
			w := MoveWeights(tc.bias)
			for i, v := range w {
				if i != tc.peak && v >= w[tc.peak] {
					t.Errorf("direction %d weight %v not below peak %v", i, v, w[tc.peak])
				}
			}
		})
	}
}

func TestMoveWeightsUniform(t *testing.T) {
	for i, v := range MoveWeights(components.BiasUniform) {
		if v != 1 {
			t.Errorf("direction %d weight = %v, want 1", i, v)
		}
	}
}

func TestMoveWeightsRejectsUnknownBias(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("out-of-range bias produced weights instead of panicking")
		}
	}()
	MoveWeights(components.Bias(components.NumBiases))
}

func TestRollGoalIsWalking(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	seen := make(map[components.Bias]bool)
	for i := 0; i < 500; i++ {
		ai := RollGoal(rng, 5)
		if ai.Goal != components.GoalWalk {
			t.Fatalf("rolled goal %v, want walk", ai.Goal)
		}
		if ai.Countdown != 5 {
			t.Fatalf("countdown = %v, want 5", ai.Countdown)
		}
		seen[ai.Bias] = true
	}
	if len(seen) != components.NumBiases {
		t.Errorf("500 rolls produced %d distinct biases, want all %d", len(seen), components.NumBiases)
	}
}

func TestTickGoal(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	t.Run("walk counts down then re-rolls", func(t *testing.T) {
		ai := components.AI{Goal: components.GoalWalk, Bias: components.BiasEast, Countdown: 1}
		if TickGoal(&ai, 0.6, 5, rng) {
			t.Fatal("re-rolled before expiry")
		}
		if ai.Countdown < 0.39 || ai.Countdown > 0.41 {
			t.Errorf("countdown = %v, want 0.4", ai.Countdown)
		}
		if !TickGoal(&ai, 0.6, 5, rng) {
			t.Fatal("did not re-roll after expiry")
		}
		if ai.Goal != components.GoalWalk || ai.Countdown != 5 {
			t.Errorf("re-rolled goal = %+v, want walk with countdown 5", ai)
		}
	})

	sticky := []components.AI{
		WaitGoal(),
		SeekGoal(components.Position{X: 1, Y: 1}, 0.1),
		{Goal: components.GoalNone},
	}
	for _, ai := range sticky {
		t.Run(ai.Goal.String()+" is untouched", func(t *testing.T) {
			before := ai
			if TickGoal(&ai, 10, 5, rng) {
				t.Error("re-rolled a non-walking goal")
			}
			if ai != before {
				t.Errorf("goal changed from %+v to %+v", before, ai)
			}
		})
	}
}
