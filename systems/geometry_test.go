package systems

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/pthm-cable/antfarm/components"
)

var testMetric = Metric{TileSide: 8}

func TestRadius(t *testing.T) {
	tests := []struct {
		factor float32
		want   float32
	}{
		{0, 0},
		{0.5, 2 * math.Sqrt2},
		{1, 4 * math.Sqrt2},
		{2, 8 * math.Sqrt2},
	}
	for _, tc := range tests {
		got := testMetric.Radius(components.Size{Factor: tc.factor})
		if math.Abs(float64(got-tc.want)) > 1e-5 {
			t.Errorf("Radius(%v) = %f, want %f", tc.factor, got, tc.want)
		}
	}
}

func TestDistanceBetween(t *testing.T) {
	a := components.Position{X: 10, Y: 10}
	b := components.Position{X: 13, Y: 14} // 5 units away
	s := components.Size{Factor: 0.5}

	got := testMetric.DistanceBetween(a, s, b, s)
	want := float32(5) - 2*testMetric.Radius(s)
	if math.Abs(float64(got-want)) > 1e-5 {
		t.Errorf("DistanceBetween = %f, want %f", got, want)
	}
	if got >= 0 {
		t.Error("circles of radius 2.83 five units apart should overlap")
	}
}

// Collides and DistanceBetween must agree on every pair, including boundaries.
func TestCollidesMatchesDistanceSign(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 5000; i++ {
		pa := components.Position{X: rng.Float32() * 40, Y: rng.Float32() * 40}
		pb := components.Position{X: rng.Float32() * 40, Y: rng.Float32() * 40}
		sa := components.Size{Factor: rng.Float32() * 2}
		sb := components.Size{Factor: rng.Float32() * 2}

		collides := testMetric.Collides(pa, sa, pb, sb)
		negative := testMetric.DistanceBetween(pa, sa, pb, sb) < 0
		if collides != negative {
			t.Fatalf("Collides=%v but DistanceBetween<0=%v for %v %v %v %v", collides, negative, pa, sa, pb, sb)
		}
	}
}

func TestCollidesExactTouchIsNotCollision(t *testing.T) {
	zero := components.Size{}
	a := components.Position{X: 0, Y: 0}
	if testMetric.Collides(a, zero, a, zero) {
		t.Error("two zero-radius points at the same spot have distance 0, which is not < 0")
	}
}

func TestLerp(t *testing.T) {
	from := components.Position{X: 0, Y: 0}
	to := components.Position{X: 30, Y: 40}

	got := Lerp(from, to, 5)
	if math.Abs(float64(got.X-3)) > 1e-4 || math.Abs(float64(got.Y-4)) > 1e-4 {
		t.Errorf("Lerp step 5 = %v, want (3,4)", got)
	}

	got = Lerp(from, to, 100)
	if got != to {
		t.Errorf("overshooting Lerp = %v, want target %v", got, to)
	}

	got = Lerp(to, to, 1)
	if got != to {
		t.Errorf("Lerp at target = %v, want %v", got, to)
	}
}

func TestBoundsContains(t *testing.T) {
	b := Bounds{Width: 100, Height: 50}
	tests := []struct {
		p    components.Position
		want bool
	}{
		{components.Position{X: 50, Y: 25}, true},
		{components.Position{X: 0, Y: 25}, false},
		{components.Position{X: 100, Y: 25}, false},
		{components.Position{X: 50, Y: 0}, false},
		{components.Position{X: 50, Y: 50}, false},
		{components.Position{X: 0.001, Y: 49.999}, true},
	}
	for _, tc := range tests {
		if got := b.Contains(tc.p); got != tc.want {
			t.Errorf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}
