package game

import (
	"github.com/pthm-cable/antfarm/components"
)

// AntState is the foraging state of an ant as presented to observers.
type AntState uint8

const (
	AntIdle AntState = iota
	AntSeeking
	AntEating
)

// String returns a short lowercase name.
func (s AntState) String() string {
	switch s {
	case AntSeeking:
		return "seeking"
	case AntEating:
		return "eating"
	default:
		return "idle"
	}
}

// AntView is a read-only copy of one ant.
type AntView struct {
	ID       uint32
	Pos      components.Position
	Health   float32
	Hunger   float32
	Distress float32 // 1 - health, clamped to [0, 1]
	Queen    bool
	State    AntState
	Goal     components.Goal
}

// FoodView is a read-only copy of one food resource.
type FoodView struct {
	Pos      components.Position
	Quantity float32
	Known    bool
}

// Observation is a snapshot of the world for presentation layers.
// Building one never mutates the simulation.
type Observation struct {
	Tick        int32
	SimTime     float64
	Ants        []AntView
	Food        []FoodView
	FogRevealed float64
}

// Observe copies the current ant and food state.
func (s *Simulation) Observe() Observation {
	obs := Observation{
		Tick:        s.tick,
		SimTime:     s.simTime,
		Ants:        make([]AntView, 0, s.ants),
		Food:        make([]FoodView, 0, s.food.Count()),
		FogRevealed: s.fog.RevealedFraction(),
	}

	query := s.antFilter.Query()
	for query.Next() {
		e := query.Entity()
		pos, _, health, hunger, _, ant, ai := query.Get()

		state := AntIdle
		switch {
		case s.eatMap.Has(e):
			state = AntEating
		case s.seekMap.Has(e):
			state = AntSeeking
		}

		obs.Ants = append(obs.Ants, AntView{
			ID:       ant.ID,
			Pos:      *pos,
			Health:   health.Pct,
			Hunger:   hunger.Pct,
			Distress: min(max(1-health.Pct, 0), 1),
			Queen:    s.queenMap.Has(e),
			State:    state,
			Goal:     ai.Goal,
		})
	}

	foods := s.food.filter.Query()
	for foods.Next() {
		pos, _, f := foods.Get()
		obs.Food = append(obs.Food, FoodView{
			Pos:      *pos,
			Quantity: f.Quantity,
			Known:    s.known.Contains(foods.Entity()),
		})
	}

	return obs
}
