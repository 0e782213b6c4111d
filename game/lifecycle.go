package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/antfarm/components"
)

// spawnColony creates the workers and queens at the colony spawn point.
func (s *Simulation) spawnColony() {
	c := s.cfg.Colony
	spawn := components.Position{X: float32(c.SpawnX), Y: float32(c.SpawnY)}

	for i := 0; i < c.Workers; i++ {
		s.spawnAnt(spawn, float32(c.WorkerSize), float32(c.WorkerSpeed), false)
	}
	for i := 0; i < c.Queens; i++ {
		s.spawnAnt(spawn, float32(c.QueenSize), float32(c.QueenSpeed), true)
	}
}

// spawnAnt creates one ant at full health and hunger with no goal yet.
func (s *Simulation) spawnAnt(pos components.Position, size, speed float32, queen bool) ecs.Entity {
	s.nextID++

	sz := components.Size{Factor: size}
	health := components.Health{Pct: 1}
	hunger := components.Hunger{Pct: 1}
	vis := components.VisibleRange{Size: components.Size{Factor: float32(s.cfg.Colony.VisibleRange)}}
	ant := components.Ant{ID: s.nextID, Speed: speed}
	ai := components.AI{}

	e := s.antMap.NewEntity(&pos, &sz, &health, &hunger, &vis, &ant, &ai)
	s.lifetimes.Register(ant.ID, s.tick, s.simTime, queen)
	if queen {
		s.queenMap.Add(e, &components.Queen{})
		s.queens++
	}
	s.ants++
	return e
}

// removeDead applies a death signal: leave a corpse food at the ant's position and remove it.
// Signals for ants that are already gone are ignored.
func (s *Simulation) removeDead(e ecs.Entity) bool {
	if !s.world.Alive(e) {
		return false
	}

	var pos components.Position
	if s.posMap.Has(e) {
		pos = *s.posMap.Get(e)
		s.requests = append(s.requests, foodRequest{Pos: pos, Quantity: float32(s.cfg.Food.CorpseQuantity)})
	}

	var id uint32
	if s.infoMap.Has(e) {
		id = s.infoMap.Get(e).ID
	}
	s.lifetimes.UpdateSurvivalTime(id, s.simTime)
	lifetime := s.lifetimes.Remove(id)

	queen := s.queenMap.Has(e)
	s.world.RemoveEntity(e)
	s.ants--
	if queen {
		s.queens--
	}
	s.collector.RecordDeath()

	slog.Info("ant_died",
		"tick", s.tick,
		"ant", id,
		"queen", queen,
		"x", pos.X,
		"y", pos.Y,
		"remaining", s.ants,
		"lifetime", lifetime,
	)
	return true
}
