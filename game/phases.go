package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/antfarm/components"
	"github.com/pthm-cable/antfarm/systems"
)

// seeker is an ant snapshot taken before foraging transitions are applied.
type seeker struct {
	e    ecs.Entity
	id   uint32
	pos  components.Position
	size components.Size
	food ecs.Entity
}

// eater pairs an eating ant with its food.
type eater struct {
	e    ecs.Entity
	id   uint32
	food ecs.Entity
}

// decide maintains the food registry and sends hungry idle ants to the nearest known food.
func (s *Simulation) decide() {
	// Registry entries must refer to live food from here on
	if n := s.known.Prune(s.food.Exists); n > 0 {
		slog.Debug("known_food_pruned", "tick", s.tick, "count", n)
	}

	s.discoverFood()
	s.assignDestinations()
}

// discoverFood adds every unseen food that overlaps some ant's visibility circle.
func (s *Simulation) discoverFood() {
	s.unseen = s.food.Unseen(s.unseen[:0])
	if len(s.unseen) == 0 {
		return
	}
	s.bodies = s.visionBodies(s.bodies[:0])

	for _, f := range s.unseen {
		for _, v := range s.bodies {
			if !s.metric.Collides(v.Pos, v.Size, f.Pos, f.Size) {
				continue
			}
			s.known.Add(f.E)
			s.collector.RecordFoodDiscovered()
			slog.Debug("food_discovered", "tick", s.tick, "x", f.Pos.X, "y", f.Pos.Y, "known", s.known.Len())
			break
		}
	}
}

// assignDestinations marks hungry idle ants as seeking their nearest known food.
func (s *Simulation) assignDestinations() {
	if s.known.Len() == 0 {
		return
	}

	threshold := float32(s.cfg.Foraging.HungerThreshold)
	s.hungry = s.hungry[:0]
	query := s.antFilter.Query()
	for query.Next() {
		e := query.Entity()
		pos, size, _, hunger, _, ant, _ := query.Get()
		if s.seekMap.Has(e) || s.eatMap.Has(e) || !systems.NeedsFood(*hunger, threshold) {
			continue
		}
		s.hungry = append(s.hungry, seeker{e: e, id: ant.ID, pos: *pos, size: *size})
	}
	if len(s.hungry) == 0 {
		return
	}

	s.sighted = s.food.Sightings(s.sighted[:0])
	target := components.Size{Factor: float32(s.cfg.Food.TargetSize)}
	timeout := float32(s.cfg.Foraging.SeekTimeout)

	for _, h := range s.hungry {
		idx := systems.NearestFood(s.metric, h.pos, h.size, s.sighted, target)
		if idx < 0 {
			return
		}
		f := s.sighted[idx]
		s.seekMap.Add(h.e, &components.Seeking{Food: f.E})
		*s.aiMap.Get(h.e) = systems.SeekGoal(f.Pos, timeout)
		s.collector.RecordSeek()
		s.lifetimes.RecordSeek(h.id)
	}
}

// move resolves every ant's step against the start-of-tick obstacle snapshot, then advances eating.
func (s *Simulation) move(dt float32) {
	s.bodies = s.antBodies(s.bodies[:0])
	resolver := systems.Resolver{
		Metric:    s.metric,
		Bounds:    s.arena.Bounds,
		Obstacles: s.arena.Obstacles(s.bodies, 2*s.maxSpeed()*dt),
		Src:       s.src,
	}

	query := s.antFilter.Query()
	for query.Next() {
		pos, size, _, _, _, ant, ai := query.Get()
		next, outcome := resolver.Step(*pos, *size, *ai, ant.Speed*dt)
		if outcome == systems.StepStuck {
			s.collector.RecordStuck()
			s.lifetimes.RecordStuck(ant.ID)
			slog.Debug("no_legal_move", "tick", s.tick, "ant", ant.ID, "x", pos.X, "y", pos.Y, "goal", ai.Goal.String(), "bias", ai.Bias.String())
		}
		*pos = next
	}

	s.progressEating(dt)
}

// progressEating lets every eater bite, then ends meals whose food is gone, depleted or who are full.
// All bites land before any depletion check, so shared food can go below zero.
func (s *Simulation) progressEating(dt float32) {
	s.eaters = s.eaters[:0]
	query := s.antFilter.Query()
	for query.Next() {
		e := query.Entity()
		if !s.eatMap.Has(e) {
			continue
		}
		_, _, _, _, _, ant, _ := query.Get()
		s.eaters = append(s.eaters, eater{e: e, id: ant.ID, food: s.eatMap.Get(e).Food})
	}
	if len(s.eaters) == 0 {
		return
	}

	rate := float32(s.cfg.Foraging.EatRate)
	for _, ea := range s.eaters {
		if bite := s.food.Eat(ea.food, s.hungerMap.Get(ea.e), dt, rate); bite > 0 {
			s.collector.RecordEaten(bite)
			s.lifetimes.RecordEaten(ea.id, bite)
		}
	}

	for _, ea := range s.eaters {
		pos, food, ok := s.food.Lookup(ea.food)
		if !ok {
			s.stopEating(ea.e)
			continue
		}
		switch systems.CheckEating(*s.hungerMap.Get(ea.e), food) {
		case systems.EatDepleted:
			if s.food.Destroy(ea.food) {
				s.collector.RecordFoodDepleted()
				slog.Debug("food_depleted", "tick", s.tick, "x", pos.X, "y", pos.Y, "remaining", s.food.Count())
			}
			s.stopEating(ea.e)
		case systems.EatFull:
			s.stopEating(ea.e)
		}
	}
}

// stopEating returns an eater to idle with a fresh walking goal.
func (s *Simulation) stopEating(e ecs.Entity) {
	s.eatMap.Remove(e)
	s.rollGoal(e)
}

// act moves arrived seekers into eating, drops seekers whose food vanished and runs goal timers.
func (s *Simulation) act(dt float32) {
	s.seekers = s.seekers[:0]
	query := s.antFilter.Query()
	for query.Next() {
		e := query.Entity()
		if !s.seekMap.Has(e) {
			continue
		}
		pos, size, _, _, _, ant, _ := query.Get()
		s.seekers = append(s.seekers, seeker{e: e, id: ant.ID, pos: *pos, size: *size, food: s.seekMap.Get(e).Food})
	}

	target := components.Size{Factor: float32(s.cfg.Food.TargetSize)}
	threshold := float32(s.cfg.Foraging.ArrivalThreshold)
	for _, sk := range s.seekers {
		foodPos, _, ok := s.food.Lookup(sk.food)
		if !ok {
			s.seekMap.Remove(sk.e)
			s.rollGoal(sk.e)
			continue
		}
		if !systems.Arrived(s.metric.DistanceBetween(sk.pos, sk.size, foodPos, target), threshold) {
			continue
		}
		s.seekMap.Remove(sk.e)
		s.eatMap.Add(sk.e, &components.Eating{Food: sk.food})
		*s.aiMap.Get(sk.e) = systems.WaitGoal()
		s.collector.RecordMeal()
		s.lifetimes.RecordMeal(sk.id)
	}

	duration := float32(s.cfg.AI.GoalDuration)
	query = s.antFilter.Query()
	for query.Next() {
		e := query.Entity()
		_, _, _, _, _, _, ai := query.Get()
		if ai.Goal == components.GoalNone {
			if !s.eatMap.Has(e) {
				*ai = systems.RollGoal(s.rng, duration)
				s.collector.RecordGoalRoll()
			}
			continue
		}
		if systems.TickGoal(ai, dt, duration, s.rng) {
			s.collector.RecordGoalRoll()
		}
	}
}

// rollGoal gives an ant a fresh walking goal.
func (s *Simulation) rollGoal(e ecs.Entity) {
	*s.aiMap.Get(e) = systems.RollGoal(s.rng, float32(s.cfg.AI.GoalDuration))
	s.collector.RecordGoalRoll()
}

// ambient decays health while starving and hunger while not eating, and signals deaths.
func (s *Simulation) ambient(dt float32) {
	v := s.cfg.Vitals
	hungerDecay := float32(v.HungerDecay)
	healthDecay := float32(v.HealthDecay)
	starvation := float32(v.StarvationLevel)

	query := s.antFilter.Query()
	for query.Next() {
		e := query.Entity()
		_, _, health, hunger, _, _, _ := query.Get()
		if systems.DecayHealth(health, *hunger, dt, healthDecay, starvation) {
			s.deaths = append(s.deaths, e)
		}
		if !s.eatMap.Has(e) {
			systems.DecayHunger(hunger, dt, hungerDecay)
		}
	}
}

// cleanup applies death signals, flushes food requests and reveals fog.
func (s *Simulation) cleanup() {
	for _, e := range s.deaths {
		s.removeDead(e)
	}
	s.deaths = s.deaths[:0]

	for _, r := range s.requests {
		s.food.Create(r.Pos, r.Quantity)
		s.collector.RecordFoodCreated()
	}
	s.requests = s.requests[:0]

	if s.fog != nil {
		s.reveal = s.visionBodies(s.reveal[:0])
		s.fog.Reveal(s.reveal)
	}
}

// antBodies appends every ant's position and physical size.
func (s *Simulation) antBodies(dst []systems.Body) []systems.Body {
	query := s.antFilter.Query()
	for query.Next() {
		pos, size, _, _, _, _, _ := query.Get()
		dst = append(dst, systems.Body{Pos: *pos, Size: *size})
	}
	return dst
}

// visionBodies appends every ant's position and visibility circle.
func (s *Simulation) visionBodies(dst []systems.Body) []systems.Body {
	query := s.antFilter.Query()
	for query.Next() {
		pos, _, _, _, vis, _, _ := query.Get()
		dst = append(dst, systems.Body{Pos: *pos, Size: vis.Size})
	}
	return dst
}

// maxSpeed returns the fastest configured ant speed.
func (s *Simulation) maxSpeed() float32 {
	return float32(max(s.cfg.Colony.WorkerSpeed, s.cfg.Colony.QueenSpeed))
}
