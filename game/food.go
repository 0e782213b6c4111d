package game

import (
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/antfarm/components"
	"github.com/pthm-cable/antfarm/config"
	"github.com/pthm-cable/antfarm/systems"
)

// foodRequest is a deferred food creation, flushed in Cleanup.
type foodRequest struct {
	Pos      components.Position
	Quantity float32
}

// FoodStore owns food entities and keeps the known-food registry in step with destruction.
// Lookups of a missing food report not-found instead of failing.
type FoodStore struct {
	world   *ecs.World
	mapper  *ecs.Map3[components.Position, components.Size, components.Food]
	filter  *ecs.Filter3[components.Position, components.Size, components.Food]
	posMap  *ecs.Map[components.Position]
	foodMap *ecs.Map[components.Food]
	known   *systems.KnownFood
	size    components.Size
	count   int
}

func newFoodStore(world *ecs.World, known *systems.KnownFood, size components.Size) *FoodStore {
	return &FoodStore{
		world:   world,
		mapper:  ecs.NewMap3[components.Position, components.Size, components.Food](world),
		filter:  ecs.NewFilter3[components.Position, components.Size, components.Food](world),
		posMap:  ecs.NewMap[components.Position](world),
		foodMap: ecs.NewMap[components.Food](world),
		known:   known,
		size:    size,
	}
}

// Create spawns a food of the given quantity.
func (fs *FoodStore) Create(pos components.Position, quantity float32) ecs.Entity {
	size := fs.size
	fs.count++
	return fs.mapper.NewEntity(&pos, &size, &components.Food{Quantity: quantity})
}

// Exists reports whether e is a live food.
func (fs *FoodStore) Exists(e ecs.Entity) bool {
	return fs.world.Alive(e) && fs.foodMap.Has(e)
}

// Lookup returns a food's position and quantity, or false if it is gone.
func (fs *FoodStore) Lookup(e ecs.Entity) (components.Position, components.Food, bool) {
	if !fs.Exists(e) {
		return components.Position{}, components.Food{}, false
	}
	return *fs.posMap.Get(e), *fs.foodMap.Get(e), true
}

// Eat moves one tick of consumption from the food into hunger. Returns the amount eaten.
func (fs *FoodStore) Eat(e ecs.Entity, hunger *components.Hunger, dt, rate float32) float32 {
	if !fs.Exists(e) {
		return 0
	}
	return systems.Consume(hunger, fs.foodMap.Get(e), dt, rate)
}

// Destroy removes a food and forgets it from the registry.
// Returns false if it was already gone.
func (fs *FoodStore) Destroy(e ecs.Entity) bool {
	if !fs.Exists(e) {
		return false
	}
	fs.world.RemoveEntity(e)
	fs.known.Forget(e)
	fs.count--
	return true
}

// Count returns the number of live foods.
func (fs *FoodStore) Count() int {
	return fs.count
}

// TotalQuantity sums the remaining quantity over all foods.
func (fs *FoodStore) TotalQuantity() float64 {
	var total float64
	query := fs.filter.Query()
	for query.Next() {
		_, _, f := query.Get()
		total += float64(f.Quantity)
	}
	return total
}

// Unseen appends every food not yet in the registry.
func (fs *FoodStore) Unseen(dst []systems.GridEntry) []systems.GridEntry {
	query := fs.filter.Query()
	for query.Next() {
		e := query.Entity()
		if fs.known.Contains(e) {
			continue
		}
		pos, size, _ := query.Get()
		dst = append(dst, systems.GridEntry{E: e, Pos: *pos, Size: *size})
	}
	return dst
}

// Sightings appends the position of every known food in discovery order.
func (fs *FoodStore) Sightings(dst []systems.FoodSighting) []systems.FoodSighting {
	for _, e := range fs.known.Entities() {
		pos, _, ok := fs.Lookup(e)
		if !ok {
			continue
		}
		dst = append(dst, systems.FoodSighting{E: e, Pos: pos})
	}
	return dst
}

// SpawnInitial places the starting food away from the arena edge.
// The clustered layout keeps candidate spots where simplex noise is high.
func (fs *FoodStore) SpawnInitial(cfg *config.Config, rng *rand.Rand, seed int64) {
	var noise opensimplex.Noise
	if cfg.Food.Layout == "clustered" {
		noise = opensimplex.NewNormalized(seed)
	}

	margin := float32(cfg.Food.MarginTiles) * cfg.Derived.TileSide32
	w := cfg.Derived.ArenaWidth - 2*margin
	h := cfg.Derived.ArenaHeight - 2*margin
	uniform := func() components.Position {
		return components.Position{
			X: margin + rng.Float32()*w,
			Y: margin + rng.Float32()*h,
		}
	}

	for i := 0; i < cfg.Food.Count; i++ {
		pos := uniform()
		if noise != nil {
			for try := 1; try < cfg.Food.ClusterTries; try++ {
				if noise.Eval2(float64(pos.X)*cfg.Food.ClusterScale, float64(pos.Y)*cfg.Food.ClusterScale) >= cfg.Food.ClusterCutoff {
					break
				}
				pos = uniform()
			}
		}
		fs.Create(pos, float32(cfg.Food.Quantity))
	}
}
