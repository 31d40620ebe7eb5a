package game

import (
	"fmt"
	"math"
	"math/rand"

	"nova-arena/internal/game/vec"
)

const (
	// initialSpawnCount caps how many enemies a round opens with.
	initialSpawnCount = 3

	// fallbackAttempts bounds the randomized placement search before
	// falling back to a deterministic position.
	fallbackAttempts = 10

	// defaultRingPoints / defaultRingRadius describe the spawn ring
	// generated when no spawn points are configured.
	defaultRingPoints = 8
	defaultRingRadius = 15.0
)

// SpawnPoint is a candidate placement location. Radius, when positive,
// defines a jitter zone around the point.
type SpawnPoint struct {
	Position vec.Vec3
	Radius   float64
}

// SpawnerConfig controls enemy placement policy.
type SpawnerConfig struct {
	MaxEnemies            int
	SpawnPoints           []SpawnPoint // empty means generate the default ring
	SpawnRadius           float64      // width of the randomized fallback band
	MinDistanceFromPlayer float64
	Enemy                 EnemyConfig
}

// DefaultSpawnerConfig returns the standard arena spawner parameters.
func DefaultSpawnerConfig() SpawnerConfig {
	return SpawnerConfig{
		MaxEnemies:            10,
		SpawnRadius:           20,
		MinDistanceFromPlayer: 10,
		Enemy:                 DefaultEnemyConfig(),
	}
}

// Spawner creates enemies according to the placement policy: configured
// spawn points in order, then randomized fallback around the player,
// then a deterministic last resort. Every spawned enemy gets a unique id.
type Spawner struct {
	cfg    SpawnerConfig
	rng    *rand.Rand
	nextID uint64
}

// NewSpawner creates a spawner. When the config names no spawn points a
// default ring of 8 points at radius 15 around the origin is generated.
// rng may be nil for a non-deterministic source.
func NewSpawner(cfg SpawnerConfig, rng *rand.Rand) *Spawner {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if len(cfg.SpawnPoints) == 0 {
		cfg.SpawnPoints = defaultRing()
	}
	if cfg.Enemy.MaxHealth <= 0 {
		cfg.Enemy = DefaultEnemyConfig()
	}
	return &Spawner{cfg: cfg, rng: rng}
}

// defaultRing generates evenly spaced spawn points around the origin.
func defaultRing() []SpawnPoint {
	points := make([]SpawnPoint, 0, defaultRingPoints)
	for i := 0; i < defaultRingPoints; i++ {
		angle := 2 * math.Pi * float64(i) / defaultRingPoints
		points = append(points, SpawnPoint{
			Position: vec.Vec3{
				X: math.Cos(angle) * defaultRingRadius,
				Z: math.Sin(angle) * defaultRingRadius,
			},
		})
	}
	return points
}

// Config returns the spawner's configuration.
func (s *Spawner) Config() SpawnerConfig { return s.cfg }

// SpawnInitialEnemies creates the round-opening wave: min(3, MaxEnemies)
// enemies placed by the standard policy. A zero or negative MaxEnemies
// degrades gracefully to an empty wave.
func (s *Spawner) SpawnInitialEnemies(playerPos vec.Vec3) []*Enemy {
	count := initialSpawnCount
	if s.cfg.MaxEnemies < count {
		count = s.cfg.MaxEnemies
	}
	if count <= 0 {
		return nil
	}

	enemies := make([]*Enemy, 0, count)
	for i := 0; i < count; i++ {
		enemies = append(enemies, s.newEnemy(playerPos))
	}
	return enemies
}

// SpawnEnemy creates one enemy, or nil when the arena already holds
// MaxEnemies.
func (s *Spawner) SpawnEnemy(playerPos vec.Vec3, existing int) *Enemy {
	if existing >= s.cfg.MaxEnemies {
		return nil
	}
	return s.newEnemy(playerPos)
}

func (s *Spawner) newEnemy(playerPos vec.Vec3) *Enemy {
	s.nextID++
	id := fmt.Sprintf("enemy_%d", s.nextID)
	pos := s.pickPosition(playerPos)
	rng := rand.New(rand.NewSource(s.rng.Int63()))
	return NewEnemy(id, pos, s.cfg.Enemy, rng)
}

// pickPosition applies the placement policy.
func (s *Spawner) pickPosition(playerPos vec.Vec3) vec.Vec3 {
	minDist := s.cfg.MinDistanceFromPlayer

	// Configured spawn points, in order. The first point far enough
	// from the player wins, jittered within its zone when one is set.
	for _, sp := range s.cfg.SpawnPoints {
		if sp.Position.Distance(playerPos) < minDist {
			continue
		}
		pos := sp.Position
		if sp.Radius > 0 {
			angle := s.rng.Float64() * 2 * math.Pi
			r := s.rng.Float64() * sp.Radius
			pos.X += math.Cos(angle) * r
			pos.Z += math.Sin(angle) * r
		}
		return pos
	}

	// Randomized fallback: a band around the player, ground-leveled.
	for i := 0; i < fallbackAttempts; i++ {
		angle := s.rng.Float64() * 2 * math.Pi
		r := minDist + s.rng.Float64()*s.cfg.SpawnRadius
		pos := vec.Vec3{
			X: playerPos.X + math.Cos(angle)*r,
			Z: playerPos.Z + math.Sin(angle)*r,
		}
		if pos.Distance(playerPos.Flat()) >= minDist {
			return pos
		}
	}

	// Deterministic last resort: exactly minDist along a random bearing.
	angle := s.rng.Float64() * 2 * math.Pi
	return vec.Vec3{
		X: playerPos.X + math.Cos(angle)*minDist,
		Z: playerPos.Z + math.Sin(angle)*minDist,
	}
}
