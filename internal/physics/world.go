// Package physics provides the movement and raycast collaborator for
// the simulation core: a flat arena with sphere bodies, a ground plane
// and bounding walls.
package physics

import (
	"math"
	"sync"

	"nova-arena/internal/game"
	"nova-arena/internal/game/vec"
)

// PlayerTargetID is the raycast target id reported for the player body.
// Combat lookups ignore it; AI line-of-sight checks rely on it.
const PlayerTargetID = "player"

// Config describes the arena geometry.
type Config struct {
	// ArenaHalfExtent bounds X and Z to [-half, half]. Zero or negative
	// disables the walls.
	ArenaHalfExtent float64

	// GroundY is the floor height everything walks on.
	GroundY float64

	// EnemyRadius is the hit-sphere radius used for raycasts and
	// separation.
	EnemyRadius float64

	// PlayerRadius sizes the player's body for separation and AI
	// visibility rays.
	PlayerRadius float64
}

// DefaultConfig returns the standard arena geometry.
func DefaultConfig() Config {
	return Config{
		ArenaHalfExtent: 40,
		GroundY:         0,
		EnemyRadius:     0.6,
		PlayerRadius:    0.4,
	}
}

type body struct {
	pos    vec.Vec3
	radius float64
}

// flatBody is the broad-phase view of a body, addressed by index.
type flatBody struct {
	id     string
	pos    vec.Vec3
	radius float64
}

// broadCellSize comfortably exceeds the largest pairwise contact
// distance, so one query ring of cells always covers every candidate.
const broadCellSize = 4.0

// World is the concrete physics executor. Spheres are centered on the
// tracked positions, so rays between two grounded bodies pass through
// the target's center. All methods are safe for concurrent use.
type World struct {
	mu      sync.RWMutex
	cfg     Config
	bodies  map[string]body
	player  vec.Vec3
	hasPlay bool

	grid *broadGrid
	flat []flatBody // scratch, rebuilt before each separation pass
}

var _ game.Physics = (*World)(nil)

// NewWorld creates an empty arena.
func NewWorld(cfg Config) *World {
	if cfg.EnemyRadius <= 0 {
		cfg = DefaultConfig()
	}
	extent := cfg.ArenaHalfExtent
	if extent <= 0 {
		extent = DefaultConfig().ArenaHalfExtent
	}
	return &World{
		cfg:    cfg,
		bodies: make(map[string]body),
		grid:   newBroadGrid(extent, broadCellSize),
	}
}

// MovePlayer integrates the desired velocity, keeps the player on the
// ground plane, pushes them out of enemy bodies and walls and records
// the position for visibility rays.
func (w *World) MovePlayer(pos, velocity vec.Vec3, dt float64) vec.Vec3 {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := pos.Add(velocity.Scale(dt))
	next.Y = w.cfg.GroundY

	w.rebuildBroadPhase("", false)
	for _, idx := range w.grid.queryRadius(next.X, next.Z, w.contactReach(w.cfg.PlayerRadius)) {
		b := w.flat[idx]
		next = separate(next, b.pos, w.cfg.PlayerRadius+b.radius)
	}
	next = w.clamp(next)

	w.player = next
	w.hasPlay = true
	return next
}

// MoveEnemy integrates the enemy's velocity, keeps it grounded, resolves
// overlap against the other bodies and records the new position.
func (w *World) MoveEnemy(id string, pos, velocity vec.Vec3, dt float64) vec.Vec3 {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := pos.Add(velocity.Scale(dt))
	next.Y = w.cfg.GroundY

	self, ok := w.bodies[id]
	if !ok {
		self = body{radius: w.cfg.EnemyRadius}
	}
	w.rebuildBroadPhase(id, true)
	for _, idx := range w.grid.queryRadius(next.X, next.Z, w.contactReach(self.radius)) {
		b := w.flat[idx]
		next = separate(next, b.pos, self.radius+b.radius)
	}
	next = w.clamp(next)

	self.pos = next
	w.bodies[id] = self
	return next
}

// AddEnemy registers a hit sphere for the enemy.
func (w *World) AddEnemy(id string, pos vec.Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	pos.Y = w.cfg.GroundY
	w.bodies[id] = body{pos: pos, radius: w.cfg.EnemyRadius}
}

// RemoveEnemy drops the enemy's hit sphere. Unknown ids are no-ops.
func (w *World) RemoveEnemy(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.bodies, id)
}

// BodyCount returns the number of registered enemy bodies.
func (w *World) BodyCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.bodies)
}

// Raycast finds the nearest hit along dir: an enemy sphere (TargetID set
// to the enemy id), the player body (PlayerTargetID) or the ground plane
// (TargetID empty). ok is false when the ray escapes the arena without
// touching anything.
func (w *World) Raycast(origin, dir vec.Vec3) (game.RaycastResult, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	dir = dir.Normalize()
	if dir.IsZero() {
		return game.RaycastResult{}, false
	}

	best := math.Inf(1)
	bestID := ""

	for id, b := range w.bodies {
		if t, ok := raySphere(origin, dir, b.pos, b.radius); ok && t < best {
			best = t
			bestID = id
		}
	}
	if w.hasPlay {
		if t, ok := raySphere(origin, dir, w.player, w.cfg.PlayerRadius); ok && t < best {
			best = t
			bestID = PlayerTargetID
		}
	}
	if t, ok := rayGround(origin, dir, w.cfg.GroundY); ok && t < best {
		best = t
		bestID = ""
	}

	if math.IsInf(best, 1) {
		return game.RaycastResult{}, false
	}
	return game.RaycastResult{Distance: best, TargetID: bestID}, true
}

// rebuildBroadPhase flattens the current bodies into the grid, skipping
// the excluded id. Caller holds the lock.
func (w *World) rebuildBroadPhase(exclude string, includePlayer bool) {
	w.flat = w.flat[:0]
	w.grid.clear()

	for id, b := range w.bodies {
		if id == exclude {
			continue
		}
		w.grid.insert(uint32(len(w.flat)), b.pos.X, b.pos.Z)
		w.flat = append(w.flat, flatBody{id: id, pos: b.pos, radius: b.radius})
	}
	if includePlayer && w.hasPlay {
		w.grid.insert(uint32(len(w.flat)), w.player.X, w.player.Z)
		w.flat = append(w.flat, flatBody{id: PlayerTargetID, pos: w.player, radius: w.cfg.PlayerRadius})
	}
}

// contactReach is the query radius guaranteeing every body that could
// overlap a mover of the given radius is among the candidates.
func (w *World) contactReach(selfRadius float64) float64 {
	return selfRadius + math.Max(w.cfg.EnemyRadius, w.cfg.PlayerRadius)
}

// clamp keeps a position inside the arena walls.
func (w *World) clamp(pos vec.Vec3) vec.Vec3 {
	half := w.cfg.ArenaHalfExtent
	if half <= 0 {
		return pos
	}
	if pos.X > half {
		pos.X = half
	}
	if pos.X < -half {
		pos.X = -half
	}
	if pos.Z > half {
		pos.Z = half
	}
	if pos.Z < -half {
		pos.Z = -half
	}
	return pos
}

// separate pushes pos horizontally out of a circle of the given radius
// around center. Exact overlap picks an arbitrary fixed direction.
func separate(pos, center vec.Vec3, radius float64) vec.Vec3 {
	delta := pos.Sub(center).Flat()
	dist := delta.Length()
	if dist >= radius {
		return pos
	}
	if dist == 0 {
		pos.X = center.X + radius
		return pos
	}
	pushed := center.Add(delta.Scale(radius / dist))
	pos.X = pushed.X
	pos.Z = pushed.Z
	return pos
}

// raySphere returns the distance to the nearest intersection of a unit
// ray with a sphere, when one exists in front of the origin. A ray
// starting inside the sphere ignores it, so visibility rays cast from a
// body's own center pass through that body.
func raySphere(origin, dir, center vec.Vec3, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	if c <= 0 {
		return 0, false
	}

	disc := b*b - c
	if disc < 0 {
		return 0, false
	}

	t := -b - math.Sqrt(disc)
	if t <= 0 {
		return 0, false
	}
	return t, true
}

// rayGround returns the distance to the ground plane when the ray points
// down at it.
func rayGround(origin, dir vec.Vec3, groundY float64) (float64, bool) {
	if dir.Y >= 0 {
		return 0, false
	}
	t := (groundY - origin.Y) / dir.Y
	if t <= 0 {
		return 0, false
	}
	return t, true
}
