package game

import (
	"math"
	"math/rand"

	"nova-arena/internal/game/vec"
)

// EnemyState is the AI lifecycle state. Dead is terminal.
type EnemyState uint8

const (
	EnemyIdle EnemyState = iota
	EnemyPatrol
	EnemyChase
	EnemyAttack
	EnemyDead
)

// String returns the lowercase state name for logs and snapshots.
func (s EnemyState) String() string {
	switch s {
	case EnemyIdle:
		return "idle"
	case EnemyPatrol:
		return "patrol"
	case EnemyChase:
		return "chase"
	case EnemyAttack:
		return "attack"
	case EnemyDead:
		return "dead"
	default:
		return "unknown"
	}
}

// EnemyConfig holds per-enemy balance parameters.
type EnemyConfig struct {
	MaxHealth        float64
	DetectionRange   float64 // perception radius
	AttackRange      float64 // contact engagement radius
	AttackCooldownMs float64
	AttackDamage     int
	MoveSpeed        float64 // world units per second
	PatrolRadius     float64 // new patrol targets picked within this radius
	ArriveEpsilon    float64 // distance at which a patrol target counts as reached
	LOSMargin        float64 // slack subtracted from player distance in visibility checks
}

// DefaultEnemyConfig returns the standard grunt parameters.
func DefaultEnemyConfig() EnemyConfig {
	return EnemyConfig{
		MaxHealth:        100,
		DetectionRange:   10,
		AttackRange:      2,
		AttackCooldownMs: 1000,
		AttackDamage:     10,
		MoveSpeed:        3,
		PatrolRadius:     5,
		ArriveEpsilon:    0.5,
		LOSMargin:        0.5,
	}
}

// Enemy is a single AI-driven combatant. All mutation happens inside
// Update and TakeDamage, called only from the simulation tick.
type Enemy struct {
	ID       string
	Position vec.Vec3
	Rotation float64 // heading around Y, radians

	health           float64
	state            EnemyState
	attackCooldownMs float64

	patrolTarget    *vec.Vec3
	lastKnownPlayer *vec.Vec3

	cfg EnemyConfig
	rng *rand.Rand
}

// NewEnemy creates an enemy at full health in the idle state. rng may
// be nil for non-deterministic patrol targets.
func NewEnemy(id string, pos vec.Vec3, cfg EnemyConfig, rng *rand.Rand) *Enemy {
	if cfg.MaxHealth <= 0 {
		cfg = DefaultEnemyConfig()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Enemy{
		ID:       id,
		Position: pos,
		health:   cfg.MaxHealth,
		state:    EnemyIdle,
		cfg:      cfg,
		rng:      rng,
	}
}

// State returns the current AI state.
func (e *Enemy) State() EnemyState { return e.state }

// Health returns current health in [0, MaxHealth].
func (e *Enemy) Health() float64 { return e.health }

// MaxHealth returns the configured health ceiling.
func (e *Enemy) MaxHealth() float64 { return e.cfg.MaxHealth }

// Dead reports whether the enemy has reached the terminal state.
func (e *Enemy) Dead() bool { return e.state == EnemyDead }

// AttackCooldownMs returns milliseconds until the next attack can arm.
func (e *Enemy) AttackCooldownMs() float64 { return e.attackCooldownMs }

// AttackDamage returns the damage a landed attack applies.
func (e *Enemy) AttackDamage() int { return e.cfg.AttackDamage }

// Config returns the enemy's balance parameters.
func (e *Enemy) Config() EnemyConfig { return e.cfg }

// PatrolTarget returns the current patrol destination, if any.
func (e *Enemy) PatrolTarget() (vec.Vec3, bool) {
	if e.patrolTarget == nil {
		return vec.Zero, false
	}
	return *e.patrolTarget, true
}

// LastKnownPlayerPosition returns the remembered player position, if any.
func (e *Enemy) LastKnownPlayerPosition() (vec.Vec3, bool) {
	if e.lastKnownPlayer == nil {
		return vec.Zero, false
	}
	return *e.lastKnownPlayer, true
}

// TakeDamage reduces health, floored at zero. Negative amounts are
// clamped at the boundary and dead enemies ignore further damage. The
// transition to the dead state happens in the next Update.
func (e *Enemy) TakeDamage(amount float64) {
	if e.state == EnemyDead || amount < 0 {
		return
	}
	e.health -= amount
	if e.health < 0 {
		e.health = 0
	}
}

// CanAttack reports whether an attack is armed this instant: attacking
// state with the cooldown at zero. Update's attack branch consumes the
// cooldown the moment it observes zero, so a caller reading CanAttack
// after Update sees the attack already spent for that tick.
func (e *Enemy) CanAttack() bool {
	return e.state == EnemyAttack && e.attackCooldownMs == 0
}

// Update advances the state machine by one simulation step.
//
// cast is the optional line-of-sight capability; when nil the enemy
// assumes it can always see the player.
func (e *Enemy) Update(playerPos vec.Vec3, dt float64, cast RaycastFunc) {
	if e.state == EnemyDead {
		return
	}

	e.attackCooldownMs -= dt * 1000
	if e.attackCooldownMs < 0 {
		e.attackCooldownMs = 0
	}

	if e.health <= 0 {
		e.state = EnemyDead
		return
	}

	dist := e.Position.Distance(playerPos)

	switch e.state {
	case EnemyIdle:
		if dist <= e.cfg.DetectionRange && e.hasLineOfSight(playerPos, dist, cast) {
			e.state = EnemyChase
			e.rememberPlayer(playerPos)
		} else {
			e.state = EnemyPatrol
			e.newPatrolTarget()
		}

	case EnemyPatrol:
		if dist <= e.cfg.DetectionRange && e.hasLineOfSight(playerPos, dist, cast) {
			e.state = EnemyChase
			e.rememberPlayer(playerPos)
			break
		}
		if e.patrolTarget == nil || e.Position.Distance(*e.patrolTarget) <= e.cfg.ArriveEpsilon {
			e.newPatrolTarget()
		}

	case EnemyChase:
		switch {
		case dist <= e.cfg.AttackRange:
			e.state = EnemyAttack
		case dist > e.cfg.DetectionRange:
			e.state = EnemyPatrol
			e.lastKnownPlayer = nil
			e.newPatrolTarget()
		default:
			e.rememberPlayer(playerPos)
		}

	case EnemyAttack:
		switch {
		case dist > e.cfg.AttackRange:
			e.state = EnemyChase
			e.rememberPlayer(playerPos)
		case dist > e.cfg.DetectionRange:
			e.state = EnemyPatrol
			e.lastKnownPlayer = nil
			e.newPatrolTarget()
		default:
			if e.attackCooldownMs == 0 {
				// Arms the attack for this tick; the cooldown reset is
				// the consumption.
				e.attackCooldownMs = e.cfg.AttackCooldownMs
			}
		}
	}

	e.face(playerPos)
}

// hasLineOfSight checks whether nothing solid occludes the path to the
// player short of the configured margin. A missing raycast capability
// means visibility is assumed; a cast that reports no hit means no
// line of sight.
func (e *Enemy) hasLineOfSight(playerPos vec.Vec3, dist float64, cast RaycastFunc) bool {
	if cast == nil {
		return true
	}
	dir := playerPos.Sub(e.Position).Normalize()
	if dir.IsZero() {
		return true
	}
	hit, ok := cast(e.Position, dir)
	if !ok {
		return false
	}
	return hit.Distance >= dist-e.cfg.LOSMargin
}

// rememberPlayer records the player's position for pursuit.
func (e *Enemy) rememberPlayer(playerPos vec.Vec3) {
	p := playerPos
	e.lastKnownPlayer = &p
}

// newPatrolTarget picks a random destination within PatrolRadius of the
// current position, on the current ground level.
func (e *Enemy) newPatrolTarget() {
	angle := e.rng.Float64() * 2 * math.Pi
	radius := e.rng.Float64() * e.cfg.PatrolRadius
	t := vec.Vec3{
		X: e.Position.X + math.Cos(angle)*radius,
		Y: e.Position.Y,
		Z: e.Position.Z + math.Sin(angle)*radius,
	}
	e.patrolTarget = &t
}

// face turns the enemy toward whatever it is moving at or fighting.
func (e *Enemy) face(playerPos vec.Vec3) {
	var look vec.Vec3
	switch e.state {
	case EnemyChase, EnemyAttack:
		look = playerPos.Sub(e.Position)
	case EnemyPatrol:
		if e.patrolTarget != nil {
			look = e.patrolTarget.Sub(e.Position)
		}
	default:
		return
	}
	if look.X == 0 && look.Z == 0 {
		return
	}
	e.Rotation = math.Atan2(look.X, look.Z)
}

// MovementDirection returns the unit horizontal locomotion direction
// for the current state. Idle and attacking enemies hold position; a
// dead enemy never moves again.
func (e *Enemy) MovementDirection() vec.Vec3 {
	switch e.state {
	case EnemyChase:
		if e.lastKnownPlayer == nil {
			return vec.Zero
		}
		return e.lastKnownPlayer.Sub(e.Position).Flat().Normalize()
	case EnemyPatrol:
		if e.patrolTarget == nil {
			return vec.Zero
		}
		return e.patrolTarget.Sub(e.Position).Flat().Normalize()
	default:
		return vec.Zero
	}
}
