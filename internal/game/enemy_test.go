package game

import (
	"math/rand"
	"testing"

	"nova-arena/internal/game/vec"
)

func testEnemy(pos vec.Vec3) *Enemy {
	return NewEnemy("e1", pos, DefaultEnemyConfig(), rand.New(rand.NewSource(1)))
}

func TestEnemyDetectsAndEngages(t *testing.T) {
	e := testEnemy(vec.New(0, 1, 0))

	// Player inside the 10-unit detection range: idle turns to chase.
	e.Update(vec.New(5, 1, 0), FixedStep, nil)
	if e.State() != EnemyChase {
		t.Fatalf("state = %v, want chase", e.State())
	}

	// Player closes inside the 2-unit attack range: chase turns to attack.
	e.Update(vec.New(1, 1, 0), FixedStep, nil)
	if e.State() != EnemyAttack {
		t.Fatalf("state = %v, want attack", e.State())
	}
}

func TestEnemyIdleBeyondDetectionPatrols(t *testing.T) {
	e := testEnemy(vec.Zero)

	e.Update(vec.New(50, 0, 0), FixedStep, nil)

	if e.State() != EnemyPatrol {
		t.Fatalf("state = %v, want patrol", e.State())
	}
	if _, ok := e.PatrolTarget(); !ok {
		t.Error("patrol entered without a target")
	}
}

func TestEnemyChaseLosesPlayer(t *testing.T) {
	e := testEnemy(vec.Zero)
	e.Update(vec.New(5, 0, 0), FixedStep, nil) // chase

	e.Update(vec.New(50, 0, 0), FixedStep, nil)

	if e.State() != EnemyPatrol {
		t.Fatalf("state = %v, want patrol after losing the player", e.State())
	}
	if _, ok := e.LastKnownPlayerPosition(); ok {
		t.Error("stale last-known position kept after losing the player")
	}
}

func TestEnemyAttackDisengagesToChase(t *testing.T) {
	e := testEnemy(vec.Zero)
	e.Update(vec.New(5, 0, 0), FixedStep, nil) // chase
	e.Update(vec.New(1, 0, 0), FixedStep, nil) // attack

	// Player steps just outside attack range but stays detectable.
	e.Update(vec.New(4, 0, 0), FixedStep, nil)

	if e.State() != EnemyChase {
		t.Fatalf("state = %v, want chase", e.State())
	}
}

func TestEnemyAttackCooldownConsumedInUpdate(t *testing.T) {
	e := testEnemy(vec.Zero)
	e.Update(vec.New(5, 0, 0), FixedStep, nil)
	e.Update(vec.New(1, 0, 0), FixedStep, nil)
	if e.State() != EnemyAttack {
		t.Fatal("setup: not in attack state")
	}

	before := e.AttackCooldownMs()
	if before != 0 {
		t.Fatalf("setup: cooldown = %v, want 0", before)
	}

	// The attack branch observes the zero cooldown and re-arms it in the
	// same call, so readiness read after Update is already spent.
	e.Update(vec.New(1, 0, 0), FixedStep, nil)

	if e.CanAttack() {
		t.Error("CanAttack true after the update that armed the attack")
	}
	if e.AttackCooldownMs() != e.Config().AttackCooldownMs {
		t.Errorf("cooldown = %v, want %v", e.AttackCooldownMs(), e.Config().AttackCooldownMs)
	}
}

func TestEnemyCooldownDecrementsAndFloors(t *testing.T) {
	e := testEnemy(vec.Zero)
	e.Update(vec.New(5, 0, 0), FixedStep, nil)
	e.Update(vec.New(1, 0, 0), FixedStep, nil)
	e.Update(vec.New(1, 0, 0), FixedStep, nil) // arms, cooldown = 1000ms

	// 1000ms at 60Hz is exactly 60 steps of 16.66ms; run a few more to
	// confirm the floor at zero.
	for i := 0; i < 70; i++ {
		e.Update(vec.New(4, 0, 0), FixedStep, nil) // out of attack range, no re-arm
	}
	if e.AttackCooldownMs() != 0 {
		t.Errorf("cooldown = %v, want floored at 0", e.AttackCooldownMs())
	}
}

func TestEnemyDeathIsTerminal(t *testing.T) {
	e := testEnemy(vec.Zero)
	e.TakeDamage(e.MaxHealth())

	if e.Dead() {
		t.Fatal("dead before the update that applies the transition")
	}
	e.Update(vec.New(5, 0, 0), FixedStep, nil)
	if !e.Dead() {
		t.Fatal("not dead after update with zero health")
	}

	// Nothing moves a dead enemy: not proximity, not damage, not time.
	rot := e.Rotation
	e.TakeDamage(50)
	e.Update(vec.New(0.5, 0, 0), FixedStep, nil)

	if e.State() != EnemyDead {
		t.Errorf("state = %v, want dead", e.State())
	}
	if e.Health() != 0 {
		t.Errorf("health = %v, want 0", e.Health())
	}
	if e.Rotation != rot {
		t.Error("dead enemy rotated")
	}
	if !e.MovementDirection().IsZero() {
		t.Error("dead enemy wants to move")
	}
}

func TestEnemyTakeDamage(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   float64
	}{
		{"normal damage", 30, 70},
		{"overkill floors at zero", 500, 0},
		{"negative damage ignored", -10, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testEnemy(vec.Zero)
			e.TakeDamage(tt.amount)
			if e.Health() != tt.want {
				t.Errorf("health = %v, want %v", e.Health(), tt.want)
			}
		})
	}
}

func TestEnemyLineOfSight(t *testing.T) {
	player := vec.New(5, 0, 0)

	tests := []struct {
		name string
		cast RaycastFunc
		want EnemyState
	}{
		{
			"no raycast capability assumes visible",
			nil,
			EnemyChase,
		},
		{
			"clear ray to the player",
			func(o, d vec.Vec3) (RaycastResult, bool) {
				return RaycastResult{Distance: 5}, true
			},
			EnemyChase,
		},
		{
			"hit short of the player minus margin blocks",
			func(o, d vec.Vec3) (RaycastResult, bool) {
				return RaycastResult{Distance: 2}, true
			},
			EnemyPatrol,
		},
		{
			"hit within the margin still counts as visible",
			func(o, d vec.Vec3) (RaycastResult, bool) {
				return RaycastResult{Distance: 4.6}, true
			},
			EnemyChase,
		},
		{
			"ray reporting nothing means no line of sight",
			func(o, d vec.Vec3) (RaycastResult, bool) {
				return RaycastResult{}, false
			},
			EnemyPatrol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testEnemy(vec.Zero)
			e.Update(player, FixedStep, tt.cast)
			if e.State() != tt.want {
				t.Errorf("state = %v, want %v", e.State(), tt.want)
			}
		})
	}
}

func TestEnemyMovementDirection(t *testing.T) {
	e := testEnemy(vec.Zero)

	// Chasing moves toward the last known player position, flattened.
	e.Update(vec.New(3, 5, 4), FixedStep, nil)
	dir := e.MovementDirection()
	if dir.Y != 0 {
		t.Errorf("chase direction Y = %v, want 0", dir.Y)
	}
	if l := dir.Length(); l < 0.999 || l > 1.001 {
		t.Errorf("chase direction length = %v, want 1", l)
	}
	if dir.X <= 0 || dir.Z <= 0 {
		t.Errorf("chase direction = %+v, want toward +X+Z", dir)
	}
}

func TestEnemyPatrolTargetWithinRadius(t *testing.T) {
	e := testEnemy(vec.New(10, 2, -10))
	e.Update(vec.New(500, 0, 0), FixedStep, nil)

	target, ok := e.PatrolTarget()
	if !ok {
		t.Fatal("no patrol target")
	}
	if d := target.Distance(e.Position); d > e.Config().PatrolRadius {
		t.Errorf("target %v units away, want within %v", d, e.Config().PatrolRadius)
	}
	if target.Y != e.Position.Y {
		t.Errorf("patrol target Y = %v, want ground level %v", target.Y, e.Position.Y)
	}
}

func TestEnemyFacesPlayerWhileEngaged(t *testing.T) {
	e := testEnemy(vec.Zero)
	e.Update(vec.New(5, 0, 0), FixedStep, nil)

	// atan2(5, 0) points along +X.
	if e.Rotation == 0 {
		t.Error("rotation unchanged while chasing a player off-axis")
	}
}
