package game

import (
	"testing"

	"nova-arena/internal/game/vec"
)

func missCast(origin, dir vec.Vec3) (RaycastResult, bool) {
	return RaycastResult{}, false
}

func surfaceCast(dist float64) RaycastFunc {
	return func(origin, dir vec.Vec3) (RaycastResult, bool) {
		return RaycastResult{Distance: dist}, true
	}
}

func enemyCast(id string, dist float64) RaycastFunc {
	return func(origin, dir vec.Vec3) (RaycastResult, bool) {
		return RaycastResult{Distance: dist, TargetID: id}, true
	}
}

func TestCombatFireConsumesAmmo(t *testing.T) {
	c := NewCombat(DefaultWeaponSpec())

	out := c.TryFire(0, vec.Zero, vec.New(0, 0, -1), missCast, nil)

	if !out.Fired {
		t.Fatal("first shot did not fire")
	}
	if out.HitEnemy || out.HitSurface || out.Empty {
		t.Errorf("miss outcome = %+v, want clean miss", out)
	}
	if c.Ammo() != 29 {
		t.Errorf("ammo = %d, want 29", c.Ammo())
	}
	if c.Score() != 0 {
		t.Errorf("score after miss = %d, want 0", c.Score())
	}
}

func TestCombatFireRateGating(t *testing.T) {
	spec := DefaultWeaponSpec() // 10 rounds/sec, 100ms interval
	c := NewCombat(spec)

	if out := c.TryFire(0, vec.Zero, vec.Zero, missCast, nil); !out.Fired {
		t.Fatal("first shot blocked")
	}
	if out := c.TryFire(50, vec.Zero, vec.Zero, missCast, nil); out.Fired {
		t.Error("shot 50ms after previous should be gated")
	}
	if out := c.TryFire(100, vec.Zero, vec.Zero, missCast, nil); !out.Fired {
		t.Error("shot exactly at the interval boundary should fire")
	}
	if c.Ammo() != 28 {
		t.Errorf("ammo = %d, want 28 after two fired shots", c.Ammo())
	}
}

func TestCombatEmptyMagazine(t *testing.T) {
	spec := DefaultWeaponSpec()
	spec.MaxAmmo = 2
	c := NewCombat(spec)

	c.TryFire(0, vec.Zero, vec.Zero, missCast, nil)
	c.TryFire(100, vec.Zero, vec.Zero, missCast, nil)
	if c.Ammo() != 0 {
		t.Fatalf("ammo = %d, want 0", c.Ammo())
	}

	out := c.TryFire(200, vec.Zero, vec.Zero, missCast, nil)
	if !out.Empty || out.Fired {
		t.Fatalf("empty pull outcome = %+v, want Empty without Fired", out)
	}
	if c.Ammo() != 0 {
		t.Errorf("ammo went negative: %d", c.Ammo())
	}

	// The empty pull stamps the shot time, so the click cannot be
	// spammed faster than the fire rate.
	if out := c.TryFire(250, vec.Zero, vec.Zero, missCast, nil); out.Empty {
		t.Error("empty click repeated inside the fire-rate interval")
	}
}

func TestCombatReloadCycle(t *testing.T) {
	c := NewCombat(DefaultWeaponSpec())
	c.TryFire(0, vec.Zero, vec.Zero, missCast, nil)

	if !c.TryReload() {
		t.Fatal("reload refused with a partial magazine")
	}
	if !c.Reloading() {
		t.Fatal("not reloading after TryReload")
	}
	if c.TryReload() {
		t.Error("second reload accepted while one is in progress")
	}

	// Firing is blocked for the whole reload.
	if out := c.TryFire(1000, vec.Zero, vec.Zero, missCast, nil); out.Fired || out.Empty {
		t.Errorf("fire during reload = %+v, want fully blocked", out)
	}

	// Drive the 1500ms reload with fixed steps; the refill must land
	// exactly once, on the step that crosses zero.
	steps := 0
	for c.Reloading() {
		c.Tick(FixedStep)
		steps++
		if steps > 200 {
			t.Fatal("reload never completed")
		}
	}
	if c.Ammo() != c.Spec().MaxAmmo {
		t.Errorf("ammo after reload = %d, want %d", c.Ammo(), c.Spec().MaxAmmo)
	}

	// Further ticks must not refill again after shots are spent.
	c.TryFire(5000, vec.Zero, vec.Zero, missCast, nil)
	c.Tick(FixedStep)
	if c.Ammo() != c.Spec().MaxAmmo-1 {
		t.Errorf("ammo = %d, want %d (idle tick refilled)", c.Ammo(), c.Spec().MaxAmmo-1)
	}
}

func TestCombatReloadRefusedWhenFull(t *testing.T) {
	c := NewCombat(DefaultWeaponSpec())
	if c.TryReload() {
		t.Error("reload accepted with a full magazine")
	}
}

func TestCombatSurfaceHitAwardsHitScore(t *testing.T) {
	spec := DefaultWeaponSpec()
	c := NewCombat(spec)

	out := c.TryFire(0, vec.Zero, vec.Zero, surfaceCast(20), nil)

	if !out.HitSurface {
		t.Fatal("surface hit not reported")
	}
	if c.Score() != spec.HitScore {
		t.Errorf("score = %d, want %d", c.Score(), spec.HitScore)
	}
}

func TestCombatHitBeyondRangeIsMiss(t *testing.T) {
	spec := DefaultWeaponSpec()
	c := NewCombat(spec)

	out := c.TryFire(0, vec.Zero, vec.Zero, surfaceCast(spec.Range+1), nil)

	if out.HitSurface || out.HitEnemy {
		t.Errorf("hit beyond range: %+v", out)
	}
	if !out.Fired {
		t.Error("round not spent on an out-of-range shot")
	}
	if c.Score() != 0 {
		t.Errorf("score = %d, want 0", c.Score())
	}
}

func TestCombatEnemyHitAndKill(t *testing.T) {
	spec := DefaultWeaponSpec()
	cfg := DefaultEnemyConfig()
	cfg.MaxHealth = 50 // two 25-damage shots
	target := NewEnemy("e1", vec.New(0, 0, -10), cfg, nil)
	lookup := func(id string) *Enemy {
		if id == "e1" {
			return target
		}
		return nil
	}

	c := NewCombat(spec)

	out := c.TryFire(0, vec.Zero, vec.New(0, 0, -1), enemyCast("e1", 10), lookup)
	if !out.HitEnemy || out.Killed {
		t.Fatalf("first hit outcome = %+v, want hit without kill", out)
	}
	if target.Health() != 25 {
		t.Errorf("enemy health = %v, want 25", target.Health())
	}
	if c.Score() != 0 {
		t.Errorf("score after non-lethal enemy hit = %d, want 0", c.Score())
	}

	out = c.TryFire(100, vec.Zero, vec.New(0, 0, -1), enemyCast("e1", 10), lookup)
	if !out.Killed {
		t.Fatalf("second hit outcome = %+v, want kill", out)
	}
	if c.Kills() != 1 {
		t.Errorf("kills = %d, want 1", c.Kills())
	}
	if c.Score() != spec.KillScore {
		t.Errorf("score = %d, want %d", c.Score(), spec.KillScore)
	}
}

func TestCombatDeadEnemyHitScoresNothing(t *testing.T) {
	cfg := DefaultEnemyConfig()
	target := NewEnemy("e1", vec.New(0, 0, -10), cfg, nil)
	target.TakeDamage(cfg.MaxHealth)
	target.Update(vec.New(0, 0, 100), FixedStep, nil) // transitions to dead
	if !target.Dead() {
		t.Fatal("setup: enemy not dead")
	}

	c := NewCombat(DefaultWeaponSpec())
	out := c.TryFire(0, vec.Zero, vec.Zero, enemyCast("e1", 10), func(string) *Enemy { return target })

	if out.HitEnemy || out.HitSurface || out.Killed {
		t.Errorf("outcome against a corpse = %+v, want plain miss", out)
	}
	if c.Score() != 0 || c.Kills() != 0 {
		t.Errorf("score=%d kills=%d, want 0, 0", c.Score(), c.Kills())
	}
}

func TestCombatReset(t *testing.T) {
	c := NewCombat(DefaultWeaponSpec())
	c.TryFire(0, vec.Zero, vec.Zero, surfaceCast(5), nil)
	c.TryReload()

	c.Reset()

	if c.Ammo() != c.Spec().MaxAmmo || c.Reloading() || c.Score() != 0 || c.Kills() != 0 {
		t.Errorf("reset left state: ammo=%d reloading=%v score=%d kills=%d",
			c.Ammo(), c.Reloading(), c.Score(), c.Kills())
	}
	// The fire-rate stamp resets too: an immediate shot at t=0 fires.
	if out := c.TryFire(0, vec.Zero, vec.Zero, missCast, nil); !out.Fired {
		t.Error("shot at t=0 blocked after reset")
	}
}

func TestCombatAddScoreClampsNegative(t *testing.T) {
	c := NewCombat(DefaultWeaponSpec())
	c.AddScore(50)
	c.AddScore(-100)
	if c.Score() != 50 {
		t.Errorf("score = %d, want 50", c.Score())
	}
}
