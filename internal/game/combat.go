package game

import "nova-arena/internal/game/vec"

// RaycastResult is reported by the physics collaborator for a cast ray.
// TargetID is empty when the ray struck a non-enemy surface.
type RaycastResult struct {
	Distance float64
	TargetID string
}

// RaycastFunc casts a ray from origin along dir (unit length) and
// reports the nearest hit. ok is false when nothing was struck.
type RaycastFunc func(origin, dir vec.Vec3) (hit RaycastResult, ok bool)

// FireOutcome describes what a single trigger pull produced.
type FireOutcome struct {
	Fired      bool   // a round left the chamber
	Empty      bool   // trigger pulled on an empty magazine
	HitEnemy   bool   // the ray struck an enemy within range
	HitSurface bool   // the ray struck level geometry within range
	Killed     bool   // the struck enemy dropped to zero health
	TargetID   string // id of the struck enemy, if any
	Distance   float64
}

// Combat is the weapon state machine: ammo, reload progress, fire-rate
// gating, hit resolution and scoring. All mutation happens inside the
// simulation tick; timestamps are simulation milliseconds supplied by
// the session, never wall-clock reads.
type Combat struct {
	spec WeaponSpec

	ammo              int
	reloadRemainingMs float64
	lastShotMs        float64
	hasShot           bool

	score int
	kills int
}

// NewCombat creates a combat state with a full magazine.
func NewCombat(spec WeaponSpec) *Combat {
	if spec.MaxAmmo <= 0 {
		spec = DefaultWeaponSpec()
	}
	return &Combat{spec: spec, ammo: spec.MaxAmmo}
}

// Spec returns the weapon configuration.
func (c *Combat) Spec() WeaponSpec { return c.spec }

// Ammo returns rounds remaining in the magazine.
func (c *Combat) Ammo() int { return c.ammo }

// Reloading reports whether a reload is in progress.
func (c *Combat) Reloading() bool { return c.reloadRemainingMs > 0 }

// ReloadRemainingMs returns milliseconds until the reload completes.
func (c *Combat) ReloadRemainingMs() float64 { return c.reloadRemainingMs }

// Score returns the accumulated round score.
func (c *Combat) Score() int { return c.score }

// Kills returns the accumulated kill count.
func (c *Combat) Kills() int { return c.kills }

// Reset restores a fresh magazine and zeroed counters for a new round.
func (c *Combat) Reset() {
	c.ammo = c.spec.MaxAmmo
	c.reloadRemainingMs = 0
	c.lastShotMs = 0
	c.hasShot = false
	c.score = 0
	c.kills = 0
}

// AddScore adds a bonus to the round score. Negative amounts are
// clamped to no-ops at the boundary.
func (c *Combat) AddScore(points int) {
	if points < 0 {
		return
	}
	c.score += points
}

// intervalElapsed reports whether the fire-rate gap has passed.
func (c *Combat) intervalElapsed(nowMs float64) bool {
	return !c.hasShot || nowMs-c.lastShotMs >= c.spec.fireIntervalMs()
}

// TryFire resolves one trigger pull at simulation time nowMs.
//
// A shot is eligible only with ammo in the magazine, the fire-rate
// interval elapsed and no reload in progress. A hit counts only within
// weapon range; an enemy hit applies damage via lookup, a surface hit
// awards the flat hit bonus. Pulling the trigger empty (with the
// interval elapsed) stamps the shot time without touching ammo, so the
// empty-clip cue cannot be spammed faster than the fire rate.
func (c *Combat) TryFire(nowMs float64, origin, dir vec.Vec3, cast RaycastFunc, lookup func(id string) *Enemy) FireOutcome {
	var out FireOutcome

	if c.reloadRemainingMs > 0 || !c.intervalElapsed(nowMs) {
		return out
	}

	if c.ammo <= 0 {
		c.lastShotMs = nowMs
		c.hasShot = true
		out.Empty = true
		return out
	}

	if cast != nil {
		if hit, ok := cast(origin, dir); ok && hit.Distance <= c.spec.Range {
			out.Distance = hit.Distance
			if hit.TargetID == "" {
				out.HitSurface = true
				c.score += c.spec.HitScore
			} else if enemy := findEnemy(lookup, hit.TargetID); enemy != nil && !enemy.Dead() {
				out.HitEnemy = true
				out.TargetID = hit.TargetID
				enemy.TakeDamage(float64(c.spec.Damage))
				if enemy.Health() <= 0 {
					c.kills++
					c.score += c.spec.KillScore
					out.Killed = true
				}
			}
		}
	}

	c.ammo--
	c.lastShotMs = nowMs
	c.hasShot = true
	out.Fired = true
	return out
}

func findEnemy(lookup func(id string) *Enemy, id string) *Enemy {
	if lookup == nil {
		return nil
	}
	return lookup(id)
}

// TryReload starts a reload. Eligible only with a partial magazine and
// no reload already running; ineligible calls are silent no-ops.
func (c *Combat) TryReload() bool {
	if c.ammo >= c.spec.MaxAmmo || c.reloadRemainingMs > 0 {
		return false
	}
	c.reloadRemainingMs = c.spec.ReloadMs
	return true
}

// Tick advances reload progress by one simulation step. The step that
// drives the timer to zero refills the magazine, exactly once per
// reload cycle.
func (c *Combat) Tick(dt float64) {
	if c.reloadRemainingMs <= 0 {
		return
	}
	c.reloadRemainingMs -= dt * 1000
	if c.reloadRemainingMs <= 0 {
		c.reloadRemainingMs = 0
		c.ammo = c.spec.MaxAmmo
	}
}
