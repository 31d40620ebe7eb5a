package game

// WeaponSpec is the static configuration of a hitscan weapon loadout.
// Damage resolution is instantaneous along the camera ray; there is no
// projectile travel or spread.
type WeaponSpec struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	MaxAmmo   int     `json:"maxAmmo"`
	FireRate  float64 `json:"fireRate"` // shots per second
	ReloadMs  float64 `json:"reloadMs"` // full reload duration
	Range     float64 `json:"range"`    // max hit distance in world units
	Damage    int     `json:"damage"`
	HitScore  int     `json:"hitScore"`  // awarded for a surface hit
	KillScore int     `json:"killScore"` // awarded for an enemy kill
}

// DefaultWeaponSpec returns the standard rifle loadout.
func DefaultWeaponSpec() WeaponSpec {
	return WeaponSpec{
		ID:        "rifle",
		Name:      "Rifle",
		MaxAmmo:   30,
		FireRate:  10,
		ReloadMs:  1500,
		Range:     100,
		Damage:    25,
		HitScore:  10,
		KillScore: 100,
	}
}

// fireIntervalMs returns the minimum gap between shots.
func (w WeaponSpec) fireIntervalMs() float64 {
	if w.FireRate <= 0 {
		return 0
	}
	return 1000 / w.FireRate
}
