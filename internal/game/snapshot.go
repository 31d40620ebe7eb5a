package game

import (
	"sync/atomic"
	"time"
)

// PlayerSnapshot is an immutable copy of player state.
type PlayerSnapshot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Yaw    float64 `json:"yaw"`
	Pitch  float64 `json:"pitch"`
	Health float64 `json:"health"`
}

// WeaponSnapshot is an immutable copy of weapon state.
type WeaponSnapshot struct {
	Ammo              int     `json:"ammo"`
	MaxAmmo           int     `json:"maxAmmo"`
	Reloading         bool    `json:"reloading"`
	ReloadRemainingMs float64 `json:"reloadRemainingMs"`
}

// EnemySnapshot is an immutable copy of one enemy for presentation.
type EnemySnapshot struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Rotation  float64 `json:"rotation"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
	State     string  `json:"state"`
}

// SessionSnapshot is a complete immutable view of one simulation tick,
// the only thing external code ever reads between ticks.
type SessionSnapshot struct {
	Sequence   uint64    `json:"sequence"`
	Timestamp  time.Time `json:"timestamp"`
	TickNumber uint64    `json:"tickNumber"`

	Player  PlayerSnapshot  `json:"player"`
	Weapon  WeaponSnapshot  `json:"weapon"`
	Enemies []EnemySnapshot `json:"enemies"`

	AliveCount  int  `json:"aliveCount"`
	Score       int  `json:"score"`
	Kills       int  `json:"kills"`
	Deaths      int  `json:"deaths"`
	RoundActive bool `json:"roundActive"`
}

// SnapshotPool triple-buffers snapshots so the presentation side reads
// without taking the simulation lock and the tick writes without
// allocating.
type SnapshotPool struct {
	snapshots [3]SessionSnapshot
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic
}

// NewSnapshotPool pre-allocates enemy slices for maxEnemies entries.
func NewSnapshotPool(maxEnemies int) *SnapshotPool {
	if maxEnemies < 0 {
		maxEnemies = 0
	}
	pool := &SnapshotPool{}
	for i := range pool.snapshots {
		pool.snapshots[i].Enemies = make([]EnemySnapshot, 0, maxEnemies)
	}
	return pool
}

// AcquireWrite returns the next write slot with its slices reset but
// capacity preserved. Producer (tick) only.
func (p *SnapshotPool) AcquireWrite() *SessionSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]
	snap.Enemies = snap.Enemies[:0]
	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()
	return snap
}

// PublishWrite makes the populated write slot visible to readers.
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead returns the latest published snapshot. Consumer only.
func (p *SnapshotPool) AcquireRead() *SessionSnapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}
