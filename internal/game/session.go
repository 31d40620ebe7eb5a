package game

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"nova-arena/internal/game/vec"
)

// Physics is the external movement/collision collaborator. It consumes
// desired velocities, reports back integrated positions and exposes the
// raycast primitive used for weapon hits and AI line of sight.
type Physics interface {
	MovePlayer(pos, velocity vec.Vec3, dt float64) vec.Vec3
	MoveEnemy(id string, pos, velocity vec.Vec3, dt float64) vec.Vec3
	AddEnemy(id string, pos vec.Vec3)
	RemoveEnemy(id string)
	Raycast(origin, dir vec.Vec3) (RaycastResult, bool)
}

// AudioSink receives fire-and-forget cue requests. The simulation never
// waits on it.
type AudioSink interface {
	PlaySound(name string, volume float64)
}

// NoopAudio discards every cue. Used for headless runs and tests.
type NoopAudio struct{}

// PlaySound implements AudioSink.
func (NoopAudio) PlaySound(string, float64) {}

// RoundResult carries the final tallies exposed for score submission.
// The session does not perform the network call itself.
type RoundResult struct {
	Score  int `json:"score"`
	Kills  int `json:"kills"`
	Deaths int `json:"deaths"`
}

// SessionConfig assembles the tuning for one arena session.
type SessionConfig struct {
	Weapon  WeaponSpec
	Spawner SpawnerConfig

	Sensitivity      float64
	PlayerMaxHealth  float64
	PlayerSpeed      float64 // units per second
	SprintMultiplier float64
	EyeHeight        float64

	DeathFadeMs     float64 // how long dead enemies linger before removal
	SpawnIntervalMs float64 // population top-up cadence

	FrameRate int
	Clock     Clock
	Seed      int64 // 0 means seed from the wall clock
}

// DefaultSessionConfig returns the standard arena tuning.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Weapon:           DefaultWeaponSpec(),
		Spawner:          DefaultSpawnerConfig(),
		Sensitivity:      DefaultSensitivity,
		PlayerMaxHealth:  100,
		PlayerSpeed:      5,
		SprintMultiplier: 1.6,
		EyeHeight:        1.6,
		DeathFadeMs:      2000,
		SpawnIntervalMs:  5000,
		FrameRate:        60,
	}
}

// Session owns all simulation state for one player's arena run and
// mutates it only inside the fixed-timestep tick. External code feeds
// device events through Input() and reads state through Snapshot();
// nothing else touches the internals.
type Session struct {
	mu  sync.Mutex
	cfg SessionConfig

	input   *InputAggregator
	camera  *Camera
	combat  *Combat
	spawner *Spawner

	enemies  []*Enemy
	byID     map[string]*Enemy
	deadFade map[string]float64

	physics Physics
	audio   AudioSink
	events  *EventLog
	pool    *SnapshotPool
	loop    *Loop
	rng     *rand.Rand

	playerPos    vec.Vec3
	playerHealth float64
	deaths       int

	tickCount   uint64
	simMs       float64
	spawnWaitMs float64
	roundActive bool

	renderHook   func(*SessionSnapshot)
	tickObserver func(time.Duration)
}

// NewSession wires a session against its collaborators. audio may be
// nil (cues are dropped) and events may be nil (nothing is logged);
// physics may be nil for pure state-machine tests.
func NewSession(cfg SessionConfig, physics Physics, audio AudioSink, events *EventLog) *Session {
	if cfg.PlayerMaxHealth <= 0 {
		cfg = DefaultSessionConfig()
	}
	if audio == nil {
		audio = NoopAudio{}
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	s := &Session{
		cfg:          cfg,
		input:        NewInputAggregator(),
		camera:       NewCamera(cfg.Sensitivity),
		combat:       NewCombat(cfg.Weapon),
		spawner:      NewSpawner(cfg.Spawner, rng),
		byID:         make(map[string]*Enemy),
		deadFade:     make(map[string]float64),
		physics:      physics,
		audio:        audio,
		events:       events,
		pool:         NewSnapshotPool(cfg.Spawner.MaxEnemies),
		rng:          rng,
		playerHealth: cfg.PlayerMaxHealth,
	}
	s.loop = NewLoop(LoopConfig{FrameRate: cfg.FrameRate, Clock: cfg.Clock}, s.step, s.render)
	return s
}

// Input returns the aggregator the platform layer feeds device events into.
func (s *Session) Input() *InputAggregator { return s.input }

// SetRenderHook registers a per-frame callback receiving the latest
// published snapshot, e.g. for websocket fan-out.
func (s *Session) SetRenderHook(hook func(*SessionSnapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderHook = hook
}

// SetTickObserver registers a callback receiving each tick's duration,
// e.g. for metrics.
func (s *Session) SetTickObserver(obs func(time.Duration)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickObserver = obs
}

// Start begins the fixed-timestep loop. Idempotent.
func (s *Session) Start() {
	s.loop.Start()
	log.Printf("session loop started at %d fps frame rate", s.cfg.FrameRate)
}

// Stop cancels the loop. All state stays exactly as last computed.
func (s *Session) Stop() {
	s.loop.Stop()
	log.Printf("session loop stopped")
}

// StartRound resets weapon and player state and spawns the opening
// enemy wave.
func (s *Session) StartRound() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.enemies {
		s.removeEnemyBody(e.ID)
	}
	s.enemies = s.enemies[:0]
	s.byID = make(map[string]*Enemy)
	s.deadFade = make(map[string]float64)

	s.combat.Reset()
	s.playerPos = vec.Zero
	s.playerHealth = s.cfg.PlayerMaxHealth
	s.deaths = 0
	s.spawnWaitMs = s.cfg.SpawnIntervalMs
	s.roundActive = true

	for _, e := range s.spawner.SpawnInitialEnemies(s.playerPos) {
		s.addEnemy(e)
	}

	s.emit(EventTypeRoundStart, "", nil)
	log.Printf("round started with %d enemies", len(s.enemies))
}

// EndRound closes the round and returns the final tallies for
// submission by the caller.
func (s *Session) EndRound() RoundResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := RoundResult{
		Score:  s.combat.Score(),
		Kills:  s.combat.Kills(),
		Deaths: s.deaths,
	}
	s.roundActive = false
	s.emit(EventTypeRoundEnd, "", RoundEndPayload(result))
	log.Printf("round ended: score=%d kills=%d deaths=%d", result.Score, result.Kills, result.Deaths)
	return result
}

// RoundActive reports whether a round is in progress.
func (s *Session) RoundActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roundActive
}

// Snapshot returns the latest published tick snapshot.
func (s *Session) Snapshot() *SessionSnapshot {
	return s.pool.AcquireRead()
}

// step advances the whole simulation by one fixed timestep. Input is
// sampled once up front and held constant for combat, AI and camera
// resolution, so every subsystem observes a consistent intent snapshot.
func (s *Session) step(dt float64) {
	started := time.Now()

	s.mu.Lock()
	if s.roundActive {
		s.tickCount++
		s.simMs += dt * 1000

		snap := s.input.Snapshot()
		s.applyCamera(snap)
		s.movePlayer(snap, dt)
		s.resolveCombat(snap, dt)
		s.updateEnemies(dt)
		s.topUpPopulation(dt)
	}
	obs := s.tickObserver
	s.mu.Unlock()

	if obs != nil {
		obs(time.Since(started))
	}
}

// render publishes a snapshot once per frame, however many simulation
// steps the frame carried.
func (s *Session) render() {
	s.mu.Lock()
	s.produceSnapshotLocked()
	hook := s.renderHook
	s.mu.Unlock()

	if hook != nil {
		hook(s.pool.AcquireRead())
	}
}

// applyCamera feeds accumulated mouse deltas into orientation, then
// clears them — the deltas never reset on their own, consumption is
// the only reset.
func (s *Session) applyCamera(snap InputSnapshot) {
	if snap.PointerCaptured {
		s.camera.ApplyMouseDelta(snap.MouseDX, snap.MouseDY)
	}
	s.input.ClearMouseDelta()
}

// movePlayer derives a desired velocity from held intents and camera
// yaw and hands it to the physics executor.
func (s *Session) movePlayer(snap InputSnapshot, dt float64) {
	if s.physics == nil {
		return
	}

	wish := vec.Zero
	if snap.Forward {
		wish = wish.Add(s.camera.FlatForward())
	}
	if snap.Backward {
		wish = wish.Sub(s.camera.FlatForward())
	}
	if snap.Right {
		wish = wish.Add(s.camera.Right())
	}
	if snap.Left {
		wish = wish.Sub(s.camera.Right())
	}
	wish = wish.Flat().Normalize()

	speed := s.cfg.PlayerSpeed
	if snap.Sprint {
		speed *= s.cfg.SprintMultiplier
	}
	s.playerPos = s.physics.MovePlayer(s.playerPos, wish.Scale(speed), dt)
}

// resolveCombat handles reload and fire intents, then advances the
// reload timer.
func (s *Session) resolveCombat(snap InputSnapshot, dt float64) {
	if snap.Reload && s.combat.TryReload() {
		s.emit(EventTypeReload, "", nil)
		s.audio.PlaySound(EventTypeReload.Cue(), 1)
	}

	if snap.Shoot {
		eye := s.playerPos.Add(vec.New(0, s.cfg.EyeHeight, 0))
		out := s.combat.TryFire(s.simMs, eye, s.camera.Forward(), s.raycast(), s.lookupEnemy)

		switch {
		case out.Empty:
			s.emit(EventTypeEmptyClip, "", nil)
			s.audio.PlaySound(EventTypeEmptyClip.Cue(), 0.6)
		case out.Fired:
			s.emit(EventTypeShoot, "", ShootPayload{
				TargetID:  out.TargetID,
				Distance:  out.Distance,
				HitEnemy:  out.HitEnemy,
				Killed:    out.Killed,
				AmmoLeft:  s.combat.Ammo(),
				Score:     s.combat.Score(),
				KillCount: s.combat.Kills(),
			})
			s.audio.PlaySound(EventTypeShoot.Cue(), 1)
			if out.HitEnemy || out.HitSurface {
				s.emit(EventTypeHit, out.TargetID, nil)
				s.audio.PlaySound(EventTypeHit.Cue(), 1)
			}
		}
	}

	s.combat.Tick(dt)
}

// updateEnemies drives every enemy's state machine, applies armed
// attacks, moves the living and retires the dead after the fade window.
func (s *Session) updateEnemies(dt float64) {
	cast := s.raycast()

	n := 0
	for _, e := range s.enemies {
		wasDead := e.Dead()
		cooldownBefore := e.AttackCooldownMs()

		e.Update(s.playerPos, dt, cast)

		if !wasDead && e.Dead() {
			s.emit(EventTypeEnemyDeath, e.ID, EnemyDeathPayload{EnemyID: e.ID, Kills: s.combat.Kills()})
			s.audio.PlaySound(EventTypeEnemyDeath.Cue(), 1)
			s.removeEnemyBody(e.ID)
			s.deadFade[e.ID] = s.cfg.DeathFadeMs
		}

		if e.Dead() {
			s.deadFade[e.ID] -= dt * 1000
			if s.deadFade[e.ID] <= 0 {
				delete(s.deadFade, e.ID)
				delete(s.byID, e.ID)
				continue
			}
			s.enemies[n] = e
			n++
			continue
		}

		// The attack branch re-arms the cooldown the moment it sees
		// zero, so a cooldown that grew during Update means an attack
		// was armed this tick.
		if e.State() == EnemyAttack && e.AttackCooldownMs() > cooldownBefore {
			s.emit(EventTypeEnemyAttack, e.ID, EnemyAttackPayload{
				EnemyID: e.ID,
				Damage:  e.AttackDamage(),
				Dist:    e.Position.Distance(s.playerPos),
			})
			s.audio.PlaySound(EventTypeEnemyAttack.Cue(), 1)
		}

		// Readiness is read after Update, which already consumed the
		// cooldown it armed. Matches the observable contract; callers
		// relying on a different ordering would change tick semantics.
		if e.CanAttack() {
			s.damagePlayer(float64(e.AttackDamage()))
		}

		if s.physics != nil {
			dir := e.MovementDirection()
			if !dir.IsZero() {
				e.Position = s.physics.MoveEnemy(e.ID, e.Position, dir.Scale(e.Config().MoveSpeed), dt)
			}
		}

		s.enemies[n] = e
		n++
	}
	s.enemies = s.enemies[:n]
}

// topUpPopulation periodically asks the spawner for a replacement
// enemy; the spawner enforces the alive cap.
func (s *Session) topUpPopulation(dt float64) {
	s.spawnWaitMs -= dt * 1000
	if s.spawnWaitMs > 0 {
		return
	}
	s.spawnWaitMs = s.cfg.SpawnIntervalMs

	alive := 0
	for _, e := range s.enemies {
		if !e.Dead() {
			alive++
		}
	}
	if e := s.spawner.SpawnEnemy(s.playerPos, alive); e != nil {
		s.addEnemy(e)
	}
}

func (s *Session) damagePlayer(amount float64) {
	if amount < 0 {
		return
	}
	s.playerHealth -= amount
	if s.playerHealth <= 0 {
		s.deaths++
		s.playerHealth = s.cfg.PlayerMaxHealth
		s.playerPos = vec.Zero
	}
}

func (s *Session) addEnemy(e *Enemy) {
	s.enemies = append(s.enemies, e)
	s.byID[e.ID] = e
	if s.physics != nil {
		s.physics.AddEnemy(e.ID, e.Position)
	}
	s.emit(EventTypeEnemySpawn, e.ID, EnemySpawnPayload{
		EnemyID: e.ID,
		X:       e.Position.X,
		Y:       e.Position.Y,
		Z:       e.Position.Z,
	})
	s.audio.PlaySound(EventTypeEnemySpawn.Cue(), 0.8)
}

func (s *Session) removeEnemyBody(id string) {
	if s.physics != nil {
		s.physics.RemoveEnemy(id)
	}
}

func (s *Session) lookupEnemy(id string) *Enemy {
	return s.byID[id]
}

// raycast adapts the physics collaborator into the RaycastFunc shape;
// nil when no physics is wired, which the consumers treat per contract.
func (s *Session) raycast() RaycastFunc {
	if s.physics == nil {
		return nil
	}
	return s.physics.Raycast
}

func (s *Session) emit(t EventType, entityID string, payload interface{}) {
	if s.events == nil {
		return
	}
	s.events.EmitSimple(t, s.tickCount, entityID, payload)
}

func (s *Session) produceSnapshotLocked() {
	snap := s.pool.AcquireWrite()
	snap.TickNumber = s.tickCount
	snap.Player = PlayerSnapshot{
		X:      s.playerPos.X,
		Y:      s.playerPos.Y,
		Z:      s.playerPos.Z,
		Yaw:    s.camera.Yaw(),
		Pitch:  s.camera.Pitch(),
		Health: s.playerHealth,
	}
	snap.Weapon = WeaponSnapshot{
		Ammo:              s.combat.Ammo(),
		MaxAmmo:           s.combat.Spec().MaxAmmo,
		Reloading:         s.combat.Reloading(),
		ReloadRemainingMs: s.combat.ReloadRemainingMs(),
	}

	alive := 0
	for _, e := range s.enemies {
		if !e.Dead() {
			alive++
		}
		snap.Enemies = append(snap.Enemies, EnemySnapshot{
			ID:        e.ID,
			X:         e.Position.X,
			Y:         e.Position.Y,
			Z:         e.Position.Z,
			Rotation:  e.Rotation,
			Health:    e.Health(),
			MaxHealth: e.MaxHealth(),
			State:     e.State().String(),
		})
	}
	snap.AliveCount = alive
	snap.Score = s.combat.Score()
	snap.Kills = s.combat.Kills()
	snap.Deaths = s.deaths
	snap.RoundActive = s.roundActive

	s.pool.PublishWrite()
}
