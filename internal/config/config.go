// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all simulation and server
// settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"

	"nova-arena/internal/api"
	"nova-arena/internal/game"
	"nova-arena/internal/physics"
)

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimConfig holds fixed-timestep loop and player tuning.
type SimConfig struct {
	FrameRate        int     // fixed steps per second
	Sensitivity      float64 // radians of turn per mouse count
	PlayerMaxHealth  float64
	PlayerSpeed      float64 // units per second
	SprintMultiplier float64
	EyeHeight        float64 // camera height above the feet
	DeathFadeMs      float64 // how long dead enemies linger before removal
	SpawnIntervalMs  float64 // population top-up cadence
	Seed             int64   // 0 seeds from the wall clock
}

// DefaultSim returns the default simulation tuning.
func DefaultSim() SimConfig {
	return SimConfig{
		FrameRate:        60,
		Sensitivity:      game.DefaultSensitivity,
		PlayerMaxHealth:  100,
		PlayerSpeed:      5,
		SprintMultiplier: 1.6,
		EyeHeight:        1.6,
		DeathFadeMs:      2000,
		SpawnIntervalMs:  5000,
	}
}

// SimFromEnv returns simulation configuration with environment variable
// overrides.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()

	if fps := getEnvInt("SIM_FRAME_RATE", 0); fps > 0 {
		cfg.FrameRate = fps
	}
	if s := getEnvFloat("MOUSE_SENSITIVITY", 0); s > 0 {
		cfg.Sensitivity = s
	}
	if hp := getEnvFloat("PLAYER_MAX_HEALTH", 0); hp > 0 {
		cfg.PlayerMaxHealth = hp
	}
	if sp := getEnvFloat("PLAYER_SPEED", 0); sp > 0 {
		cfg.PlayerSpeed = sp
	}
	if si := getEnvFloat("SPAWN_INTERVAL_MS", 0); si > 0 {
		cfg.SpawnIntervalMs = si
	}
	if seed := getEnvInt("SIM_SEED", 0); seed != 0 {
		cfg.Seed = int64(seed)
	}

	return cfg
}

// =============================================================================
// ENEMY & SPAWNER CONFIGURATION
// =============================================================================

// EnemyFromEnv returns enemy tuning with environment variable overrides.
func EnemyFromEnv() game.EnemyConfig {
	cfg := game.DefaultEnemyConfig()

	if hp := getEnvFloat("ENEMY_MAX_HEALTH", 0); hp > 0 {
		cfg.MaxHealth = hp
	}
	if r := getEnvFloat("ENEMY_DETECTION_RANGE", 0); r > 0 {
		cfg.DetectionRange = r
	}
	if r := getEnvFloat("ENEMY_ATTACK_RANGE", 0); r > 0 {
		cfg.AttackRange = r
	}
	if d := getEnvInt("ENEMY_ATTACK_DAMAGE", 0); d > 0 {
		cfg.AttackDamage = d
	}
	if s := getEnvFloat("ENEMY_MOVE_SPEED", 0); s > 0 {
		cfg.MoveSpeed = s
	}
	if m := getEnvFloat("ENEMY_LOS_MARGIN", -1); m >= 0 {
		cfg.LOSMargin = m
	}

	return cfg
}

// SpawnerFromEnv returns spawner configuration with environment variable
// overrides.
func SpawnerFromEnv() game.SpawnerConfig {
	cfg := game.DefaultSpawnerConfig()
	cfg.Enemy = EnemyFromEnv()

	if n := getEnvInt("MAX_ENEMIES", 0); n > 0 {
		cfg.MaxEnemies = n
	}
	if d := getEnvFloat("SPAWN_MIN_DISTANCE", 0); d > 0 {
		cfg.MinDistanceFromPlayer = d
	}
	if r := getEnvFloat("SPAWN_RADIUS", 0); r > 0 {
		cfg.SpawnRadius = r
	}

	return cfg
}

// =============================================================================
// PHYSICS CONFIGURATION
// =============================================================================

// PhysicsFromEnv returns physics world configuration with environment
// variable overrides.
func PhysicsFromEnv() physics.Config {
	cfg := physics.DefaultConfig()

	if e := getEnvFloat("ARENA_HALF_EXTENT", 0); e > 0 {
		cfg.ArenaHalfExtent = e
	}

	return cfg
}

// =============================================================================
// AUDIO CONFIGURATION
// =============================================================================

// AudioConfig holds audio mixer settings.
type AudioConfig struct {
	Dir     string  // directory holding the .ogg cue files
	Volume  float64 // master volume (0.0 to 1.0)
	Enabled bool
}

// DefaultAudio returns the default audio configuration.
func DefaultAudio() AudioConfig {
	return AudioConfig{
		Dir:     "assets/sounds",
		Volume:  0.5,
		Enabled: true,
	}
}

// AudioFromEnv returns audio configuration with environment variable
// overrides.
func AudioFromEnv() AudioConfig {
	cfg := DefaultAudio()

	if d := os.Getenv("AUDIO_DIR"); d != "" {
		cfg.Dir = d
	}
	if v := getEnvFloat("AUDIO_VOLUME", -1); v >= 0 {
		cfg.Volume = v
	}
	if os.Getenv("AUDIO_ENABLED") == "false" {
		cfg.Enabled = false
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{Port: 3000}
}

// ServerFromEnv returns server configuration with environment variable
// overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}

	return cfg
}

// ObservabilityFromEnv returns debug server configuration with
// environment variable overrides.
func ObservabilityFromEnv() api.ObservabilityConfig {
	cfg := api.DefaultObservabilityConfig()

	if os.Getenv("DEBUG_SERVER_ENABLED") == "false" {
		cfg.Enabled = false
	}
	if addr := os.Getenv("DEBUG_SERVER_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	cfg.BasicAuthUser = os.Getenv("DEBUG_AUTH_USER")
	cfg.BasicAuthPass = os.Getenv("DEBUG_AUTH_PASS")

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Sim           SimConfig
	Weapon        game.WeaponSpec
	Spawner       game.SpawnerConfig
	Physics       physics.Config
	Audio         AudioConfig
	Server        ServerConfig
	Observability api.ObservabilityConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Sim:           SimFromEnv(),
		Weapon:        game.DefaultWeaponSpec(),
		Spawner:       SpawnerFromEnv(),
		Physics:       PhysicsFromEnv(),
		Audio:         AudioFromEnv(),
		Server:        ServerFromEnv(),
		Observability: ObservabilityFromEnv(),
	}
}

// SessionConfig assembles the game session configuration from the
// loaded app configuration.
func (c AppConfig) SessionConfig() game.SessionConfig {
	return game.SessionConfig{
		Weapon:           c.Weapon,
		Spawner:          c.Spawner,
		Sensitivity:      c.Sim.Sensitivity,
		PlayerMaxHealth:  c.Sim.PlayerMaxHealth,
		PlayerSpeed:      c.Sim.PlayerSpeed,
		SprintMultiplier: c.Sim.SprintMultiplier,
		EyeHeight:        c.Sim.EyeHeight,
		DeathFadeMs:      c.Sim.DeathFadeMs,
		SpawnIntervalMs:  c.Sim.SpawnIntervalMs,
		FrameRate:        c.Sim.FrameRate,
		Seed:             c.Sim.Seed,
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
