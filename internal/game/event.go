package game

import (
	"encoding/json"
	"time"
)

// EventType classifies simulation events.
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeRoundStart
	EventTypeRoundEnd
	EventTypeShoot
	EventTypeHit
	EventTypeEmptyClip
	EventTypeReload
	EventTypeEnemySpawn
	EventTypeEnemyDeath
	EventTypeEnemyAttack
)

// EventVersion guards replay compatibility across schema changes.
const EventVersion uint8 = 1

// Event is the wire structure written to the event log.
type Event struct {
	Version   uint8     `json:"version"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`
	TickNum   uint64    `json:"tickNum"`
	EntityID  string    `json:"entityId,omitempty"`
	Payload   []byte    `json:"payload,omitempty"`
}

// String returns the human-readable event type.
func (t EventType) String() string {
	switch t {
	case EventTypeRoundStart:
		return "round_start"
	case EventTypeRoundEnd:
		return "round_end"
	case EventTypeShoot:
		return "shoot"
	case EventTypeHit:
		return "hit"
	case EventTypeEmptyClip:
		return "empty_clip"
	case EventTypeReload:
		return "reload"
	case EventTypeEnemySpawn:
		return "enemy_spawn"
	case EventTypeEnemyDeath:
		return "enemy_death"
	case EventTypeEnemyAttack:
		return "enemy_attack"
	default:
		return "unknown"
	}
}

// Cue maps an event type to the audio cue the presentation layer plays.
// An empty cue means the event is silent.
func (t EventType) Cue() string {
	switch t {
	case EventTypeShoot:
		return "shoot"
	case EventTypeHit:
		return "hit"
	case EventTypeEmptyClip:
		return "empty_clip"
	case EventTypeReload:
		return "reload"
	case EventTypeEnemySpawn:
		return "enemy_spawn"
	case EventTypeEnemyDeath:
		return "enemy_death"
	case EventTypeEnemyAttack:
		return "enemy_attack"
	default:
		return ""
	}
}

// ShootPayload records a resolved trigger pull.
type ShootPayload struct {
	TargetID  string  `json:"targetId,omitempty"`
	Distance  float64 `json:"distance,omitempty"`
	HitEnemy  bool    `json:"hitEnemy"`
	Killed    bool    `json:"killed"`
	AmmoLeft  int     `json:"ammoLeft"`
	Score     int     `json:"score"`
	KillCount int     `json:"killCount"`
}

// EnemySpawnPayload records a new enemy entering the arena.
type EnemySpawnPayload struct {
	EnemyID string  `json:"enemyId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
}

// EnemyDeathPayload records an enemy reaching the terminal state.
type EnemyDeathPayload struct {
	EnemyID string `json:"enemyId"`
	Kills   int    `json:"kills"`
}

// EnemyAttackPayload records an enemy arming an attack on the player.
type EnemyAttackPayload struct {
	EnemyID string  `json:"enemyId"`
	Damage  int     `json:"damage"`
	Dist    float64 `json:"dist"`
}

// RoundEndPayload carries the final tallies for score submission.
type RoundEndPayload struct {
	Score  int `json:"score"`
	Kills  int `json:"kills"`
	Deaths int `json:"deaths"`
}

// EncodePayload marshals a payload to JSON bytes.
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates an event stamped with the current wall clock.
func NewEvent(eventType EventType, tickNum uint64, entityID string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		EntityID:  entityID,
		Payload:   EncodePayload(payload),
	}
}
