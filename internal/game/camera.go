package game

import (
	"math"

	"nova-arena/internal/game/vec"
)

const (
	// DefaultSensitivity converts raw pointer delta units to radians.
	DefaultSensitivity = 0.002

	// pitchLimit clamps vertical look to just short of straight up/down.
	pitchLimit = 89.0 * math.Pi / 180.0
)

// Camera owns the player's view orientation. Yaw rotates around the Y
// axis (0 faces -Z), pitch around the view-right axis; roll is always 0.
// Consumers read derived vectors and never mutate orientation directly.
type Camera struct {
	yaw         float64
	pitch       float64
	sensitivity float64
}

// NewCamera creates a camera with the given sensitivity; zero or
// negative falls back to DefaultSensitivity.
func NewCamera(sensitivity float64) *Camera {
	if sensitivity <= 0 {
		sensitivity = DefaultSensitivity
	}
	return &Camera{sensitivity: sensitivity}
}

// ApplyMouseDelta turns accumulated pointer deltas into orientation.
// Pitch is clamped to ±89° no matter how large the cumulative input is.
func (c *Camera) ApplyMouseDelta(dx, dy float64) {
	c.yaw -= dx * c.sensitivity
	c.pitch -= dy * c.sensitivity

	if c.pitch > pitchLimit {
		c.pitch = pitchLimit
	}
	if c.pitch < -pitchLimit {
		c.pitch = -pitchLimit
	}
}

// Yaw returns the horizontal orientation in radians.
func (c *Camera) Yaw() float64 { return c.yaw }

// Pitch returns the vertical orientation in radians.
func (c *Camera) Pitch() float64 { return c.pitch }

// Forward returns the unit view direction.
func (c *Camera) Forward() vec.Vec3 {
	cp := math.Cos(c.pitch)
	return vec.Vec3{
		X: -math.Sin(c.yaw) * cp,
		Y: math.Sin(c.pitch),
		Z: -math.Cos(c.yaw) * cp,
	}
}

// Right returns the unit vector pointing to the camera's right on the
// horizontal plane.
func (c *Camera) Right() vec.Vec3 {
	return vec.Vec3{
		X: math.Cos(c.yaw),
		Z: -math.Sin(c.yaw),
	}
}

// FlatForward returns the view direction projected onto the ground
// plane, for locomotion.
func (c *Camera) FlatForward() vec.Vec3 {
	return c.Forward().Flat().Normalize()
}

// Reset returns the camera to the level, forward-facing orientation.
func (c *Camera) Reset() {
	c.yaw = 0
	c.pitch = 0
}
