package game

import (
	"math"
	"testing"
)

const cameraEps = 1e-9

func TestCameraPitchClamp(t *testing.T) {
	tests := []struct {
		name string
		dy   float64
		want float64
	}{
		{"huge downward drag clamps at +89", -1e9, pitchLimit},
		{"huge upward drag clamps at -89", 1e9, -pitchLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCamera(DefaultSensitivity)
			c.ApplyMouseDelta(0, tt.dy)
			if math.Abs(c.Pitch()-tt.want) > cameraEps {
				t.Errorf("pitch = %v, want %v", c.Pitch(), tt.want)
			}
		})
	}
}

func TestCameraClampHoldsUnderRepeatedInput(t *testing.T) {
	c := NewCamera(DefaultSensitivity)
	for i := 0; i < 10000; i++ {
		c.ApplyMouseDelta(0, -500)
	}
	if c.Pitch() != pitchLimit {
		t.Errorf("pitch = %v, want exactly %v", c.Pitch(), pitchLimit)
	}
}

func TestCameraYawUnbounded(t *testing.T) {
	c := NewCamera(1) // unit sensitivity keeps the math readable
	c.ApplyMouseDelta(-4*math.Pi, 0)
	if math.Abs(c.Yaw()-4*math.Pi) > cameraEps {
		t.Errorf("yaw = %v, want %v (no wrapping)", c.Yaw(), 4*math.Pi)
	}
}

func TestCameraForward(t *testing.T) {
	tests := []struct {
		name       string
		yaw, pitch float64
		wantX      float64
		wantY      float64
		wantZ      float64
	}{
		{"level default faces -Z", 0, 0, 0, 0, -1},
		{"quarter turn faces -X", math.Pi / 2, 0, -1, 0, 0},
		{"looking straight along pitch", 0, math.Pi / 4, 0, math.Sqrt2 / 2, -math.Sqrt2 / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCamera(1)
			// Sensitivity 1 with negated deltas drives exact angles.
			c.ApplyMouseDelta(-tt.yaw, -tt.pitch)

			f := c.Forward()
			if math.Abs(f.X-tt.wantX) > cameraEps ||
				math.Abs(f.Y-tt.wantY) > cameraEps ||
				math.Abs(f.Z-tt.wantZ) > cameraEps {
				t.Errorf("forward = (%v, %v, %v), want (%v, %v, %v)",
					f.X, f.Y, f.Z, tt.wantX, tt.wantY, tt.wantZ)
			}

			if l := f.Length(); math.Abs(l-1) > cameraEps {
				t.Errorf("forward length = %v, want 1", l)
			}
		})
	}
}

func TestCameraRightPerpendicularToFlatForward(t *testing.T) {
	c := NewCamera(DefaultSensitivity)
	c.ApplyMouseDelta(123, -77)

	if d := c.Right().Dot(c.FlatForward()); math.Abs(d) > cameraEps {
		t.Errorf("right . flatForward = %v, want 0", d)
	}
}

func TestCameraFlatForwardStaysUnitUnderPitch(t *testing.T) {
	c := NewCamera(DefaultSensitivity)
	c.ApplyMouseDelta(0, -1e6) // pinned at the pitch clamp

	f := c.FlatForward()
	if f.Y != 0 {
		t.Errorf("flat forward Y = %v, want 0", f.Y)
	}
	if l := f.Length(); math.Abs(l-1) > cameraEps {
		t.Errorf("flat forward length = %v, want 1", l)
	}
}

func TestCameraReset(t *testing.T) {
	c := NewCamera(DefaultSensitivity)
	c.ApplyMouseDelta(500, 300)
	c.Reset()
	if c.Yaw() != 0 || c.Pitch() != 0 {
		t.Errorf("after reset yaw=%v pitch=%v, want 0, 0", c.Yaw(), c.Pitch())
	}
}
