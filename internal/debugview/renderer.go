// Package debugview renders top-down PNG views of the arena for
// development and debugging. Not part of the gameplay path.
package debugview

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"math"
	"net/http"
	"sync"

	"nova-arena/internal/game"

	"github.com/fogleman/gg"
)

// Config controls the rendered view.
type Config struct {
	Width           int
	Height          int
	ArenaHalfExtent float64 // world units mapped to the image edge
}

// DefaultConfig returns the standard debug view parameters.
func DefaultConfig() Config {
	return Config{
		Width:           800,
		Height:          800,
		ArenaHalfExtent: 40,
	}
}

// Renderer draws session snapshots onto a reusable canvas.
type Renderer struct {
	cfg Config
	dc  *gg.Context
}

// NewRenderer creates a renderer with its own canvas.
func NewRenderer(cfg Config) *Renderer {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg = DefaultConfig()
	}
	return &Renderer{
		cfg: cfg,
		dc:  gg.NewContext(cfg.Width, cfg.Height),
	}
}

// worldToScreen maps arena coordinates (X east, Z south) to pixels with
// the arena origin at the image center.
func (r *Renderer) worldToScreen(x, z float64) (float64, float64) {
	scale := float64(r.cfg.Width) / (2 * r.cfg.ArenaHalfExtent)
	sx := float64(r.cfg.Width)/2 + x*scale
	sy := float64(r.cfg.Height)/2 + z*scale
	return sx, sy
}

// stateColor picks the marker color for an enemy state.
func stateColor(state string) (float64, float64, float64) {
	switch state {
	case "chase":
		return 0.95, 0.55, 0.1
	case "attack":
		return 0.9, 0.15, 0.15
	case "dead":
		return 0.4, 0.4, 0.4
	case "patrol":
		return 0.85, 0.8, 0.2
	default: // idle
		return 0.3, 0.6, 0.9
	}
}

// Render draws the snapshot and returns the resulting image. The
// returned image is backed by the renderer's canvas and is only valid
// until the next Render call.
func (r *Renderer) Render(snap *game.SessionSnapshot) image.Image {
	dc := r.dc
	w := float64(r.cfg.Width)
	h := float64(r.cfg.Height)

	dc.SetRGB(0.08, 0.09, 0.11)
	dc.Clear()

	// Arena bounds.
	x0, y0 := r.worldToScreen(-r.cfg.ArenaHalfExtent, -r.cfg.ArenaHalfExtent)
	x1, y1 := r.worldToScreen(r.cfg.ArenaHalfExtent, r.cfg.ArenaHalfExtent)
	dc.SetRGB(0.25, 0.27, 0.3)
	dc.SetLineWidth(2)
	dc.DrawRectangle(x0, y0, x1-x0, y1-y0)
	dc.Stroke()

	// Grid lines every 10 world units.
	dc.SetRGB(0.14, 0.15, 0.17)
	dc.SetLineWidth(1)
	for g := -r.cfg.ArenaHalfExtent; g <= r.cfg.ArenaHalfExtent; g += 10 {
		gx, _ := r.worldToScreen(g, 0)
		dc.DrawLine(gx, y0, gx, y1)
		_, gy := r.worldToScreen(0, g)
		dc.DrawLine(x0, gy, x1, gy)
	}
	dc.Stroke()

	for _, e := range snap.Enemies {
		ex, ey := r.worldToScreen(e.X, e.Z)
		cr, cg, cb := stateColor(e.State)
		dc.SetRGB(cr, cg, cb)
		dc.DrawCircle(ex, ey, 7)
		dc.Fill()

		// Health arc above living enemies.
		if e.State != "dead" && e.MaxHealth > 0 {
			frac := e.Health / e.MaxHealth
			dc.SetRGB(0.2, 0.85, 0.3)
			dc.SetLineWidth(3)
			dc.DrawLine(ex-8, ey-12, ex-8+16*frac, ey-12)
			dc.Stroke()
		}

		dc.SetRGB(0.7, 0.7, 0.7)
		dc.DrawStringAnchored(e.ID, ex, ey+16, 0.5, 0.5)
	}

	// Player marker with a facing line.
	px, py := r.worldToScreen(snap.Player.X, snap.Player.Z)
	dc.SetRGB(0.2, 0.9, 0.4)
	dc.DrawCircle(px, py, 8)
	dc.Fill()

	fx, fz := facing(snap.Player.Yaw)
	tx, ty := r.worldToScreen(snap.Player.X+fx*3, snap.Player.Z+fz*3)
	dc.SetLineWidth(2)
	dc.DrawLine(px, py, tx, ty)
	dc.Stroke()

	// HUD line.
	dc.SetRGB(0.9, 0.9, 0.9)
	hud := fmt.Sprintf("tick %d  score %d  kills %d  ammo %d/%d  alive %d",
		snap.TickNumber, snap.Score, snap.Kills,
		snap.Weapon.Ammo, snap.Weapon.MaxAmmo, snap.AliveCount)
	dc.DrawStringAnchored(hud, w/2, h-16, 0.5, 0.5)

	return dc.Image()
}

// SavePNG renders the snapshot and writes it to path.
func (r *Renderer) SavePNG(snap *game.SessionSnapshot, path string) error {
	r.Render(snap)
	return r.dc.SavePNG(path)
}

// facing converts a yaw angle to a flat world direction, matching the
// camera's forward convention.
func facing(yaw float64) (x, z float64) {
	return -math.Sin(yaw), -math.Cos(yaw)
}

// Handler serves the current snapshot as a PNG. source provides the
// snapshot to draw; renders are serialized on the shared canvas.
func Handler(source func() *game.SessionSnapshot, cfg Config) http.Handler {
	r := NewRenderer(cfg)
	var mu sync.Mutex

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		w.Header().Set("Content-Type", "image/png")
		if err := png.Encode(w, r.Render(source())); err != nil {
			log.Printf("arena view encode: %v", err)
		}
	})
}
