// Package audio provides the sound cue sink for the simulation: short
// OGG Vorbis cues preloaded into memory and mixed into PCM on demand.
package audio

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/vorbis"
)

// TargetSampleRate is the mix rate all cues are resampled to.
const TargetSampleRate = 44100

// cue holds one fully decoded sound effect. Cues are short (well under
// a second), so decoding them up front is cheap and keeps the mix path
// allocation-free.
type cue struct {
	samples [][2]float64
}

// Bank is a read-only collection of named cues.
type Bank struct {
	cues map[string]*cue
}

// LoadBank decodes <name>.ogg for every name from dir. Missing or
// broken files are logged and skipped, so a partial or absent asset
// directory degrades to silence for those cues rather than an error.
func LoadBank(dir string, names []string) *Bank {
	b := &Bank{cues: make(map[string]*cue)}

	for _, name := range names {
		path := filepath.Join(dir, name+".ogg")
		c, err := loadCue(path)
		if err != nil {
			log.Printf("sound cue %q disabled: %v", name, err)
			continue
		}
		b.cues[name] = c
		log.Printf("sound cue loaded: %s (%d samples)", name, len(c.samples))
	}
	return b
}

// Len returns the number of loaded cues.
func (b *Bank) Len() int { return len(b.cues) }

func (b *Bank) get(name string) *cue { return b.cues[name] }

// loadCue decodes an OGG file completely, resampling to the mix rate
// when the source rate differs.
func loadCue(path string) (*cue, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	streamer, format, err := vorbis.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer streamer.Close()

	var src beep.Streamer = streamer
	if int(format.SampleRate) != TargetSampleRate {
		src = beep.Resample(4, format.SampleRate, beep.SampleRate(TargetSampleRate), streamer)
	}

	var samples [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := src.Stream(buf)
		samples = append(samples, buf[:n]...)
		if !ok {
			break
		}
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("decode %s: empty stream", path)
	}
	return &cue{samples: samples}, nil
}
