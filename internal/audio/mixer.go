package audio

import (
	"sync"

	"nova-arena/internal/game"
)

// maxVoices caps concurrently playing cues. Requests beyond the cap are
// dropped, never queued.
const maxVoices = 16

type voice struct {
	c    *cue
	pos  int
	gain float64
}

// Mixer plays named cues from a bank and renders the active voices into
// interleaved int16 stereo PCM. PlaySound is fire-and-forget and never
// blocks, so the simulation tick can call it directly.
type Mixer struct {
	mu      sync.Mutex
	bank    *Bank
	voices  []voice
	volume  float64
	enabled bool
}

var _ game.AudioSink = (*Mixer)(nil)

// NewMixer creates a mixer over the given bank at full master volume.
func NewMixer(bank *Bank) *Mixer {
	return &Mixer{
		bank:    bank,
		voices:  make([]voice, 0, maxVoices),
		volume:  1,
		enabled: true,
	}
}

// PlaySound starts a cue at the given volume. Unknown cues and requests
// beyond the voice cap are silently dropped.
func (m *Mixer) PlaySound(name string, volume float64) {
	c := m.bank.get(name)
	if c == nil {
		return
	}
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled || len(m.voices) >= maxVoices {
		return
	}
	m.voices = append(m.voices, voice{c: c, gain: volume})
}

// ReadSamples mixes the active voices into the buffer (interleaved
// stereo int16) and returns the number of samples written. Finished
// voices are retired in place.
func (m *Mixer) ReadSamples(buffer []int16) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range buffer {
		buffer[i] = 0
	}
	if !m.enabled || len(m.voices) == 0 {
		return len(buffer)
	}

	frames := len(buffer) / 2
	master := m.volume

	n := 0
	for _, v := range m.voices {
		remaining := len(v.c.samples) - v.pos
		count := frames
		if count > remaining {
			count = remaining
		}
		for i := 0; i < count; i++ {
			s := v.c.samples[v.pos+i]
			left := float64(buffer[i*2]) + s[0]*v.gain*master*32767
			right := float64(buffer[i*2+1]) + s[1]*v.gain*master*32767
			buffer[i*2] = clampInt16(left)
			buffer[i*2+1] = clampInt16(right)
		}
		v.pos += count

		if v.pos < len(v.c.samples) {
			m.voices[n] = v
			n++
		}
	}
	m.voices = m.voices[:n]

	return len(buffer)
}

// ActiveVoices returns the number of cues currently playing.
func (m *Mixer) ActiveVoices() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// SetVolume adjusts the master volume, clamped to [0, 1].
func (m *Mixer) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	m.volume = v
}

// SetEnabled toggles playback. Disabling drops the active voices.
func (m *Mixer) SetEnabled(e bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.enabled = e
	if !e {
		m.voices = m.voices[:0]
	}
}

// clampInt16 soft-clips a mixed sample into int16 range, with headroom
// so simultaneous cues distort gradually instead of wrapping.
func clampInt16(s float64) int16 {
	if s > 30000 {
		s = 30000 + (s-30000)/4
	} else if s < -30000 {
		s = -30000 + (s+30000)/4
	}
	if s > 32767 {
		s = 32767
	} else if s < -32768 {
		s = -32768
	}
	return int16(s)
}
