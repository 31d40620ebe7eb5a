package game

import (
	"log"
	"sync"
	"time"
)

const (
	// FixedStep is the simulation timestep in seconds. The simulation
	// always advances in slices of exactly this size, independent of
	// how fast frames arrive.
	FixedStep = 1.0 / 60.0

	// maxFrameDelta caps the elapsed time credited to a single frame so
	// a long hitch (debugger pause, laptop sleep) doesn't trigger a
	// catch-up burst of hundreds of simulation steps.
	maxFrameDelta = 0.25
)

// LoopConfig configures the fixed-timestep loop.
type LoopConfig struct {
	// Step is the fixed simulation timestep in seconds. Defaults to FixedStep.
	Step float64

	// FrameRate is how often the loop wakes up to accumulate time and
	// fire the render notification. Defaults to 60.
	FrameRate int

	// Clock is the time source. Defaults to SystemClock.
	Clock Clock
}

// Loop drives the simulation at a fixed timestep decoupled from the
// frame rate. Each frame it accumulates wall-clock elapsed time and
// invokes the tick callback zero or more times with exactly Step
// seconds, then fires the render callback exactly once.
//
// Start is idempotent and Stop is safe to call when not running; Stop
// cancels the pending frame so no stale callback fires after teardown.
type Loop struct {
	mu       sync.Mutex
	running  bool
	stopChan chan struct{}

	step      float64
	frameRate int
	clock     Clock

	tick   func(dt float64)
	render func()

	accumulator float64
	last        time.Time
}

// NewLoop creates a loop invoking tick with the fixed step and render
// once per frame. render may be nil.
func NewLoop(cfg LoopConfig, tick func(dt float64), render func()) *Loop {
	if cfg.Step <= 0 {
		cfg.Step = FixedStep
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 60
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	return &Loop{
		step:      cfg.Step,
		frameRate: cfg.FrameRate,
		clock:     cfg.Clock,
		tick:      tick,
		render:    render,
	}
}

// Start begins producing frames. Calling it while already running is a no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.stopChan = make(chan struct{})
	l.accumulator = 0
	l.last = l.clock.Now()
	stop := l.stopChan
	l.mu.Unlock()

	ticker := time.NewTicker(time.Second / time.Duration(l.frameRate))

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.frame()
			case <-stop:
				return
			}
		}
	}()
}

// Stop cancels the pending frame. Safe to call when not running.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running {
		return
	}
	l.running = false
	close(l.stopChan)
}

// Running reports whether the loop is producing frames.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// frame credits elapsed wall-clock time and drains the accumulator.
func (l *Loop) frame() {
	now := l.clock.Now()
	elapsed := now.Sub(l.last).Seconds()
	l.last = now
	l.advance(elapsed)
}

// advance runs the accumulator logic for one frame's worth of elapsed
// seconds: zero or more fixed steps, then one render notification.
func (l *Loop) advance(elapsed float64) {
	if elapsed > maxFrameDelta {
		elapsed = maxFrameDelta
	}
	l.accumulator += elapsed
	for l.accumulator >= l.step {
		l.safeTick(l.step)
		l.accumulator -= l.step
	}
	if l.render != nil {
		l.render()
	}
}

// safeTick keeps a panicking tick callback from killing the loop
// goroutine silently. The panic is logged, not swallowed.
func (l *Loop) safeTick(dt float64) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("tick callback panic: %v", r)
		}
	}()
	l.tick(dt)
}
