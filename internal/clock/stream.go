package clock

import (
	"sync"
	"time"

	"github.com/faiface/beep"
)

// StreamClock reads the time from the position of an audio stream, so
// falling notes stay locked to what is heard.
type StreamClock struct {
	streamer beep.StreamSeeker
	ctrl     *beep.Ctrl
	rate     beep.SampleRate
	lock     func()
	unlock   func()
}

type StreamOption func(c *StreamClock)

// WithLock guards stream access, pass speaker.Lock and speaker.Unlock
// once the stream is handed to the speaker.
func WithLock(lock, unlock func()) StreamOption {
	return func(c *StreamClock) {
		c.lock, c.unlock = lock, unlock
	}
}

// NewStreamClock starts paused. Play the result of Streamer.
func NewStreamClock(streamer beep.StreamSeeker, rate beep.SampleRate, opts ...StreamOption) *StreamClock {
	var mu sync.Mutex
	c := &StreamClock{
		streamer: streamer,
		ctrl:     &beep.Ctrl{Streamer: streamer, Paused: true},
		rate:     rate,
		lock:     mu.Lock,
		unlock:   mu.Unlock,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Streamer is what the speaker should play. It never reports the end of
// the track, the speaker would drop it and a restart would stay silent.
func (c *StreamClock) Streamer() beep.Streamer {
	return endless{c.ctrl}
}

type endless struct {
	s beep.Streamer
}

func (e endless) Stream(samples [][2]float64) (int, bool) {
	n, _ := e.s.Stream(samples)
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

func (e endless) Err() error {
	return e.s.Err()
}

func (c *StreamClock) Now() time.Duration {
	c.lock()
	defer c.unlock()
	return c.rate.D(c.streamer.Position())
}

// Playing is false once the stream has been drained
func (c *StreamClock) Playing() bool {
	c.lock()
	defer c.unlock()
	return !c.ctrl.Paused && c.streamer.Position() < c.streamer.Len()
}

func (c *StreamClock) Play() {
	c.lock()
	c.ctrl.Paused = false
	c.unlock()
}

func (c *StreamClock) Pause() {
	c.lock()
	c.ctrl.Paused = true
	c.unlock()
}

func (c *StreamClock) Stop() {
	c.lock()
	defer c.unlock()
	c.ctrl.Paused = true
	c.seek(0)
}

func (c *StreamClock) Seek(d time.Duration) {
	c.lock()
	defer c.unlock()
	c.seek(d)
}

// Errors from Seek are impossible once clamped to the stream bounds
func (c *StreamClock) seek(d time.Duration) {
	n := c.rate.N(d)
	if n < 0 {
		n = 0
	}
	if n > c.streamer.Len() {
		n = c.streamer.Len()
	}
	_ = c.streamer.Seek(n)
}
