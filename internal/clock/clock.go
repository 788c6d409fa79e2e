package clock

import (
	"sync"
	"time"
)

// Clock is the playback transport. Now is monotonic while playing and
// returns exactly 0 after Stop or Seek(0), which starts a new playthrough.
type Clock interface {
	Now() time.Duration
	Playing() bool
	Play()
	Pause()
	Stop()
	Seek(d time.Duration)
}

// WallClock runs on the system monotonic clock, for songs without a track
type WallClock struct {
	mu      sync.Mutex
	now     func() time.Time
	offset  time.Duration // position when last started or paused
	started time.Time
	playing bool
}

func NewWallClock() *WallClock {
	return &WallClock{now: time.Now}
}

func (c *WallClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position()
}

func (c *WallClock) position() time.Duration {
	if !c.playing {
		return c.offset
	}
	return c.offset + c.now().Sub(c.started)
}

func (c *WallClock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

func (c *WallClock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		return
	}
	c.started = c.now()
	c.playing = true
}

func (c *WallClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = c.position()
	c.playing = false
}

func (c *WallClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = 0
	c.playing = false
}

func (c *WallClock) Seek(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d < 0 {
		d = 0
	}
	c.offset = d
	c.started = c.now()
}
