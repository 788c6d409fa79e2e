package clock

import (
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWall struct {
	t time.Time
}

func (w *fakeWall) now() time.Time { return w.t }

func (w *fakeWall) advance(d time.Duration) { w.t = w.t.Add(d) }

func TestWallClock(t *testing.T) {
	wall := &fakeWall{t: time.Unix(1618660800, 0)}
	c := NewWallClock()
	c.now = wall.now

	assert.False(t, c.Playing())
	assert.Equal(t, time.Duration(0), c.Now())

	c.Play()
	wall.advance(1500 * time.Millisecond)
	assert.True(t, c.Playing())
	assert.Equal(t, 1500*time.Millisecond, c.Now())

	c.Pause()
	wall.advance(time.Hour)
	assert.Equal(t, 1500*time.Millisecond, c.Now())

	c.Play()
	wall.advance(500 * time.Millisecond)
	assert.Equal(t, 2*time.Second, c.Now())

	c.Seek(10 * time.Second)
	wall.advance(time.Second)
	assert.Equal(t, 11*time.Second, c.Now())

	c.Stop()
	wall.advance(time.Second)
	assert.False(t, c.Playing())
	assert.Equal(t, time.Duration(0), c.Now())

	c.Seek(-time.Second)
	assert.Equal(t, time.Duration(0), c.Now())
}

func silence(format beep.Format, d time.Duration) beep.StreamSeeker {
	buf := beep.NewBuffer(format)
	buf.Append(beep.Silence(format.SampleRate.N(d)))
	return buf.Streamer(0, buf.Len())
}

func TestStreamClock(t *testing.T) {
	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	c := NewStreamClock(silence(format, 2*time.Second), format.SampleRate)

	assert.False(t, c.Playing())
	assert.Equal(t, time.Duration(0), c.Now())

	// Paused, the ctrl streams silence without moving the position
	samples := make([][2]float64, format.SampleRate.N(time.Second))
	c.Streamer().Stream(samples)
	assert.Equal(t, time.Duration(0), c.Now())

	c.Play()
	assert.True(t, c.Playing())
	n, ok := c.Streamer().Stream(samples)
	require.True(t, ok)
	assert.Equal(t, len(samples), n)
	assert.Equal(t, time.Second, c.Now())

	c.Seek(1500 * time.Millisecond)
	assert.Equal(t, 1500*time.Millisecond, c.Now())

	c.Seek(time.Minute)
	assert.Equal(t, 2*time.Second, c.Now())
	assert.False(t, c.Playing(), "drained")

	// Past the end the speaker keeps getting silence
	n, ok = c.Streamer().Stream(samples)
	assert.True(t, ok)
	assert.Equal(t, len(samples), n)

	c.Stop()
	assert.Equal(t, time.Duration(0), c.Now())
	assert.False(t, c.Playing())

	c.Play()
	c.Streamer().Stream(samples)
	assert.Equal(t, time.Second, c.Now(), "plays again after a restart")
}

func TestIsTrack(t *testing.T) {
	assert.True(t, IsTrack("song/backing.OGG"))
	assert.True(t, IsTrack("a.mp3"))
	assert.False(t, IsTrack("a.yaml"))

	_, _, err := OpenTrack("testdata/missing.flac")
	assert.Error(t, err)
}
