package render

import (
	"bytes"
	"context"
	"testing"
	"time"

	"git.lost.host/meutraa/keyfall/internal/game"
	"git.lost.host/meutraa/keyfall/internal/layout"
	"git.lost.host/meutraa/keyfall/internal/locale"
	"git.lost.host/meutraa/keyfall/internal/score"
	"git.lost.host/meutraa/keyfall/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFill(t *testing.T) {
	var out bytes.Buffer
	r := NewWriter(&out)

	r.Fill(3, 7, "x")
	require.NoError(t, r.flush())
	assert.Equal(t, "\033[3;7Hx", out.String())

	out.Reset()
	require.NoError(t, r.flush())
	assert.Empty(t, out.String())
}

func TestInitDeinit(t *testing.T) {
	var out bytes.Buffer
	r := NewWriter(&out)
	require.NoError(t, r.Init())
	require.NoError(t, r.Deinit())
	assert.Contains(t, out.String(), "\033[?1049h")
	assert.Contains(t, out.String(), "\033[?1049l")

	cols, rows, err := r.Size()
	require.NoError(t, err)
	assert.Equal(t, 80, cols)
	assert.Equal(t, 24, rows)
}

func TestRenderLoop(t *testing.T) {
	var out bytes.Buffer
	r := NewWriter(&out)

	frames := 0
	err := r.RenderLoop(context.Background(), time.Millisecond, nil, func(now time.Time) bool {
		frames++
		r.Fill(1, frames, "f")
		return frames < 3
	})
	require.NoError(t, err)
	assert.Equal(t, 3, frames)
	assert.Contains(t, out.String(), "\033[1;3Hf")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = r.RenderLoop(ctx, time.Millisecond, nil, func(now time.Time) bool { return true })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderLoopWake(t *testing.T) {
	r := NewWriter(&bytes.Buffer{})
	wake := make(chan struct{}, 1)

	frames := 0
	start := time.Now()
	err := r.RenderLoop(context.Background(), time.Hour, wake, func(now time.Time) bool {
		frames++
		wake <- struct{}{}
		return frames < 3
	})
	require.NoError(t, err)
	assert.Equal(t, 3, frames)
	assert.Less(t, time.Since(start), time.Minute, "woken before the period")
}

func newScene(t *testing.T, out *bytes.Buffer) (*DefaultRenderer, *Scene) {
	th, err := theme.New("default", true)
	require.NoError(t, err)
	r := NewWriter(out)
	s := NewScene(r, th, locale.New(locale.English), 2*time.Second)
	s.Resize(80, 24)
	return r, s
}

func TestDraw(t *testing.T) {
	var out bytes.Buffer
	r, s := newScene(t, &out)

	at := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	song := game.NewSong("test", "", []game.Note{
		{Pitch: 60, Onset: time.Second, Duration: 500 * time.Millisecond, Velocity: 0.5},
	}, 0)
	scorer := score.NewScorer(song, score.WithClock(func() time.Time { return at }))
	scorer.Evaluate(time.Second, map[int]float64{60: 0.5}, true)

	s.Draw(Frame{
		Now:      time.Second,
		At:       at,
		Song:     song,
		Layout:   layout.New(game.DefaultRange, 80),
		Snapshot: scorer.Snapshot(at),
		Active:   map[int]float64{60: 0.5},
		Resolved: scorer.Resolved,
		Paused:   true,
		Octave:   60,
	})
	require.NoError(t, r.flush())

	drawn := out.String()
	assert.Contains(t, drawn, "Perfect! 1")
	assert.Contains(t, drawn, "Points: 100")
	assert.Contains(t, drawn, "Paused")
	assert.Contains(t, drawn, "Octave C4")
	assert.Contains(t, drawn, "Perfect!\033[0m")
}

func TestRow(t *testing.T) {
	_, s := newScene(t, &bytes.Buffer{})

	row, ok := s.row(time.Second, time.Second)
	assert.Equal(t, s.hitRow(), row)
	assert.False(t, ok, "the hit line is not part of the field")

	row, ok = s.row(2*time.Second, time.Second)
	assert.True(t, ok)
	assert.Less(t, row, s.hitRow())

	_, ok = s.row(10*time.Second, time.Second)
	assert.False(t, ok)
}

func TestResults(t *testing.T) {
	var out bytes.Buffer
	r, s := newScene(t, &out)

	s.Results(score.Score{Perfect: 3, Good: 1, Points: 350}, 0.875, &score.Score{Points: 200})
	require.NoError(t, r.flush())
	assert.Contains(t, out.String(), "Points: 350")
	assert.Contains(t, out.String(), "Accuracy: 87.5%")
	assert.Contains(t, out.String(), "New best!")

	out.Reset()
	s.Results(score.Score{Points: 100}, 0, &score.Score{Points: 200})
	require.NoError(t, r.flush())
	assert.Contains(t, out.String(), "Best: 200")
}
