package main

import (
	"context"
	"errors"
	"time"

	"git.lost.host/meutraa/keyfall/internal/clock"
	"git.lost.host/meutraa/keyfall/internal/game"
	"git.lost.host/meutraa/keyfall/internal/history"
	"git.lost.host/meutraa/keyfall/internal/input"
	"git.lost.host/meutraa/keyfall/internal/layout"
	"git.lost.host/meutraa/keyfall/internal/locale"
	"git.lost.host/meutraa/keyfall/internal/render"
	"git.lost.host/meutraa/keyfall/internal/score"
	"git.lost.host/meutraa/keyfall/internal/server"
	"git.lost.host/meutraa/keyfall/internal/settings"
	"git.lost.host/meutraa/keyfall/internal/theme"
	"go.uber.org/zap"
)

// Time past the last note end before the results are shown
const finishGrace = score.GoodWindow + 500*time.Millisecond

// How long the results stay up when nothing can quit the program
const resultsLinger = 5 * time.Second

type Program struct {
	log   *zap.Logger
	song  *game.Song
	clock clock.Clock

	stream   *input.Stream
	commands <-chan input.Command // nil without a keyboard reader
	octave   func() int           // nil without a computer keyboard

	scorer   *score.DefaultScorer
	recorder *score.Recorder
	layout   *layout.Layout

	renderer  render.Renderer
	scene     *render.Scene
	truecolor bool

	history *history.Store // nil disables saving
	holder  *server.Holder
	state   *settings.State
	reload  chan settings.Settings
	offset  time.Duration

	delay    time.Duration
	frameAt  time.Time // Stamps feedback, so its age follows the frames
	startAt  time.Time
	started  bool
	paused   bool
	finished bool

	finishedAt time.Time
	final      score.Score
	accuracy   float64
	best       *score.Score
}

type ProgramOptions struct {
	Log       *zap.Logger
	Song      *game.Song
	Clock     clock.Clock
	Stream    *input.Stream
	Commands  <-chan input.Command
	Octave    func() int
	Renderer  render.Renderer
	History   *history.Store
	Holder    *server.Holder
	State     *settings.State
	Truecolor bool
	Delay     time.Duration
	Lookahead time.Duration
}

func NewProgram(opts ProgramOptions) *Program {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Holder == nil {
		opts.Holder = &server.Holder{}
	}

	current := opts.State.Get()
	catalog := catalogFor(current, opts.Log)
	th := themeFor(current, opts.Truecolor, opts.Log)

	p := &Program{
		log:       opts.Log,
		song:      opts.Song,
		clock:     opts.Clock,
		stream:    opts.Stream,
		commands:  opts.Commands,
		octave:    opts.Octave,
		recorder:  score.NewRecorder(),
		renderer:  opts.Renderer,
		scene:     render.NewScene(opts.Renderer, th, catalog, opts.Lookahead),
		truecolor: opts.Truecolor,
		history:   opts.History,
		holder:    opts.Holder,
		state:     opts.State,
		reload:    make(chan settings.Settings, 1),
		offset:    current.Offset,
		delay:     opts.Delay,
	}
	p.layout = layout.New(current.Range, 80)
	p.scorer = score.NewScorer(opts.Song,
		score.WithLogger(opts.Log),
		score.WithClock(func() time.Time { return p.frameAt }),
		score.WithLabeler(catalog),
		score.WithPositioner(p.layout),
		score.WithRange(current.Range),
	)

	// Settings change on the watcher goroutine, the frame picks them up
	opts.State.OnChange(func(s settings.Settings) {
		select {
		case <-p.reload:
		default:
		}
		select {
		case p.reload <- s:
		default:
		}
	})
	return p
}

func catalogFor(s settings.Settings, log *zap.Logger) *locale.Catalog {
	l, err := locale.Parse(s.Locale)
	if err != nil {
		log.Warn("falling back to english", zap.Error(err))
	}
	return locale.New(l)
}

func themeFor(s settings.Settings, truecolor bool, log *zap.Logger) theme.Theme {
	th, err := theme.New(s.Theme, truecolor)
	if err != nil {
		log.Warn("falling back to the default theme", zap.Error(err))
		th, _ = theme.New("default", truecolor)
	}
	return th
}

func (p *Program) apply(s settings.Settings) {
	catalog := catalogFor(s, p.log)
	p.scene.SetCatalog(catalog)
	p.scene.SetTheme(themeFor(s, p.truecolor, p.log))
	p.scorer.SetLabeler(catalog)
	p.scorer.SetRange(s.Range)
	p.offset = s.Offset
	p.log.Info("settings applied",
		zap.String("locale", s.Locale),
		zap.String("theme", s.Theme),
		zap.Stringer("range", s.Range),
	)
}

// songTime is the clock corrected by the latency offset. A clock at 0 is
// passed through untouched, it marks a new playthrough.
func (p *Program) songTime() time.Duration {
	now := p.clock.Now()
	if now == 0 {
		return 0
	}
	if t := now - p.offset; t != 0 {
		return t
	}
	return time.Nanosecond
}

func (p *Program) restart(at time.Time) {
	p.log.Info("restarting", zap.String("song", p.song.Title))
	p.clock.Stop()
	p.started, p.paused, p.finished = false, false, false
	p.startAt = at
	p.best = nil
}

// command returns false when the program should exit
func (p *Program) command(c input.Command, at time.Time) bool {
	switch c {
	case input.Quit:
		return false
	case input.Restart:
		p.restart(at)
	case input.TogglePause:
		if !p.started || p.finished {
			return true
		}
		p.paused = !p.paused
		if p.paused {
			p.clock.Pause()
		} else {
			p.clock.Play()
		}
	}
	return true
}

func (p *Program) resize() {
	cols, rows, err := p.renderer.Size()
	if err != nil {
		p.log.Debug("unable to read the terminal size", zap.Error(err))
		return
	}
	p.scene.Resize(cols, rows)

	l := p.layout.Resize(p.scorer.Range(), float64(cols))
	if l != p.layout {
		p.layout = l
		p.scorer.SetPositioner(l)
	}
}

// evaluate hands one frame of input to the scorer and the recorder
func (p *Program) evaluate(t time.Duration, active map[int]float64, retriggered []int, playing bool) {
	if len(retriggered) > 0 {
		// The pitch was released and struck between frames, show the
		// release first so the new strike is an edge
		without := make(map[int]float64, len(active))
		for pitch, velocity := range active {
			without[pitch] = velocity
		}
		for _, pitch := range retriggered {
			delete(without, pitch)
		}
		p.observe(t, without, playing)
	}
	p.observe(t, active, playing)
}

func (p *Program) observe(t time.Duration, active map[int]float64, playing bool) {
	if playing || t == 0 {
		p.recorder.Observe(t, active)
	}
	p.scorer.Evaluate(t, active, playing)
}

// Frame runs one iteration of the host loop
func (p *Program) Frame(at time.Time) bool {
	p.frameAt = at
	if p.startAt.IsZero() {
		p.startAt = at
	}

	for drained := false; !drained; {
		select {
		case c, ok := <-p.commands:
			if !ok || !p.command(c, at) {
				return false
			}
		default:
			drained = true
		}
	}

	select {
	case s := <-p.reload:
		p.apply(s)
	default:
	}

	p.resize()

	t := p.songTime()
	playing := p.clock.Playing()
	active, retriggered := p.stream.Drain()

	if !p.finished {
		p.evaluate(t, active, retriggered, playing)

		trackEnded := p.started && !p.paused && !playing
		if t >= p.song.TotalDuration+finishGrace || trackEnded {
			p.finish(at, t, active)
		}
	}
	p.scorer.Expire(at)

	snapshot := p.scorer.Snapshot(at)
	p.holder.Publish(server.State{
		Song:     p.song.Title,
		Now:      t,
		Playing:  playing,
		Snapshot: snapshot,
		Keys:     p.layout.Keys(),
	})

	if p.finished {
		p.scene.Results(p.final, p.accuracy, p.best)
		if p.commands == nil && at.Sub(p.finishedAt) >= resultsLinger {
			return false
		}
	} else {
		frame := render.Frame{
			Now:      t,
			At:       at,
			Song:     p.song,
			Layout:   p.layout,
			Snapshot: snapshot,
			Active:   active,
			Paused:   p.paused,
			Resolved: p.scorer.Resolved,
		}
		if p.octave != nil {
			frame.Octave = p.octave()
		}
		p.scene.Draw(frame)
	}

	if !p.started && at.Sub(p.startAt) >= p.delay {
		p.started = true
		p.clock.Play()
	}
	return true
}

// finish closes every remaining note window and stores the playthrough
func (p *Program) finish(at time.Time, t time.Duration, active map[int]float64) {
	end := p.song.TotalDuration
	for _, n := range p.song.Notes {
		if n.Onset > end {
			end = n.Onset
		}
	}
	// The track can run out before the last window closed
	if closed := end + score.GoodWindow + time.Nanosecond; t < closed {
		p.scorer.Evaluate(closed, active, true)
	}
	p.clock.Pause()

	p.finished = true
	p.finishedAt = at
	p.final = p.scorer.Score()
	record := history.Record{
		SongHash: p.song.Hash(),
		Score:    p.final,
		Inputs:   p.recorder.Inputs(),
		PlayedAt: at,
	}
	p.accuracy = record.Accuracy()
	p.log.Info("song finished",
		zap.String("song", p.song.Title),
		zap.Int("points", p.final.Points),
		zap.Float64("accuracy", p.accuracy),
	)

	if p.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	best, err := p.history.Best(ctx, p.song)
	switch {
	case err == nil:
		p.best = &best.Score
	case !errors.Is(err, history.ErrNoRecords):
		p.log.Warn("unable to load the best score", zap.Error(err))
	}
	if err := p.history.Save(ctx, p.song, record); err != nil {
		p.log.Error("unable to save score", zap.Error(err))
	}
}

func (p *Program) Run(ctx context.Context, period time.Duration) error {
	// Input changes evaluate right away instead of waiting for the next tick
	err := p.renderer.RenderLoop(ctx, period, p.stream.Changed(), p.Frame)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
