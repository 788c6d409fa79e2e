package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"git.lost.host/meutraa/keyfall/internal/clock"
	"git.lost.host/meutraa/keyfall/internal/config"
	"git.lost.host/meutraa/keyfall/internal/game"
	"git.lost.host/meutraa/keyfall/internal/history"
	"git.lost.host/meutraa/keyfall/internal/input"
	"git.lost.host/meutraa/keyfall/internal/logger"
	"git.lost.host/meutraa/keyfall/internal/parser"
	"git.lost.host/meutraa/keyfall/internal/render"
	"git.lost.host/meutraa/keyfall/internal/server"
	"git.lost.host/meutraa/keyfall/internal/settings"
	"github.com/eiannone/keyboard"
	"github.com/faiface/beep/speaker"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:]); nil != err {
		log.Fatalln(err)
	}
}

// overrides applies the flags that take precedence over the settings file
func overrides(cfg *config.Config, s settings.Settings) settings.Settings {
	if cfg.Locale != "" {
		s.Locale = cfg.Locale
	}
	if cfg.Theme != "" {
		s.Theme = cfg.Theme
	}
	if cfg.Offset != nil {
		s.Offset = *cfg.Offset
	}
	return s
}

func loadSong(path string) (*game.Song, parser.Files, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, parser.Files{}, err
	}

	files := parser.Files{Song: path}
	if info.IsDir() {
		if files, err = parser.Walk(path); err != nil {
			return nil, files, err
		}
	}
	song, err := parser.Parse(files.Song)
	if err != nil {
		return nil, files, fmt.Errorf("unable to load %s: %w", filepath.Base(files.Song), err)
	}
	return song, files, nil
}

func openClock(track string, log *zap.Logger) (clock.Clock, func(), error) {
	if track == "" {
		return clock.NewWallClock(), func() {}, nil
	}

	streamer, format, err := clock.OpenTrack(track)
	if err != nil {
		return nil, nil, err
	}
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/30)); err != nil {
		streamer.Close()
		return nil, nil, fmt.Errorf("unable to open audio output: %w", err)
	}
	c := clock.NewStreamClock(streamer, format.SampleRate, clock.WithLock(speaker.Lock, speaker.Unlock))
	speaker.Play(c.Streamer())
	log.Info("playing track", zap.String("path", track))

	return c, func() {
		speaker.Clear()
		streamer.Close()
	}, nil
}

func run(args []string) error {
	cfg, err := config.Parse(args)
	if err != nil {
		return err
	}

	if cfg.ListPorts {
		for i, name := range input.Ports() {
			fmt.Printf("%2v) %v\n", i, name)
		}
		return nil
	}

	lg, closeLog, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store := settings.NewStore(cfg.Settings, lg)
	stored, err := store.Load()
	if err != nil {
		lg.Warn("using default settings", zap.Error(err))
	}
	state := settings.NewState(overrides(cfg, stored))

	song, files, err := loadSong(cfg.Song)
	if err != nil {
		return err
	}
	// A song that pins its range overrides the keyboard setting for the
	// session, it is never saved
	pinRange := func(s settings.Settings) settings.Settings {
		if !song.Range.Empty() {
			s.Range = song.Range
		}
		return s
	}
	state.Set(pinRange(state.Get()))
	if err := store.Watch(ctx, func(s settings.Settings) {
		state.Set(pinRange(overrides(cfg, s)))
	}); err != nil {
		lg.Warn("settings will not reload", zap.Error(err))
	}

	lg.Info("song loaded",
		zap.String("title", song.Title),
		zap.Int("notes", len(song.Notes)),
		zap.Duration("duration", song.TotalDuration),
	)

	scores, err := history.Open(cfg.Database, lg)
	if err != nil {
		return err
	}
	defer scores.Close()

	clk, closeClock, err := openClock(files.Track, lg)
	if err != nil {
		return err
	}
	defer closeClock()

	stream := input.NewStream()
	curve, err := input.ParseCurve(state.Get().Curve)
	if err != nil {
		lg.Warn("using the linear velocity curve", zap.Error(err))
	}
	if cfg.MIDIPort != "" {
		src, err := input.OpenMIDI(cfg.MIDIPort, stream, curve, lg)
		if err != nil {
			return err
		}
		defer midi.CloseDriver()
		defer src.Close()
	}

	opts := ProgramOptions{
		Log:       lg,
		Song:      song,
		Clock:     clk,
		Stream:    stream,
		State:     state,
		History:   scores,
		Holder:    &server.Holder{},
		Truecolor: !cfg.NoTruecolor,
		Delay:     cfg.Delay,
		Lookahead: cfg.Lookahead,
	}

	// The reader always runs so Esc and Ctrl-C can quit, raw mode swallows
	// the interrupt signal. Without --keyboard it only carries commands.
	var keys *input.KeyboardSource
	events, err := keyboard.GetKeys(128)
	switch {
	case err == nil:
		defer keyboard.Close()

		kopts := input.KeyboardOptions{
			Base:     state.Get().Base,
			Hold:     cfg.Hold,
			Velocity: cfg.Velocity,
			Log:      lg,
		}
		if !cfg.Keyboard {
			kopts.Bindings = input.Bindings{}
		}
		keys = input.NewKeyboardSource(stream, kopts)
		go keys.Run(ctx, events)
		opts.Commands = keys.Commands()
		if cfg.Keyboard {
			opts.Octave = keys.Base
		}
	case cfg.Keyboard:
		return fmt.Errorf("unable to open keyboard: %w", err)
	default:
		lg.Warn("no keyboard commands, the program ends after the results", zap.Error(err))
	}

	if cfg.Listen != "" {
		srv := server.New(opts.Holder, func(ctx context.Context) ([]history.Record, error) {
			return scores.Load(ctx, song)
		}, lg)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Listen); err != nil {
				lg.Error("http server stopped", zap.Error(err))
			}
		}()
	}

	r := render.New()
	opts.Renderer = r
	program := NewProgram(opts)

	if err := r.Init(); err != nil {
		return err
	}
	err = program.Run(ctx, cfg.FramePeriod)
	if derr := r.Deinit(); derr != nil {
		lg.Warn("unable to restore the terminal", zap.Error(derr))
	}

	// Only the octave chosen while playing is remembered, flags and
	// the song range stay out of the file
	if cfg.Keyboard && keys != nil && keys.Base() != stored.Base {
		latest, lerr := store.Load()
		if lerr != nil {
			latest = stored
		}
		latest.Base = keys.Base()
		if serr := store.Save(latest); serr != nil {
			lg.Warn("unable to save settings", zap.Error(serr))
		}
	}
	return err
}
