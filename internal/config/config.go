package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"
)

const Version = "0.3.0"

type Config struct {
	Song string // Song file or a directory holding one

	Offset      *time.Duration // Overrides the stored setting when set
	Delay       time.Duration
	FramePeriod time.Duration
	Lookahead   time.Duration

	MIDIPort  string
	ListPorts bool
	Keyboard  bool
	Hold      time.Duration
	Velocity  float64

	Locale      string // Overrides the stored setting when set
	Theme       string
	NoTruecolor bool

	Settings string
	Database string
	LogFile  string
	LogLevel string
	Listen   string
}

func app(cfg *Config, offset *string) *kingpin.Application {
	a := kingpin.New("keyfall", "Falling notes piano trainer for MIDI and computer keyboards.")
	a.Version(Version)

	a.Arg("song", "Song file (.yaml, .mid) or song directory").Required().ExistingFileOrDirVar(&cfg.Song)

	a.Flag("offset", "Latency offset, overrides the stored setting").Short('o').StringVar(offset)
	a.Flag("delay", "Start delay").Default("1.5s").Short('d').DurationVar(&cfg.Delay)
	a.Flag("frame-period", "Render frame period").Default("16ms").Short('p').DurationVar(&cfg.FramePeriod)
	a.Flag("lookahead", "Time for a note to fall to the hit line, lower is faster").Default("3s").Short('s').DurationVar(&cfg.Lookahead)

	a.Flag("midi", "MIDI input port number or name").Short('m').StringVar(&cfg.MIDIPort)
	a.Flag("list-ports", "List MIDI input ports and exit").BoolVar(&cfg.ListPorts)
	a.Flag("keyboard", "Play with the computer keyboard, --no-keyboard disables it").Default("true").BoolVar(&cfg.Keyboard)
	a.Flag("hold", "How long a computer keyboard press is held").Default("150ms").DurationVar(&cfg.Hold)
	a.Flag("velocity", "Velocity of computer keyboard presses").Default("0.8").Float64Var(&cfg.Velocity)

	a.Flag("locale", "Interface language (en, de, fr)").Short('l').StringVar(&cfg.Locale)
	a.Flag("theme", "Color theme").Short('t').StringVar(&cfg.Theme)
	a.Flag("no-truecolor", "Reduce colors to the 256 color palette").BoolVar(&cfg.NoTruecolor)

	a.Flag("settings", "Settings file").StringVar(&cfg.Settings)
	a.Flag("database", "Score database").Default("./scores.db").StringVar(&cfg.Database)
	a.Flag("log", "Log file, empty disables logging").StringVar(&cfg.LogFile)
	a.Flag("log-level", "Log level").Default("info").EnumVar(&cfg.LogLevel, "debug", "info", "warn", "error")
	a.Flag("listen", "Serve game state over http on this address").StringVar(&cfg.Listen)
	return a
}

// Parse reads the command line, args excludes the program name
func Parse(args []string) (*Config, error) {
	cfg := &Config{}
	var offset string
	if _, err := app(cfg, &offset).Parse(args); err != nil {
		return nil, err
	}

	if offset != "" {
		d, err := time.ParseDuration(offset)
		if err != nil {
			return nil, fmt.Errorf("invalid offset: %w", err)
		}
		cfg.Offset = &d
	}

	if cfg.Velocity < 0 || cfg.Velocity > 1 {
		return nil, fmt.Errorf("velocity %v is outside [0, 1]", cfg.Velocity)
	}
	if cfg.FramePeriod <= 0 {
		return nil, fmt.Errorf("frame period must be positive")
	}
	if cfg.Lookahead <= 0 {
		return nil, fmt.Errorf("lookahead must be positive")
	}

	if cfg.Settings == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("unable to find a settings directory: %w", err)
		}
		cfg.Settings = filepath.Join(dir, "keyfall", "settings.ini")
	}
	return cfg, nil
}
