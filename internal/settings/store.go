package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/go-ini/ini"
	"go.uber.org/zap"
)

const reloadDelay = 200 * time.Millisecond

// Store persists settings to an ini file
type Store struct {
	path string
	log  *zap.Logger
}

func NewStore(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{path: path, log: log}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file, a missing file yields the defaults
func (s *Store) Load() (Settings, error) {
	def := Defaults()
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return def, nil
	}

	cfg, err := ini.Load(s.path)
	if err != nil {
		return def, fmt.Errorf("unable to read settings: %w", err)
	}

	display := cfg.Section("display")
	keyboard := cfg.Section("keyboard")
	timing := cfg.Section("timing")

	loaded := Settings{
		Locale: display.Key("locale").MustString(def.Locale),
		Theme:  display.Key("theme").MustString(def.Theme),
		Base:   keyboard.Key("base").MustInt(def.Base),
		Curve:  keyboard.Key("curve").MustString(def.Curve),
		Offset: timing.Key("offset").MustDuration(def.Offset),
	}
	loaded.Range.Start = keyboard.Key("range_start").MustInt(def.Range.Start)
	loaded.Range.End = keyboard.Key("range_end").MustInt(def.Range.End)

	if err := loaded.Validate(); err != nil {
		return def, fmt.Errorf("unable to use settings from %s: %w", s.path, err)
	}
	return loaded, nil
}

func (s *Store) Save(settings Settings) error {
	cfg := ini.Empty()

	display := cfg.Section("display")
	display.Key("locale").SetValue(settings.Locale)
	display.Key("theme").SetValue(settings.Theme)

	keyboard := cfg.Section("keyboard")
	keyboard.Key("range_start").SetValue(fmt.Sprint(settings.Range.Start))
	keyboard.Key("range_end").SetValue(fmt.Sprint(settings.Range.End))
	keyboard.Key("base").SetValue(fmt.Sprint(settings.Base))
	keyboard.Key("curve").SetValue(settings.Curve)

	cfg.Section("timing").Key("offset").SetValue(settings.Offset.String())

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("unable to create settings directory: %w", err)
	}
	if err := cfg.SaveTo(s.path); err != nil {
		return fmt.Errorf("unable to write settings: %w", err)
	}
	return nil
}

// Watch reloads the settings file after external edits and hands the result
// to fn, until ctx is done. Bursts of writes result in one reload.
func (s *Store) Watch(ctx context.Context, fn func(Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to watch settings: %w", err)
	}
	// Editors often replace the file, so watch the directory
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("unable to watch settings: %w", err)
	}

	debounced := debounce.New(reloadDelay)
	reload := func() {
		settings, err := s.Load()
		if err != nil {
			s.log.Warn("settings reload failed", zap.Error(err))
			return
		}
		s.log.Info("settings reloaded", zap.String("path", s.path))
		fn(settings)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				debounced(reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn("settings watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
