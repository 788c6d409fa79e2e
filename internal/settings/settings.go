package settings

import (
	"fmt"
	"sync"
	"time"

	"git.lost.host/meutraa/keyfall/internal/game"
)

// Settings are the user preferences that outlive a session
type Settings struct {
	Locale string
	Theme  string
	Range  game.KeyboardRange
	Base   int           // Lowest pitch of the computer keyboard bindings
	Offset time.Duration // Added to the clock before judging, positive delays notes
	Curve  string        // Velocity curve applied to MIDI input
}

func Defaults() Settings {
	return Settings{
		Locale: "en",
		Theme:  "default",
		Range:  game.DefaultRange,
		Base:   60,
		Curve:  "linear",
	}
}

func (s Settings) Validate() error {
	if s.Range.Empty() || s.Range.Start < game.MinPitch || s.Range.End > game.MaxPitch {
		return fmt.Errorf("invalid keyboard range %v", s.Range)
	}
	if s.Base < game.MinPitch || s.Base > game.MaxPitch {
		return fmt.Errorf("invalid base pitch %d", s.Base)
	}
	return nil
}

// State holds the live settings, shared between the components that read them
type State struct {
	mu        sync.RWMutex
	current   Settings
	listeners []func(Settings)
}

func NewState(s Settings) *State {
	return &State{current: s}
}

func (st *State) Get() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current
}

// Set replaces the settings and notifies listeners, outside of the lock
func (st *State) Set(s Settings) {
	st.mu.Lock()
	st.current = s
	listeners := make([]func(Settings), len(st.listeners))
	copy(listeners, st.listeners)
	st.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}

func (st *State) Update(fn func(s *Settings)) {
	s := st.Get()
	fn(&s)
	st.Set(s)
}

// OnChange registers fn to be called after every Set
func (st *State) OnChange(fn func(Settings)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.listeners = append(st.listeners, fn)
}
