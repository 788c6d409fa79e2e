package input

import (
	"context"
	"sync"
	"time"

	"github.com/eiannone/keyboard"
	"go.uber.org/zap"
)

const keyboardSource = "keyboard"

// Bindings maps a key to a semitone offset from the base pitch
type Bindings map[rune]int

// DefaultBindings puts white keys on the home row and black keys above,
// starting at C on 'a'.
func DefaultBindings() Bindings {
	return Bindings{
		'a': 0, 'w': 1, 's': 2, 'e': 3, 'd': 4, 'f': 5, 't': 6, 'g': 7,
		'y': 8, 'h': 9, 'u': 10, 'j': 11, 'k': 12, 'o': 13, 'l': 14,
		'p': 15, ';': 16, '\'': 17,
	}
}

// span returns the lowest and highest bound offsets
func (b Bindings) span() (low, high int) {
	first := true
	for _, offset := range b {
		if first || offset < low {
			low = offset
		}
		if first || offset > high {
			high = offset
		}
		first = false
	}
	return low, high
}

type Command int

const (
	Quit Command = iota
	TogglePause
	Restart
)

type KeyboardOptions struct {
	Base     int           // Pitch bound to offset 0
	Hold     time.Duration // Terminals report no release, notes end after this
	Velocity float64       // Every key strikes at this velocity
	Bindings Bindings      // nil uses DefaultBindings, empty plays no notes
	Log      *zap.Logger
}

// KeyboardSource plays notes from a computer keyboard. Auto repeat of a
// held key keeps the note down.
type KeyboardSource struct {
	stream   *Stream
	opts     KeyboardOptions
	commands chan Command

	mu     sync.Mutex
	base   int
	timers map[int]*time.Timer
}

func NewKeyboardSource(stream *Stream, opts KeyboardOptions) *KeyboardSource {
	if opts.Bindings == nil {
		opts.Bindings = DefaultBindings()
	}
	if opts.Hold <= 0 {
		opts.Hold = 250 * time.Millisecond
	}
	if opts.Velocity <= 0 {
		opts.Velocity = 0.8
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &KeyboardSource{
		stream:   stream,
		opts:     opts,
		commands: make(chan Command, 8),
		base:     opts.Base,
		timers:   map[int]*time.Timer{},
	}
}

func (k *KeyboardSource) Commands() <-chan Command {
	return k.commands
}

func (k *KeyboardSource) Base() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.base
}

// Run consumes key events until ctx is done or events is closed
func (k *KeyboardSource) Run(ctx context.Context, events <-chan keyboard.KeyEvent) {
	defer close(k.commands)
	defer k.releaseAll()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Err != nil {
				k.opts.Log.Warn("keyboard read failed", zap.Error(ev.Err))
				continue
			}
			k.handle(ev)
		}
	}
}

func (k *KeyboardSource) command(c Command) {
	select {
	case k.commands <- c:
	default:
		k.opts.Log.Debug("command dropped", zap.Int("command", int(c)))
	}
}

func (k *KeyboardSource) handle(ev keyboard.KeyEvent) {
	switch ev.Key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		k.command(Quit)
		return
	case keyboard.KeySpace:
		k.command(TogglePause)
		return
	}

	switch ev.Rune {
	case 'r':
		k.command(Restart)
		return
	case 'z':
		k.shift(-12)
		return
	case 'x':
		k.shift(12)
		return
	}

	offset, ok := k.opts.Bindings[ev.Rune]
	if !ok {
		return
	}
	k.strike(k.Base() + offset)
}

func (k *KeyboardSource) shift(semitones int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	base := k.base + semitones
	low, high := k.opts.Bindings.span()
	if base+low < 0 || base+high > 127 {
		return
	}
	k.base = base
	k.opts.Log.Info("keyboard octave shifted", zap.Int("base", base))
}

func (k *KeyboardSource) strike(pitch int) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if timer, ok := k.timers[pitch]; ok {
		// auto repeat, keep holding
		timer.Reset(k.opts.Hold)
		return
	}
	k.stream.Press(keyboardSource, pitch, k.opts.Velocity)
	var timer *time.Timer
	timer = time.AfterFunc(k.opts.Hold, func() {
		k.mu.Lock()
		if k.timers[pitch] != timer {
			k.mu.Unlock()
			return
		}
		delete(k.timers, pitch)
		k.mu.Unlock()
		k.stream.Release(keyboardSource, pitch)
	})
	k.timers[pitch] = timer
}

func (k *KeyboardSource) releaseAll() {
	k.mu.Lock()
	defer k.mu.Unlock()
	for pitch, timer := range k.timers {
		timer.Stop()
		delete(k.timers, pitch)
	}
	k.stream.ReleaseAll(keyboardSource)
}
