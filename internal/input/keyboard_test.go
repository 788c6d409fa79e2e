package input

import (
	"context"
	"testing"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runKeyboard(t *testing.T, opts KeyboardOptions) (*Stream, *KeyboardSource, chan keyboard.KeyEvent) {
	stream := NewStream()
	k := NewKeyboardSource(stream, opts)
	events := make(chan keyboard.KeyEvent)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go k.Run(ctx, events)
	return stream, k, events
}

func TestKeyboardPlaysBindings(t *testing.T) {
	stream, _, events := runKeyboard(t, KeyboardOptions{Base: 60, Hold: time.Hour, Velocity: 0.6})

	events <- keyboard.KeyEvent{Rune: 'a'}
	events <- keyboard.KeyEvent{Rune: 'w'}
	events <- keyboard.KeyEvent{Rune: 'k'}
	events <- keyboard.KeyEvent{Rune: 'q'} // unbound

	assert.Eventually(t, func() bool {
		return len(stream.Active()) == 3
	}, time.Second, time.Millisecond)
	assert.Equal(t, map[int]float64{60: 0.6, 61: 0.6, 72: 0.6}, stream.Active())
}

func TestKeyboardReleasesAfterHold(t *testing.T) {
	stream, _, events := runKeyboard(t, KeyboardOptions{Base: 48, Hold: 20 * time.Millisecond})

	events <- keyboard.KeyEvent{Rune: 'd'}
	assert.Eventually(t, func() bool {
		_, ok := stream.Active()[52]
		return ok
	}, time.Second, time.Millisecond)

	assert.Eventually(t, func() bool {
		return len(stream.Active()) == 0
	}, time.Second, time.Millisecond)
}

func TestKeyboardCommands(t *testing.T) {
	_, k, events := runKeyboard(t, KeyboardOptions{Base: 48})

	events <- keyboard.KeyEvent{Key: keyboard.KeySpace}
	events <- keyboard.KeyEvent{Rune: 'r'}
	events <- keyboard.KeyEvent{Key: keyboard.KeyEsc}

	for _, expected := range []Command{TogglePause, Restart, Quit} {
		select {
		case c := <-k.Commands():
			assert.Equal(t, expected, c)
		case <-time.After(time.Second):
			require.Fail(t, "no command received")
		}
	}
}

func TestKeyboardOctaveShift(t *testing.T) {
	stream, k, events := runKeyboard(t, KeyboardOptions{Base: 48, Hold: time.Hour})

	events <- keyboard.KeyEvent{Rune: 'x'}
	events <- keyboard.KeyEvent{Rune: 'a'}
	assert.Eventually(t, func() bool {
		_, ok := stream.Active()[60]
		return ok
	}, time.Second, time.Millisecond)
	assert.Equal(t, 60, k.Base())

	// Never shifts the bound keys past the top of the midi range
	for i := 0; i < 10; i++ {
		events <- keyboard.KeyEvent{Rune: 'x'}
	}
	events <- keyboard.KeyEvent{Rune: 'z'}
	assert.Eventually(t, func() bool {
		return k.Base() == 96
	}, time.Second, time.Millisecond)
}

func TestKeyboardOctaveShiftCustomBindings(t *testing.T) {
	_, k, events := runKeyboard(t, KeyboardOptions{
		Base:     60,
		Hold:     time.Hour,
		Bindings: Bindings{'a': 0, 'q': 30},
	})

	// 108 + 30 would leave the midi range
	for i := 0; i < 5; i++ {
		events <- keyboard.KeyEvent{Rune: 'x'}
	}
	events <- keyboard.KeyEvent{Rune: 'z'}
	assert.Eventually(t, func() bool {
		return k.Base() == 84
	}, time.Second, time.Millisecond)
}

func TestKeyboardCommandsOnly(t *testing.T) {
	stream, k, events := runKeyboard(t, KeyboardOptions{Base: 60, Bindings: Bindings{}})

	events <- keyboard.KeyEvent{Rune: 'a'}
	events <- keyboard.KeyEvent{Key: keyboard.KeyCtrlC}

	select {
	case c := <-k.Commands():
		assert.Equal(t, Quit, c)
	case <-time.After(time.Second):
		require.Fail(t, "no command received")
	}
	assert.Empty(t, stream.Active())
}

func TestBindingsSpan(t *testing.T) {
	low, high := DefaultBindings().span()
	assert.Equal(t, 0, low)
	assert.Equal(t, 17, high)

	low, high = Bindings{'a': -5, 'b': 3}.span()
	assert.Equal(t, -5, low)
	assert.Equal(t, 3, high)

	low, high = Bindings{}.span()
	assert.Equal(t, 0, low)
	assert.Equal(t, 0, high)
}
