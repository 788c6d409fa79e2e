// Package layout places piano keys across a viewport. It has no effect on
// scoring; it positions falling notes, hit effects and feedback labels.
package layout

import (
	"math"

	"git.lost.host/meutraa/keyfall/internal/game"
)

const (
	blackOffset = 0.65 // into the slot of the white key to the left
	blackWidth  = 0.7  // of a white key
)

type Key struct {
	Pitch int     `json:"pitch"`
	X     float64 `json:"x"`
	Width float64 `json:"width"`
	Black bool    `json:"black"`
}

// Center is the horizontal middle of the key
func (k Key) Center() float64 {
	return k.X + k.Width/2
}

type Layout struct {
	keyRange   game.KeyboardRange
	width      float64
	whiteWidth float64
	keys       []Key
	index      map[int]int // pitch -> keys index
}

// New lays out r over width. An empty range or a non positive width gives
// a layout without keys.
func New(r game.KeyboardRange, width float64) *Layout {
	l := &Layout{
		keyRange: r,
		width:    width,
		index:    map[int]int{},
	}

	whites := 0
	for pitch := r.Start; pitch <= r.End; pitch++ {
		if !game.IsBlack(pitch) {
			whites++
		}
	}
	if whites == 0 || width <= 0 {
		return l
	}
	l.whiteWidth = width / float64(whites)

	slot := 0
	for pitch := r.Start; pitch <= r.End; pitch++ {
		key := Key{Pitch: pitch}
		if game.IsBlack(pitch) {
			key.Black = true
			key.X = float64(slot-1)*l.whiteWidth + blackOffset*l.whiteWidth
			key.Width = blackWidth * l.whiteWidth
			// A black key at either end of the range has no white neighbour
			// on that side, keep it inside the viewport
			key.X = math.Max(0, math.Min(key.X, width-key.Width))
		} else {
			key.X = float64(slot) * l.whiteWidth
			key.Width = l.whiteWidth
			slot++
		}
		l.index[pitch] = len(l.keys)
		l.keys = append(l.keys, key)
	}
	return l
}

// Resize returns l unchanged when nothing moved, otherwise a new layout
func (l *Layout) Resize(r game.KeyboardRange, width float64) *Layout {
	if l != nil && l.keyRange == r && l.width == width {
		return l
	}
	return New(r, width)
}

func (l *Layout) Keys() []Key {
	keys := make([]Key, len(l.keys))
	copy(keys, l.keys)
	return keys
}

func (l *Layout) Key(pitch int) (Key, bool) {
	i, ok := l.index[pitch]
	if !ok {
		return Key{}, false
	}
	return l.keys[i], true
}

// Position implements score.Positioner
func (l *Layout) Position(pitch int) (x, width float64, ok bool) {
	k, ok := l.Key(pitch)
	return k.X, k.Width, ok
}

func (l *Layout) Range() game.KeyboardRange {
	return l.keyRange
}

func (l *Layout) Width() float64 {
	return l.width
}

func (l *Layout) WhiteWidth() float64 {
	return l.whiteWidth
}
