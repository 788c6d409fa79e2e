package game

import "fmt"

const (
	MinPitch = 0
	MaxPitch = 127
)

var pitchNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// KeyboardRange is an inclusive span of playable pitches
type KeyboardRange struct {
	Start, End int
}

// DefaultRange is a 37 key controller, C3 to C6
var DefaultRange = KeyboardRange{Start: 48, End: 84}

func (r KeyboardRange) Contains(pitch int) bool {
	return pitch >= r.Start && pitch <= r.End
}

func (r KeyboardRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

func (r KeyboardRange) Empty() bool {
	return r.Len() == 0
}

// Octaves widens the range outward to whole octaves, C to B
func (r KeyboardRange) Octaves() KeyboardRange {
	if r.Empty() {
		return r
	}
	start := r.Start - mod12(r.Start)
	end := r.End + 11 - mod12(r.End)
	if start < MinPitch {
		start = MinPitch
	}
	if end > MaxPitch {
		end = MaxPitch
	}
	return KeyboardRange{Start: start, End: end}
}

func (r KeyboardRange) String() string {
	if r.Empty() {
		return "[]"
	}
	return fmt.Sprintf("[%s-%s]", NoteName(r.Start), NoteName(r.End))
}

func mod12(pitch int) int {
	m := pitch % 12
	if m < 0 {
		m += 12
	}
	return m
}

// IsBlack reports whether the pitch sits on a black piano key
func IsBlack(pitch int) bool {
	switch mod12(pitch) {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

// NoteName uses scientific pitch notation where 60 is C4
func NoteName(pitch int) string {
	octave := pitch/12 - 1
	if pitch < 0 {
		octave = (pitch-11)/12 - 1
	}
	return fmt.Sprintf("%s%d", pitchNames[mod12(pitch)], octave)
}
