package game

import (
	"time"
)

type Note struct {
	Pitch    int           // Chromatic pitch, 60 is middle C
	Onset    time.Duration // The time the note should be struck
	Duration time.Duration // How long the note is drawn, not scored
	Velocity float64       // The intended strike strength, 0 to 1
}

// End is the time the note stops being drawn
func (n Note) End() time.Duration {
	return n.Onset + n.Duration
}

// Visible reports whether any part of the note falls inside [from, to]
func (n Note) Visible(from, to time.Duration) bool {
	return n.Onset <= to && n.End() >= from
}
