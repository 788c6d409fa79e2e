package game

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"math"
	"time"
)

type Song struct {
	Title         string
	Artist        string
	Notes         []Note
	TotalDuration time.Duration
	Range         KeyboardRange // Zero when the song does not pin a range
}

// NewSong derives the total duration from the last note end when none is given
func NewSong(title, artist string, notes []Note, total time.Duration) *Song {
	for _, n := range notes {
		if n.End() > total {
			total = n.End()
		}
	}
	return &Song{
		Title:         title,
		Artist:        artist,
		Notes:         notes,
		TotalDuration: total,
	}
}

// Hash identifies the note content of a song, titles are not part of it
func (s *Song) Hash() string {
	h := sha256.New()
	buf := make([]byte, 8)
	for _, n := range s.Notes {
		for _, v := range []uint64{
			uint64(n.Pitch),
			uint64(n.Onset),
			uint64(n.Duration),
			math.Float64bits(n.Velocity),
		} {
			binary.LittleEndian.PutUint64(buf, v)
			h.Write(buf)
		}
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// Visible returns the indices of the notes drawn between from and to.
// Notes are matched by predicate so an unsorted song still works.
func (s *Song) Visible(from, to time.Duration) []int {
	indices := []int{}
	for i, n := range s.Notes {
		if n.Visible(from, to) {
			indices = append(indices, i)
		}
	}
	return indices
}

// PitchRange is the smallest range holding every note of the song
func (s *Song) PitchRange() KeyboardRange {
	if len(s.Notes) == 0 {
		return KeyboardRange{Start: 0, End: -1}
	}
	r := KeyboardRange{Start: s.Notes[0].Pitch, End: s.Notes[0].Pitch}
	for _, n := range s.Notes[1:] {
		if n.Pitch < r.Start {
			r.Start = n.Pitch
		}
		if n.Pitch > r.End {
			r.End = n.Pitch
		}
	}
	return r
}
