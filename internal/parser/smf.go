package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"git.lost.host/meutraa/keyfall/internal/game"
	"gitlab.com/gomidi/midi/v2/smf"
)

// SMFParser imports Standard MIDI Files, every channel and track merged
type SMFParser struct {
	// Channel 1 to 16 limits the import to one channel, 0 imports all
	Channel int
}

type sounding struct {
	onset    time.Duration
	velocity uint8
	index    int // order of the note on, keeps chords stable
}

type noteKey struct {
	channel, key uint8
}

func (p *SMFParser) Parse(file string) (s *game.Song, e error) {
	// the smf reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			s, e = nil, fmt.Errorf("%s: unable to read midi file: %v", file, r)
		}
	}()

	mf, err := smf.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read midi file: %w", file, err)
	}
	song, err := p.fromSMF(mf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	song.Title = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return song, nil
}

func (p *SMFParser) fromSMF(mf *smf.SMF) (*game.Song, error) {
	type indexed struct {
		game.Note
		order int
	}
	notes := []indexed{}
	var end time.Duration
	order := 0

	for _, track := range mf.Tracks {
		open := map[noteKey][]sounding{}
		var absTicks int64
		for _, ev := range track {
			absTicks += int64(ev.Delta)
			at := time.Duration(mf.TimeAt(absTicks)) * time.Microsecond
			if at > end {
				end = at
			}

			var ch, key, vel uint8
			switch {
			case ev.Message.GetNoteStart(&ch, &key, &vel):
				if p.Channel > 0 && int(ch)+1 != p.Channel {
					continue
				}
				k := noteKey{ch, key}
				open[k] = append(open[k], sounding{onset: at, velocity: vel, index: order})
				order++
			case ev.Message.GetNoteEnd(&ch, &key):
				k := noteKey{ch, key}
				stack := open[k]
				if len(stack) == 0 {
					continue
				}
				// first in, first out for overlapping notes of one key
				on := stack[0]
				open[k] = stack[1:]
				notes = append(notes, indexed{
					Note: game.Note{
						Pitch:    int(key),
						Onset:    on.onset,
						Duration: at - on.onset,
						Velocity: clamp01(float64(on.velocity) / 127),
					},
					order: on.index,
				})
			}
		}
		// notes never released last until the end of their track
		for k, stack := range open {
			for _, on := range stack {
				notes = append(notes, indexed{
					Note: game.Note{
						Pitch:    int(k.key),
						Onset:    on.onset,
						Duration: end - on.onset,
						Velocity: clamp01(float64(on.velocity) / 127),
					},
					order: on.index,
				})
			}
		}
	}

	if len(notes) == 0 {
		return nil, errors.New("midi file has no notes")
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Onset != notes[j].Onset {
			return notes[i].Onset < notes[j].Onset
		}
		return notes[i].order < notes[j].order
	})
	out := make([]game.Note, len(notes))
	for i, n := range notes {
		out[i] = n.Note
	}
	return game.NewSong("", "", out, end), nil
}
