package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.lost.host/meutraa/keyfall/internal/clock"
	"git.lost.host/meutraa/keyfall/internal/game"
)

var (
	ErrUnsupported = errors.New("unsupported song format")
	ErrNoSong      = errors.New("no song file found")
)

type Parser interface {
	Parse(file string) (*game.Song, error)
}

// ForPath picks a parser from the file extension
func ForPath(file string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return &YAMLParser{}, nil
	case ".mid", ".midi", ".smf":
		return &SMFParser{}, nil
	}
	return nil, fmt.Errorf("%s: %w", file, ErrUnsupported)
}

// Parse loads a song with the parser matching its extension
func Parse(file string) (*game.Song, error) {
	p, err := ForPath(file)
	if err != nil {
		return nil, err
	}
	return p.Parse(file)
}

// Files is what a song directory holds
type Files struct {
	Song  string
	Track string // Optional backing audio
}

// Walk finds the song file and backing track in a directory.
// A yaml song is preferred over a midi file.
func Walk(dir string) (Files, error) {
	var files Files
	var midiFile string
	if err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(info.Name())) {
		case ".yaml", ".yml":
			files.Song = p
		case ".mid", ".midi", ".smf":
			midiFile = p
		default:
			if clock.IsTrack(p) {
				files.Track = p
			}
		}
		return nil
	}); err != nil {
		return files, fmt.Errorf("unable to walk song directory: %w", err)
	}

	if files.Song == "" {
		files.Song = midiFile
	}
	if files.Song == "" {
		return files, fmt.Errorf("%s: %w", dir, ErrNoSong)
	}
	return files, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
