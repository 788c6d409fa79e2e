package clock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

var ErrUnsupportedTrack = errors.New("unsupported audio format")

// IsTrack reports whether path has an extension OpenTrack can decode
func IsTrack(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".ogg", ".wav":
		return true
	}
	return false
}

// OpenTrack decodes a backing track. The caller closes the streamer.
func OpenTrack(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("%s: %w", path, ErrUnsupportedTrack)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("unable to decode %s: %w", path, err)
	}
	return streamer, format, nil
}
