// Package testdata holds songs shared by tests and benchmarks
package testdata

import (
	"embed"
	"fmt"

	"git.lost.host/meutraa/keyfall/internal/game"
	"git.lost.host/meutraa/keyfall/internal/parser"
)

//go:embed songs/*.yaml
var songs embed.FS

// GetSong decodes one of the embedded songs, eg. "scale" or "chords"
func GetSong(name string) (*game.Song, error) {
	data, err := songs.ReadFile("songs/" + name + ".yaml")
	if nil != err {
		return nil, fmt.Errorf("unknown test song %q: %w", name, err)
	}
	return (&parser.YAMLParser{}).Decode(data)
}
