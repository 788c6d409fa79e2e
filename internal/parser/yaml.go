package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.lost.host/meutraa/keyfall/internal/game"
	"gopkg.in/yaml.v3"
)

const defaultVelocity = 0.8

type yamlRange struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

type yamlNote struct {
	Pitch    int      `yaml:"pitch"`
	Onset    float64  `yaml:"onset"`    // seconds
	Duration float64  `yaml:"duration"` // seconds
	Velocity *float64 `yaml:"velocity"`
}

type yamlSong struct {
	Title    string     `yaml:"title"`
	Artist   string     `yaml:"artist"`
	Duration float64    `yaml:"duration"`
	Range    *yamlRange `yaml:"range"`
	Notes    []yamlNote `yaml:"notes"`
}

// YAMLParser reads the native song format
type YAMLParser struct{}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (p *YAMLParser) Parse(file string) (*game.Song, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	song, err := p.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if song.Title == "" {
		song.Title = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	return song, nil
}

func (p *YAMLParser) Decode(data []byte) (*game.Song, error) {
	var ys yamlSong
	if err := yaml.Unmarshal(data, &ys); err != nil {
		return nil, fmt.Errorf("unable to parse song: %w", err)
	}

	notes := make([]game.Note, 0, len(ys.Notes))
	for i, n := range ys.Notes {
		if n.Pitch < game.MinPitch || n.Pitch > game.MaxPitch {
			return nil, fmt.Errorf("note %d: pitch %d out of range", i, n.Pitch)
		}
		if n.Onset < 0 || n.Duration < 0 {
			return nil, fmt.Errorf("note %d: negative time", i)
		}
		velocity := defaultVelocity
		if n.Velocity != nil {
			velocity = clamp01(*n.Velocity)
		}
		notes = append(notes, game.Note{
			Pitch:    n.Pitch,
			Onset:    seconds(n.Onset),
			Duration: seconds(n.Duration),
			Velocity: velocity,
		})
	}

	song := game.NewSong(ys.Title, ys.Artist, notes, seconds(ys.Duration))
	if ys.Range != nil {
		song.Range = game.KeyboardRange{Start: ys.Range.Start, End: ys.Range.End}
	}
	return song, nil
}

// Encode writes a song back out in the native format
func (p *YAMLParser) Encode(song *game.Song) ([]byte, error) {
	ys := yamlSong{
		Title:    song.Title,
		Artist:   song.Artist,
		Duration: song.TotalDuration.Seconds(),
		Notes:    make([]yamlNote, len(song.Notes)),
	}
	if song.Range != (game.KeyboardRange{}) {
		ys.Range = &yamlRange{Start: song.Range.Start, End: song.Range.End}
	}
	for i, n := range song.Notes {
		v := n.Velocity
		ys.Notes[i] = yamlNote{
			Pitch:    n.Pitch,
			Onset:    n.Onset.Seconds(),
			Duration: n.Duration.Seconds(),
			Velocity: &v,
		}
	}
	return yaml.Marshal(ys)
}
