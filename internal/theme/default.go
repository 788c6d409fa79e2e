package theme

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/lucasb-eyer/go-colorful"
)

type DefaultTheme struct {
	name      string
	colors    map[Tag]colorful.Color
	truecolor bool
	au        aurora.Aurora
}

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

var (
	fallback = rgb(255, 255, 255)
	themes   = map[string]map[Tag]colorful.Color{
		"default": {
			Perfect:    rgb(0, 236, 128),
			Good:       rgb(0, 118, 236),
			Miss:       rgb(236, 30, 0),
			Wrong:      rgb(236, 128, 0),
			WhiteKey:   rgb(220, 220, 220),
			BlackKey:   rgb(106, 106, 106),
			Note:       rgb(236, 195, 0),
			HitLine:    rgb(173, 236, 236),
			Text:       rgb(255, 255, 255),
			Background: rgb(0, 0, 0),
		},
		"mono": {
			Perfect:    rgb(255, 255, 255),
			Good:       rgb(190, 190, 190),
			Miss:       rgb(106, 106, 106),
			Wrong:      rgb(106, 106, 106),
			WhiteKey:   rgb(220, 220, 220),
			BlackKey:   rgb(80, 80, 80),
			Note:       rgb(255, 255, 255),
			HitLine:    rgb(160, 160, 160),
			Background: rgb(0, 0, 0),
		},
	}
)

// Names lists the built in themes
func Names() []string {
	return []string{"default", "mono"}
}

// New builds a named theme. Without truecolor, colors are reduced to the
// 256 color palette.
func New(name string, truecolor bool) (*DefaultTheme, error) {
	colors, ok := themes[name]
	if !ok {
		return nil, fmt.Errorf("unknown theme %q", name)
	}
	return &DefaultTheme{
		name:      name,
		colors:    colors,
		truecolor: truecolor,
		au:        aurora.NewAurora(true),
	}, nil
}

func (t *DefaultTheme) Name() string {
	return t.name
}

func (t *DefaultTheme) Color(tag Tag) colorful.Color {
	col, ok := t.colors[tag]
	if !ok {
		return fallback
	}
	return col
}

func (t *DefaultTheme) Fade(tag Tag, age, lifetime time.Duration) colorful.Color {
	if lifetime <= 0 || age >= lifetime {
		return t.Color(Background)
	}
	if age <= 0 {
		return t.Color(tag)
	}
	return t.Color(tag).BlendRgb(t.Color(Background), float64(age)/float64(lifetime))
}

func (t *DefaultTheme) Paint(tag Tag, text string) string {
	return t.PaintColor(t.Color(tag), text)
}

func (t *DefaultTheme) PaintColor(c colorful.Color, text string) string {
	r, g, b := c.Clamped().RGB255()
	if !t.truecolor {
		return t.au.Index(palette(r, g, b), text).String()
	}

	var sb strings.Builder
	sb.WriteString("\033[38;2;")
	sb.WriteString(strconv.Itoa(int(r)))
	sb.WriteString(";")
	sb.WriteString(strconv.Itoa(int(g)))
	sb.WriteString(";")
	sb.WriteString(strconv.Itoa(int(b)))
	sb.WriteString("m")
	sb.WriteString(text)
	sb.WriteString("\033[0m")
	return sb.String()
}

// palette maps a color onto the 6x6x6 cube of the 256 color palette
func palette(r, g, b uint8) uint8 {
	level := func(v uint8) uint8 {
		return uint8((int(v)*5 + 127) / 255)
	}
	return 16 + 36*level(r) + 6*level(g) + level(b)
}
