package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"git.lost.host/meutraa/keyfall/internal/game"
	"git.lost.host/meutraa/keyfall/internal/layout"
	"git.lost.host/meutraa/keyfall/internal/locale"
	"git.lost.host/meutraa/keyfall/internal/score"
	"git.lost.host/meutraa/keyfall/internal/theme"
)

const (
	keyboardRows = 3 // Hit line plus two rows of keys
	headerRows   = 3 // Counters and timing strip
	noteGlyph    = "█"
	hitGlyph     = "▔"
	markGlyph    = "|"
)

// Frame is everything drawn in one refresh
type Frame struct {
	Now      time.Duration
	At       time.Time
	Song     *game.Song
	Layout   *layout.Layout
	Snapshot score.Snapshot
	Active   map[int]float64
	Paused   bool
	Octave   int // Base of the computer keyboard bindings, 0 hides it

	// Resolved reports how a note was judged, nil treats every note as pending
	Resolved func(index int) (game.Judgement, bool)
}

// Scene draws frames with a renderer
type Scene struct {
	r     Renderer
	theme theme.Theme
	text  *locale.Catalog

	cols, rows int
	lookahead  time.Duration // Time for a note to fall from the top to the hit line
}

func NewScene(r Renderer, th theme.Theme, text *locale.Catalog, lookahead time.Duration) *Scene {
	return &Scene{r: r, theme: th, text: text, cols: 80, rows: 24, lookahead: lookahead}
}

func (s *Scene) Resize(cols, rows int) {
	s.cols, s.rows = cols, rows
}

func (s *Scene) SetTheme(th theme.Theme) {
	s.theme = th
}

func (s *Scene) SetCatalog(c *locale.Catalog) {
	s.text = c
}

func (s *Scene) hitRow() int {
	return s.rows - keyboardRows + 1
}

// row places a song time on screen, or returns false when it is off the field
func (s *Scene) row(at, now time.Duration) (int, bool) {
	hit := s.hitRow()
	field := hit - headerRows - 1
	if field <= 0 || s.lookahead <= 0 {
		return 0, false
	}
	offset := int(math.Round(float64(at-now) / float64(s.lookahead) * float64(field)))
	row := hit - offset
	return row, row > headerRows && row < hit
}

// columns maps a key onto 1 based terminal columns
func columns(k layout.Key) (int, int) {
	from := int(math.Floor(k.X)) + 1
	to := int(math.Ceil(k.X+k.Width)) + 1
	if to <= from {
		to = from + 1
	}
	return from, to
}

func (s *Scene) Draw(f Frame) {
	s.r.Clear()
	if f.Layout == nil || f.Song == nil {
		return
	}
	s.drawNotes(f)
	s.drawKeyboard(f)
	s.drawFeedback(f)
	s.drawTiming(f)
	s.drawCounters(f)

	if f.Paused {
		label := s.text.Text(locale.Paused)
		s.r.Fill(s.rows/2, (s.cols-len([]rune(label)))/2+1, s.theme.Paint(theme.Text, label))
	}
}

func (s *Scene) noteTag(f Frame, index int) theme.Tag {
	if f.Resolved == nil {
		return theme.Note
	}
	j, ok := f.Resolved(index)
	if !ok {
		return theme.Note
	}
	return theme.JudgementTag(j)
}

func (s *Scene) drawNotes(f Frame) {
	for _, i := range f.Song.Visible(f.Now-s.lookahead/4, f.Now+s.lookahead) {
		note := f.Song.Notes[i]
		key, ok := f.Layout.Key(note.Pitch)
		if !ok {
			continue
		}
		from, to := columns(key)
		glyph := s.theme.Paint(s.noteTag(f, i), strings.Repeat(noteGlyph, to-from))

		bottom, _ := s.row(note.Onset, f.Now)
		top, _ := s.row(note.End(), f.Now)
		if top == bottom {
			top--
		}
		for row := top + 1; row <= bottom; row++ {
			if row <= headerRows || row >= s.hitRow() {
				continue
			}
			s.r.Fill(row, from, glyph)
		}
	}
}

func (s *Scene) drawKeyboard(f Frame) {
	hit := s.hitRow()
	s.r.Fill(hit, 1, s.theme.Paint(theme.HitLine, strings.Repeat(hitGlyph, s.cols)))

	keys := f.Layout.Keys()
	// Whites first so black keys overlap them
	for _, black := range []bool{false, true} {
		for _, key := range keys {
			if key.Black != black {
				continue
			}
			from, to := columns(key)
			tag := theme.WhiteKey
			if black {
				tag = theme.BlackKey
			}
			if _, down := f.Active[key.Pitch]; down {
				tag = theme.Perfect
			}
			cells := s.theme.Paint(tag, strings.Repeat(noteGlyph, to-from))
			s.r.Fill(hit+1, from, cells)
			if !black {
				s.r.Fill(hit+2, from, cells)
			}
		}
	}
}

func (s *Scene) drawFeedback(f Frame) {
	row := s.hitRow() - 2
	for _, fb := range f.Snapshot.Feedback {
		c := s.theme.Fade(theme.JudgementTag(fb.Judgement), f.At.Sub(fb.CreatedAt), score.FeedbackLifetime)
		col := int(fb.X+fb.Width/2) + 1 - len([]rune(fb.Text))/2
		if col < 1 {
			col = 1
		}
		s.r.Fill(row, col, s.theme.PaintColor(c, fb.Text))
	}
}

// drawTiming marks each recent hit on a strip, early to the left
func (s *Scene) drawTiming(f Frame) {
	center := s.cols/2 + 1
	half := s.cols / 4
	s.r.Fill(2, center-half, s.theme.Paint(theme.HitLine, "["))
	s.r.Fill(2, center+half, s.theme.Paint(theme.HitLine, "]"))
	s.r.Fill(2, center, s.theme.Paint(theme.HitLine, "+"))

	for _, j := range f.Snapshot.Judgements {
		offset := int(math.Round(float64(j.TimingError) / float64(score.GoodWindow) * float64(half)))
		c := s.theme.Fade(theme.JudgementTag(j.Judgement), f.At.Sub(j.CreatedAt), score.JudgementLifetime)
		s.r.Fill(2, center+offset, s.theme.PaintColor(c, markGlyph))
	}
}

func (s *Scene) drawCounters(f Frame) {
	sc := f.Snapshot.Score
	line := fmt.Sprintf("%s: %d", s.text.Text(locale.Points), sc.Points)
	s.r.Fill(1, 2, s.theme.Paint(theme.Text, line))

	col := len([]rune(line)) + 5
	for _, j := range game.Judgements {
		text := fmt.Sprintf("%s %d", s.text.Label(j, game.NoQualifier), sc.Count(j))
		s.r.Fill(1, col, s.theme.Paint(theme.JudgementTag(j), text))
		col += len([]rune(text)) + 3
	}

	if f.Octave > 0 {
		text := fmt.Sprintf("%s %s", s.text.Text(locale.Octave), game.NoteName(f.Octave))
		s.r.Fill(1, s.cols-len([]rune(text)), s.theme.Paint(theme.Text, text))
	}
}

// Results draws the end of song summary. best is nil without history.
func (s *Scene) Results(sc score.Score, accuracy float64, best *score.Score) {
	s.r.Clear()

	lines := []string{
		s.text.Text(locale.Results),
		"",
		fmt.Sprintf("%s: %d", s.text.Text(locale.Points), sc.Points),
		fmt.Sprintf("%s: %.1f%%", s.text.Text(locale.Accuracy), accuracy*100),
	}
	for _, j := range game.Judgements {
		lines = append(lines, fmt.Sprintf("%s: %d", s.text.Label(j, game.NoQualifier), sc.Count(j)))
	}
	if best != nil {
		if sc.Points > best.Points {
			lines = append(lines, "", s.text.Text(locale.NewBest))
		} else {
			lines = append(lines, "", fmt.Sprintf("%s: %d", s.text.Text(locale.Best), best.Points))
		}
	}
	lines = append(lines, "", s.text.Text(locale.Restart), s.text.Text(locale.Quit))

	width := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > width {
			width = n
		}
	}
	width += 4

	top := (s.rows-len(lines))/2 - 1
	if top < 1 {
		top = 1
	}
	left := (s.cols-width)/2 + 1
	if left < 1 {
		left = 1
	}

	border := s.theme.Paint(theme.HitLine, "╭"+strings.Repeat("─", width-2)+"╮")
	s.r.Fill(top, left, border)
	for i, l := range lines {
		pad := width - 4 - len([]rune(l))
		s.r.Fill(top+1+i, left, s.theme.Paint(theme.HitLine, "│ ")+
			s.theme.Paint(theme.Text, l)+strings.Repeat(" ", pad)+
			s.theme.Paint(theme.HitLine, " │"))
	}
	s.r.Fill(top+1+len(lines), left, s.theme.Paint(theme.HitLine, "╰"+strings.Repeat("─", width-2)+"╯"))
}
