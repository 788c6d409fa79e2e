package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

// DefaultRenderer buffers ANSI escapes for a frame and writes them at once
type DefaultRenderer struct {
	out          io.Writer
	fd           int
	buffer       strings.Builder
	restoreState *term.State
}

func New() *DefaultRenderer {
	return &DefaultRenderer{out: os.Stdout, fd: int(os.Stdout.Fd())}
}

// NewWriter renders into w, without a terminal to put in raw mode
func NewWriter(w io.Writer) *DefaultRenderer {
	return &DefaultRenderer{out: w, fd: -1}
}

func (r *DefaultRenderer) Init() error {
	if r.fd >= 0 {
		state, err := term.MakeRaw(r.fd)
		if nil != err {
			return fmt.Errorf("unable to enter raw mode: %w", err)
		}
		r.restoreState = state
	}

	fmt.Fprintf(r.out, "%s%s%s",
		"\033[?1049h", // Enable alternate buffer
		"\033[?25l",   // Make the cursor invisible
		"\033[J",      // Clear the screen
	)
	return nil
}

func (r *DefaultRenderer) Deinit() error {
	fmt.Fprintf(r.out, "%s%s",
		"\033[?1049l", // Disable alternate buffer
		"\033[?25h",   // Make the cursor visible
	)
	if r.restoreState == nil {
		return nil
	}
	return term.Restore(r.fd, r.restoreState)
}

func (r *DefaultRenderer) Size() (int, int, error) {
	if r.fd < 0 {
		return 80, 24, nil
	}
	cols, rows, err := term.GetSize(r.fd)
	if nil != err {
		return 0, 0, fmt.Errorf("unable to get terminal size: %w", err)
	}
	return cols, rows, nil
}

func (r *DefaultRenderer) RenderLoop(ctx context.Context, period time.Duration, wake <-chan struct{}, frame func(now time.Time) bool) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); nil != err {
			return err
		}
		if !frame(time.Now()) {
			return r.flush()
		}
		if err := r.flush(); nil != err {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-wake:
		}
	}
}

func (r *DefaultRenderer) Clear() {
	r.buffer.WriteString("\033[H\033[2J")
}

func (r *DefaultRenderer) Fill(row, column int, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.Itoa(row))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.Itoa(column))
	r.buffer.WriteString("H")
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) flush() error {
	if r.buffer.Len() == 0 {
		return nil
	}
	_, err := io.WriteString(r.out, r.buffer.String())
	r.buffer.Reset()
	return err
}
