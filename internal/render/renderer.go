package render

import (
	"context"
	"time"
)

type Renderer interface {
	Init() error
	Deinit() error

	// Size is the drawable area in columns and rows
	Size() (cols, rows int, err error)

	// RenderLoop calls frame once per period, and early whenever wake fires,
	// until frame returns false or ctx is done
	RenderLoop(ctx context.Context, period time.Duration, wake <-chan struct{}, frame func(now time.Time) bool) error

	Clear()
	Fill(row, column int, message string)
}
