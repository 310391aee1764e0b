package chart

import (
	"errors"
	"fmt"
)

var (
	ErrViewportTooSmall = errors.New("plot area too small to draw")
	ErrStepMismatch     = errors.New("active axes of one orientation disagree on step count")
	ErrTimeAxisCount    = errors.New("tooltip needs exactly one time axis")
	ErrSurface          = errors.New("surface failure")
)

// RenderError is the single failure type returned by Chart.Render.
// The frame is abandoned, the window is untouched, and the next
// render may succeed once the condition clears.
type RenderError struct {
	Chart string
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %s: %v", e.Chart, e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
