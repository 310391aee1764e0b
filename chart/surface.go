package chart

import (
	Nt "github.com/kalin91/nvmonitor/types"
)

// Extents is the measured size of a piece of text
type Extents struct {
	Width  float64
	Height float64
}

// Surface is everything the chart needs from a graphics backend.
// Coordinates are in the backend's own units (pixels, cells, ...).
type Surface interface {
	SetColor(c Nt.RGBA)
	SetLineWidth(w float64)
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Stroke()
	FillRect(x, y, w, h float64)
	StrokeRect(x, y, w, h float64)
	SetFontSize(size float64)
	MeasureText(text string) Extents
	DrawText(text string, x, y float64)
}

// A Surface may also implement FailingSurface to report a failure
// that happened while drawing, checked once at the end of a frame.
type FailingSurface interface {
	Err() error
}

// Drawable is anything that paints itself onto a Surface for a given frame
type Drawable interface {
	Name() string
	Color() Nt.RGBA
	Draw(sf Surface, fr *Frame) error
}
