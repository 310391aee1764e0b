package chart

import "math"

// Margins around the plot area, used for axis labels
type Margins struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// Viewport is the drawable size of the surface for one frame
type Viewport struct {
	Width   float64
	Height  float64
	Margins Margins
}

// PlotWidth is the width inside the margins
func (v Viewport) PlotWidth() float64 {
	return v.Width - v.Margins.Left - v.Margins.Right
}

// PlotHeight is the height inside the margins
func (v Viewport) PlotHeight() float64 {
	return v.Height - v.Margins.Top - v.Margins.Bottom
}

// Usable reports whether the plot area is positive and finite
func (v Viewport) Usable() bool {
	pw, ph := v.PlotWidth(), v.PlotHeight()
	return pw > 0 && ph > 0 && !math.IsInf(pw, 0) && !math.IsInf(ph, 0)
}

// Range is the value span of an axis.
// Time axes use (length, 0) so labels read backwards from now.
type Range struct {
	Lo float64
	Hi float64
}

// Mapper turns window positions and values into screen coordinates.
// Every series, axis and the tooltip go through the same Mapper
// so they agree on where a sample lands.
type Mapper struct {
	vp    Viewport
	stepX float64
}

// NewMapper builds the transform for a viewport and window capacity
func NewMapper(vp Viewport, capacity int) Mapper {
	return Mapper{
		vp:    vp,
		stepX: vp.PlotWidth() / float64(max(capacity-1, 1)),
	}
}

// Viewport the Mapper was built for
func (m Mapper) Viewport() Viewport { return m.vp }

// StepX is the horizontal distance between neighbouring samples
func (m Mapper) StepX() float64 { return m.stepX }

// X of the sample at window index i, where 0 is the newest
func (m Mapper) X(i int) float64 {
	return (m.vp.Width - m.vp.Margins.Right) - float64(i)*m.stepX
}

// Y of value v on an axis spanning r.
// Values are not clamped, out of range readings leave the plot area.
func (m Mapper) Y(v float64, r Range) float64 {
	span := r.Hi - r.Lo
	ratio := 0.0
	if span != 0 {
		ratio = (v - r.Lo) / span
	}
	return m.RatioY(ratio)
}

// RatioY is the y of a grid ratio on a value axis, 0 at the bottom
func (m Mapper) RatioY(ratio float64) float64 {
	return m.vp.Margins.Top + m.vp.PlotHeight()*(1-ratio)
}

// RatioX is the x of a grid ratio on a time axis, 0 at the left
func (m Mapper) RatioX(ratio float64) float64 {
	return m.vp.Margins.Left + m.vp.PlotWidth()*ratio
}
