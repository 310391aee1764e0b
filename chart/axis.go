package chart

import (
	"fmt"

	Nt "github.com/kalin91/nvmonitor/types"
)

// Step is one grid position along an axis
type Step struct {
	Ratio float64 // 0..1
	Edge  Nt.Edge
}

// LabelFunc draws the label for a single grid step of an axis
type LabelFunc func(a *AxisGroup, sf Surface, fr *Frame, st Step)

// Align is the horizontal anchor for DrawText
type Align int

const (
	AlignLeft   Align = iota // text starts just right of x
	AlignRight               // text ends just left of x
	AlignCenter              // text centered on x
)

// AxisGroup is a set of series sharing one scale and orientation
type AxisGroup struct {
	name        string
	color       Nt.RGBA
	orientation Nt.Orientation
	rng         Range
	steps       int
	series      []*Series
	label       LabelFunc
}

// NewAxisGroup validates and builds an axis group.
// Series keep the order given, names must be unique.
func NewAxisGroup(name string, color Nt.RGBA, o Nt.Orientation, r Range, steps int, label LabelFunc, series ...*Series) (*AxisGroup, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("axis %s: steps must be positive, got %d", name, steps)
	}
	if o == Nt.Value && r.Hi == r.Lo {
		return nil, fmt.Errorf("axis %s: empty value range %v", name, r)
	}

	seen := make(map[string]bool)
	for _, s := range series {
		if seen[s.Name()] {
			return nil, fmt.Errorf("axis %s: duplicate series %s", name, s.Name())
		}
		seen[s.Name()] = true
	}

	return &AxisGroup{
		name:        name,
		color:       color,
		orientation: o,
		rng:         r,
		steps:       steps,
		series:      series,
		label:       label,
	}, nil
}

func (a *AxisGroup) Name() string                { return a.name }
func (a *AxisGroup) Color() Nt.RGBA              { return a.color }
func (a *AxisGroup) Orientation() Nt.Orientation { return a.orientation }
func (a *AxisGroup) Range() Range                { return a.rng }
func (a *AxisGroup) Steps() int                  { return a.steps }
func (a *AxisGroup) Series() []*Series           { return a.series }

// Active reports whether any member series is visible
func (a *AxisGroup) Active() bool {
	for _, s := range a.series {
		if s.Visible() {
			return true
		}
	}
	return false
}

// GenerateSteps returns steps+1 evenly spaced ratios from 0 to 1
func (a *AxisGroup) GenerateSteps() []Step {
	out := make([]Step, 0, a.steps+1)
	for i := 0; i <= a.steps; i++ {
		e := Nt.Inner
		switch i {
		case 0:
			e = Nt.Start
		case a.steps:
			e = Nt.End
		}
		out = append(out, Step{Ratio: float64(i) / float64(a.steps), Edge: e})
	}
	return out
}

// ValueAt is the axis value found at a grid ratio
func (a *AxisGroup) ValueAt(ratio float64) float64 {
	return a.rng.Lo + ratio*(a.rng.Hi-a.rng.Lo)
}

// Draw labels every step, then draws the visible series.
// Only value axes own polylines: series y is defined by a value range.
func (a *AxisGroup) Draw(sf Surface, fr *Frame) error {
	if a.label != nil {
		for _, st := range a.GenerateSteps() {
			a.label(a, sf, fr, st)
		}
	}

	if a.orientation != Nt.Value {
		return nil
	}
	for _, s := range a.series {
		if !s.Visible() {
			continue
		}
		if err := s.Draw(sf, fr); err != nil {
			return fmt.Errorf("series %s: %w", s.Name(), err)
		}
	}
	return nil
}

// DrawText writes text in the axis color, vertically centered on y
func (a *AxisGroup) DrawText(sf Surface, text string, x, y float64, align Align) {
	sf.SetColor(a.color)
	ext := sf.MeasureText(text)

	tx := x + 2
	switch align {
	case AlignRight:
		tx = x - ext.Width - 2
	case AlignCenter:
		tx = x - ext.Width/2
	}
	sf.DrawText(text, tx, y+ext.Height/2)
}
