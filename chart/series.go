package chart

import (
	"fmt"

	Nt "github.com/kalin91/nvmonitor/types"
)

const (
	seriesLineWidth = 2

	// LivePrecision is used by the always-on labels,
	// TooltipPrecision by the hover box.
	LivePrecision    = 0
	TooltipPrecision = 1
)

// ValueFunc extracts the reading for the named series from a sample
type ValueFunc func(s Nt.Sample, name string) float64

// FormatFunc renders a reading with the given number of decimals
type FormatFunc func(v float64, precision int) string

// SampleValue is the default ValueFunc, a missing metric reads as 0
func SampleValue(s Nt.Sample, name string) float64 {
	return s.Values[name]
}

// Series is one named, colored data channel
type Series struct {
	name    string
	label   string // short text for toggle controls
	color   Nt.RGBA
	visible bool
	valueOf ValueFunc
	format  FormatFunc
}

// NewSeries returns a visible series.
// A nil valueOf reads the metric named like the series.
func NewSeries(name, label string, color Nt.RGBA, valueOf ValueFunc, format FormatFunc) *Series {
	if valueOf == nil {
		valueOf = SampleValue
	}
	if format == nil {
		format = func(v float64, p int) string { return fmt.Sprintf("%.*f", p, v) }
	}
	return &Series{
		name:    name,
		label:   label,
		color:   color,
		visible: true,
		valueOf: valueOf,
		format:  format,
	}
}

func (s *Series) Name() string      { return s.name }
func (s *Series) Label() string     { return s.label }
func (s *Series) Color() Nt.RGBA    { return s.color }
func (s *Series) Visible() bool     { return s.visible }
func (s *Series) SetVisible(v bool) { s.visible = v }

// Toggle flips visibility and returns the new state
func (s *Series) Toggle() bool {
	s.visible = !s.visible
	return s.visible
}

// Value of this series in sample
func (s *Series) Value(sample Nt.Sample) float64 {
	return s.valueOf(sample, s.name)
}

// Format renders this series' reading from sample
func (s *Series) Format(sample Nt.Sample, precision int) string {
	return s.format(s.Value(sample), precision)
}

// Markup is the live label text wrapped in a color span
func (s *Series) Markup(sample Nt.Sample) string {
	return fmt.Sprintf("<span color='%s'>%s</span>", FormatColor(s.color), s.Format(sample, LivePrecision))
}

// Draw strokes the polyline through every point of the frame,
// starting at the newest (rightmost) point.
func (s *Series) Draw(sf Surface, fr *Frame) error {
	if len(fr.Points) == 0 {
		return nil
	}

	sf.SetColor(s.color)
	sf.SetLineWidth(seriesLineWidth)
	first := true
	for _, pt := range fr.Points {
		y, ok := pt.SeriesY[s.name]
		if !ok {
			continue
		}
		if first {
			sf.MoveTo(pt.X, y)
			first = false
			continue
		}
		sf.LineTo(pt.X, y)
	}
	sf.Stroke()
	return nil
}
