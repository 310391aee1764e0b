package chart

import (
	"fmt"
	"math"
	"strings"

	Nt "github.com/kalin91/nvmonitor/types"
)

// TempUnit selects the temperature scale used for display
type TempUnit string

const (
	Celsius    TempUnit = "C"
	Fahrenheit TempUnit = "F"
)

// Convert a Celsius reading to u
func (u TempUnit) Convert(c float64) float64 {
	if u == Fahrenheit {
		return c*9/5 + 32
	}
	return c
}

// PercentFormat renders "<prefix>: 42%"
func PercentFormat(prefix string) FormatFunc {
	return func(v float64, p int) string {
		return fmt.Sprintf("%s: %.*f%%", prefix, p, v)
	}
}

// TempFormat renders "<prefix>: 42°C" converting to u first
func TempFormat(prefix string, u TempUnit) FormatFunc {
	return func(v float64, p int) string {
		return fmt.Sprintf("%s: %.*f°%s", prefix, p, u.Convert(v), u)
	}
}

// PercentLabels writes "N%" left aligned just outside the right edge of the plot
func PercentLabels() LabelFunc {
	return func(a *AxisGroup, sf Surface, fr *Frame, st Step) {
		vp := fr.Viewport
		text := fmt.Sprintf("%d%%", int(a.ValueAt(st.Ratio)))
		a.DrawText(sf, text, vp.Width-vp.Margins.Right, fr.Mapper.RatioY(st.Ratio), AlignLeft)
	}
}

// TempLabels writes "N°C" right aligned just outside the left edge of the plot
func TempLabels(u TempUnit) LabelFunc {
	return func(a *AxisGroup, sf Surface, fr *Frame, st Step) {
		vp := fr.Viewport
		c := int(a.ValueAt(st.Ratio))
		text := fmt.Sprintf("%d°%s", int(u.Convert(float64(c))), u)
		a.DrawText(sf, text, vp.Margins.Left, fr.Mapper.RatioY(st.Ratio), AlignRight)
	}
}

// TimeLabels writes how far back each time grid line is, in unit.
// Inner labels are centered near the bottom of the surface,
// the first is right aligned and the last left aligned.
func TimeLabels(unit string) LabelFunc {
	return func(a *AxisGroup, sf Surface, fr *Frame, st Step) {
		vp := fr.Viewport
		text := TimeLabel(a.ValueAt(st.Ratio), unit)
		x := fr.Mapper.RatioX(st.Ratio)

		switch st.Edge {
		case Nt.Inner:
			a.DrawText(sf, text, x, vp.Height-5, AlignCenter)
		case Nt.Start:
			a.DrawText(sf, text, x, vp.Height-vp.Margins.Bottom+5, AlignRight)
		case Nt.End:
			a.DrawText(sf, text, x, vp.Height-vp.Margins.Bottom+5, AlignLeft)
		}
	}
}

// TimeLabel formats a span of v units, e.g. 45s, 1.5m, 2h
func TimeLabel(v float64, unit string) string {
	switch {
	case strings.HasPrefix(unit, "s"):
		return fmt.Sprintf("%ds", int(math.Round(v)))
	case strings.HasPrefix(unit, "m"):
		if v < 1 {
			return fmt.Sprintf("%ds", int(math.Round(v*60)))
		}
		return strings.Replace(fmt.Sprintf("%.1fm", v), ".0m", "m", 1)
	default:
		return strings.Replace(fmt.Sprintf("%.1fh", v), ".0h", "h", 1)
	}
}
