package chart

import (
	"math"

	Nt "github.com/kalin91/nvmonitor/types"
)

const (
	tooltipBoxWidth   = 100
	tooltipOffset     = 10
	tooltipLineHeight = 15
	tooltipPadding    = 10
)

var (
	cursorColor     = Nt.RGBA{R: 1, G: 1, B: 1, A: 0.5}
	tooltipBGColor  = Nt.RGBA{R: 0, G: 0, B: 0, A: 0.8}
	tooltipBoxColor = Nt.RGBA{R: 1, G: 1, B: 1, A: 1}
)

// Tooltip holds the pointer position between motion events.
// The zero value tracks nothing.
type Tooltip struct {
	x        float64
	tracking bool
}

// Motion records the latest pointer x
func (t *Tooltip) Motion(x float64) {
	t.x = x
	t.tracking = true
}

// Leave forgets the pointer
func (t *Tooltip) Leave() {
	t.x = 0
	t.tracking = false
}

// Pointer returns the tracked x, ok is false when there is none
func (t *Tooltip) Pointer() (float64, bool) {
	return t.x, t.tracking
}

// Rect is an axis aligned box in surface units
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Overlay is a located tooltip, ready to draw
type Overlay struct {
	Index int // into Frame.Points
	Point Nt.CoordinatePoint
	Lines []Nt.TooltipLine
	Box   Rect
}

// Nearest finds the point closest to x.
// There is no answer with fewer than two points or when x falls
// outside the drawn span. Ties keep the first point scanned, and points
// are newest first, so a tie goes to the more recent sample.
func Nearest(points []Nt.CoordinatePoint, x float64) (int, bool) {
	if len(points) < 2 {
		return 0, false
	}

	lo, hi := points[0].X, points[0].X
	for _, p := range points[1:] {
		lo = math.Min(lo, p.X)
		hi = math.Max(hi, p.X)
	}
	if x < lo || x > hi {
		return 0, false
	}

	best := 0
	bestD := math.Abs(points[0].X - x)
	for i, p := range points[1:] {
		if d := math.Abs(p.X - x); d < bestD {
			best = i + 1
			bestD = d
		}
	}
	return best, true
}

// Locate builds the overlay for the tracked pointer.
// timeAxis supplies the color of the time line, series the visible rows.
func (t *Tooltip) Locate(fr *Frame, timeAxis *AxisGroup, series []*Series) (*Overlay, bool) {
	if !t.tracking || fr == nil {
		return nil, false
	}
	idx, ok := Nearest(fr.Points, t.x)
	if !ok {
		return nil, false
	}
	pt := fr.Points[idx]

	lines := make([]Nt.TooltipLine, 0, len(series)+1)
	timeColor := tooltipBoxColor
	if timeAxis != nil {
		timeColor = timeAxis.Color()
	}
	lines = append(lines, Nt.TooltipLine{Text: "Time: " + pt.Label, Color: timeColor})
	for _, s := range series {
		if !s.Visible() {
			continue
		}
		lines = append(lines, Nt.TooltipLine{Text: s.Format(pt.Raw, TooltipPrecision), Color: s.Color()})
	}

	box := Rect{
		X: pt.X + tooltipOffset,
		Y: fr.Viewport.Margins.Top + tooltipOffset,
		W: tooltipBoxWidth,
		H: float64(len(lines)*tooltipLineHeight + tooltipPadding),
	}
	if box.X+box.W > fr.Viewport.Width {
		box.X = pt.X - box.W - tooltipOffset
	}

	return &Overlay{Index: idx, Point: pt, Lines: lines, Box: box}, true
}

func (o *Overlay) Name() string   { return "tooltip" }
func (o *Overlay) Color() Nt.RGBA { return tooltipBoxColor }

// Draw paints the cursor line, the info box and its text
func (o *Overlay) Draw(sf Surface, fr *Frame) error {
	vp := fr.Viewport

	sf.SetColor(cursorColor)
	sf.SetLineWidth(1)
	sf.MoveTo(o.Point.X, vp.Margins.Top)
	sf.LineTo(o.Point.X, vp.Height-vp.Margins.Bottom)
	sf.Stroke()

	sf.SetColor(tooltipBGColor)
	sf.FillRect(o.Box.X, o.Box.Y, o.Box.W, o.Box.H)
	sf.SetColor(tooltipBoxColor)
	sf.StrokeRect(o.Box.X, o.Box.Y, o.Box.W, o.Box.H)

	ty := o.Box.Y + 12
	for _, l := range o.Lines {
		sf.SetColor(l.Color)
		sf.DrawText(l.Text, o.Box.X+5, ty)
		ty += tooltipLineHeight
	}
	return nil
}
