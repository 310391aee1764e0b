package nvmonitor

import (
	"fmt"
	"io"
	"math"

	Nc "github.com/kalin91/nvmonitor/chart"
	Nt "github.com/kalin91/nvmonitor/types"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// RasterSurface draws the chart through a go-chart renderer,
// chart.PNG for images or chart.SVG for vector output
type RasterSurface struct {
	R      chart.Renderer
	Width  int
	Height int
}

func NewRasterSurface(provider chart.RendererProvider, width, height int) (*RasterSurface, error) {
	r, err := provider(width, height)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("font: %w", err)
	}
	r.SetFont(font)

	return &RasterSurface{R: r, Width: width, Height: height}, nil
}

// DrawingColor converts a normalized color for go-chart
func DrawingColor(c Nt.RGBA) drawing.Color {
	b := func(v float64) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return drawing.Color{R: b(c.R), G: b(c.G), B: b(c.B), A: b(c.A)}
}

func (rs *RasterSurface) SetColor(c Nt.RGBA) {
	dc := DrawingColor(c)
	rs.R.SetStrokeColor(dc)
	rs.R.SetFillColor(dc)
	rs.R.SetFontColor(dc)
}

func (rs *RasterSurface) SetLineWidth(w float64)   { rs.R.SetStrokeWidth(w) }
func (rs *RasterSurface) SetFontSize(size float64) { rs.R.SetFontSize(size) }
func (rs *RasterSurface) MoveTo(x, y float64)      { rs.R.MoveTo(px(x), px(y)) }
func (rs *RasterSurface) LineTo(x, y float64)      { rs.R.LineTo(px(x), px(y)) }
func (rs *RasterSurface) Stroke()                  { rs.R.Stroke() }

func (rs *RasterSurface) FillRect(x, y, w, h float64) {
	rs.rect(x, y, w, h)
	rs.R.Fill()
}

func (rs *RasterSurface) StrokeRect(x, y, w, h float64) {
	rs.rect(x, y, w, h)
	rs.R.Stroke()
}

func (rs *RasterSurface) rect(x, y, w, h float64) {
	rs.R.MoveTo(px(x), px(y))
	rs.R.LineTo(px(x+w), px(y))
	rs.R.LineTo(px(x+w), px(y+h))
	rs.R.LineTo(px(x), px(y+h))
	rs.R.Close()
}

func (rs *RasterSurface) MeasureText(text string) Nc.Extents {
	b := rs.R.MeasureText(text)
	return Nc.Extents{Width: float64(b.Width()), Height: float64(b.Height())}
}

func (rs *RasterSurface) DrawText(text string, x, y float64) {
	rs.R.Text(text, px(x), px(y))
}

// Save encodes the finished frame
func (rs *RasterSurface) Save(w io.Writer) error {
	return rs.R.Save(w)
}

func px(v float64) int { return int(math.Round(v)) }
