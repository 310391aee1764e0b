package nvmonitor

import (
	"math"

	"github.com/gdamore/tcell/v2"
	Nc "github.com/kalin91/nvmonitor/chart"
	Nt "github.com/kalin91/nvmonitor/types"
	"github.com/mattn/go-runewidth"
)

// One terminal cell in surface units.
// CellHeight matches the tooltip line height so rows of text stack.
const (
	CellWidth  = 7.0
	CellHeight = 15.0
)

// GetTTY opens the terminal with mouse motion and focus reporting
func GetTTY() (tcell.Screen, error) {
	defStyle := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset)

	// New screen
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}

	// Initialize screen
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.SetStyle(defStyle)
	s.EnableMouse(tcell.MouseMotionEvents)
	s.EnableFocus()
	s.Clear()

	return s, nil
}

// WriteBar fills the cells from (x1, y1) up to but not including (x2, y2)
func WriteBar(s tcell.Screen, x1, y1, x2, y2 int, style tcell.Style) {
	for row := y1; row < y2; row++ {
		for col := x1; col < x2; col++ {
			s.SetContent(col, row, ' ', nil, style)
		}
	}
}

// CellSurface draws the chart onto a tcell screen.
// It exposes a virtual canvas of CellWidth x CellHeight units per cell,
// so the chart keeps its usual margins and font metrics.
type CellSurface struct {
	Screen tcell.Screen
	color  tcell.Color
	alpha  float64
	width  float64
	cursor [2]float64
	segs   [][4]float64
}

func NewCellSurface(s tcell.Screen) *CellSurface {
	return &CellSurface{Screen: s, color: tcell.ColorWhite, alpha: 1, width: 1}
}

// Size of the virtual canvas
func (cs *CellSurface) Size() (float64, float64) {
	cols, rows := cs.Screen.Size()
	return float64(cols) * CellWidth, float64(rows) * CellHeight
}

// CellColor blends c over black, terminals have no alpha
func CellColor(c Nt.RGBA) tcell.Color {
	ch := func(v float64) int32 {
		return int32(math.Round(math.Max(0, math.Min(1, v*c.A)) * 255))
	}
	return tcell.NewRGBColor(ch(c.R), ch(c.G), ch(c.B))
}

func (cs *CellSurface) SetColor(c Nt.RGBA) {
	cs.color = CellColor(c)
	cs.alpha = c.A
}

func (cs *CellSurface) SetLineWidth(w float64) { cs.width = w }
func (cs *CellSurface) SetFontSize(float64)    {}

func (cs *CellSurface) MoveTo(x, y float64) {
	cs.cursor = [2]float64{x, y}
}

func (cs *CellSurface) LineTo(x, y float64) {
	cs.segs = append(cs.segs, [4]float64{cs.cursor[0], cs.cursor[1], x, y})
	cs.cursor = [2]float64{x, y}
}

// Stroke draws every pending segment and clears the path
func (cs *CellSurface) Stroke() {
	for _, sg := range cs.segs {
		cs.line(sg[0], sg[1], sg[2], sg[3])
	}
	cs.segs = cs.segs[:0]
}

func (cs *CellSurface) line(x0, y0, x1, y1 float64) {
	c0, r0 := cell(x0, y0)
	c1, r1 := cell(x1, y1)

	pen := '•'
	if cs.width < 2 {
		switch {
		case r0 == r1:
			pen = '─'
		case c0 == c1:
			pen = '│'
		default:
			pen = '·'
		}
	}

	steps := max(abs(c1-c0), abs(r1-r0), 1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		col := c0 + int(math.Round(t*float64(c1-c0)))
		row := r0 + int(math.Round(t*float64(r1-r0)))
		cs.set(col, row, pen)
	}
}

func (cs *CellSurface) FillRect(x, y, w, h float64) {
	if cs.alpha <= 0 {
		return
	}
	c0, r0 := cell(x, y)
	c1, r1 := cell(x+w, y+h)
	if c1 == c0 {
		c1++
	}
	if r1 == r0 {
		r1++
	}
	WriteBar(cs.Screen, c0, r0, c1, r1, tcell.StyleDefault.Background(cs.color))
}

func (cs *CellSurface) StrokeRect(x, y, w, h float64) {
	c0, r0 := cell(x, y)
	c1, r1 := cell(x+w, y+h)

	for col := c0 + 1; col < c1; col++ {
		cs.set(col, r0, tcell.RuneHLine)
		cs.set(col, r1, tcell.RuneHLine)
	}
	for row := r0 + 1; row < r1; row++ {
		cs.set(c0, row, tcell.RuneVLine)
		cs.set(c1, row, tcell.RuneVLine)
	}
	cs.set(c0, r0, tcell.RuneULCorner)
	cs.set(c1, r0, tcell.RuneURCorner)
	cs.set(c0, r1, tcell.RuneLLCorner)
	cs.set(c1, r1, tcell.RuneLRCorner)
}

func (cs *CellSurface) MeasureText(text string) Nc.Extents {
	return Nc.Extents{
		Width:  float64(runewidth.StringWidth(text)) * CellWidth,
		Height: CellHeight,
	}
}

// DrawText writes text with its baseline at y
func (cs *CellSurface) DrawText(text string, x, y float64) {
	col := int(math.Round(x / CellWidth))
	row := int(math.Floor((y - CellHeight/2) / CellHeight))
	for _, r := range text {
		cs.set(col, row, r)
		col += runewidth.RuneWidth(r)
	}
}

// set keeps the background already in the cell
func (cs *CellSurface) set(col, row int, r rune) {
	cols, rows := cs.Screen.Size()
	if col < 0 || row < 0 || col >= cols || row >= rows {
		return
	}
	_, _, old, _ := cs.Screen.GetContent(col, row)
	_, bg, _ := old.Decompose()
	cs.Screen.SetContent(col, row, r, nil, tcell.StyleDefault.Foreground(cs.color).Background(bg))
}

func cell(x, y float64) (int, int) {
	return int(math.Floor(x / CellWidth)), int(math.Floor(y / CellHeight))
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
