package chart

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	Nt "github.com/kalin91/nvmonitor/types"
)

const (
	DefaultFontSize = 10
	gridLineWidth   = 1
)

// Frame is the per-render state shared by everything drawn in one pass
type Frame struct {
	Viewport Viewport
	Mapper   Mapper
	Points   []Nt.CoordinatePoint // newest first
}

// Chart owns the sample window, the axes and the per-frame coordinate cache.
// It does no locking, callers serialize Append, Render and pointer updates.
type Chart struct {
	name     string
	bg       Nt.RGBA
	grid     Nt.RGBA
	fontSize float64
	window   *Window
	axes     []*AxisGroup
	series   []*Series // unique, in axis order
	tooltip  *Tooltip
	frame    Frame
}

// NewChart wires axes to a window.
// A series may sit in several axes but in at most one value axis.
func NewChart(name string, bg, grid Nt.RGBA, w *Window, axes ...*AxisGroup) (*Chart, error) {
	if w == nil {
		return nil, fmt.Errorf("chart %s: no window", name)
	}

	axisNames := make(map[string]bool)
	byName := make(map[string]*Series)
	valueOwner := make(map[string]string)
	var ordered []*Series

	for _, a := range axes {
		if axisNames[a.Name()] {
			return nil, fmt.Errorf("chart %s: duplicate axis %s", name, a.Name())
		}
		axisNames[a.Name()] = true

		for _, s := range a.Series() {
			prev, ok := byName[s.Name()]
			if ok && prev != s {
				return nil, fmt.Errorf("chart %s: two series named %s", name, s.Name())
			}
			if !ok {
				byName[s.Name()] = s
				ordered = append(ordered, s)
			}
			if a.Orientation() == Nt.Value {
				if owner, dup := valueOwner[s.Name()]; dup {
					return nil, fmt.Errorf("chart %s: series %s on value axes %s and %s", name, s.Name(), owner, a.Name())
				}
				valueOwner[s.Name()] = a.Name()
			}
		}
	}

	return &Chart{
		name:     name,
		bg:       bg,
		grid:     grid,
		fontSize: DefaultFontSize,
		window:   w,
		axes:     axes,
		series:   ordered,
		tooltip:  &Tooltip{},
	}, nil
}

func (c *Chart) Name() string          { return c.name }
func (c *Chart) Color() Nt.RGBA        { return c.bg }
func (c *Chart) Window() *Window       { return c.window }
func (c *Chart) Axes() []*AxisGroup    { return c.axes }
func (c *Chart) Series() []*Series     { return c.series }
func (c *Chart) Tooltip() *Tooltip     { return c.tooltip }
func (c *Chart) SetFontSize(f float64) { c.fontSize = f }

// SeriesByName finds a series, nil when unknown
func (c *Chart) SeriesByName(name string) *Series {
	for _, s := range c.series {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// Append adds a sample to the window
func (c *Chart) Append(s Nt.Sample) {
	c.window.Append(s)
}

// PointerMotion tracks the pointer x for the tooltip
func (c *Chart) PointerMotion(x float64) { c.tooltip.Motion(x) }

// PointerLeave hides the tooltip
func (c *Chart) PointerLeave() { c.tooltip.Leave() }

// Points from the last render, newest first
func (c *Chart) Points() []Nt.CoordinatePoint { return c.frame.Points }

// Frame from the last render
func (c *Chart) Frame() Frame { return c.frame }

// Compute builds the coordinate set for vp without drawing anything
func (c *Chart) Compute(vp Viewport) Frame {
	m := NewMapper(vp, c.window.Capacity())
	snap := c.window.Snapshot(c.window.Capacity())

	points := make([]Nt.CoordinatePoint, 0, len(snap))
	for i, s := range snap {
		pt := Nt.CoordinatePoint{
			X:       m.X(i),
			SeriesY: make(map[string]float64),
			Raw:     s,
			Label:   FormatTimestamp(s.TS),
			StepX:   m.StepX(),
		}
		for _, a := range c.axes {
			if a.Orientation() != Nt.Value {
				continue
			}
			for _, se := range a.Series() {
				pt.SeriesY[se.Name()] = m.Y(se.Value(s), a.Range())
			}
		}
		points = append(points, pt)
	}

	return Frame{Viewport: vp, Mapper: m, Points: points}
}

// Render draws one full frame onto sf.
// A too-small viewport fails before anything is drawn; any other failure
// leaves a partial frame and is returned as a *RenderError.
func (c *Chart) Render(sf Surface, vp Viewport) (err error) {
	if !vp.Usable() {
		return c.fail("viewport", fmt.Errorf("%w: width=%v height=%v", ErrViewportTooSmall, vp.PlotWidth(), vp.PlotHeight()))
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic during render", slog.Any("panic", r))
			slog.Debug("Recovered from panic", slog.String("stack", string(debug.Stack())))
			err = c.fail("draw", fmt.Errorf("%w: %v", ErrSurface, r))
		}
	}()

	sf.SetColor(c.bg)
	sf.FillRect(0, 0, vp.Width, vp.Height)

	c.frame = c.Compute(vp)
	if len(c.frame.Points) == 0 {
		return c.surfaceErr(sf)
	}

	if err := c.drawGrid(sf, &c.frame); err != nil {
		return c.fail("grid", err)
	}

	ov, err := c.Overlay()
	if err != nil {
		return c.fail("tooltip", err)
	}
	if ov != nil {
		if err := ov.Draw(sf, &c.frame); err != nil {
			return c.fail("tooltip", err)
		}
	}

	return c.surfaceErr(sf)
}

// Overlay locates the tooltip for the tracked pointer against the last frame.
// It returns nil without error when there is nothing to show.
func (c *Chart) Overlay() (*Overlay, error) {
	x, ok := c.tooltip.Pointer()
	if !ok {
		return nil, nil
	}
	if _, ok := Nearest(c.frame.Points, x); !ok {
		return nil, nil
	}

	ta, err := c.timeAxis()
	if err != nil {
		return nil, err
	}

	ov, ok := c.tooltip.Locate(&c.frame, ta, c.visibleValueSeries())
	if !ok {
		return nil, nil
	}
	return ov, nil
}

func (c *Chart) drawGrid(sf Surface, fr *Frame) error {
	var valueAxes, timeAxes []*AxisGroup
	for _, a := range c.axes {
		if !a.Active() {
			continue
		}
		if a.Orientation() == Nt.Value {
			valueAxes = append(valueAxes, a)
		} else {
			timeAxes = append(timeAxes, a)
		}
	}

	// Validate both orientations before drawing either
	vSteps, err := commonSteps(valueAxes)
	if err != nil {
		return err
	}
	tSteps, err := commonSteps(timeAxes)
	if err != nil {
		return err
	}

	vp := fr.Viewport
	sf.SetFontSize(c.fontSize)

	if len(valueAxes) > 0 {
		slog.Debug("Drawing horizontal grid", slog.Int("steps", vSteps))
		for i := 0; i <= vSteps; i++ {
			y := fr.Mapper.RatioY(float64(i) / float64(vSteps))
			sf.SetColor(c.grid)
			sf.SetLineWidth(gridLineWidth)
			sf.MoveTo(vp.Margins.Left, y)
			sf.LineTo(vp.Width-vp.Margins.Right, y)
			sf.Stroke()
		}
		for _, a := range valueAxes {
			if err := a.Draw(sf, fr); err != nil {
				return fmt.Errorf("axis %s: %w", a.Name(), err)
			}
		}
	}

	if len(timeAxes) > 0 {
		// Outer vertical lines would sit on the plot edges, skip them
		for i := 1; i < tSteps; i++ {
			x := fr.Mapper.RatioX(float64(i) / float64(tSteps))
			sf.SetColor(c.grid)
			sf.SetLineWidth(gridLineWidth)
			sf.MoveTo(x, vp.Margins.Top)
			sf.LineTo(x, vp.Height-vp.Margins.Bottom)
			sf.Stroke()
		}
		for _, a := range timeAxes {
			if err := a.Draw(sf, fr); err != nil {
				return fmt.Errorf("axis %s: %w", a.Name(), err)
			}
		}
	}

	return nil
}

// commonSteps returns the step count shared by axes, 0 when there are none
func commonSteps(axes []*AxisGroup) (int, error) {
	if len(axes) == 0 {
		return 0, nil
	}
	steps := axes[0].Steps()
	for _, a := range axes[1:] {
		if a.Steps() != steps {
			return 0, fmt.Errorf("%w: %s has %d, %s has %d", ErrStepMismatch, axes[0].Name(), steps, a.Name(), a.Steps())
		}
	}
	return steps, nil
}

func (c *Chart) timeAxis() (*AxisGroup, error) {
	var found []*AxisGroup
	for _, a := range c.axes {
		if a.Orientation() == Nt.Time {
			found = append(found, a)
		}
	}
	if len(found) != 1 {
		return nil, fmt.Errorf("%w: found %d", ErrTimeAxisCount, len(found))
	}
	return found[0], nil
}

func (c *Chart) visibleValueSeries() []*Series {
	var out []*Series
	for _, a := range c.axes {
		if a.Orientation() != Nt.Value {
			continue
		}
		for _, s := range a.Series() {
			if s.Visible() {
				out = append(out, s)
			}
		}
	}
	return out
}

func (c *Chart) surfaceErr(sf Surface) error {
	es, ok := sf.(FailingSurface)
	if !ok || es.Err() == nil {
		return nil
	}
	return c.fail("surface", fmt.Errorf("%w: %v", ErrSurface, es.Err()))
}

func (c *Chart) fail(stage string, err error) error {
	slog.Error("Error during draw", slog.String("chart", c.name), slog.String("stage", stage), slog.Any("Error", err))
	return &RenderError{Chart: c.name, Stage: stage, Err: err}
}
