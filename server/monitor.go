package nvmonitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	Nc "github.com/kalin91/nvmonitor/chart"
	No "github.com/kalin91/nvmonitor/obvy"
	Np "github.com/kalin91/nvmonitor/plugin"
	Nt "github.com/kalin91/nvmonitor/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrUnknownSeries = errors.New("unknown series")

// EventKind tells subscribers why they were woken
type EventKind int

const (
	EventSample  EventKind = iota // a sample was appended
	EventToggle                   // a series changed visibility
	EventPresent                  // the producer asked to raise the window
)

// Label is the live text for one series
type Label struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Text    string  `json:"text"`
	Markup  string  `json:"markup"`
	Color   string  `json:"color"`
	Visible bool    `json:"visible"`
	RGBA    Nt.RGBA `json:"-"`
}

type boundTransform struct {
	metric string
	Np.MetricTransformer
}

// Monitor is the host around a Chart.
// The chart does no locking of its own, every access goes through MU.
type Monitor struct {
	MU         sync.RWMutex
	Chart      *Nc.Chart
	Config     *Config
	Stats      *No.StatsInternal
	Outputs    []Np.OutputAdapter
	transforms []boundTransform
	latest     *Nt.Sample

	subMU sync.Mutex
	subs  map[chan EventKind]struct{}
}

// NewMonitor builds the chart, transforms and outputs from cfg
func NewMonitor(cfg *Config, stats *No.StatsInternal) (*Monitor, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if stats == nil {
		stats = No.NewStatsInternal()
	}

	c, err := BuildChart(cfg)
	if err != nil {
		return nil, err
	}

	m := &Monitor{
		Chart:  c,
		Config: cfg,
		Stats:  stats,
		subs:   make(map[chan EventKind]struct{}),
	}

	for _, tc := range cfg.Transforms {
		tr, err := Np.TransformerLookup(tc.Type, tc.Arg)
		if err != nil {
			return nil, fmt.Errorf("transform %s: %w", tc.Metric, err)
		}
		m.transforms = append(m.transforms, boundTransform{metric: tc.Metric, MetricTransformer: tr})
	}

	if cfg.Archive.Enabled() {
		path := cfg.Archive.Path
		if cfg.Archive.InMemory {
			path = ""
		}
		bo, err := Np.NewBadgerOutput(path, cfg.Archive.BatchSize)
		if err != nil {
			return nil, err
		}
		m.Outputs = append(m.Outputs, bo)
	}

	return m, nil
}

// BuildChart lays out the GPU chart: one time axis spanning the window,
// a temperature axis and a percent axis. The time axis comes first so
// series keep their gpu, mem, temp, fan order.
func BuildChart(cfg *Config) (*Nc.Chart, error) {
	unit := Nc.TempUnit(strings.ToUpper(cfg.TempUnit))

	gpu := Nc.NewSeries("gpu", "GPU", color(cfg.Colors.GPU), nil, Nc.PercentFormat("GPU"))
	mem := Nc.NewSeries("mem", "RAM", color(cfg.Colors.Mem), nil, Nc.PercentFormat("RAM"))
	temp := Nc.NewSeries("temp", "Temp", color(cfg.Colors.Temp), nil, Nc.TempFormat("Temp", unit))
	fan := Nc.NewSeries("fan", "Fan", color(cfg.Colors.Fan), nil, Nc.PercentFormat("Fan"))

	tmp, err := Nc.NewAxisGroup("axis_temp", color(cfg.Colors.AxisTemp), Nt.Value, Nc.Range{Lo: 0, Hi: 110}, cfg.Steps.Value, Nc.TempLabels(unit), temp)
	if err != nil {
		return nil, err
	}
	pct, err := Nc.NewAxisGroup("axis_pct", color(cfg.Colors.AxisPct), Nt.Value, Nc.Range{Lo: 0, Hi: 100}, cfg.Steps.Value, Nc.PercentLabels(), gpu, mem, fan)
	if err != nil {
		return nil, err
	}
	x, err := Nc.NewAxisGroup("axis_x", color(cfg.Colors.AxisX), Nt.Time, Nc.Range{Lo: cfg.Window.Length, Hi: 0}, cfg.Steps.Time, Nc.TimeLabels(cfg.Window.Unit), gpu, mem, temp, fan)
	if err != nil {
		return nil, err
	}

	capacity := Nc.CapacityFor(cfg.Window.Length, cfg.Window.Unit, cfg.Window.Interval)
	c, err := Nc.NewChart("bg", color(cfg.Colors.Background), color(cfg.Colors.Grid), Nc.NewWindow(capacity), x, tmp, pct)
	if err != nil {
		return nil, err
	}
	if cfg.FontSize > 0 {
		c.SetFontSize(cfg.FontSize)
	}

	slog.Info("Chart ready",
		slog.Int("capacity", capacity),
		slog.Float64("length", cfg.Window.Length),
		slog.String("unit", cfg.Window.Unit))
	return c, nil
}

func color(spec string) Nt.RGBA {
	c, err := Nc.ParseColor(spec)
	if err != nil {
		slog.Error("Bad color in config", slog.String("color", spec), slog.Any("Error", err))
	}
	return c
}

// Viewport for a surface of the given size, using the configured margins
func (m *Monitor) Viewport(width, height float64) Nc.Viewport {
	mg := m.Config.Margins
	return Nc.Viewport{
		Width:   width,
		Height:  height,
		Margins: Nc.Margins{Left: mg.Left, Right: mg.Right, Top: mg.Top, Bottom: mg.Bottom},
	}
}

// HandleLine processes one raw input line.
// Malformed lines are dropped without error, they are normal when a
// producer is killed mid-write.
func (m *Monitor) HandleLine(ctx context.Context, raw []byte) error {
	line, err := ParseLine(raw)
	if err != nil {
		slog.Debug("Dropping malformed line", slog.Any("Error", err))
		m.Stats.RecDropped("malformed")
		return nil
	}

	if line.IsCommand {
		switch line.Command {
		case CommandPresent:
			m.notify(EventPresent)
		default:
			m.Stats.RecDropped("command")
			return fmt.Errorf("unknown command %q", line.Command)
		}
		return nil
	}

	return m.HandleSample(ctx, line.Sample, raw)
}

// HandleSample runs transforms, appends to the window and fans out to outputs.
// Transform and output failures are logged, the sample is still appended.
func (m *Monitor) HandleSample(ctx context.Context, s Nt.Sample, raw []byte) error {
	_, span := No.Tracer().Start(ctx, "ingest")
	defer span.End()

	if s.Received.IsZero() {
		s.Received = time.Now()
	}
	if s.Values == nil {
		s.Values = make(map[string]float64)
	}

	for _, t := range m.transforms {
		v, err := t.Transform(t.metric, s.Values[t.metric], raw, s.Received)
		if err != nil {
			slog.Error("Transform failed",
				slog.String("metric", t.metric),
				slog.String("type", t.Type()),
				slog.Any("Error", err))
			continue
		}
		s.Values[t.metric] = v
	}

	m.MU.Lock()
	m.Chart.Append(s)
	m.latest = &s
	held := m.Chart.Window().Len()
	m.MU.Unlock()

	m.Stats.RecSample(held)
	span.SetAttributes(attribute.Int("window.len", held))

	var errs []error
	for _, o := range m.Outputs {
		if err := o.WriteSample(s); err != nil {
			slog.Error("Output failed", slog.String("output", o.Type()), slog.Any("Error", err))
			errs = append(errs, fmt.Errorf("%s: %w", o.Type(), err))
		}
	}

	m.notify(EventSample)
	return errors.Join(errs...)
}

// Render draws the current frame with the tracked pointer
func (m *Monitor) Render(ctx context.Context, sf Nc.Surface, vp Nc.Viewport) error {
	m.MU.Lock()
	defer m.MU.Unlock()
	return m.renderLocked(ctx, sf, vp)
}

// RenderAt draws a frame with the pointer at x (or none when hasX is false)
// and puts the tracked pointer back afterwards, so off-screen renders
// do not disturb the interactive one.
func (m *Monitor) RenderAt(ctx context.Context, sf Nc.Surface, vp Nc.Viewport, x float64, hasX bool) error {
	_, _, err := m.FrameAt(ctx, sf, vp, x, hasX)
	return err
}

// FrameAt is RenderAt returning the frame and tooltip it drew
func (m *Monitor) FrameAt(ctx context.Context, sf Nc.Surface, vp Nc.Viewport, x float64, hasX bool) (Nc.Frame, *Nc.Overlay, error) {
	m.MU.Lock()
	defer m.MU.Unlock()

	tt := m.Chart.Tooltip()
	px, tracking := tt.Pointer()
	defer func() {
		if tracking {
			tt.Motion(px)
		} else {
			tt.Leave()
		}
	}()

	if hasX {
		tt.Motion(x)
	} else {
		tt.Leave()
	}
	if err := m.renderLocked(ctx, sf, vp); err != nil {
		return Nc.Frame{}, nil, err
	}
	ov, err := m.Chart.Overlay()
	return m.Chart.Frame(), ov, err
}

func (m *Monitor) renderLocked(ctx context.Context, sf Nc.Surface, vp Nc.Viewport) error {
	_, span := No.Tracer().Start(ctx, "render")
	defer span.End()

	start := time.Now()
	err := m.Chart.Render(sf, vp)
	m.Stats.RecRender(time.Since(start).Seconds())

	if err != nil {
		stage := "unknown"
		var re *Nc.RenderError
		if errors.As(err, &re) {
			stage = re.Stage
		}
		m.Stats.RecRenderError(stage)
		span.RecordError(err)
		span.SetStatus(codes.Error, stage)
	}
	return err
}

// PointerMotion tracks the pointer for the tooltip
func (m *Monitor) PointerMotion(x float64) {
	m.MU.Lock()
	defer m.MU.Unlock()
	m.Chart.PointerMotion(x)
}

// PointerLeave hides the tooltip
func (m *Monitor) PointerLeave() {
	m.MU.Lock()
	defer m.MU.Unlock()
	m.Chart.PointerLeave()
}

// Toggle flips the visibility of a series and returns the new state
func (m *Monitor) Toggle(name string) (bool, error) {
	m.MU.Lock()
	s := m.Chart.SeriesByName(name)
	if s == nil {
		m.MU.Unlock()
		return false, fmt.Errorf("%w: %s", ErrUnknownSeries, name)
	}
	visible := s.Toggle()
	m.MU.Unlock()

	slog.Info("Series toggled", slog.String("series", name), slog.Bool("visible", visible))
	m.notify(EventToggle)
	return visible, nil
}

// Labels returns the live label of every series, in chart order.
// Text and Markup are empty until the first sample arrives.
func (m *Monitor) Labels() []Label {
	m.MU.RLock()
	defer m.MU.RUnlock()

	out := make([]Label, 0, len(m.Chart.Series()))
	for _, s := range m.Chart.Series() {
		l := Label{
			Name:    s.Name(),
			Label:   s.Label(),
			Color:   Nc.FormatColor(s.Color()),
			Visible: s.Visible(),
			RGBA:    s.Color(),
		}
		if m.latest != nil {
			l.Text = s.Format(*m.latest, Nc.LivePrecision)
			l.Markup = s.Markup(*m.latest)
		}
		out = append(out, l)
	}
	return out
}

// SeriesNames in chart order
func (m *Monitor) SeriesNames() []string {
	m.MU.RLock()
	defer m.MU.RUnlock()

	out := make([]string, 0, len(m.Chart.Series()))
	for _, s := range m.Chart.Series() {
		out = append(out, s.Name())
	}
	return out
}

// Samples held in the window, oldest first
func (m *Monitor) Samples() []Nt.Sample {
	m.MU.RLock()
	defer m.MU.RUnlock()
	return m.Chart.Window().Samples()
}

// Frame from the last render and its tooltip, if any
func (m *Monitor) Frame() (Nc.Frame, *Nc.Overlay, error) {
	m.MU.RLock()
	defer m.MU.RUnlock()

	ov, err := m.Chart.Overlay()
	return m.Chart.Frame(), ov, err
}

// Archive returns the samples received in [start, end) from the first
// output, or the window when no output is configured
func (m *Monitor) Archive(start, end time.Time) ([]Nt.Sample, error) {
	if len(m.Outputs) == 0 {
		var out []Nt.Sample
		for _, s := range m.Samples() {
			if !s.Received.Before(start) && s.Received.Before(end) {
				out = append(out, s)
			}
		}
		return out, nil
	}
	return m.Outputs[0].QueryRange(start, end)
}

// ExportXLSX writes the archived samples in [start, end) as a workbook
func (m *Monitor) ExportXLSX(w io.Writer, start, end time.Time) error {
	samples, err := m.Archive(start, end)
	if err != nil {
		return fmt.Errorf("query archive: %w", err)
	}
	return Np.ExportXLSX(w, samples, m.SeriesNames())
}

// Subscribe returns a channel of events and a func to stop receiving.
// Slow subscribers miss events rather than block ingestion.
func (m *Monitor) Subscribe() (<-chan EventKind, func()) {
	ch := make(chan EventKind, 8)

	m.subMU.Lock()
	m.subs[ch] = struct{}{}
	m.subMU.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.subMU.Lock()
			delete(m.subs, ch)
			m.subMU.Unlock()
		})
	}
}

func (m *Monitor) notify(ev EventKind) {
	m.subMU.Lock()
	defer m.subMU.Unlock()

	for ch := range m.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close flushes and closes every output
func (m *Monitor) Close() error {
	var errs []error
	for _, o := range m.Outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
