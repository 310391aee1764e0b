package nvmonitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"

	"github.com/gdamore/tcell/v2"
	No "github.com/kalin91/nvmonitor/obvy"
	Ns "github.com/kalin91/nvmonitor/server"
	"github.com/mattn/go-runewidth"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// View hosts the Monitor, on a terminal when Screen is set
type View struct {
	MU         sync.Mutex        // State locks to draw
	Monitor    *Ns.Monitor       // Chart host
	Screen     tcell.Screen      // the screen itself
	Surface    *CellSurface      // chart drawing onto Screen
	Controls   *Controls         // series toggle keys
	Stats      *No.StatsInternal // Internal status for prometheus
	Supervisor *IngestSupervisor // ingestion sources
	server     *http.Server      // API and metrics server
	quit       chan struct{}
	quitOnce   sync.Once
}

// NewView builds a View, screen may be nil for web only use
func NewView(m *Ns.Monitor, screen tcell.Screen) (*View, error) {
	if m == nil {
		slog.Error("Could not get a Monitor for display")
		return nil, errors.New("monitor not found")
	}

	view := &View{
		Monitor:  m,
		Screen:   screen,
		Controls: NewControls(m.Labels()),
		Stats:    m.Stats,
		quit:     make(chan struct{}),
	}
	if screen != nil {
		defStyle := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
		screen.SetStyle(defStyle)
		view.Surface = NewCellSurface(screen)
		view.UpdateScreen()
	}

	return view, nil
}

// Quit asks the event loop to return
func (v *View) Quit() {
	v.quitOnce.Do(func() {
		close(v.quit)
		if v.Screen != nil {
			// wake PollEvent
			_ = v.Screen.PostEvent(tcell.NewEventInterrupt(nil))
		}
	})
}

// Draw renders the chart and the label row.
// A terminal too small for the margins shows a notice instead.
func (v *View) Draw(ctx context.Context) {
	v.MU.Lock()
	defer v.MU.Unlock()

	v.Screen.Clear()
	w, h := v.Surface.Size()
	vp := v.Monitor.Viewport(w, h)
	vp.Margins.Top = math.Max(vp.Margins.Top, CellHeight)

	if err := v.Monitor.Render(ctx, v.Surface, vp); err != nil {
		slog.Debug("Render failed", slog.Any("Error", err))
		v.DrawText(0, 1, "terminal too small", tcell.StyleDefault.Foreground(tcell.ColorRed))
	}
	v.drawLabels()
}

// drawLabels writes "<key> <label>" for every series on the top row,
// hidden series dimmed
func (v *View) drawLabels() {
	x := 1
	for _, l := range v.Monitor.Labels() {
		text := l.Text
		if text == "" {
			text = l.Label
		}
		if key := v.Controls.KeyFor(l.Name); key != 0 {
			text = fmt.Sprintf("%c %s", key, text)
		}

		style := tcell.StyleDefault.Foreground(CellColor(l.RGBA))
		if !l.Visible {
			style = style.Dim(true).StrikeThrough(true)
		}
		x = v.DrawText(x, 0, text, style) + 2
	}
}

// DrawText writes text from column x and returns the column after it
func (v *View) DrawText(x, y int, text string, style tcell.Style) int {
	for _, r := range text {
		v.Screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
	return x
}

// UpdateScreen draws a full frame and shows it
func (v *View) UpdateScreen() {
	v.Draw(context.Background())
	v.Screen.Show()
}

// ResizeScreen redraws after terminal changes
func (v *View) ResizeScreen() {
	v.Screen.Sync()
	v.UpdateScreen()
}

// HandleKey toggles series and reports whether the program should exit
func (v *View) HandleKey(ev *tcell.EventKey) bool {
	// Catch quit and exit
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return true
	}
	if ev.Key() != tcell.KeyRune {
		return false
	}
	if ev.Rune() == 'q' {
		return true
	}

	if series, ok := v.Controls.Lookup(ev.Rune()); ok {
		if _, err := v.Monitor.Toggle(series); err != nil {
			slog.Error("Toggle failed", slog.Any("Error", err))
		}
	}
	return false
}

// HandleMouse moves the tooltip to the cell under the pointer
func (v *View) HandleMouse(ev *tcell.EventMouse) {
	x, _ := ev.Position()
	v.Monitor.PointerMotion((float64(x) + 0.5) * CellWidth)
}

// Running loop to handle events, returns on quit
func (v *View) handleEvents() {
	for {
		ev := v.Screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case <-v.quit:
			return
		default:
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			v.ResizeScreen()
		case *tcell.EventKey:
			if v.HandleKey(ev) {
				v.Quit()
				return
			}
			v.UpdateScreen()
		case *tcell.EventMouse:
			v.HandleMouse(ev)
			v.UpdateScreen()
		case *tcell.EventFocus:
			if !ev.Focused {
				v.Monitor.PointerLeave()
				v.UpdateScreen()
			}
		case *tcell.EventInterrupt:
			if kind, ok := ev.Data().(Ns.EventKind); ok && kind == Ns.EventPresent {
				v.ResizeScreen()
				continue
			}
			v.UpdateScreen()
		}
	}
}

// run turns Monitor events into screen interrupts until quit,
// and quits when the producer closes its end
func (v *View) run() {
	// Panic recovery and logging
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in run loop", slog.Any("panic", r))
			slog.Error("Recovered from panic", slog.String("stack", string(debug.Stack())))
		}
	}()

	events, cancel := v.Monitor.Subscribe()
	defer cancel()

	var done <-chan struct{}
	if v.Supervisor != nil {
		done = v.Supervisor.Done()
	}

	slog.Info("Starting chart view")
	for {
		select {
		case kind := <-events:
			if v.Screen != nil {
				_ = v.Screen.PostEvent(tcell.NewEventInterrupt(kind))
			}
		case <-done:
			slog.Info("Producer closed its end, exiting")
			v.Quit()
			return
		case <-v.quit:
			return
		}
	}
}

// RespWriter is a wrapper with StatsMiddleware, used for Prometheus
type RespWriter struct {
	http.ResponseWriter
	Status int
}

// WriteHeader is a helper for StatsMiddleware, used for Prometheus
func (w *RespWriter) WriteHeader(status int) {
	w.Status = status
	w.ResponseWriter.WriteHeader(status)
}

// Write is a helper for StatsMiddleware, used for Prometheus
func (w *RespWriter) Write(b []byte) (int, error) {
	return w.ResponseWriter.Write(b)
}

func (v *View) StatsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &RespWriter{
			ResponseWriter: w,
			Status:         200,
		}
		next.ServeHTTP(wrapped, r)

		v.Stats.RecWWW(strconv.Itoa(wrapped.Status), r.Method)
	})
}

// serve runs the API server until Shutdown
func (v *View) serve() error {
	slog.Info("Starting nvmonitor web server...", slog.String("Port", v.server.Addr))
	if err := v.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Could not start web server", slog.Any("Error", err))
		return err
	}
	return nil
}

func (v *View) shutdown(ctx context.Context) {
	if v.server == nil {
		return
	}
	if err := v.server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown", slog.Any("Error", err))
	}
}

// setup builds the Monitor, its sources and the supervisor
func setup(cfg *Ns.Config, in io.Reader, screen tcell.Screen) (*View, error) {
	m, err := Ns.NewMonitor(cfg, nil)
	if err != nil {
		slog.Error("Failed to build monitor", slog.Any("Error", err))
		return nil, err
	}
	sources, err := Ns.NewSources(cfg, in)
	if err != nil {
		slog.Error("Failed to init sources", slog.Any("Error", err))
		_ = m.Close()
		return nil, err
	}

	view, err := NewView(m, screen)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	view.Supervisor = NewIngestSupervisor(m, sources)
	if cfg.HTTP.Addr != "" {
		view.server = &http.Server{
			Addr:    cfg.HTTP.Addr,
			Handler: otelhttp.NewHandler(view.SetupMux(), "nvmonitor"),
		}
	}
	return view, nil
}

func (v *View) close() {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	v.Supervisor.Stop()
	v.shutdown(ctx)
	if err := v.Monitor.Close(); err != nil {
		slog.Error("Could not close outputs", slog.Any("Error", err))
	}
}

// StartTUI is called by main to run the program.
// It returns when the user quits or the producer closes its end.
func StartTUI(ctx context.Context, cfg *Ns.Config, in io.Reader) error {
	screen, err := GetTTY()
	if err != nil {
		slog.Error("Could not get screen", slog.Any("Error", err))
		return err
	}
	defer screen.Fini()

	view, err := setup(cfg, in, screen)
	if err != nil {
		return err
	}
	defer view.close()

	if view.server != nil {
		go view.serve()
	}

	view.Supervisor.Start(ctx)
	go view.run()
	go func() {
		select {
		case <-ctx.Done():
			view.Quit()
		case <-view.quit:
		}
	}()

	view.handleEvents()
	return nil
}

// StartWebNoTUI serves the API without a terminal until ctx is done
// or the producer closes its end
func StartWebNoTUI(ctx context.Context, cfg *Ns.Config, in io.Reader) error {
	view, err := setup(cfg, in, nil)
	if err != nil {
		return err
	}
	defer view.close()

	if view.server == nil {
		return errors.New("web mode needs an http address")
	}
	view.Supervisor.Start(ctx)
	go view.run()

	errc := make(chan error, 1)
	go func() { errc <- view.serve() }()

	select {
	case err := <-errc:
		return err
	case <-view.quit:
	case <-ctx.Done():
	}
	return nil
}
