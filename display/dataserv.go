package nvmonitor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	Nc "github.com/kalin91/nvmonitor/chart"
	Ns "github.com/kalin91/nvmonitor/server"
	Nt "github.com/kalin91/nvmonitor/types"
	"github.com/wcharczuk/go-chart/v2"
)

const (
	defaultImageWidth  = 800
	defaultImageHeight = 400
	maxImageSide       = 4096
)

// SetupMux handles all data serving:
// - Prometheus metric endpoint
// - Websocket pushing the window on every sample
// - Version for programmatic use
// - Window, frame, image and spreadsheet views of the chart
// - Series toggles
func (v *View) SetupMux() *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", v.Stats.Handler())
	r.HandleFunc("/ws", v.WebsocketHandler)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(v.StatsMiddleware)
	api.HandleFunc("/version", v.VersionHandler).Methods(http.MethodGet)
	api.HandleFunc("/window", v.WindowHandler).Methods(http.MethodGet)
	api.HandleFunc("/frame", v.FrameHandler).Methods(http.MethodGet)
	api.HandleFunc("/chart.png", v.ImageHandler(chart.PNG, "image/png")).Methods(http.MethodGet)
	api.HandleFunc("/chart.svg", v.ImageHandler(chart.SVG, "image/svg+xml")).Methods(http.MethodGet)
	api.HandleFunc("/export.xlsx", v.ExportHandler).Methods(http.MethodGet)
	api.HandleFunc("/series/{name}/toggle", v.ToggleHandler).Methods(http.MethodPost)

	return r
}

var Version = "dev"

func (v *View) VersionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": Version})
}

// SampleData is one window sample for JSON clients
type SampleData struct {
	TS       string             `json:"ts"`
	Label    string             `json:"label"`
	Received time.Time          `json:"received"`
	Values   map[string]float64 `json:"values"`
}

// WindowData is the whole window, oldest sample first
type WindowData struct {
	Capacity int          `json:"capacity"`
	Series   []Ns.Label   `json:"series"`
	Samples  []SampleData `json:"samples"`
}

// GetWindowData snapshots the Monitor for JSON clients
func (v *View) GetWindowData() WindowData {
	samples := v.Monitor.Samples()
	wd := WindowData{
		Capacity: v.Monitor.Chart.Window().Capacity(),
		Series:   v.Monitor.Labels(),
		Samples:  make([]SampleData, 0, len(samples)),
	}
	for _, s := range samples {
		wd.Samples = append(wd.Samples, SampleData{
			TS:       s.TS,
			Label:    Nc.FormatTimestamp(s.TS),
			Received: s.Received,
			Values:   s.Values,
		})
	}
	return wd
}

func (v *View) WindowHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, v.GetWindowData())
}

// PointData is the screen position of one sample
type PointData struct {
	X     float64            `json:"x"`
	Y     map[string]float64 `json:"y"`
	Label string             `json:"label"`
}

type TooltipData struct {
	Index int      `json:"index"`
	Lines []string `json:"lines"`
	Box   Nc.Rect  `json:"box"`
}

// FrameData is a laid out frame for clients that draw themselves
type FrameData struct {
	Width   float64      `json:"width"`
	Height  float64      `json:"height"`
	Points  []PointData  `json:"points"`
	Tooltip *TooltipData `json:"tooltip,omitempty"`
}

// FrameHandler lays out a frame of ?w= by ?h= with the pointer at ?x=
func (v *View) FrameHandler(w http.ResponseWriter, r *http.Request) {
	width, height, x, hasX, err := frameParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	vp := v.Monitor.Viewport(width, height)
	fr, ov, err := v.Monitor.FrameAt(r.Context(), layoutSurface{}, vp, x, hasX)
	if err != nil {
		http.Error(w, err.Error(), renderStatus(err))
		return
	}

	fd := FrameData{Width: width, Height: height, Points: make([]PointData, 0, len(fr.Points))}
	for _, p := range fr.Points {
		fd.Points = append(fd.Points, PointData{X: p.X, Y: p.SeriesY, Label: p.Label})
	}
	if ov != nil {
		td := &TooltipData{Index: ov.Index, Box: ov.Box}
		for _, l := range ov.Lines {
			td.Lines = append(td.Lines, l.Text)
		}
		fd.Tooltip = td
	}
	writeJSON(w, http.StatusOK, fd)
}

// ImageHandler renders the chart through a go-chart renderer
func (v *View) ImageHandler(provider chart.RendererProvider, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		width, height, x, hasX, err := frameParams(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rs, err := NewRasterSurface(provider, int(width), int(height))
		if err != nil {
			slog.Error("Could not create renderer", slog.Any("Error", err))
			http.Error(w, "renderer unavailable", http.StatusInternalServerError)
			return
		}

		vp := v.Monitor.Viewport(width, height)
		if err := v.Monitor.RenderAt(r.Context(), rs, vp, x, hasX); err != nil {
			http.Error(w, err.Error(), renderStatus(err))
			return
		}

		var buf bytes.Buffer
		if err := rs.Save(&buf); err != nil {
			slog.Error("Could not encode image", slog.Any("Error", err))
			http.Error(w, "could not encode image", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(buf.Bytes())
	}
}

// ExportHandler writes the samples of the last ?since= (a duration,
// default the window length) as a workbook
func (v *View) ExportHandler(w http.ResponseWriter, r *http.Request) {
	since := v.Monitor.Config.WindowSpan()
	if s := r.URL.Query().Get("since"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			http.Error(w, "invalid since", http.StatusBadRequest)
			return
		}
		since = d
	}

	now := time.Now()
	var buf bytes.Buffer
	if err := v.Monitor.ExportXLSX(&buf, now.Add(-since), now.Add(time.Second)); err != nil {
		slog.Error("Export failed", slog.Any("Error", err))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="nvmonitor.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

func (v *View) ToggleHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	visible, err := v.Monitor.Toggle(name)
	if errors.Is(err, Ns.ErrUnknownSeries) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "visible": visible})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Could not write response", slog.Any("Error", err))
	}
}

func frameParams(r *http.Request) (width, height, x float64, hasX bool, err error) {
	q := r.URL.Query()
	width, height = defaultImageWidth, defaultImageHeight

	if s := q.Get("w"); s != "" {
		if width, err = parseFinite(s); err != nil || width <= 0 || width > maxImageSide {
			return 0, 0, 0, false, errors.New("invalid w")
		}
	}
	if s := q.Get("h"); s != "" {
		if height, err = parseFinite(s); err != nil || height <= 0 || height > maxImageSide {
			return 0, 0, 0, false, errors.New("invalid h")
		}
	}
	if s := q.Get("x"); s != "" {
		if x, err = parseFinite(s); err != nil {
			return 0, 0, 0, false, errors.New("invalid x")
		}
		hasX = true
	}
	return width, height, x, hasX, nil
}

// parseFinite rejects NaN and infinities, which ParseFloat accepts
func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %s", s)
	}
	return f, nil
}

// renderStatus maps configuration failures to 422, anything else to 500
func renderStatus(err error) int {
	switch {
	case errors.Is(err, Nc.ErrViewportTooSmall),
		errors.Is(err, Nc.ErrStepMismatch),
		errors.Is(err, Nc.ErrTimeAxisCount):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// layoutSurface draws nothing, it lets a frame be laid out for JSON clients
type layoutSurface struct{}

func (layoutSurface) SetColor(Nt.RGBA)                   {}
func (layoutSurface) SetLineWidth(float64)               {}
func (layoutSurface) MoveTo(x, y float64)                {}
func (layoutSurface) LineTo(x, y float64)                {}
func (layoutSurface) Stroke()                            {}
func (layoutSurface) FillRect(x, y, w, h float64)        {}
func (layoutSurface) StrokeRect(x, y, w, h float64)      {}
func (layoutSurface) SetFontSize(float64)                {}
func (layoutSurface) DrawText(text string, x, y float64) {}
func (layoutSurface) MeasureText(text string) Nc.Extents {
	return Nc.Extents{Width: 6 * float64(len(text)), Height: 10}
}
