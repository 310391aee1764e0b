package nvmonitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsInternal holds the internal prometheus registry and collectors
type StatsInternal struct {
	Registry      *prometheus.Registry
	SamplesTotal  prometheus.Counter
	DroppedTotal  *prometheus.CounterVec
	RenderTimer   prometheus.Histogram
	RenderErrors  *prometheus.CounterVec
	PollTimer     prometheus.Histogram
	WWWTotal      *prometheus.CounterVec
	WindowSamples prometheus.Gauge
}

// NewStatsInternal creates a fresh registry, so tests may build as many as they like
func NewStatsInternal() *StatsInternal {
	reg := prometheus.NewRegistry()

	s := &StatsInternal{
		Registry: reg,
		SamplesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nvmonitor_samples_total",
			Help: "Samples appended to the window",
		}),
		DroppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nvmonitor_dropped_lines_total",
			Help: "Input lines dropped before reaching the window",
		}, []string{"reason"}),
		RenderTimer: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nvmonitor_render_seconds",
			Help:    "Time spent rendering one frame",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		RenderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nvmonitor_render_errors_total",
			Help: "Frames abandoned, by stage",
		}, []string{"stage"}),
		PollTimer: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nvmonitor_poll_seconds",
			Help:    "Time spent polling an HTTP source",
			Buckets: prometheus.DefBuckets,
		}),
		WWWTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nvmonitor_http_requests_total",
			Help: "HTTP API requests",
		}, []string{"code", "method"}),
		WindowSamples: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nvmonitor_window_samples",
			Help: "Samples currently held in the window",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.SamplesTotal,
		s.DroppedTotal,
		s.RenderTimer,
		s.RenderErrors,
		s.PollTimer,
		s.WWWTotal,
		s.WindowSamples,
	)

	return s
}

// Handler serves this registry only
func (s *StatsInternal) Handler() http.Handler {
	return promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})
}

func (s *StatsInternal) RecSample(held int) {
	s.SamplesTotal.Inc()
	s.WindowSamples.Set(float64(held))
}

func (s *StatsInternal) RecDropped(reason string)     { s.DroppedTotal.WithLabelValues(reason).Inc() }
func (s *StatsInternal) RecRender(seconds float64)    { s.RenderTimer.Observe(seconds) }
func (s *StatsInternal) RecRenderError(stage string)  { s.RenderErrors.WithLabelValues(stage).Inc() }
func (s *StatsInternal) RecPollTimer(seconds float64) { s.PollTimer.Observe(seconds) }
func (s *StatsInternal) RecWWW(code, method string)   { s.WWWTotal.WithLabelValues(code, method).Inc() }
