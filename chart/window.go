package chart

import (
	"log/slog"
	"math"

	Nt "github.com/kalin91/nvmonitor/types"
)

const (
	minCapacity = 2
	minInterval = 0.5
)

// Window is a fixed-size rolling history of samples.
// It is a ring: Current points at the newest entry
// and the oldest entry is overwritten on overflow.
type Window struct {
	ring    []Nt.Sample
	current int // index of the newest sample
	count   int
}

// NewWindow returns an empty Window, capacity is never below 2
func NewWindow(capacity int) *Window {
	if capacity < minCapacity {
		capacity = minCapacity
	}
	return &Window{
		ring:    make([]Nt.Sample, capacity),
		current: capacity - 1,
	}
}

// CapacityFor derives a window capacity from the visible time span.
// unit is seconds, minutes or hours (anything else counts as hours),
// interval is the sampling period in seconds and never below 0.5.
func CapacityFor(length float64, unit string, interval float64) int {
	interval = ClampInterval(interval)

	span := length
	switch unit {
	case "seconds":
	case "minutes":
		span = length * 60
	default:
		span = length * 3600
	}

	c := int(span / interval)
	if c < minCapacity {
		slog.Debug("Window capacity raised to minimum",
			slog.Int("derived", c),
			slog.Int("capacity", minCapacity))
		c = minCapacity
	}
	return c
}

// ClampInterval applies the sampling interval floor
func ClampInterval(interval float64) float64 {
	return math.Max(minInterval, interval)
}

// Append adds s as the newest sample, dropping the oldest when full
func (w *Window) Append(s Nt.Sample) {
	w.current = (w.current + 1) % len(w.ring)
	w.ring[w.current] = s
	if w.count < len(w.ring) {
		w.count++
	}
}

// Len is the number of samples held
func (w *Window) Len() int { return w.count }

// Capacity is the fixed maximum number of samples
func (w *Window) Capacity() int { return len(w.ring) }

// Snapshot returns the newest min(Len, limit) samples, newest first.
// Renderers walk this order so the newest sample anchors the right edge.
func (w *Window) Snapshot(limit int) []Nt.Sample {
	n := min(w.count, limit)
	if n <= 0 {
		return nil
	}

	out := make([]Nt.Sample, n)
	size := len(w.ring)
	for i := 0; i < n; i++ {
		idx := (w.current - i + size) % size
		out[i] = w.ring[idx]
	}
	return out
}

// Samples returns every held sample in insertion order, oldest first
func (w *Window) Samples() []Nt.Sample {
	snap := w.Snapshot(w.count)
	for i, j := 0, len(snap)-1; i < j; i, j = i+1, j-1 {
		snap[i], snap[j] = snap[j], snap[i]
	}
	return snap
}
