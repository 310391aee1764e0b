package chart_test

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	Nc "github.com/kalin91/nvmonitor/chart"
	Nt "github.com/kalin91/nvmonitor/types"
)

// recorder is a Surface that keeps a log of every call
type recorder struct {
	ops     []string
	texts   []string
	textAt  [][2]float64
	panicOn string // op name that panics
	err     error  // reported through Err()
}

func (r *recorder) log(op string, args ...any) {
	if op == r.panicOn {
		panic("surface exploded on " + op)
	}
	r.ops = append(r.ops, op+fmt.Sprint(args...))
}

func (r *recorder) SetColor(c Nt.RGBA) {
	r.log("color", Nc.FormatColor(c))
}

func (r *recorder) SetLineWidth(w float64) {
	r.log("width", w)
}

func (r *recorder) MoveTo(x, y float64) {
	r.log("move", x, ",", y)
}

func (r *recorder) LineTo(x, y float64) {
	r.log("line", x, ",", y)
}

func (r *recorder) Stroke() {
	r.log("stroke")
}

func (r *recorder) FillRect(x, y, w, h float64) {
	r.log("fill", x, y, w, h)
}

func (r *recorder) StrokeRect(x, y, w, h float64) {
	r.log("rect", x, y, w, h)
}

func (r *recorder) SetFontSize(size float64) {
	r.log("font", size)
}

func (r *recorder) DrawText(text string, x, y float64) {
	r.log("text", text)
	r.texts = append(r.texts, text)
	r.textAt = append(r.textAt, [2]float64{x, y})
}

func (r *recorder) MeasureText(text string) Nc.Extents {
	return Nc.Extents{Width: float64(len(text)) * 6, Height: 10}
}

func (r *recorder) Err() error { return r.err }

func (r *recorder) count(prefix string) int {
	n := 0
	for _, op := range r.ops {
		if strings.HasPrefix(op, prefix) {
			n++
		}
	}
	return n
}

func (r *recorder) hasText(want string) bool {
	for _, t := range r.texts {
		if t == want {
			return true
		}
	}
	return false
}

// makeTestChart builds the gpu/mem/fan + temp + time layout
func makeTestChart(t *testing.T, capacity int) *Nc.Chart {
	t.Helper()

	white := Nt.RGBA{R: 1, G: 1, B: 1, A: 1}
	gpu := Nc.NewSeries("gpu", "GPU", Nt.RGBA{G: 1, A: 1}, nil, Nc.PercentFormat("GPU"))
	mem := Nc.NewSeries("mem", "RAM", Nt.RGBA{R: 1, G: 1, A: 1}, nil, Nc.PercentFormat("RAM"))
	temp := Nc.NewSeries("temp", "Temp", Nt.RGBA{R: 1, A: 1}, nil, Nc.TempFormat("Temp", Nc.Celsius))

	pct, err := Nc.NewAxisGroup("axis_pct", white, Nt.Value, Nc.Range{Lo: 0, Hi: 100}, 3, Nc.PercentLabels(), gpu, mem)
	assertError(t, err, nil)
	tmp, err := Nc.NewAxisGroup("axis_temp", white, Nt.Value, Nc.Range{Lo: 0, Hi: 110}, 3, Nc.TempLabels(Nc.Celsius), temp)
	assertError(t, err, nil)
	x, err := Nc.NewAxisGroup("axis_x", white, Nt.Time, Nc.Range{Lo: 60, Hi: 0}, 3, Nc.TimeLabels("seconds"), gpu, mem, temp)
	assertError(t, err, nil)

	c, err := Nc.NewChart("bg", Nt.RGBA{A: 1}, Nt.RGBA{R: 1, G: 1, B: 1, A: 0.3}, Nc.NewWindow(capacity), tmp, pct, x)
	assertError(t, err, nil)
	return c
}

func sample(vals map[string]float64) Nt.Sample {
	return Nt.Sample{Values: vals}
}

func testViewport() Nc.Viewport {
	return Nc.Viewport{
		Width:   300,
		Height:  200,
		Margins: Nc.Margins{Left: 40, Right: 40, Bottom: 20, Top: 10},
	}
}

func assertError(t testing.TB, got, want error) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Errorf("got error %q want %q", got, want)
	}
}

func assertGotError(t testing.TB, got error) {
	t.Helper()
	if got == nil {
		t.Errorf("Expected an error but got %q", got)
	}
}

func assertInt(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("did not get correct value, got %d, want %d", got, want)
	}
}

func assertFloat(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("did not get correct value, got %f, want %f", got, want)
	}
}

func assertString(t *testing.T, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func assertRGBA(t *testing.T, got, want Nt.RGBA) {
	t.Helper()
	const tol = 1.0 / 255.0
	if math.Abs(got.R-want.R) > tol || math.Abs(got.G-want.G) > tol ||
		math.Abs(got.B-want.B) > tol || math.Abs(got.A-want.A) > tol {
		t.Errorf("got color %+v, want %+v", got, want)
	}
}
