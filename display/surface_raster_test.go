package nvmonitor_test

import (
	"bytes"
	"context"
	"testing"

	Nd "github.com/kalin91/nvmonitor/display"
	Nt "github.com/kalin91/nvmonitor/types"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

func TestDrawingColor(t *testing.T) {
	got := Nd.DrawingColor(Nt.RGBA{R: 1, G: 0.5, B: 0, A: 0.3})
	want := drawing.Color{R: 255, G: 128, B: 0, A: 77}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRasterSurface(t *testing.T) {
	m := makeTestMonitor(t)
	addSamples(t, m, 5)
	vp := m.Viewport(400, 200)

	t.Run("Renders a PNG", func(t *testing.T) {
		rs, err := Nd.NewRasterSurface(chart.PNG, 400, 200)
		assertError(t, err, nil)

		assertError(t, m.RenderAt(context.Background(), rs, vp, 360, true), nil)

		var buf bytes.Buffer
		assertError(t, rs.Save(&buf), nil)
		if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
			t.Errorf("output is not a PNG")
		}
	})

	t.Run("Renders an SVG", func(t *testing.T) {
		rs, err := Nd.NewRasterSurface(chart.SVG, 400, 200)
		assertError(t, err, nil)

		assertError(t, m.RenderAt(context.Background(), rs, vp, 0, false), nil)

		var buf bytes.Buffer
		assertError(t, rs.Save(&buf), nil)
		assertStringContains(t, buf.String(), "<svg")
		assertStringContains(t, buf.String(), "<path")
	})

	t.Run("Measures text", func(t *testing.T) {
		rs, err := Nd.NewRasterSurface(chart.PNG, 100, 100)
		assertError(t, err, nil)

		rs.SetFontSize(10)
		ext := rs.MeasureText("100%")
		if ext.Width <= 0 || ext.Height <= 0 {
			t.Errorf("expected positive extents, got %+v", ext)
		}
	})
}
