package chart_test

import (
	"testing"

	Nc "github.com/kalin91/nvmonitor/chart"
	Nt "github.com/kalin91/nvmonitor/types"
)

func TestAxisGroup_GenerateSteps(t *testing.T) {
	s := Nc.NewSeries("gpu", "GPU", Nt.RGBA{A: 1}, nil, nil)
	a, err := Nc.NewAxisGroup("axis_pct", Nt.RGBA{A: 1}, Nt.Value, Nc.Range{Lo: 0, Hi: 100}, 3, nil, s)
	assertError(t, err, nil)

	steps := a.GenerateSteps()
	assertInt(t, len(steps), 4)

	wantRatio := []float64{0, 1.0 / 3, 2.0 / 3, 1}
	wantEdge := []Nt.Edge{Nt.Start, Nt.Inner, Nt.Inner, Nt.End}
	for i, st := range steps {
		assertFloat(t, st.Ratio, wantRatio[i])
		if st.Edge != wantEdge[i] {
			t.Errorf("step %d: got edge %v, want %v", i, st.Edge, wantEdge[i])
		}
	}

	t.Run("Single step has only the two edges", func(t *testing.T) {
		one, err := Nc.NewAxisGroup("one", Nt.RGBA{A: 1}, Nt.Value, Nc.Range{Lo: 0, Hi: 1}, 1, nil, s)
		assertError(t, err, nil)
		got := one.GenerateSteps()
		assertInt(t, len(got), 2)
		if got[0].Edge != Nt.Start || got[1].Edge != Nt.End {
			t.Errorf("unexpected edges %+v", got)
		}
	})
}

func TestAxisGroup_Active(t *testing.T) {
	gpu := Nc.NewSeries("gpu", "GPU", Nt.RGBA{A: 1}, nil, nil)
	mem := Nc.NewSeries("mem", "RAM", Nt.RGBA{A: 1}, nil, nil)
	a, err := Nc.NewAxisGroup("axis_pct", Nt.RGBA{A: 1}, Nt.Value, Nc.Range{Lo: 0, Hi: 100}, 3, nil, gpu, mem)
	assertError(t, err, nil)

	if !a.Active() {
		t.Error("expected active axis with visible series")
	}

	gpu.Toggle()
	if !a.Active() {
		t.Error("expected active axis with one visible series")
	}

	mem.SetVisible(false)
	if a.Active() {
		t.Error("expected inactive axis when every series is hidden")
	}

	empty, err := Nc.NewAxisGroup("empty", Nt.RGBA{A: 1}, Nt.Time, Nc.Range{Lo: 60, Hi: 0}, 3, nil)
	assertError(t, err, nil)
	if empty.Active() {
		t.Error("expected axis without series to be inactive")
	}
}

func TestNewAxisGroup(t *testing.T) {
	s := Nc.NewSeries("gpu", "GPU", Nt.RGBA{A: 1}, nil, nil)
	dup := Nc.NewSeries("gpu", "GPU again", Nt.RGBA{A: 1}, nil, nil)

	tests := []struct {
		name   string
		o      Nt.Orientation
		r      Nc.Range
		steps  int
		series []*Nc.Series
	}{
		{"zero steps", Nt.Value, Nc.Range{Lo: 0, Hi: 100}, 0, []*Nc.Series{s}},
		{"negative steps", Nt.Time, Nc.Range{Lo: 60, Hi: 0}, -2, []*Nc.Series{s}},
		{"empty value range", Nt.Value, Nc.Range{Lo: 5, Hi: 5}, 3, []*Nc.Series{s}},
		{"duplicate series", Nt.Value, Nc.Range{Lo: 0, Hi: 100}, 3, []*Nc.Series{s, dup}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Nc.NewAxisGroup("bad", Nt.RGBA{A: 1}, tt.o, tt.r, tt.steps, nil, tt.series...)
			assertGotError(t, err)
			if a != nil {
				t.Errorf("expected no axis, got %v", a.Name())
			}
		})
	}

	t.Run("ValueAt interpolates the range", func(t *testing.T) {
		a, err := Nc.NewAxisGroup("axis_x", Nt.RGBA{A: 1}, Nt.Time, Nc.Range{Lo: 60, Hi: 0}, 3, nil, s)
		assertError(t, err, nil)
		assertFloat(t, a.ValueAt(0), 60)
		assertFloat(t, a.ValueAt(0.5), 30)
		assertFloat(t, a.ValueAt(1), 0)
	})
}

func TestAxisGroup_DrawText(t *testing.T) {
	a, err := Nc.NewAxisGroup("axis", Nt.RGBA{R: 1, A: 1}, Nt.Value, Nc.Range{Lo: 0, Hi: 1}, 1, nil)
	assertError(t, err, nil)

	// recorder measures 6 units per byte and 10 high
	tests := []struct {
		name  string
		align Nc.Align
		wantX float64
	}{
		{"left", Nc.AlignLeft, 102},
		{"right", Nc.AlignRight, 74},
		{"center", Nc.AlignCenter, 88},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			a.DrawText(r, "abcd", 100, 50, tt.align)
			assertInt(t, r.count("color"), 1)
			assertInt(t, len(r.textAt), 1)
			assertFloat(t, r.textAt[0][0], tt.wantX)
			assertFloat(t, r.textAt[0][1], 55)
		})
	}
}
