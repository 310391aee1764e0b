package nvmonitor_test

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	Nd "github.com/kalin91/nvmonitor/display"
	Nt "github.com/kalin91/nvmonitor/types"
)

var (
	white = Nt.RGBA{R: 1, G: 1, B: 1, A: 1}
	red   = Nt.RGBA{R: 1, G: 0, B: 0, A: 1}
)

func TestCellSurface_Size(t *testing.T) {
	s := mkTestScreen(t, "UTF-8")
	defer s.Fini()

	w, h := Nd.NewCellSurface(s).Size()
	assertFloat(t, w, 80*Nd.CellWidth)
	assertFloat(t, h, 25*Nd.CellHeight)
}

func TestCellColor(t *testing.T) {
	t.Run("Opaque colors pass through", func(t *testing.T) {
		if got := Nd.CellColor(red); got != tcell.NewRGBColor(255, 0, 0) {
			t.Errorf("got %v, want red", got)
		}
	})

	t.Run("Alpha blends over black", func(t *testing.T) {
		got := Nd.CellColor(Nt.RGBA{R: 1, G: 1, B: 1, A: 0.5})
		if got != tcell.NewRGBColor(128, 128, 128) {
			t.Errorf("got %v, want mid grey", got)
		}
	})
}

func TestCellSurface_Draw(t *testing.T) {
	t.Run("Text lands on the row of its baseline", func(t *testing.T) {
		s := mkTestScreen(t, "UTF-8")
		defer s.Fini()
		cs := Nd.NewCellSurface(s)

		cs.SetColor(white)
		cs.DrawText("abc", 2*Nd.CellWidth, 2.5*Nd.CellHeight)

		r, _, _, _ := s.GetContent(2, 2)
		if r != 'a' {
			t.Errorf("got %q at (2,2), want 'a'", r)
		}
		r, _, _, _ = s.GetContent(4, 2)
		if r != 'c' {
			t.Errorf("got %q at (4,2), want 'c'", r)
		}
	})

	t.Run("Thin horizontal lines", func(t *testing.T) {
		s := mkTestScreen(t, "UTF-8")
		defer s.Fini()
		cs := Nd.NewCellSurface(s)

		cs.SetColor(white)
		cs.SetLineWidth(1)
		cs.MoveTo(0, 20)
		cs.LineTo(10*Nd.CellWidth, 20)
		cs.Stroke()

		for col := 0; col <= 10; col++ {
			if r, _, _, _ := s.GetContent(col, 1); r != '─' {
				t.Errorf("got %q at (%d,1), want '─'", r, col)
			}
		}
	})

	t.Run("Thick lines use dots", func(t *testing.T) {
		s := mkTestScreen(t, "UTF-8")
		defer s.Fini()
		cs := Nd.NewCellSurface(s)

		cs.SetColor(red)
		cs.SetLineWidth(2)
		cs.MoveTo(0, 0)
		cs.LineTo(5*Nd.CellWidth, 5*Nd.CellHeight)
		cs.Stroke()

		for i := 0; i <= 5; i++ {
			if r, _, _, _ := s.GetContent(i, i); r != '•' {
				t.Errorf("got %q at (%d,%d), want '•'", r, i, i)
			}
		}
	})

	t.Run("Stroke clears the path", func(t *testing.T) {
		s := mkTestScreen(t, "UTF-8")
		defer s.Fini()
		cs := Nd.NewCellSurface(s)

		cs.MoveTo(0, 0)
		cs.LineTo(3*Nd.CellWidth, 0)
		cs.Stroke()
		s.Clear()
		cs.Stroke()

		if r, _, _, _ := s.GetContent(1, 0); r == '─' {
			t.Errorf("second stroke redrew the old path")
		}
	})

	t.Run("Text keeps the filled background", func(t *testing.T) {
		s := mkTestScreen(t, "UTF-8")
		defer s.Fini()
		cs := Nd.NewCellSurface(s)

		cs.SetColor(red)
		cs.FillRect(0, 0, 80*Nd.CellWidth, 25*Nd.CellHeight)
		cs.SetColor(white)
		cs.DrawText("x", 5*Nd.CellWidth, 5.5*Nd.CellHeight)

		r, _, style, _ := s.GetContent(5, 5)
		fg, bg, _ := style.Decompose()
		if r != 'x' || fg != Nd.CellColor(white) || bg != Nd.CellColor(red) {
			t.Errorf("got %q fg %v bg %v", r, fg, bg)
		}
	})

	t.Run("Rectangle corners", func(t *testing.T) {
		s := mkTestScreen(t, "UTF-8")
		defer s.Fini()
		cs := Nd.NewCellSurface(s)

		cs.SetColor(white)
		cs.StrokeRect(Nd.CellWidth, Nd.CellHeight, 10*Nd.CellWidth, 3*Nd.CellHeight)

		want := map[[2]int]rune{
			{1, 1}:  tcell.RuneULCorner,
			{11, 1}: tcell.RuneURCorner,
			{1, 4}:  tcell.RuneLLCorner,
			{11, 4}: tcell.RuneLRCorner,
			{5, 1}:  tcell.RuneHLine,
			{1, 2}:  tcell.RuneVLine,
		}
		for pos, rn := range want {
			if r, _, _, _ := s.GetContent(pos[0], pos[1]); r != rn {
				t.Errorf("got %q at %v, want %q", r, pos, rn)
			}
		}
	})

	t.Run("Off screen drawing is clipped", func(t *testing.T) {
		s := mkTestScreen(t, "UTF-8")
		defer s.Fini()
		cs := Nd.NewCellSurface(s)

		cs.DrawText("far away", -100, -100)
		cs.DrawText("far away", 10000, 10000)
		cs.MoveTo(-50, -50)
		cs.LineTo(10000, 10000)
		cs.Stroke()
	})

	t.Run("Measures in cells", func(t *testing.T) {
		s := mkTestScreen(t, "UTF-8")
		defer s.Fini()

		ext := Nd.NewCellSurface(s).MeasureText("100%")
		assertFloat(t, ext.Width, 4*Nd.CellWidth)
		assertFloat(t, ext.Height, Nd.CellHeight)
	})
}
