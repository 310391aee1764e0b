package chart_test

import (
	"testing"

	Nc "github.com/kalin91/nvmonitor/chart"
	Nt "github.com/kalin91/nvmonitor/types"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    Nt.RGBA
		wantErr bool
	}{
		{"six digit hex", "#ff0000", Nt.RGBA{R: 1, G: 0, B: 0, A: 1}, false},
		{"three digit hex", "#0f0", Nt.RGBA{R: 0, G: 1, B: 0, A: 1}, false},
		{"eight digit hex", "#0000ff80", Nt.RGBA{R: 0, G: 0, B: 1, A: 128.0 / 255}, false},
		{"quoted hex", `'#0ed815'`, Nt.RGBA{R: 14.0 / 255, G: 216.0 / 255, B: 21.0 / 255, A: 1}, false},
		{"rgba byte range", "rgba(0,128,255,0.5)", Nt.RGBA{R: 0, G: 0.502, B: 1, A: 0.5}, false},
		{"rgb byte range", "rgb(255, 255, 255)", Nt.RGBA{R: 1, G: 1, B: 1, A: 1}, false},
		{"rgb normalized", "rgb(0.5,0.25,1)", Nt.RGBA{R: 0.5, G: 0.25, B: 1, A: 1}, false},
		{"grid default", "rgba(255,255,255,0.3)", Nt.RGBA{R: 1, G: 1, B: 1, A: 0.3}, false},
		{"unknown prefix", "not-a-color", Nc.ErrorColor, true},
		{"bad hex digits", "#zzzzzz", Nc.ErrorColor, true},
		{"bad component", "rgb(1,x,3)", Nc.ErrorColor, true},
		{"unterminated parens", "rgb(1,2,3", Nc.ErrorColor, true},
		{"short hex falls back to white", "#12", Nc.FallbackColor, false},
		{"too few components fall back to white", "rgb(1,2)", Nc.FallbackColor, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Nc.ParseColor(tt.spec)
			if tt.wantErr {
				assertGotError(t, err)
				assertError(t, err, Nc.ErrColorSyntax)
			} else {
				assertError(t, err, nil)
			}
			assertRGBA(t, got, tt.want)
		})
	}
}

func TestFormatColor(t *testing.T) {
	t.Run("Renders eight hex digits", func(t *testing.T) {
		assertString(t, Nc.FormatColor(Nt.RGBA{R: 1, G: 0, B: 0.5, A: 1}), "#ff0080ff")
	})

	t.Run("Round trips through ParseColor", func(t *testing.T) {
		for r := 0.0; r <= 1.0; r += 0.1 {
			for a := 0.0; a <= 1.0; a += 0.25 {
				in := Nt.RGBA{R: r, G: 1 - r, B: r / 3, A: a}
				out, err := Nc.ParseColor(Nc.FormatColor(in))
				assertError(t, err, nil)
				assertRGBA(t, out, in)
			}
		}
	})
}
