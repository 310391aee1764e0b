package chart

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	Nt "github.com/kalin91/nvmonitor/types"
)

var (
	// ErrorColor is returned for any spec that fails to parse.
	// Opaque magenta is hard to miss on a chart.
	ErrorColor = Nt.RGBA{R: 1, G: 0, B: 1, A: 1}

	// FallbackColor is returned when a recognized form has too few components
	FallbackColor = Nt.RGBA{R: 1, G: 1, B: 1, A: 1}

	ErrColorSyntax = errors.New("malformed color")
)

// ParseColor reads #RGB, #RRGGBB, #RRGGBBAA, rgb(r,g,b) and rgba(r,g,b,a).
// It never panics: on failure it returns ErrorColor together with an error
// wrapping ErrColorSyntax, and the caller decides whether to log it.
func ParseColor(spec string) (Nt.RGBA, error) {
	c := strings.Trim(spec, "'\" ")

	switch {
	case strings.HasPrefix(c, "#"):
		return parseHex(c[1:], spec)
	case strings.HasPrefix(c, "rgb"):
		return parseFunctional(c, spec)
	}

	return ErrorColor, fmt.Errorf("%w: unrecognized prefix in %q", ErrColorSyntax, spec)
}

func parseHex(h, spec string) (Nt.RGBA, error) {
	if len(h) == 3 {
		var b strings.Builder
		for _, r := range h {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		h = b.String()
	}
	if len(h) < 6 {
		return FallbackColor, nil
	}

	var ch [4]float64
	ch[3] = 1.0
	n := 3
	if len(h) == 8 {
		n = 4
	}
	for i := 0; i < n; i++ {
		v, err := strconv.ParseUint(h[i*2:i*2+2], 16, 8)
		if err != nil {
			return ErrorColor, fmt.Errorf("%w: bad hex digits in %q: %v", ErrColorSyntax, spec, err)
		}
		ch[i] = float64(v) / 255.0
	}

	return Nt.RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

func parseFunctional(c, spec string) (Nt.RGBA, error) {
	open := strings.Index(c, "(")
	if open < 0 {
		return ErrorColor, fmt.Errorf("%w: missing '(' in %q", ErrColorSyntax, spec)
	}
	end := strings.Index(c[open:], ")")
	if end < 0 {
		return ErrorColor, fmt.Errorf("%w: unterminated parens in %q", ErrColorSyntax, spec)
	}

	parts := strings.Split(c[open+1:open+end], ",")
	if len(parts) < 3 {
		return FallbackColor, nil
	}

	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return ErrorColor, fmt.Errorf("%w: bad component %q in %q", ErrColorSyntax, p, spec)
		}
		vals = append(vals, v)
	}

	r, g, b := vals[0], vals[1], vals[2]
	a := 1.0
	if len(vals) > 3 {
		a = vals[3]
	}

	// 0-255 components
	if r > 1.0 || g > 1.0 || b > 1.0 {
		r /= 255.0
		g /= 255.0
		b /= 255.0
	}

	return Nt.RGBA{R: r, G: g, B: b, A: a}, nil
}

// FormatColor renders c as #rrggbbaa, the form used in label markup
func FormatColor(c Nt.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", toByte(c.R), toByte(c.G), toByte(c.B), toByte(c.A))
}

func toByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
