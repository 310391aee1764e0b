package types

/*

	These are the "immutable" core types of nvmonitor,
	provided for cross-package use (e.g. Plugins) and testing.

	There are no functions defined here.
	Constructors and behaviour live in /chart/.

*/

import "time"

// RGBA is a normalized color, every channel in [0,1]
type RGBA struct {
	R float64
	G float64
	B float64
	A float64
}

// Sample is one line of readings from the producer.
// Once appended to a window it is never modified.
type Sample struct {
	Values   map[string]float64 // metric name -> reading
	TS       string             // producer timestamp, e.g. 2024/02/02_12:00:00.000
	Received time.Time          // wall clock at ingestion
}

// Orientation of an axis group
type Orientation int

const (
	Value Orientation = iota // vertical value axis, grid lines run horizontally
	Time                     // horizontal time axis, grid lines run vertically
)

// Edge classifies a grid step along its axis.
// Label alignment differs at the two extremes.
type Edge int

const (
	Start Edge = iota // first step, ratio 0
	Inner             // anything between
	End               // last step, ratio 1
)

// CoordinatePoint is the per-frame screen projection of one sample.
// It is rebuilt on every render and never outlives the frame.
type CoordinatePoint struct {
	X       float64            // screen x
	SeriesY map[string]float64 // screen y by series name
	Raw     Sample             // the sample this point was built from
	Label   string             // HH:MM:SS, raw ts or N/A
	StepX   float64            // distance between neighbouring points
}

// TooltipLine is one row of the hover info box
type TooltipLine struct {
	Text  string
	Color RGBA
}
