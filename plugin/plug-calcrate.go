package plugin

/*
	CalcRate

	Turns a monotonically increasing counter into a per-second rate,
	e.g. energy consumed into power drawn.
*/

import (
	"sync"
	"time"
)

// CalcRatePlugin keeps the previous reading per metric.
// Several sources may feed it at once, MU guards both maps.
type CalcRatePlugin struct {
	MU       sync.Mutex
	PrevVal  map[string]float64
	PrevTime map[string]time.Time
}

// Transform returns the rate since the previous reading of metric.
// The first reading has nothing to compare with and yields 0.
func (p *CalcRatePlugin) Transform(metric string, current float64, raw []byte, timestamp time.Time) (float64, error) {
	p.MU.Lock()
	defer p.MU.Unlock()

	if p.PrevVal == nil {
		p.PrevVal = make(map[string]float64)
		p.PrevTime = make(map[string]time.Time)
	}

	prev, exists := p.PrevVal[metric]
	prevTime := p.PrevTime[metric]
	p.PrevVal[metric] = current
	p.PrevTime[metric] = timestamp

	if !exists {
		return 0, nil
	}
	return CalcRate(current, prev, timestamp, prevTime), nil
}

// CalcRate is a generic rate calculator that
// receives two sequential readings and their timestamps
// and returns the rate per second
func CalcRate(curr, prev float64, currtime, prevtime time.Time) float64 {
	delta := curr - prev
	timeDelta := currtime.Sub(prevtime).Seconds()
	if timeDelta <= 0 {
		return 0
	}

	// Handle counter reset (to 0)
	if delta < 0 {
		delta = curr
	}

	return delta / timeDelta
}

func (p *CalcRatePlugin) HysteresisReq() int { return 1 }
func (p *CalcRatePlugin) Type() string       { return "calc_rate" }
