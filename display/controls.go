package nvmonitor

import (
	"fmt"
	"strings"

	Ns "github.com/kalin91/nvmonitor/server"
)

// Control binds a key to a series visibility toggle
type Control struct {
	Key    rune
	Series string
	Label  string
}

// Controls is the toggle registry, one entry per series in chart order
type Controls struct {
	items []Control
}

// NewControls assigns keys 1..9 to the first nine series
func NewControls(labels []Ns.Label) *Controls {
	c := &Controls{}
	for i, l := range labels {
		if i >= 9 {
			break
		}
		c.items = append(c.items, Control{Key: rune('1' + i), Series: l.Name, Label: l.Label})
	}
	return c
}

func (c *Controls) Items() []Control { return c.items }

// Lookup the series bound to key
func (c *Controls) Lookup(key rune) (string, bool) {
	for _, it := range c.items {
		if it.Key == key {
			return it.Series, true
		}
	}
	return "", false
}

// KeyFor returns the key bound to series, or 0
func (c *Controls) KeyFor(series string) rune {
	for _, it := range c.items {
		if it.Series == series {
			return it.Key
		}
	}
	return 0
}

// Help is the one line key legend
func (c *Controls) Help() string {
	parts := make([]string, 0, len(c.items)+1)
	for _, it := range c.items {
		parts = append(parts, fmt.Sprintf("%c=%s", it.Key, it.Label))
	}
	parts = append(parts, "esc=quit")
	return strings.Join(parts, " ")
}
