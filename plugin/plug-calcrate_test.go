package plugin_test

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	Np "github.com/kalin91/nvmonitor/plugin"
)

func TestCalcRate(t *testing.T) {
	currtime := time.Now()
	timeago := currtime.Add(-5 * time.Second)

	t.Run("Returns rate calculation", func(t *testing.T) {
		// The rate of 400 -> 420 over 5 seconds is 4 (20/5)
		got := Np.CalcRate(420, 400, currtime, timeago)
		assertFloat(t, got, 4)
	})

	t.Run("Handles counter reset to 0", func(t *testing.T) {
		got := Np.CalcRate(0, 400, currtime, timeago)
		assertFloat(t, got, 0)
	})

	t.Run("Counter reset counts from zero", func(t *testing.T) {
		got := Np.CalcRate(10, 400, currtime, timeago)
		assertFloat(t, got, 2)
	})

	t.Run("No time elapsed gives zero", func(t *testing.T) {
		got := Np.CalcRate(420, 400, currtime, currtime)
		assertFloat(t, got, 0)
	})
}

func TestCalcRatePlugin(t *testing.T) {
	metric := "energy"
	currtime := time.Now()

	t.Run("HysteresisReq returns the correct value", func(t *testing.T) {
		plugin := Np.CalcRatePlugin{}
		assertInt(t, plugin.HysteresisReq(), 1)
	})

	t.Run("Type returns the correct value", func(t *testing.T) {
		plugin := Np.CalcRatePlugin{}
		assertStringContains(t, plugin.Type(), "calc_rate")
	})

	t.Run("First reading starts the series", func(t *testing.T) {
		plugin := Np.CalcRatePlugin{}
		rate, err := plugin.Transform(metric, 400, nil, currtime)
		assertError(t, err, nil)
		assertFloat(t, rate, 0)
	})

	t.Run("Returns transformation for CalcRate", func(t *testing.T) {
		plugin := Np.CalcRatePlugin{}
		_, _ = plugin.Transform(metric, 400, nil, currtime.Add(-5*time.Second))

		rate, err := plugin.Transform(metric, 420, nil, currtime)
		assertError(t, err, nil)
		assertFloat(t, rate, 4)
	})

	t.Run("Each reading becomes the next baseline", func(t *testing.T) {
		plugin := Np.CalcRatePlugin{}
		_, _ = plugin.Transform(metric, 0, nil, currtime)
		_, _ = plugin.Transform(metric, 10, nil, currtime.Add(1*time.Second))

		rate, err := plugin.Transform(metric, 40, nil, currtime.Add(2*time.Second))
		assertError(t, err, nil)
		assertFloat(t, rate, 30)
	})

	t.Run("Safe for concurrent readings", func(t *testing.T) {
		plugin := &Np.CalcRatePlugin{}

		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					_, _ = plugin.Transform(metric, float64(i), nil, currtime.Add(time.Duration(i)*time.Second))
				}
			}()
		}
		wg.Wait()

		assertInt(t, len(plugin.PrevVal), 1)
	})

	t.Run("Metrics are tracked separately", func(t *testing.T) {
		plugin := Np.CalcRatePlugin{}
		_, _ = plugin.Transform("a", 100, nil, currtime)

		rate, err := plugin.Transform("b", 500, nil, currtime.Add(1*time.Second))
		assertError(t, err, nil)
		assertFloat(t, rate, 0)
	})
}

/// Helpers

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

func assertStringContains(t *testing.T, full, want string) {
	t.Helper()
	if !strings.Contains(full, want) {
		t.Errorf("Did not find %q, expected string contains %q", want, full)
	}
}
