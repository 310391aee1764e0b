package nvmonitor_test

import (
	"testing"

	Ns "github.com/kalin91/nvmonitor/server"
)

func TestFillEnvVar(t *testing.T) {

	t.Run("returns a default value", func(t *testing.T) {
		ev := "NVMONITOR_ANYTHING_UNSET"
		want := "ENOENT"
		got := Ns.FillEnvVar(ev)

		assertString(t, got, want)
	})

	t.Run("returns a set value", func(t *testing.T) {
		ev := "NVMONITOR_TOKEN"
		want := "ghp_1q2w3e4r5t6y7u8i9o0p"
		t.Setenv(ev, want)

		got := Ns.FillEnvVar(ev)
		assertString(t, got, want)
	})
}

func TestFillEnvVarInt(t *testing.T) {
	t.Run("returns the default when unset", func(t *testing.T) {
		assertInt(t, Ns.FillEnvVarInt("NVMONITOR_STEPS_UNSET", 3), 3)
	})

	t.Run("returns a set value", func(t *testing.T) {
		t.Setenv("NVMONITOR_STEPS_TEST", "7")
		assertInt(t, Ns.FillEnvVarInt("NVMONITOR_STEPS_TEST", 3), 7)
	})

	t.Run("returns the default when not a number", func(t *testing.T) {
		t.Setenv("NVMONITOR_STEPS_TEST", "seven")
		assertInt(t, Ns.FillEnvVarInt("NVMONITOR_STEPS_TEST", 3), 3)
	})
}

func TestFillEnvVarFloat(t *testing.T) {
	t.Run("returns a set value", func(t *testing.T) {
		t.Setenv("NVMONITOR_INTERVAL_TEST", "0.75")
		assertFloat(t, Ns.FillEnvVarFloat("NVMONITOR_INTERVAL_TEST", 1.5), 0.75)
	})

	t.Run("returns the default when not a number", func(t *testing.T) {
		t.Setenv("NVMONITOR_INTERVAL_TEST", "fast")
		assertFloat(t, Ns.FillEnvVarFloat("NVMONITOR_INTERVAL_TEST", 1.5), 1.5)
	})
}

func TestFloatPrecise(t *testing.T) {
	assertFloat(t, Ns.FloatPrecise(3.14159, 2), 3.14)
	assertFloat(t, Ns.FloatPrecise(2.5, 0), 3)
	assertFloat(t, Ns.FloatPrecise(-1.005, 1), -1.0)
}
