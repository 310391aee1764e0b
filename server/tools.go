package nvmonitor

import (
	"log/slog"
	"math"
	"os"
	"strconv"
)

// FillEnvVar returns the value of a runtime Environment Variable
func FillEnvVar(ev string) string {
	// If the EnvVar doesn't exist return a default string
	value := os.Getenv(ev)
	if value == "" {
		value = "ENOENT"
	}
	return value
}

// FillEnvVarInt returns the integer in ev, or def when unset or unparsable
func FillEnvVarInt(ev string, def int) int {
	value := FillEnvVar(ev)
	if value == "ENOENT" {
		return def
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		slog.Error("Environment variable is not an integer",
			slog.String("var", ev),
			slog.String("value", value))
		return def
	}
	return i
}

// FillEnvVarFloat returns the number in ev, or def when unset or unparsable
func FillEnvVarFloat(ev string, def float64) float64 {
	value := FillEnvVar(ev)
	if value == "ENOENT" {
		return def
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Error("Environment variable is not a number",
			slog.String("var", ev),
			slog.String("value", value))
		return def
	}
	return f
}

// FloatPrecise rounds f to p decimal places
func FloatPrecise(f float64, p int) float64 {
	scale := math.Pow(10, float64(p))
	return math.Round(f*scale) / scale
}
