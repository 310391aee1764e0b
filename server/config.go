package nvmonitor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is everything the monitor reads at startup
type Config struct {
	Colors     ColorConfig       `yaml:"colors"`
	Steps      StepsConfig       `yaml:"steps"`
	Window     WindowConfig      `yaml:"window"`
	TempUnit   string            `yaml:"temp_unit"`
	Margins    MarginsConfig     `yaml:"margins"`
	FontSize   float64           `yaml:"font_size"`
	Sources    []SourceConfig    `yaml:"sources"`
	Transforms []TransformConfig `yaml:"transforms"`
	Archive    ArchiveConfig     `yaml:"archive"`
	HTTP       HTTPConfig        `yaml:"http"`
	Tracing    string            `yaml:"tracing"` // "", honeycomb or otlp
}

// ColorConfig holds color strings in any form ParseColor accepts
type ColorConfig struct {
	GPU        string `yaml:"gpu"`
	Mem        string `yaml:"mem"`
	Temp       string `yaml:"temp"`
	Fan        string `yaml:"fan"`
	Background string `yaml:"bg"`
	AxisTemp   string `yaml:"axis_temp"`
	AxisPct    string `yaml:"axis_pct"`
	AxisX      string `yaml:"axis_x"` // also the tooltip time line
	Grid       string `yaml:"grid"`
}

type StepsConfig struct {
	Value int `yaml:"value"`
	Time  int `yaml:"time"`
}

type WindowConfig struct {
	Length   float64 `yaml:"length"`
	Unit     string  `yaml:"unit"`     // seconds, minutes or hours
	Interval float64 `yaml:"interval"` // seconds between samples
}

type MarginsConfig struct {
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
}

// SourceConfig describes one ingestion source, by Type:
// stdin reads JSON lines, http polls URL, kafka consumes Topic
type SourceConfig struct {
	Type     string        `yaml:"type"`
	URL      string        `yaml:"url"`
	Delim    string        `yaml:"delim"`
	Interval time.Duration `yaml:"interval"`
	Brokers  []string      `yaml:"brokers"`
	Topic    string        `yaml:"topic"`
	Group    string        `yaml:"group"`
}

// TransformConfig rewrites Metric with a registered transformer
type TransformConfig struct {
	Metric string `yaml:"metric"`
	Type   string `yaml:"type"`
	Arg    string `yaml:"arg"`
}

type ArchiveConfig struct {
	Path      string `yaml:"path"`
	InMemory  bool   `yaml:"in_memory"`
	BatchSize int    `yaml:"batch_size"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Enabled reports whether samples should be archived
func (a ArchiveConfig) Enabled() bool {
	return a.Path != "" || a.InMemory
}

// WindowSpan is the window length as a duration
func (c *Config) WindowSpan() time.Duration {
	unit := time.Second
	switch c.Window.Unit {
	case "minutes":
		unit = time.Minute
	case "hours":
		unit = time.Hour
	}
	return time.Duration(c.Window.Length * float64(unit))
}

// DefaultConfig is a complete working configuration
func DefaultConfig() *Config {
	return &Config{
		Colors: ColorConfig{
			GPU:        "#0ed815",
			Mem:        "#fbff07",
			Temp:       "#f51717",
			Fan:        "#7805e4",
			Background: "#000000",
			AxisTemp:   "#ffffff",
			AxisPct:    "#ffffff",
			AxisX:      "#ffffff",
			Grid:       "rgba(255,255,255,0.3)",
		},
		Steps:    StepsConfig{Value: 3, Time: 3},
		Window:   WindowConfig{Length: 60, Unit: "seconds", Interval: 1.5},
		TempUnit: "C",
		Margins:  MarginsConfig{Left: 40, Right: 40, Top: 10, Bottom: 20},
		FontSize: 10,
		Sources:  []SourceConfig{{Type: "stdin"}},
		Archive:  ArchiveConfig{BatchSize: 20},
		HTTP:     HTTPConfig{Addr: ":8090"},
	}
}

// LoadConfigFileName pulls a given filename config off local disk
// Validation is performed on the file before opening
func LoadConfigFileName(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// validation
	err = validateLoad(file)
	if err != nil {
		slog.Error("Validation failed", slog.Any("Error", err))
		return nil, err
	}

	return LoadConfig(file)
}

func validateLoad(file *os.File) error {
	// validate file
	info, err := file.Stat()
	if err != nil {
		slog.Error("could not stat file")
		return err
	}

	// validate size
	if info.Size() == 0 {
		slog.Error("file is empty")
		return errors.New("file is empty")
	}

	return nil
}

// LoadConfig decodes YAML over the defaults and validates the result
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("could not decode config", slog.Any("Error", err))
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides config values from NVMONITOR_* variables
func (c *Config) ApplyEnv() {
	if v := FillEnvVar("NVMONITOR_HTTP_ADDR"); v != "ENOENT" {
		c.HTTP.Addr = v
	}
	if v := FillEnvVar("NVMONITOR_TEMP_UNIT"); v != "ENOENT" {
		c.TempUnit = v
	}
	if v := FillEnvVar("NVMONITOR_ARCHIVE"); v != "ENOENT" {
		c.Archive.Path = v
	}
	if v := FillEnvVar("NVMONITOR_TRACING"); v != "ENOENT" {
		c.Tracing = v
	}
	c.Window.Length = FillEnvVarFloat("NVMONITOR_WINDOW_LENGTH", c.Window.Length)
	c.Window.Interval = FillEnvVarFloat("NVMONITOR_INTERVAL", c.Window.Interval)
	c.Steps.Value = FillEnvVarInt("NVMONITOR_VALUE_STEPS", c.Steps.Value)
	c.Steps.Time = FillEnvVarInt("NVMONITOR_TIME_STEPS", c.Steps.Time)
}

// Validate rejects configurations the chart cannot be built from.
// Colors are not checked here, a bad color renders as magenta.
func (c *Config) Validate() error {
	var errs []error

	if c.Steps.Value <= 0 || c.Steps.Time <= 0 {
		errs = append(errs, fmt.Errorf("steps must be positive, got value=%d time=%d", c.Steps.Value, c.Steps.Time))
	}
	switch c.Window.Unit {
	case "seconds", "minutes", "hours":
	default:
		errs = append(errs, fmt.Errorf("window unit %q is not seconds, minutes or hours", c.Window.Unit))
	}
	if c.Window.Length <= 0 {
		errs = append(errs, fmt.Errorf("window length must be positive, got %v", c.Window.Length))
	}
	switch strings.ToUpper(c.TempUnit) {
	case "C", "F":
	default:
		errs = append(errs, fmt.Errorf("temp unit %q is not C or F", c.TempUnit))
	}

	for i, s := range c.Sources {
		switch s.Type {
		case "stdin":
		case "http":
			if s.URL == "" {
				errs = append(errs, fmt.Errorf("source %d: http needs a url", i))
			}
		case "kafka":
			if len(s.Brokers) == 0 || s.Topic == "" {
				errs = append(errs, fmt.Errorf("source %d: kafka needs brokers and a topic", i))
			}
		default:
			errs = append(errs, fmt.Errorf("source %d: unknown type %q", i, s.Type))
		}
	}

	for i, t := range c.Transforms {
		if t.Metric == "" || t.Type == "" {
			errs = append(errs, fmt.Errorf("transform %d: metric and type are required", i))
		}
	}

	if err := errors.Join(errs...); err != nil {
		slog.Error("Invalid configuration", slog.Any("Error", err))
		return err
	}
	return nil
}
