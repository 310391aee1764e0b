package plugin

/*
	JSONPath

	Reads a metric out of the raw input line with a gjson path,
	for producers that nest readings, e.g. {"gpu":{"power":{"draw":71.3}}}
	with path "gpu.power.draw".
*/

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

var ErrPathNotFound = errors.New("json path not found")

type JSONPathPlugin struct {
	Path string
}

// NewJSONTransformer returns a struct for what to search in the JSON
func NewJSONTransformer(path string) *JSONPathPlugin {
	return &JSONPathPlugin{Path: path}
}

// Transform ignores current and reads Path from raw.
// Numeric strings are accepted, anything else is an error.
func (tj *JSONPathPlugin) Transform(metric string, current float64, raw []byte, timestamp time.Time) (float64, error) {
	res := gjson.GetBytes(raw, tj.Path)
	if !res.Exists() {
		slog.Debug("Path missing from line",
			slog.String("metric", metric),
			slog.String("path", tj.Path))
		return 0, fmt.Errorf("%w: %s", ErrPathNotFound, tj.Path)
	}

	switch res.Type {
	case gjson.Number:
		return res.Float(), nil
	case gjson.String:
		v, err := strconv.ParseFloat(res.Str, 64)
		if err != nil {
			return 0, fmt.Errorf("value at %s is not numeric: %w", tj.Path, err)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("value at %s is not numeric: %s", tj.Path, res.Type)
	}
}

func (tj *JSONPathPlugin) HysteresisReq() int { return -1 } // Not applicable
func (tj *JSONPathPlugin) Type() string       { return "json_path" }
