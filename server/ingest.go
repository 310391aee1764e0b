package nvmonitor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	Nt "github.com/kalin91/nvmonitor/types"
	"github.com/tidwall/gjson"
)

const (
	CommandPresent = "present"
	maxLineBytes   = 1024 * 1024
)

var (
	ErrMalformed  = errors.New("malformed input line")
	ErrEndOfInput = errors.New("end of input")
)

// Line is one decoded input line, either a Command or a Sample.
// IsCommand is set whenever the "command" key is present, even when
// its value is empty or null.
type Line struct {
	IsCommand bool
	Command   string
	Sample    Nt.Sample
}

// ParseLine decodes one JSON object.
// {"command": "..."} is a control line. Anything else is a sample:
// numbers (or numeric strings) become readings and "ts" the timestamp.
func ParseLine(b []byte) (Line, error) {
	b = bytes.TrimSpace(b)
	if !gjson.ValidBytes(b) {
		return Line{}, ErrMalformed
	}
	res := gjson.ParseBytes(b)
	if !res.IsObject() {
		return Line{}, fmt.Errorf("%w: not an object", ErrMalformed)
	}

	if cmd := res.Get("command"); cmd.Exists() {
		return Line{IsCommand: true, Command: cmd.String()}, nil
	}

	s := Nt.Sample{Values: make(map[string]float64)}
	res.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		if key == "ts" {
			s.TS = v.String()
			return true
		}
		switch v.Type {
		case gjson.Number:
			s.Values[key] = v.Float()
		case gjson.String:
			if f, err := strconv.ParseFloat(v.Str, 64); err == nil {
				s.Values[key] = f
			}
		}
		return true
	})
	return Line{Sample: s}, nil
}

// Source feeds samples into a Monitor until ctx is done or it runs dry
type Source interface {
	Run(ctx context.Context, m *Monitor) error
	Name() string
}

// LineSource reads newline delimited JSON, normally the producer's pipe.
// Run returns ErrEndOfInput when the writer closes its end.
type LineSource struct {
	Reader io.Reader
	Label  string
}

func (ls *LineSource) Name() string {
	if ls.Label == "" {
		return "stdin"
	}
	return ls.Label
}

func (ls *LineSource) Run(ctx context.Context, m *Monitor) error {
	scanner := bufio.NewScanner(ls.Reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := m.HandleLine(ctx, line); err != nil {
			slog.Error("Could not process line",
				slog.String("source", ls.Name()),
				slog.Any("Error", err))
		}
	}

	if err := scanner.Err(); err != nil {
		slog.Error("Problem scanning input", slog.Any("Error", err))
		return fmt.Errorf("scanning error: %w", err)
	}

	slog.Info("Input closed", slog.String("source", ls.Name()))
	return ErrEndOfInput
}
