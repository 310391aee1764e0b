package nvmonitor

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	No "github.com/kalin91/nvmonitor/obvy"
	Nt "github.com/kalin91/nvmonitor/types"
	"go.opentelemetry.io/otel/attribute"
)

const (
	webTimeout      = 10 * time.Second
	defaultPollRate = 2 * time.Second
)

type HTTPClient interface {
	Get(string) (*http.Response, error)
}

// Shared HTTP Client
var sharedHTTPClient = &http.Client{
	Timeout: webTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	},
}

// SingleFetchWithClient handles the messy business of the HTTP connection
// and is testable with dependency injection, called by SingleFetch
func SingleFetchWithClient(url string, c HTTPClient) (int, []byte, error) {
	resp, err := c.Get(url)
	if err != nil {
		slog.Error("Fetch Error", slog.Any("Error", err))
		return 0, nil, err
	}

	// This io.ReadAll block does not have test coverage
	// Accepting this because of how difficult it is to mock
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("Could not read body", slog.Any("Error", err))
		return 0, nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("Close Error", slog.Any("Error", err))
			return
		}
	}()

	return resp.StatusCode, body, err
}

// SingleFetch returns the Response Code, raw byte stream body, and error
// This uses a Shared HTTP Client:
// - to reuse existing endpoint connections
// - to avoid stale connections that eat up OS FDs
func SingleFetch(url string) (int, []byte, error) {
	return SingleFetchWithClient(url, sharedHTTPClient)
}

// MetricKV streams input from the endpoint body and populates
// a map for all key/values, removing whitespace and comments
func MetricKV(d, url string) (map[string]string, error) {
	_, body, err := SingleFetch(url)
	if err != nil {
		return nil, err
	}
	return ParseMetricKV(bytes.NewReader(body), d)
}

// SampleFromKV keeps the numeric entries of a KV map.
// A "ts" key becomes the sample timestamp.
func SampleFromKV(kv map[string]string) Nt.Sample {
	s := Nt.Sample{Values: make(map[string]float64, len(kv))}
	for k, v := range kv {
		if k == "ts" {
			s.TS = v
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		s.Values[k] = f
	}
	return s
}

// PollSource fetches URL every Interval.
// A JSON body is handled like an input line, anything else is parsed
// as KEY<Delim>VALUE lines.
type PollSource struct {
	URL      string
	Delim    string
	Interval time.Duration
	Client   HTTPClient
}

func (ps *PollSource) Name() string { return "http:" + ps.URL }

func (ps *PollSource) Run(ctx context.Context, m *Monitor) error {
	interval := ps.Interval
	if interval <= 0 {
		interval = defaultPollRate
	}
	client := ps.Client
	if client == nil {
		client = sharedHTTPClient
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ps.Poll(ctx, m, client)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Poll performs one fetch and hands the result to m.
// Failures are logged and retried on the next tick.
func (ps *PollSource) Poll(ctx context.Context, m *Monitor, client HTTPClient) {
	ctx, span := No.Tracer().Start(ctx, "poll")
	defer span.End()
	span.SetAttributes(attribute.String("url", ps.URL))

	start := time.Now()
	code, body, err := SingleFetchWithClient(ps.URL, client)
	m.Stats.RecPollTimer(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		return
	}
	if code != http.StatusOK {
		slog.Error("Poll returned non-OK status",
			slog.String("url", ps.URL),
			slog.Int("status", code))
		m.Stats.RecDropped("status")
		return
	}

	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte("{")) {
		if err := m.HandleLine(ctx, trimmed); err != nil {
			slog.Error("Could not process poll body", slog.Any("Error", err))
		}
		return
	}

	delim := ps.Delim
	if delim == "" {
		delim = "="
	}
	kv, err := ParseMetricKV(bytes.NewReader(body), delim)
	if err != nil {
		m.Stats.RecDropped("malformed")
		return
	}
	if err := m.HandleSample(ctx, SampleFromKV(kv), body); err != nil {
		slog.Error("Could not process poll body", slog.Any("Error", err))
	}
}

func ParseMetricKV(reader io.Reader, d string) (map[string]string, error) {
	envMap := make(map[string]string)
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// ignore whitespace and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Split on the delimiter /d/
		parts := strings.SplitN(line, d, 2)
		if len(parts) != 2 {
			slog.Error("WARNING: Invalid line", slog.String("line", line))
			continue
		}

		// Extract Key, Clean up Value, Add to Map
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		// Remove quotes
		value = strings.Trim(value, `"'`)
		// Take care of any trailing quotes and comments
		if pos := strings.IndexAny(value, `"'#`); pos != -1 {
			value = value[:pos]
		}
		envMap[key] = value
	}

	if err := scanner.Err(); err != nil {
		slog.Error("Problem scanning input", slog.Any("Error", err))
		return nil, fmt.Errorf("scanning error: %w", err)
	}

	return envMap, nil
}
