package nvmonitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const defaultConsumerGroup = "nvmonitor"

var ErrKafkaConfig = errors.New("kafka source needs brokers and a topic")

// KafkaSource consumes JSON lines from a topic, one sample per record
type KafkaSource struct {
	Brokers []string
	Topic   string
	Group   string
}

func (ks *KafkaSource) Name() string { return "kafka:" + ks.Topic }

// Options for the franz-go client
func (ks *KafkaSource) Options() ([]kgo.Opt, error) {
	if len(ks.Brokers) == 0 || ks.Topic == "" {
		return nil, ErrKafkaConfig
	}
	group := ks.Group
	if group == "" {
		group = defaultConsumerGroup
	}
	return []kgo.Opt{
		kgo.SeedBrokers(ks.Brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(ks.Topic),
	}, nil
}

func (ks *KafkaSource) Run(ctx context.Context, m *Monitor) error {
	opts, err := ks.Options()
	if err != nil {
		return err
	}
	cl, err := kgo.NewClient(opts...)
	if err != nil {
		slog.Error("Failed to create kafka client", slog.Any("Error", err))
		return err
	}
	defer cl.Close()

	slog.Info("Consuming", slog.String("topic", ks.Topic), slog.Any("brokers", ks.Brokers))

	for {
		fetches := cl.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}
		// non-retriable errors only, the client retries the rest
		fetches.EachError(func(topic string, partition int32, err error) {
			slog.Error("Fetch failed",
				slog.String("topic", topic),
				slog.Int("partition", int(partition)),
				slog.Any("Error", err))
		})

		iter := fetches.RecordIter()
		for !iter.Done() {
			record := iter.Next()
			if err := m.HandleLine(ctx, record.Value); err != nil {
				slog.Error("Could not process record",
					slog.String("topic", record.Topic),
					slog.Int64("offset", record.Offset),
					slog.Any("Error", err))
			}
		}
		if err := cl.CommitUncommittedOffsets(ctx); err != nil {
			slog.Error("Commit failed", slog.Any("Error", err))
		}
	}
}

// NewSources builds every configured source, stdin reads from in
func NewSources(cfg *Config, in io.Reader) ([]Source, error) {
	var out []Source
	for i, sc := range cfg.Sources {
		switch strings.ToLower(sc.Type) {
		case "stdin":
			if in == nil {
				in = os.Stdin
			}
			out = append(out, &LineSource{Reader: in, Label: "stdin"})
		case "http":
			interval := sc.Interval
			if interval <= 0 {
				interval = pollDefault(cfg)
			}
			out = append(out, &PollSource{
				URL:      sc.URL,
				Delim:    sc.Delim,
				Interval: interval,
			})
		case "kafka":
			ks := &KafkaSource{Brokers: sc.Brokers, Topic: sc.Topic, Group: sc.Group}
			if _, err := ks.Options(); err != nil {
				return nil, fmt.Errorf("source %d: %w", i, err)
			}
			out = append(out, ks)
		default:
			return nil, fmt.Errorf("source %d: unknown type %q", i, sc.Type)
		}
	}
	return out, nil
}

// pollDefault picks an interval for http sources from the window settings
func pollDefault(cfg *Config) time.Duration {
	return time.Duration(cfg.Window.Interval * float64(time.Second))
}
