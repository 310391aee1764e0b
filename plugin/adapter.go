package plugin

/*

	The Adapter sits beside the sample window.
	Transformers derive values before a sample is appended,
	outputs receive every sample after it is appended.

*/

import (
	"time"

	Nt "github.com/kalin91/nvmonitor/types"
)

// MetricTransformer rewrites one metric of an incoming sample.
// raw is the whole input line, for transformers that read beyond the metric.
// HysteresisReq is the number of earlier readings needed before a
// result is meaningful, for instance rates need 1, path lookups -1.
type MetricTransformer interface {
	Transform(metric string, current float64, raw []byte, timestamp time.Time) (float64, error)
	HysteresisReq() int // Required measurements in the past needed for calculation
	Type() string       // Unique ID for the transformer
}

// OutputAdapter is a place for samples to go,
// one at a time or in batches if supported by the output type.
type OutputAdapter interface {
	WriteSample(s Nt.Sample) error                        // Write a single sample
	WriteBatch(samples []Nt.Sample) error                 // Write a batch of samples
	QueryRange(start, end time.Time) ([]Nt.Sample, error) // Samples received in [start, end)
	Flush() error                                         // Flush any buffered data
	Close() error                                         // Close the adapter and release resources
	Type() string                                         // ID for output
}
