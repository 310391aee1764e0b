package plugin

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	Nt "github.com/kalin91/nvmonitor/types"
)

// BadgerOutput archives every sample by receive time.
// The archive is write and export only, it never feeds the window.
type BadgerOutput struct {
	MU        sync.Mutex
	DB        *badger.DB
	BatchSize int
	Buffer    []Nt.Sample
}

// keySeq separates samples received in the same nanosecond
var keySeq atomic.Uint32

func NewBadgerOutput(path string, batchSize int) (*BadgerOutput, error) {
	opts := badger.DefaultOptions(path).
		WithCompression(options.ZSTD).
		WithNumVersionsToKeep(1).
		WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		slog.Error("BadgerOutput failed to open database", slog.Any("error", err))
		return nil, fmt.Errorf("database error: %w", err)
	}

	slog.Info("BadgerOutput opened",
		slog.String("path", path),
		slog.Int("batchSize", batchSize))

	return NewBadgerOutputDB(db, batchSize), nil
}

// NewBadgerOutputDB wraps an already open database
func NewBadgerOutputDB(db *badger.DB, batchSize int) *BadgerOutput {
	if batchSize < 1 {
		batchSize = 1
	}
	return &BadgerOutput{
		DB:        db,
		BatchSize: batchSize,
		Buffer:    make([]Nt.Sample, 0, batchSize),
	}
}

// WriteSample queues up a sample,
// when batchsize is reached the buffer is written
func (bo *BadgerOutput) WriteSample(s Nt.Sample) error {
	bo.MU.Lock()
	defer bo.MU.Unlock()

	bo.Buffer = append(bo.Buffer, s)
	if len(bo.Buffer) >= bo.BatchSize {
		return bo.flushLocked()
	}
	return nil
}

// WriteBatch performs the key/value creation to be stored
// and actually calls BadgerDB to write the data
func (bo *BadgerOutput) WriteBatch(samples []Nt.Sample) error {
	wb := bo.DB.NewWriteBatch()
	defer wb.Cancel()

	for _, s := range samples {
		v, err := SampleEncode(s)
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}
		if err := wb.Set(SampleKey(s), v); err != nil {
			slog.Error("BadgerOutput failed to set key in batch",
				slog.Any("error", err),
				slog.Time("received", s.Received))
			return fmt.Errorf("write batch error: %w", err)
		}
	}

	if err := wb.Flush(); err != nil {
		slog.Error("BadgerOutput failed to flush batch", slog.Any("error", err))
		return fmt.Errorf("batch flush error: %w", err)
	}

	return nil
}

// Flush is the public method that blocks,
// it sends data to WriteBatch and then clears the buffer
func (bo *BadgerOutput) Flush() error {
	bo.MU.Lock()
	defer bo.MU.Unlock()
	return bo.flushLocked()
}

func (bo *BadgerOutput) flushLocked() error {
	if len(bo.Buffer) == 0 {
		return nil
	}
	err := bo.WriteBatch(bo.Buffer)
	bo.Buffer = bo.Buffer[:0] // Clear but keep capacity
	return err
}

// Close returns a Flush error but still attempts to close
func (bo *BadgerOutput) Close() error {
	slog.Info("BadgerOutput closing, flushing buffer",
		slog.Int("bufferSize", len(bo.Buffer)))
	flushErr := bo.Flush()
	closeErr := bo.DB.Close()

	if flushErr != nil {
		slog.Error("BadgerOutput failed to flush on close", slog.Any("error", flushErr))
		return fmt.Errorf("flush failed, close may have failed: %w", flushErr)
	}

	if closeErr != nil {
		slog.Error("BadgerOutput failed to close database", slog.Any("error", closeErr))
		return fmt.Errorf("close failed: %w", closeErr)
	}

	slog.Info("BadgerOutput closed successfully")
	return nil
}

func (bo *BadgerOutput) Type() string { return "BadgerDB" }

// SampleKey is the receive time followed by a sequence number,
// so keys sort chronologically and never collide
func SampleKey(s Nt.Sample) []byte {
	key := make([]byte, 8+4)
	binary.BigEndian.PutUint64(key[0:8], timeKey(s.Received))
	binary.BigEndian.PutUint32(key[8:12], keySeq.Add(1))
	return key
}

func timeKey(t time.Time) uint64 {
	n := t.UnixNano()
	if n < 0 || t.IsZero() {
		return 0
	}
	return uint64(n)
}

// SampleEncode serializes a sample for storage
func SampleEncode(s Nt.Sample) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SampleDecode deserializes stored sample data
func SampleDecode(data []byte) (Nt.Sample, error) {
	var s Nt.Sample
	err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&s)
	return s, err
}

// QueryRange retrieves samples received in [start, end), oldest first.
// Buffered samples are flushed first so they are included.
func (bo *BadgerOutput) QueryRange(start, end time.Time) ([]Nt.Sample, error) {
	if err := bo.Flush(); err != nil {
		return nil, err
	}

	var samples []Nt.Sample
	seek := make([]byte, 8)
	binary.BigEndian.PutUint64(seek, timeKey(start))
	stop := timeKey(end)

	// db.View() callback
	// BadgerDB provides a transaction in which to get item.Value()
	err := bo.DB.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(seek); it.Valid(); it.Next() {
			item := it.Item()
			if binary.BigEndian.Uint64(item.Key()[0:8]) >= stop {
				break
			}

			err := item.Value(func(val []byte) error {
				s, err := SampleDecode(val)
				if err != nil {
					slog.Error("BadgerOutput failed to decode sample", slog.Any("error", err))
					return fmt.Errorf("sample decode error: %w", err)
				}
				samples = append(samples, s)
				return nil
			})
			if err != nil {
				return fmt.Errorf("item data error: %w", err)
			}
		}
		return nil
	})

	slog.Debug("BadgerOutput QueryRange", slog.Int("count", len(samples)))

	return samples, err
}
