package exporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/rpctypes"
)

// Record is one exported block with full transactions and its receipts.
type Record struct {
	Height   uint64              `json:"-"`
	Block    *rpctypes.Block     `json:"block"`
	Receipts []*rpctypes.Receipt `json:"receipts"`
}

// JSONLines is a Sink appending records to a writer as newline-delimited JSON.
type JSONLines struct {
	mu  sync.Mutex
	w   *bufio.Writer
	enc *json.Encoder
}

// NewJSONLines returns a sink writing to w.
func NewJSONLines(w io.Writer) *JSONLines {
	bw := bufio.NewWriter(w)
	return &JSONLines{w: bw, enc: json.NewEncoder(bw)}
}

// Write encodes records in order and flushes them to the underlying writer.
func (j *JSONLines) Write(_ context.Context, records []Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, r := range records {
		if err := j.enc.Encode(r); err != nil {
			return fmt.Errorf("encode block %d: %w", r.Height, err)
		}
	}
	if err := j.w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// blockWriter hands batches to the sink and records the outcome. Once a batch fails it refuses
// later batches until reset.
type blockWriter struct {
	sink    Sink
	metrics Metrics

	mu     sync.Mutex
	failed error
}

func (b *blockWriter) WriteBatch(ctx context.Context, records []Record) (err error) {
	if err := b.Err(); err != nil {
		return fmt.Errorf("skip %d blocks after failed write: %w", len(records), err)
	}
	started := time.Now()
	defer func() {
		b.metrics.ObserveWriteBatch(err, len(records), started)
	}()

	if err = b.sink.Write(ctx, records); err != nil {
		b.mu.Lock()
		b.failed = err
		b.mu.Unlock()
		return err
	}
	if len(records) > 0 {
		b.metrics.SetExported(records[len(records)-1].Height)
	}
	return nil
}

// Err returns the failure that stopped the writer, if any.
func (b *blockWriter) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failed
}

func (b *blockWriter) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failed = nil
}
