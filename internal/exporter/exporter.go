// Package exporter converts ranges of blocks and hands them to a Sink in height order, optionally
// following the chain head.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/clock"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/convert"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/pkg/batcher"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/pkg/workerpool"
	"go.uber.org/zap"
)

// Options tunes an Exporter. Zero values select the defaults.
type Options struct {
	WorkerCount int
	ChunkSize   uint64
	// Confirmations keeps follow mode this many blocks behind the head.
	Confirmations uint64
	// FlushPerSecond caps output flushes. Zero means unlimited.
	FlushPerSecond int
	// HeadSignal, when set, wakes follow mode as soon as a new head arrives.
	HeadSignal <-chan struct{}
}

// Exporter streams converted blocks to a sink.
type Exporter struct {
	logger        *zap.Logger
	source        Source
	metrics       Metrics
	processor     *blockProcessor
	writer        *blockWriter
	sleep         func(context.Context, time.Duration) error
	sleepDuration time.Duration
	pollDuration  time.Duration
	workerCount   int
	chunkSize     uint64
	confirmations uint64
	flushPerSec   int
	headSignal    <-chan struct{}
}

// New builds an Exporter writing to sink.
func New(
	source Source,
	converter *convert.Converter,
	sink Sink,
	metrics Metrics,
	logger *zap.Logger,
	opts Options,
) (*Exporter, error) {
	if metrics == nil {
		return nil, errors.New("exporter metrics is required")
	}
	if converter == nil {
		return nil, errors.New("converter is required")
	}
	if sink == nil {
		return nil, errors.New("sink is required")
	}
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = defaultWorkerCount
	}
	if opts.ChunkSize == 0 {
		opts.ChunkSize = defaultChunkSize
	}
	logger = logger.With(zap.Stringer("variant", converter.Variant()))

	return &Exporter{
		logger:        logger,
		source:        source,
		metrics:       metrics,
		processor:     &blockProcessor{source: source, converter: converter, metrics: metrics},
		writer:        &blockWriter{sink: sink, metrics: metrics},
		sleep:         clock.SleepWithContext,
		sleepDuration: sleepDuration,
		pollDuration:  pollDuration,
		workerCount:   opts.WorkerCount,
		chunkSize:     opts.ChunkSize,
		confirmations: opts.Confirmations,
		flushPerSec:   opts.FlushPerSecond,
		headSignal:    opts.HeadSignal,
	}, nil
}

// Export writes blocks from..to inclusive in ascending order. It returns once every block is in
// the sink. After a failed write no later block is written, so the sink never holds a height
// above a missing one.
func (e *Exporter) Export(ctx context.Context, from, to uint64) (err error) {
	if to < from {
		return fmt.Errorf("empty range %d..%d", from, to)
	}
	e.writer.reset()
	b := e.newBatcher()
	b.Start(ctx)
	defer func() {
		err = errors.Join(err, b.Stop())
	}()

	return e.exportRange(ctx, b, from, to)
}

// Follow writes blocks starting at from and keeps up with the head until ctx is canceled.
// A failed iteration is retried from its first height after a back-off.
func (e *Exporter) Follow(ctx context.Context, from uint64) error {
	next := from
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		advanced, err := e.follow(ctx, next)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.logger.Warn("follow iteration failed, backing off",
				zap.Uint64("next", next), zap.Error(err), zap.Duration("sleep", e.sleepDuration))
			if sleepErr := e.sleep(ctx, e.sleepDuration); sleepErr != nil {
				return sleepErr
			}
			continue
		}
		next = advanced
	}
}

// follow exports whatever is available past next and returns the next height to export. next
// only moves once the exported blocks are in the sink.
func (e *Exporter) follow(ctx context.Context, next uint64) (uint64, error) {
	head, err := e.source.BlockNumber(ctx)
	if err != nil {
		return next, fmt.Errorf("fetch head: %w", err)
	}
	e.metrics.SetHead(head)

	if head < e.confirmations || head-e.confirmations < next {
		e.logger.Debug("caught up with head; waiting", zap.Uint64("head", head), zap.Uint64("next", next))
		return next, e.wait(ctx, e.pollDuration)
	}
	target := head - e.confirmations
	if target-next >= e.chunkSize {
		target = next + e.chunkSize - 1
	}
	if err := e.Export(ctx, next, target); err != nil {
		return next, err
	}
	return target + 1, nil
}

func (e *Exporter) exportRange(ctx context.Context, b *batcher.Batcher[Record], from, to uint64) error {
	for start := from; start <= to; {
		end := to
		if end-start >= e.chunkSize {
			end = start + e.chunkSize - 1
		}
		heights := make([]uint64, 0, end-start+1)
		for h := start; h <= end; h++ {
			heights = append(heights, h)
		}

		e.logger.Info("exporting chunk", zap.Uint64("from", start), zap.Uint64("to", end))
		records, err := workerpool.Map(ctx, e.workerCount, heights, e.processor.Process)
		if err != nil {
			return err
		}
		if err := e.writer.Err(); err != nil {
			return fmt.Errorf("stop at block %d: %w", start, err)
		}
		for _, r := range records {
			if err := b.Add(ctx, r); err != nil {
				return err
			}
		}
		if end == to {
			return nil
		}
		start = end + 1
	}
	return nil
}

func (e *Exporter) newBatcher() *batcher.Batcher[Record] {
	return batcher.New[Record](
		e.logger.Named("writer"),
		e.writer.WriteBatch,
		batchFlushSize,
		batchFlushPeriod,
		e.flushPerSec,
	)
}

func (e *Exporter) wait(ctx context.Context, d time.Duration) error {
	if e.headSignal == nil {
		return e.sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.headSignal:
		return nil
	case <-timer.C:
		return nil
	}
}
