package exporter

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/convert"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/pkg/safe"
)

// blockProcessor fetches one height and converts it into a Record.
type blockProcessor struct {
	source    Source
	converter *convert.Converter
	metrics   Metrics
}

func (p *blockProcessor) Process(ctx context.Context, height uint64) (rec Record, err error) {
	started := time.Now()
	defer func() {
		p.metrics.ObserveFetchBlock(err, height, started)
	}()

	number, err := safe.Int64(height)
	if err != nil {
		return Record{}, err
	}
	b, err := p.source.BlockByNumber(ctx, rpc.BlockNumber(number))
	if err != nil {
		return Record{}, fmt.Errorf("block %d: %w", height, err)
	}
	receipts, env, err := p.source.BlockReceipts(ctx, b.Header.Hash())
	if err != nil {
		return Record{}, fmt.Errorf("block %d receipts: %w", height, err)
	}

	rec = Record{Height: height}
	if rec.Block, err = p.converter.Block(b, receipts, true); err != nil {
		return Record{}, fmt.Errorf("convert block %d: %w", height, err)
	}
	if rec.Receipts, err = p.converter.BlockReceipts(b, receipts, env); err != nil {
		return Record{}, fmt.Errorf("convert block %d receipts: %w", height, err)
	}
	return rec, nil
}
