// Package service serves the eth JSON-RPC namespace from an upstream node, converting every
// response for the configured variant.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/convert"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/model"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/rpctypes"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/pkg/safe"
	"go.uber.org/zap"
)

const (
	codeInvalidParams = -32602
	codeInternal      = -32603
)

// Error is a JSON-RPC error carrying an explicit code.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string  { return e.Message }
func (e *Error) ErrorCode() int { return e.Code }

// EthService implements the read-only block and transaction methods of the eth namespace. Every
// exported method is served over JSON-RPC.
type EthService struct {
	logger    *zap.Logger
	upstream  Upstream
	converter *convert.Converter
	metrics   CallMetrics
}

// NewEthService wires the service. metrics may be nil.
func NewEthService(logger *zap.Logger, upstream Upstream, converter *convert.Converter, metrics CallMetrics) *EthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EthService{
		logger:    logger,
		upstream:  upstream,
		converter: converter,
		metrics:   metrics,
	}
}

type blockData struct {
	block    *model.Block
	receipts []*model.Receipt
	env      *model.BlockEnv
}

// BlockNumber returns the height of the upstream head.
func (s *EthService) BlockNumber(ctx context.Context) (hexutil.Uint64, error) {
	started := time.Now()
	height, err := s.upstream.BlockNumber(ctx)
	return hexutil.Uint64(height), s.done("eth_blockNumber", err, started)
}

func (s *EthService) GetBlockByNumber(ctx context.Context, number rpc.BlockNumber, fullTx bool) (*rpctypes.Block, error) {
	started := time.Now()
	data, err := s.load(ctx, byNumber(s.upstream, number), true)
	if data == nil || err != nil {
		return nil, s.done("eth_getBlockByNumber", err, started)
	}
	out, err := s.converter.Block(data.block, data.receipts, fullTx)
	return out, s.done("eth_getBlockByNumber", err, started)
}

func (s *EthService) GetBlockByHash(ctx context.Context, hash common.Hash, fullTx bool) (*rpctypes.Block, error) {
	started := time.Now()
	data, err := s.load(ctx, byHash(s.upstream, hash), true)
	if data == nil || err != nil {
		return nil, s.done("eth_getBlockByHash", err, started)
	}
	out, err := s.converter.Block(data.block, data.receipts, fullTx)
	return out, s.done("eth_getBlockByHash", err, started)
}

func (s *EthService) GetBlockReceipts(ctx context.Context, id rpc.BlockNumberOrHash) ([]*rpctypes.Receipt, error) {
	started := time.Now()
	data, err := s.load(ctx, byNumberOrHash(s.upstream, id), true)
	if data == nil || err != nil {
		return nil, s.done("eth_getBlockReceipts", err, started)
	}
	out, err := s.converter.BlockReceipts(data.block, data.receipts, data.env)
	return out, s.done("eth_getBlockReceipts", err, started)
}

// GetTransactionByHash returns the transaction with the given hash. Pending transactions are
// reported without block fields.
func (s *EthService) GetTransactionByHash(ctx context.Context, hash common.Hash) (*rpctypes.Transaction, error) {
	started := time.Now()
	out, err := s.transactionByHash(ctx, hash)
	return out, s.done("eth_getTransactionByHash", err, started)
}

func (s *EthService) transactionByHash(ctx context.Context, hash common.Hash) (*rpctypes.Transaction, error) {
	rec, blockHash, err := s.upstream.TransactionByHash(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if blockHash == nil {
		return s.converter.Transaction(rec, nil, nil)
	}
	data, index, err := s.locate(ctx, *blockHash, hash)
	if data == nil || err != nil {
		return nil, err
	}
	return s.converter.TransactionByIndex(data.block, data.receipts, index)
}

// GetTransactionReceipt returns the receipt of an included transaction, or null while it is pending.
func (s *EthService) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*rpctypes.Receipt, error) {
	started := time.Now()
	out, err := s.transactionReceipt(ctx, hash)
	return out, s.done("eth_getTransactionReceipt", err, started)
}

func (s *EthService) transactionReceipt(ctx context.Context, hash common.Hash) (*rpctypes.Receipt, error) {
	_, blockHash, err := s.upstream.TransactionByHash(ctx, hash)
	if errors.Is(err, ethereum.NotFound) || (err == nil && blockHash == nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	data, index, err := s.locate(ctx, *blockHash, hash)
	if data == nil || err != nil {
		return nil, err
	}
	return s.converter.TransactionReceipt(data.block, data.receipts, data.env, index)
}

func (s *EthService) GetTransactionByBlockNumberAndIndex(ctx context.Context, number rpc.BlockNumber, index hexutil.Uint) (*rpctypes.Transaction, error) {
	started := time.Now()
	out, err := s.transactionByIndex(ctx, byNumber(s.upstream, number), index)
	return out, s.done("eth_getTransactionByBlockNumberAndIndex", err, started)
}

func (s *EthService) GetTransactionByBlockHashAndIndex(ctx context.Context, hash common.Hash, index hexutil.Uint) (*rpctypes.Transaction, error) {
	started := time.Now()
	out, err := s.transactionByIndex(ctx, byHash(s.upstream, hash), index)
	return out, s.done("eth_getTransactionByBlockHashAndIndex", err, started)
}

func (s *EthService) transactionByIndex(ctx context.Context, fetch blockFetcher, index hexutil.Uint) (*rpctypes.Transaction, error) {
	data, err := s.load(ctx, fetch, true)
	if data == nil || err != nil {
		return nil, err
	}
	return s.converter.TransactionByIndex(data.block, data.receipts, uint64(index))
}

func (s *EthService) GetRawTransactionByBlockNumberAndIndex(ctx context.Context, number rpc.BlockNumber, index hexutil.Uint) (hexutil.Bytes, error) {
	started := time.Now()
	out, err := s.rawTransactionByIndex(ctx, byNumber(s.upstream, number), index)
	return out, s.done("eth_getRawTransactionByBlockNumberAndIndex", err, started)
}

func (s *EthService) GetRawTransactionByBlockHashAndIndex(ctx context.Context, hash common.Hash, index hexutil.Uint) (hexutil.Bytes, error) {
	started := time.Now()
	out, err := s.rawTransactionByIndex(ctx, byHash(s.upstream, hash), index)
	return out, s.done("eth_getRawTransactionByBlockHashAndIndex", err, started)
}

func (s *EthService) rawTransactionByIndex(ctx context.Context, fetch blockFetcher, index hexutil.Uint) (hexutil.Bytes, error) {
	data, err := s.load(ctx, fetch, false)
	if data == nil || err != nil {
		return nil, err
	}
	return s.converter.RawTransactionByIndex(data.block, uint64(index))
}

// GetRawTransactionByHash returns the EIP-2718 encoding of the transaction with the given hash.
func (s *EthService) GetRawTransactionByHash(ctx context.Context, hash common.Hash) (hexutil.Bytes, error) {
	started := time.Now()
	rec, _, err := s.upstream.TransactionByHash(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, s.done("eth_getRawTransactionByHash", nil, started)
	}
	if err != nil {
		return nil, s.done("eth_getRawTransactionByHash", err, started)
	}
	raw, err := rec.Tx.MarshalBinary()
	return raw, s.done("eth_getRawTransactionByHash", err, started)
}

// GetTransactionBySenderAndNonce returns the mined transaction sent by sender with nonce. Contract
// accounts and nonces the sender has not used yet report null.
func (s *EthService) GetTransactionBySenderAndNonce(ctx context.Context, sender common.Address, nonce hexutil.Uint64) (*rpctypes.Transaction, error) {
	started := time.Now()
	out, err := s.transactionBySenderAndNonce(ctx, sender, uint64(nonce))
	return out, s.done("eth_getTransactionBySenderAndNonce", err, started)
}

func (s *EthService) transactionBySenderAndNonce(ctx context.Context, sender common.Address, nonce uint64) (*rpctypes.Transaction, error) {
	code, err := s.upstream.Code(ctx, sender, rpc.LatestBlockNumber)
	if err != nil {
		return nil, err
	}
	if len(code) > 0 {
		return nil, nil
	}
	highest, err := s.upstream.TransactionCount(ctx, sender, rpc.LatestBlockNumber)
	if err != nil {
		return nil, err
	}
	if nonce >= highest {
		return nil, nil
	}
	head, err := s.upstream.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}
	number, err := s.nonceHeight(ctx, sender, nonce, head)
	if err != nil {
		return nil, err
	}

	data, err := s.load(ctx, byNumber(s.upstream, number), true)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("block %d: %w", number, ethereum.NotFound)
	}
	out, err := s.converter.TransactionBySenderAndNonce(data.block, data.receipts, sender, nonce)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("block %d: no transaction from %s with nonce %d", number, sender, nonce)
	}
	return out, nil
}

// nonceHeight returns the first block in [1, head] after which sender's transaction count
// exceeds nonce, i.e. the block that includes the transaction with that nonce.
func (s *EthService) nonceHeight(ctx context.Context, sender common.Address, nonce, head uint64) (rpc.BlockNumber, error) {
	low, high := uint64(1), head
	for low < high {
		mid := low + (high-low)/2
		number, err := blockNumber(mid)
		if err != nil {
			return 0, err
		}
		count, err := s.upstream.TransactionCount(ctx, sender, number)
		if err != nil {
			return 0, err
		}
		if count > nonce {
			high = mid
		} else {
			low = mid + 1
		}
	}
	return blockNumber(low)
}

func blockNumber(height uint64) (rpc.BlockNumber, error) {
	n, err := safe.Int64(height)
	if err != nil {
		return 0, err
	}
	return rpc.BlockNumber(n), nil
}

type blockFetcher func(ctx context.Context) (*model.Block, error)

func byNumber(u Upstream, number rpc.BlockNumber) blockFetcher {
	return func(ctx context.Context) (*model.Block, error) {
		return u.BlockByNumber(ctx, number)
	}
}

func byHash(u Upstream, hash common.Hash) blockFetcher {
	return func(ctx context.Context) (*model.Block, error) {
		return u.BlockByHash(ctx, hash)
	}
}

func byNumberOrHash(u Upstream, id rpc.BlockNumberOrHash) blockFetcher {
	if hash, ok := id.Hash(); ok {
		return byHash(u, hash)
	}
	number, ok := id.Number()
	if !ok {
		number = rpc.LatestBlockNumber
	}
	return byNumber(u, number)
}

// load fetches a block and, when withReceipts is set, its receipts. It returns nil data without
// an error when the node does not know the block.
func (s *EthService) load(ctx context.Context, fetch blockFetcher, withReceipts bool) (*blockData, error) {
	b, err := fetch(ctx)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	data := &blockData{block: b}
	if !withReceipts {
		return data, nil
	}
	data.receipts, data.env, err = s.upstream.BlockReceipts(ctx, b.Header.Hash())
	if errors.Is(err, ethereum.NotFound) {
		// Reorged away between the two calls.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// locate loads the block with blockHash and finds txHash in it.
func (s *EthService) locate(ctx context.Context, blockHash, txHash common.Hash) (*blockData, uint64, error) {
	data, err := s.load(ctx, byHash(s.upstream, blockHash), true)
	if data == nil || err != nil {
		return nil, 0, err
	}
	index, ok := data.block.IndexOf(txHash)
	if !ok {
		return nil, 0, nil
	}
	return data, index, nil
}

// done records the call and maps err to the error returned to the client.
func (s *EthService) done(method string, err error, started time.Time) error {
	if s.metrics != nil {
		s.metrics.ObserveCall(method, err, started)
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	switch kind := convert.KindOf(err); {
	case kind == convert.KindUnsupportedTransactionKind:
		return &Error{Code: codeInvalidParams, Message: err.Error()}
	case kind.Class() == convert.ClassInvariant:
		// Already reported by the converter.
		return &Error{Code: codeInternal, Message: "inconsistent upstream data"}
	case kind != "":
		s.logger.Info("conversion failed", zap.String("method", method), zap.String("kind", string(kind)), zap.Error(err))
		return &Error{Code: codeInternal, Message: err.Error()}
	default:
		s.logger.Error("upstream call failed", zap.String("method", method), zap.Error(err))
		return &Error{Code: codeInternal, Message: "upstream unavailable"}
	}
}
