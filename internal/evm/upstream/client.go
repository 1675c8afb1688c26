// Package upstream fetches canonical EVM objects from an execution node over JSON-RPC.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/gethview"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/model"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

// RPCMetrics records metrics for RPC calls.
type RPCMetrics interface {
	Observe(operation string, err error, started time.Time)
}

// Client wraps a go-ethereum RPC connection with rate limiting and metrics instrumentation.
// Standard methods go through ethclient; objects ethclient cannot represent (deposits, L1 fee
// fields) are fetched raw and decoded by gethview.
type Client struct {
	conn       *rpc.Client
	eth        *ethclient.Client
	chainID    *big.Int
	limiter    ratelimit.Limiter
	rpcMetrics RPCMetrics
}

// Dial connects to the node at url. rps bounds outgoing requests per second; zero disables the limit.
func Dial(ctx context.Context, url string, chainID *big.Int, rps int, rpcMetrics RPCMetrics) (*Client, error) {
	conn, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewClient(conn, chainID, rps, rpcMetrics), nil
}

// NewClient constructs an instrumented client on top of conn.
func NewClient(conn *rpc.Client, chainID *big.Int, rps int, rpcMetrics RPCMetrics) *Client {
	limiter := ratelimit.NewUnlimited()
	if rps > 0 {
		limiter = ratelimit.New(rps)
	}
	return &Client{
		conn:       conn,
		eth:        ethclient.NewClient(conn),
		chainID:    new(big.Int).Set(chainID),
		limiter:    limiter,
		rpcMetrics: rpcMetrics,
	}
}

// ChainID returns the chain id the client verifies signatures against.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.conn.Close()
}

// RemoteChainID asks the node for its chain id.
func (c *Client) RemoteChainID(ctx context.Context) (id *big.Int, err error) {
	err = c.do("chain_id", func() (err error) {
		id, err = c.eth.ChainID(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("eth_chainId: %w", err)
	}
	return id, nil
}

// VerifyChainID fails when the node serves a different chain than the client was configured for.
func (c *Client) VerifyChainID(ctx context.Context) error {
	remote, err := c.RemoteChainID(ctx)
	if err != nil {
		return err
	}
	if remote.Cmp(c.chainID) != 0 {
		return fmt.Errorf("upstream chain id %s, configured %s", remote, c.chainID)
	}
	return nil
}

// BlockNumber returns the latest block height.
func (c *Client) BlockNumber(ctx context.Context) (height uint64, err error) {
	err = c.do("block_number", func() (err error) {
		height, err = c.eth.BlockNumber(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("eth_blockNumber: %w", err)
	}
	return height, nil
}

// BlockByNumber returns the block at number with senders recovered. It returns ethereum.NotFound
// when the node does not know the block.
func (c *Client) BlockByNumber(ctx context.Context, number rpc.BlockNumber) (*model.Block, error) {
	return c.block(ctx, "get_block_by_number", "eth_getBlockByNumber", number, true)
}

// BlockByHash returns the block with the given hash.
func (c *Client) BlockByHash(ctx context.Context, hash common.Hash) (*model.Block, error) {
	return c.block(ctx, "get_block_by_hash", "eth_getBlockByHash", hash, true)
}

// BlockReceipts returns the receipts of the block with the given hash together with the
// engine-computed fee facts reported alongside them.
func (c *Client) BlockReceipts(ctx context.Context, hash common.Hash) ([]*model.Receipt, *model.BlockEnv, error) {
	var raw []json.RawMessage
	if err := c.call(ctx, "get_block_receipts", &raw, "eth_getBlockReceipts", rpc.BlockNumberOrHashWithHash(hash, false)); err != nil {
		return nil, nil, err
	}
	if raw == nil {
		return nil, nil, ethereum.NotFound
	}
	decoded := make([]*gethview.Receipt, 0, len(raw))
	for i, r := range raw {
		receipt, err := gethview.DecodeReceipt(r)
		if err != nil {
			return nil, nil, fmt.Errorf("block %s receipt %d: %w", hash, i, err)
		}
		decoded = append(decoded, receipt)
	}
	receipts, env := gethview.Assemble(decoded)
	return receipts, env, nil
}

// TransactionByHash returns the transaction with the given hash and the hash of its block, which is
// nil while the transaction is pending.
func (c *Client) TransactionByHash(ctx context.Context, hash common.Hash) (model.Recovered, *common.Hash, error) {
	var raw json.RawMessage
	if err := c.call(ctx, "get_transaction_by_hash", &raw, "eth_getTransactionByHash", hash); err != nil {
		return model.Recovered{}, nil, err
	}
	if isNull(raw) {
		return model.Recovered{}, nil, ethereum.NotFound
	}
	var loc struct {
		BlockHash *common.Hash `json:"blockHash"`
	}
	if err := json.Unmarshal(raw, &loc); err != nil {
		return model.Recovered{}, nil, fmt.Errorf("decode transaction %s location: %w", hash, err)
	}
	rec, err := gethview.DecodeTransaction(raw, c.chainID)
	if err != nil {
		return model.Recovered{}, nil, err
	}
	return rec, loc.BlockHash, nil
}

// HeadSignal subscribes to new heads and returns a channel that receives a value whenever the
// head advances. It requires a websocket or IPC connection; over HTTP it fails with
// rpc.ErrNotificationsUnsupported. Once the subscription ends the channel stays silent and
// callers fall back to their own polling interval.
func (c *Client) HeadSignal(ctx context.Context, logger *zap.Logger) (<-chan struct{}, error) {
	heads := make(chan *types.Header, 16)
	sub, err := c.eth.SubscribeNewHead(ctx, heads)
	if err != nil {
		return nil, fmt.Errorf("subscribe new heads: %w", err)
	}

	notify := make(chan struct{}, 1)
	go func() {
		defer sub.Unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-sub.Err():
				if err != nil {
					logger.Warn("head subscription ended", zap.Error(err))
				}
				return
			case h := <-heads:
				logger.Debug("new head", zap.Uint64("number", h.Number.Uint64()))
				select {
				case notify <- struct{}{}:
				default:
				}
			}
		}
	}()
	return notify, nil
}

// TransactionCount returns the number of transactions sent by account as of block number.
func (c *Client) TransactionCount(ctx context.Context, account common.Address, number rpc.BlockNumber) (uint64, error) {
	var count hexutil.Uint64
	if err := c.call(ctx, "get_transaction_count", &count, "eth_getTransactionCount", account, number); err != nil {
		return 0, err
	}
	return uint64(count), nil
}

// Code returns the code deployed at account as of block number. It is empty for externally
// owned accounts.
func (c *Client) Code(ctx context.Context, account common.Address, number rpc.BlockNumber) ([]byte, error) {
	var code hexutil.Bytes
	if err := c.call(ctx, "get_code", &code, "eth_getCode", account, number); err != nil {
		return nil, err
	}
	return code, nil
}

func (c *Client) block(ctx context.Context, operation, method string, id any, fullTx bool) (*model.Block, error) {
	var raw json.RawMessage
	if err := c.call(ctx, operation, &raw, method, id, fullTx); err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, ethereum.NotFound
	}
	decoded, err := gethview.DecodeBlock(raw, c.chainID)
	if err != nil {
		return nil, err
	}
	b := decoded.Block
	if len(decoded.UncleHashes) > 0 {
		b.Uncles, err = c.uncles(ctx, b.Header.Hash(), len(decoded.UncleHashes))
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (c *Client) uncles(ctx context.Context, blockHash common.Hash, count int) ([]*types.Header, error) {
	out := make([]*types.Header, 0, count)
	for i := 0; i < count; i++ {
		var h *types.Header
		if err := c.call(ctx, "get_uncle", &h, "eth_getUncleByBlockHashAndIndex", blockHash, hexutil.Uint(i)); err != nil {
			return nil, err
		}
		if h == nil {
			return nil, fmt.Errorf("block %s: uncle %d: %w", blockHash, i, ethereum.NotFound)
		}
		out = append(out, h)
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, operation string, result any, method string, args ...any) error {
	err := c.do(operation, func() error {
		return c.conn.CallContext(ctx, result, method, args...)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

func (c *Client) do(operation string, fn func() error) (err error) {
	started := time.Now()
	defer func() {
		if c.rpcMetrics != nil {
			c.rpcMetrics.Observe(operation, err, started)
		}
	}()
	c.limiter.Take()
	return fn()
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// IsNotFound reports whether err means the node does not know the requested object.
func IsNotFound(err error) bool {
	return errors.Is(err, ethereum.NotFound)
}
