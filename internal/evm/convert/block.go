package convert

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/model"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/rpctypes"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/pkg/safe"
)

// Block converts b. When fullTx is false the transaction list holds hashes only; otherwise every
// transaction is converted with its block position. receipts must pair up with b.Transactions.
func (c *Converter) Block(b *model.Block, receipts []*model.Receipt, fullTx bool) (out *rpctypes.Block, err error) {
	started := time.Now()
	defer func() {
		c.observe("block", err, started)
	}()
	if err := checkPairing(b, receipts); err != nil {
		return nil, err
	}

	out = header(b)
	out.Transactions = make([]any, 0, len(b.Transactions))
	for i, tx := range b.Transactions {
		if !fullTx {
			out.Transactions = append(out.Transactions, tx.Tx.Hash())
			continue
		}
		inc, err := inclusionAt(b, i)
		if err != nil {
			return nil, err
		}
		exec := (*model.BlockEnv)(nil).At(b.Header, i, receipts[i])
		rpcTx, err := c.transaction(tx, inc, exec)
		if err != nil {
			return nil, err
		}
		out.Transactions = append(out.Transactions, rpcTx)
	}
	return out, nil
}

// BlockReceipts converts every receipt of b, threading log positions and cumulative gas through
// the block.
func (c *Converter) BlockReceipts(b *model.Block, receipts []*model.Receipt, env *model.BlockEnv) (out []*rpctypes.Receipt, err error) {
	started := time.Now()
	defer func() {
		c.observe("block_receipts", err, started)
	}()
	if err := checkPairing(b, receipts); err != nil {
		return nil, err
	}

	var positions logPositions
	out = make([]*rpctypes.Receipt, 0, len(receipts))
	for i, r := range receipts {
		inc, err := inclusionAt(b, i)
		if err != nil {
			return nil, err
		}
		rpcReceipt, err := c.receipt(r, b.Transactions[i], inc, positions.take(r), env.At(b.Header, i, r))
		if err != nil {
			return nil, err
		}
		out = append(out, rpcReceipt)
	}
	return out, nil
}

// TransactionReceipt converts the receipt at index. It returns nil, nil when index is out of range.
func (c *Converter) TransactionReceipt(b *model.Block, receipts []*model.Receipt, env *model.BlockEnv, index uint64) (out *rpctypes.Receipt, err error) {
	started := time.Now()
	defer func() {
		c.observe("transaction_receipt", err, started)
	}()
	if err := checkPairing(b, receipts); err != nil {
		return nil, err
	}
	if index >= uint64(len(receipts)) {
		return nil, nil
	}
	i := int(index)
	pos, ok := PositionOf(receipts, i)
	if !ok {
		return nil, newError(KindInvalidReceipt, "block %s: missing receipt before index %d", b.Header.Hash(), index)
	}
	return c.receipt(receipts[i], b.Transactions[i], b.InclusionAt(index), pos, env.At(b.Header, i, receipts[i]))
}

// TransactionByIndex converts the transaction at index of b. receipts may be nil, in which case
// deposit nonces are reported as zero. It returns nil, nil when index is out of range.
func (c *Converter) TransactionByIndex(b *model.Block, receipts []*model.Receipt, index uint64) (out *rpctypes.Transaction, err error) {
	started := time.Now()
	defer func() {
		c.observe("transaction_by_index", err, started)
	}()
	if b == nil || b.Header == nil {
		return nil, newError(KindMissingBlockContext, "nil block")
	}
	if index >= uint64(len(b.Transactions)) {
		return nil, nil
	}
	return c.transactionAt(b, receipts, int(index))
}

// TransactionBySenderAndNonce finds and converts the transaction of b sent by sender with nonce.
// It returns nil, nil when b holds no such transaction.
func (c *Converter) TransactionBySenderAndNonce(b *model.Block, receipts []*model.Receipt, sender common.Address, nonce uint64) (out *rpctypes.Transaction, err error) {
	started := time.Now()
	defer func() {
		c.observe("transaction_by_sender_and_nonce", err, started)
	}()
	if b == nil || b.Header == nil {
		return nil, newError(KindMissingBlockContext, "nil block")
	}
	for i, tx := range b.Transactions {
		if tx.Tx == nil || tx.From == nil || *tx.From != sender || tx.Tx.Nonce() != nonce {
			continue
		}
		if _, ok := tx.Tx.Deposit(); ok {
			continue
		}
		return c.transactionAt(b, receipts, i)
	}
	return nil, nil
}

func (c *Converter) transactionAt(b *model.Block, receipts []*model.Receipt, i int) (*rpctypes.Transaction, error) {
	inc, err := inclusionAt(b, i)
	if err != nil {
		return nil, err
	}
	var r *model.Receipt
	if i < len(receipts) {
		r = receipts[i]
	}
	return c.transaction(b.Transactions[i], inc, (*model.BlockEnv)(nil).At(b.Header, i, r))
}

// RawTransactionByIndex returns the EIP-2718 encoding of the transaction at index. It returns
// nil, nil when index is out of range.
func (c *Converter) RawTransactionByIndex(b *model.Block, index uint64) (raw hexutil.Bytes, err error) {
	started := time.Now()
	defer func() {
		c.observe("raw_transaction_by_index", err, started)
	}()
	if b == nil {
		return nil, newError(KindMissingBlockContext, "nil block")
	}
	if index >= uint64(len(b.Transactions)) {
		return nil, nil
	}
	tx := b.Transactions[index].Tx
	if tx == nil {
		return nil, newError(KindUnsupportedTransactionKind, "nil transaction at index %d", index)
	}
	raw, err = tx.MarshalBinary()
	if err != nil {
		return nil, wrapError(KindUnsupportedTransactionKind, err, "encode tx %s", tx.Hash())
	}
	return raw, nil
}

// checkPairing enforces that every transaction of b has exactly one receipt.
func checkPairing(b *model.Block, receipts []*model.Receipt) error {
	if b == nil || b.Header == nil {
		return newError(KindMissingBlockContext, "nil block")
	}
	if len(b.Transactions) != len(receipts) {
		return newError(KindLengthMismatch, "block %s: %d transactions, %d receipts",
			b.Header.Hash(), len(b.Transactions), len(receipts))
	}
	for i, r := range receipts {
		tx := b.Transactions[i].Tx
		if r == nil || tx == nil {
			return newError(KindInvalidReceipt, "block %s: missing transaction or receipt at index %d", b.Header.Hash(), i)
		}
		if r.Kind != tx.Kind() {
			return newError(KindInvalidReceipt, "block %s: receipt %d has kind %s, transaction has %s",
				b.Header.Hash(), i, r.Kind, tx.Kind())
		}
	}
	return nil
}

func inclusionAt(b *model.Block, i int) (*model.Inclusion, error) {
	index, err := safe.Uint64(i)
	if err != nil {
		return nil, err
	}
	return b.InclusionAt(index), nil
}

// header renders the header part of b.
func header(b *model.Block) *rpctypes.Block {
	// Inner copies with types.CopyHeader, which never leaves Difficulty nil.
	h := b.Header.Inner()
	out := &rpctypes.Block{
		Hash:                  b.Header.Hash(),
		ParentHash:            h.ParentHash,
		Sha3Uncles:            h.UncleHash,
		Miner:                 h.Coinbase,
		StateRoot:             h.Root,
		TransactionsRoot:      h.TxHash,
		ReceiptsRoot:          h.ReceiptHash,
		LogsBloom:             h.Bloom,
		Difficulty:            (*hexutil.Big)(h.Difficulty),
		Number:                (*hexutil.Big)(new(big.Int).SetUint64(b.Header.Number())),
		GasLimit:              hexutil.Uint64(h.GasLimit),
		GasUsed:               hexutil.Uint64(h.GasUsed),
		Timestamp:             hexutil.Uint64(h.Time),
		ExtraData:             h.Extra,
		MixHash:               h.MixDigest,
		Nonce:                 h.Nonce,
		WithdrawalsRoot:       h.WithdrawalsHash,
		ParentBeaconBlockRoot: h.ParentBeaconRoot,
		RequestsHash:          h.RequestsHash,
		Size:                  hexutil.Uint64(b.Size),
		Uncles:                make([]common.Hash, 0, len(b.Uncles)),
	}
	if h.BaseFee != nil {
		out.BaseFeePerGas = (*hexutil.Big)(h.BaseFee)
	}
	if h.BlobGasUsed != nil {
		used := hexutil.Uint64(*h.BlobGasUsed)
		out.BlobGasUsed = &used
	}
	if h.ExcessBlobGas != nil {
		excess := hexutil.Uint64(*h.ExcessBlobGas)
		out.ExcessBlobGas = &excess
	}
	for _, uncle := range b.Uncles {
		out.Uncles = append(out.Uncles, uncle.Hash())
	}
	if b.Withdrawals != nil {
		withdrawals := append(types.Withdrawals{}, b.Withdrawals...)
		out.Withdrawals = &withdrawals
	}
	return out
}
