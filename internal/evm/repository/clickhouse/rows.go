package clickhouse

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/rpctypes"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/exporter"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/pkg/safe"
)

type blockRow struct {
	Number        uint64
	Hash          string
	ParentHash    string
	Timestamp     time.Time
	Miner         string
	GasLimit      uint64
	GasUsed       uint64
	BaseFeePerGas *big.Int
	BlobGasUsed   uint64
	TxCount       uint32
	Size          uint64
}

type transactionRow struct {
	BlockNumber uint64
	BlockHash   string
	Index       uint32
	Hash        string
	From        string
	To          *string
	Nonce       uint64
	Type        uint8
	Gas         uint64
	GasPrice    *big.Int
	Value       *big.Int
	InputSize   uint32
	// Source is set for deposit transactions only.
	Source *string
}

type receiptRow struct {
	BlockNumber       uint64
	Index             uint32
	TxHash            string
	Status            *uint8
	GasUsed           uint64
	CumulativeGasUsed uint64
	EffectiveGasPrice *big.Int
	ContractAddress   *string
	LogCount          uint32
	L1Fee             *big.Int
}

type logRow struct {
	BlockNumber uint64
	TxIndex     uint32
	Index       uint32
	Address     string
	Topics      []string
	Data        string
}

type rowSet struct {
	blocks       []blockRow
	transactions []transactionRow
	receipts     []receiptRow
	logs         []logRow
}

// flatten turns exported records into table rows. Blocks must carry full transactions.
func flatten(records []exporter.Record) (rowSet, error) {
	var set rowSet
	for _, rec := range records {
		if rec.Block == nil {
			return rowSet{}, fmt.Errorf("record %d has no block", rec.Height)
		}
		b, err := newBlockRow(rec.Block)
		if err != nil {
			return rowSet{}, err
		}
		set.blocks = append(set.blocks, b)

		for i, item := range rec.Block.Transactions {
			tx, ok := item.(*rpctypes.Transaction)
			if !ok {
				return rowSet{}, fmt.Errorf("block %d: transaction %d is %T, want full transaction", b.Number, i, item)
			}
			row, err := newTransactionRow(b, i, tx)
			if err != nil {
				return rowSet{}, err
			}
			set.transactions = append(set.transactions, row)
		}
		for _, r := range rec.Receipts {
			row, err := newReceiptRow(r)
			if err != nil {
				return rowSet{}, err
			}
			set.receipts = append(set.receipts, row)
			for _, l := range r.Logs {
				index, err := safe.Uint32(l.Index)
				if err != nil {
					return rowSet{}, fmt.Errorf("tx %s log index: %w", r.TransactionHash, err)
				}
				set.logs = append(set.logs, logRow{
					BlockNumber: row.BlockNumber,
					TxIndex:     row.Index,
					Index:       index,
					Address:     l.Address.Hex(),
					Topics:      hexes(l.Topics),
					Data:        hexutil.Encode(l.Data),
				})
			}
		}
	}
	return set, nil
}

func newBlockRow(b *rpctypes.Block) (blockRow, error) {
	ts, err := safe.Int64(uint64(b.Timestamp))
	if err != nil {
		return blockRow{}, fmt.Errorf("block %s timestamp: %w", b.Hash, err)
	}
	txCount, err := safe.Uint32(len(b.Transactions))
	if err != nil {
		return blockRow{}, fmt.Errorf("block %s transaction count: %w", b.Hash, err)
	}
	row := blockRow{
		Number:        bigToUint64(b.Number),
		Hash:          b.Hash.Hex(),
		ParentHash:    b.ParentHash.Hex(),
		Timestamp:     time.Unix(ts, 0).UTC(),
		Miner:         b.Miner.Hex(),
		GasLimit:      uint64(b.GasLimit),
		GasUsed:       uint64(b.GasUsed),
		BaseFeePerGas: orZero(b.BaseFeePerGas),
		TxCount:       txCount,
		Size:          uint64(b.Size),
	}
	if b.BlobGasUsed != nil {
		row.BlobGasUsed = uint64(*b.BlobGasUsed)
	}
	return row, nil
}

func newTransactionRow(b blockRow, i int, tx *rpctypes.Transaction) (transactionRow, error) {
	index, err := safe.Uint32(i)
	if err != nil {
		return transactionRow{}, fmt.Errorf("tx %s index: %w", tx.Hash, err)
	}
	kind, err := safe.Uint8(tx.Type)
	if err != nil {
		return transactionRow{}, fmt.Errorf("tx %s type: %w", tx.Hash, err)
	}
	inputSize, err := safe.Uint32(len(tx.Input))
	if err != nil {
		return transactionRow{}, fmt.Errorf("tx %s input size: %w", tx.Hash, err)
	}
	row := transactionRow{
		BlockNumber: b.Number,
		BlockHash:   b.Hash,
		Index:       index,
		Hash:        tx.Hash.Hex(),
		From:        tx.From.Hex(),
		To:          addressOrNil(tx.To),
		Nonce:       uint64(tx.Nonce),
		Type:        kind,
		Gas:         uint64(tx.Gas),
		GasPrice:    orZero(tx.GasPrice),
		Value:       orZero(tx.Value),
		InputSize:   inputSize,
	}
	if tx.DepositFields != nil {
		source := tx.SourceHash.Hex()
		row.Source = &source
	}
	return row, nil
}

func newReceiptRow(r *rpctypes.Receipt) (receiptRow, error) {
	index, err := safe.Uint32(r.TransactionIndex)
	if err != nil {
		return receiptRow{}, fmt.Errorf("receipt %s index: %w", r.TransactionHash, err)
	}
	logCount, err := safe.Uint32(len(r.Logs))
	if err != nil {
		return receiptRow{}, fmt.Errorf("receipt %s log count: %w", r.TransactionHash, err)
	}
	row := receiptRow{
		BlockNumber:       uint64(r.BlockNumber),
		Index:             index,
		TxHash:            r.TransactionHash.Hex(),
		GasUsed:           uint64(r.GasUsed),
		CumulativeGasUsed: uint64(r.CumulativeGasUsed),
		EffectiveGasPrice: orZero(r.EffectiveGasPrice),
		ContractAddress:   addressOrNil(r.ContractAddress),
		LogCount:          logCount,
		L1Fee:             new(big.Int),
	}
	if r.Status != nil {
		status, err := safe.Uint8(*r.Status)
		if err != nil {
			return receiptRow{}, fmt.Errorf("receipt %s status: %w", r.TransactionHash, err)
		}
		row.Status = &status
	}
	if r.L1FeeFields != nil {
		row.L1Fee = orZero(r.L1Fee)
	}
	return row, nil
}

func orZero(v *hexutil.Big) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v.ToInt())
}

func bigToUint64(v *hexutil.Big) uint64 {
	if v == nil {
		return 0
	}
	return v.ToInt().Uint64()
}

func addressOrNil(a *common.Address) *string {
	if a == nil {
		return nil
	}
	s := a.Hex()
	return &s
}

func hexes(hashes []common.Hash) []string {
	out := make([]string, len(hashes))
	for i, h := range hashes {
		out[i] = h.Hex()
	}
	return out
}
