package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/exporter"
)

const (
	insertBlocksQuery = `
INSERT INTO evm_blocks (
	network,
	number,
	hash,
	parent_hash,
	timestamp,
	miner,
	gas_limit,
	gas_used,
	base_fee_per_gas,
	blob_gas_used,
	tx_count,
	size
) VALUES`

	insertTransactionsQuery = `
INSERT INTO evm_transactions (
	network,
	block_number,
	block_hash,
	tx_index,
	hash,
	from_address,
	to_address,
	nonce,
	type,
	gas,
	gas_price,
	value,
	input_size,
	source_hash
) VALUES`

	insertReceiptsQuery = `
INSERT INTO evm_receipts (
	network,
	block_number,
	tx_index,
	tx_hash,
	status,
	gas_used,
	cumulative_gas_used,
	effective_gas_price,
	contract_address,
	log_count,
	l1_fee
) VALUES`

	insertLogsQuery = `
INSERT INTO evm_logs (
	network,
	block_number,
	tx_index,
	log_index,
	address,
	topics,
	data
) VALUES`
)

// Write stores records. Block rows go last, so MaxBlockHeight only reports heights whose
// transactions, receipts and logs are already stored.
func (r *Repository) Write(ctx context.Context, records []exporter.Record) error {
	if len(records) == 0 {
		return nil
	}
	set, err := flatten(records)
	if err != nil {
		return err
	}
	if err := r.insertTransactions(ctx, set.transactions); err != nil {
		return err
	}
	if err := r.insertReceipts(ctx, set.receipts); err != nil {
		return err
	}
	if err := r.insertLogs(ctx, set.logs); err != nil {
		return err
	}
	return r.insertBlocks(ctx, set.blocks)
}

func (r *Repository) insertBlocks(ctx context.Context, rows []blockRow) error {
	return r.insert(ctx, "insert_blocks", insertBlocksQuery, len(rows), func(i int) []any {
		b := rows[i]
		return []any{
			r.network,
			b.Number,
			b.Hash,
			b.ParentHash,
			b.Timestamp,
			b.Miner,
			b.GasLimit,
			b.GasUsed,
			b.BaseFeePerGas,
			b.BlobGasUsed,
			b.TxCount,
			b.Size,
		}
	})
}

func (r *Repository) insertTransactions(ctx context.Context, rows []transactionRow) error {
	return r.insert(ctx, "insert_transactions", insertTransactionsQuery, len(rows), func(i int) []any {
		tx := rows[i]
		return []any{
			r.network,
			tx.BlockNumber,
			tx.BlockHash,
			tx.Index,
			tx.Hash,
			tx.From,
			tx.To,
			tx.Nonce,
			tx.Type,
			tx.Gas,
			tx.GasPrice,
			tx.Value,
			tx.InputSize,
			tx.Source,
		}
	})
}

func (r *Repository) insertReceipts(ctx context.Context, rows []receiptRow) error {
	return r.insert(ctx, "insert_receipts", insertReceiptsQuery, len(rows), func(i int) []any {
		rc := rows[i]
		return []any{
			r.network,
			rc.BlockNumber,
			rc.Index,
			rc.TxHash,
			rc.Status,
			rc.GasUsed,
			rc.CumulativeGasUsed,
			rc.EffectiveGasPrice,
			rc.ContractAddress,
			rc.LogCount,
			rc.L1Fee,
		}
	})
}

func (r *Repository) insertLogs(ctx context.Context, rows []logRow) error {
	return r.insert(ctx, "insert_logs", insertLogsQuery, len(rows), func(i int) []any {
		l := rows[i]
		return []any{
			r.network,
			l.BlockNumber,
			l.TxIndex,
			l.Index,
			l.Address,
			l.Topics,
			l.Data,
		}
	})
}

// insert appends n rows produced by row to a single batch.
func (r *Repository) insert(ctx context.Context, operation, query string, n int, row func(i int) []any) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe(operation, r.network, err, start)
	}()

	if n == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare %s batch: %w", operation, err)
	}
	for i := 0; i < n; i++ {
		if err = batch.Append(row(i)...); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("%s: append row %d: %w", operation, i, err)
		}
	}
	if err = batch.Send(); err != nil {
		return fmt.Errorf("%s: send: %w", operation, err)
	}
	return nil
}
