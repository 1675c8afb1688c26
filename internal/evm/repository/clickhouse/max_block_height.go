package clickhouse

import (
	"context"
	"fmt"
	"time"
)

// MaxBlockHeight returns the highest stored block of the repository's network. ok is false when
// nothing is stored yet.
func (r *Repository) MaxBlockHeight(ctx context.Context) (height uint64, ok bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("max_block_height", r.network, err, start)
	}()

	const query = `
SELECT count() AS blocks, coalesce(max(number), toUInt64(0)) AS max_height
FROM evm_blocks
WHERE network = ?`

	rows, err := r.conn.Query(ctx, query, r.network)
	if err != nil {
		return 0, false, fmt.Errorf("query max block height: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		return 0, false, fmt.Errorf("max block height not found")
	}
	var count uint64
	if err = rows.Scan(&count, &height); err != nil {
		return 0, false, fmt.Errorf("scan max block height: %w", err)
	}
	if err = rows.Err(); err != nil {
		return 0, false, fmt.Errorf("iterate max block height: %w", err)
	}
	return height, count > 0, nil
}
