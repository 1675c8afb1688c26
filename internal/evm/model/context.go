package model

import "math/big"

// ExecutionContext carries runtime facts that are not stored on canonical objects.
type ExecutionContext struct {
	// BaseFee is the base fee per gas of the including block.
	BaseFee *big.Int
	// BlobBaseFee is the price per unit of blob gas in the including block.
	BlobBaseFee *big.Int
	// L1 is the data-availability fee charged by the settlement layer for non-deposit
	// transactions of the extended family.
	L1 *L1Fee
	// DepositNonce and DepositReceiptVersion come from a deposit's receipt.
	DepositNonce          *uint64
	DepositReceiptVersion *uint64
}

// L1Fee is the settlement-layer fee breakdown computed by the execution engine.
type L1Fee struct {
	GasPrice          *big.Int
	GasUsed           *big.Int
	Fee               *big.Int
	BaseFeeScalar     *uint64
	BlobBaseFee       *big.Int
	BlobBaseFeeScalar *uint64
}

// BlockEnv carries engine-computed facts shared by, or indexed over, the transactions of a block.
type BlockEnv struct {
	BlobBaseFee *big.Int
	// L1 is indexed by transaction position. Entries for deposits are nil.
	L1 []*L1Fee
}

// At derives the execution context of the transaction at index from the block header, the
// environment and the transaction's receipt. env and r may be nil.
func (env *BlockEnv) At(h *Header, index int, r *Receipt) *ExecutionContext {
	ctx := &ExecutionContext{BaseFee: h.BaseFee()}
	if env != nil {
		ctx.BlobBaseFee = copyBig(env.BlobBaseFee)
		if index >= 0 && index < len(env.L1) {
			ctx.L1 = env.L1[index]
		}
	}
	if r != nil {
		ctx.DepositNonce = r.DepositNonce
		ctx.DepositReceiptVersion = r.DepositReceiptVersion
	}
	return ctx
}
