package convert

import (
	"math/big"

	"github.com/ethereum/go-ethereum/params"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/model"
)

// EffectiveGasPrice returns the per-gas price paid by a fee-market transaction:
// min(feeCap, baseFee + tipCap). All three inputs must be non-nil.
func EffectiveGasPrice(feeCap, tipCap, baseFee *big.Int) *big.Int {
	price := new(big.Int).Add(baseFee, tipCap)
	if price.Cmp(feeCap) > 0 {
		price.Set(feeCap)
	}
	return price
}

// gasPrice resolves the price reported for tx. Included fee-market transactions need the block
// base fee; pending ones fall back to their max fee per gas.
func gasPrice(tx *model.Transaction, baseFee *big.Int, included bool) (*big.Int, error) {
	switch tx.Inner().(type) {
	case *model.DepositTx:
		return tx.GasPrice(), nil
	case *model.LegacyTx, *model.AccessListTx:
		price := tx.GasPrice()
		if price == nil {
			return nil, newError(KindInvalidTransaction, "tx %s: gas price missing", tx.Hash())
		}
		return price, nil
	case *model.DynamicFeeTx, *model.BlobTx, *model.SetCodeTx:
		feeCap, tipCap := tx.GasFeeCap(), tx.GasTipCap()
		if feeCap == nil || tipCap == nil {
			return nil, newError(KindInvalidTransaction, "tx %s: max fee or max priority fee missing", tx.Hash())
		}
		if baseFee != nil {
			return EffectiveGasPrice(feeCap, tipCap, baseFee), nil
		}
		if included {
			return nil, newError(KindMissingExecutionContext, "tx %s: effective gas price needs the block base fee", tx.Hash())
		}
		return feeCap, nil
	default:
		return nil, newError(KindUnsupportedTransactionKind, "tx %s: kind %s", tx.Hash(), tx.Kind())
	}
}

// blobGasUsed returns the blob gas consumed by tx.
func blobGasUsed(tx *model.Transaction) uint64 {
	return uint64(len(tx.BlobHashes())) * params.BlobTxBlobGasPerBlob
}
