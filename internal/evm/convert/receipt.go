package convert

import (
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/model"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/rpctypes"
)

// Receipt converts r, the receipt of tx. pos locates r inside its block and is obtained from
// PositionOf; exec supplies fee facts computed by the execution engine.
func (c *Converter) Receipt(
	r *model.Receipt,
	tx model.Recovered,
	inc *model.Inclusion,
	pos ReceiptPosition,
	exec *model.ExecutionContext,
) (out *rpctypes.Receipt, err error) {
	started := time.Now()
	defer func() {
		c.observe("receipt", err, started)
	}()
	return c.receipt(r, tx, inc, pos, exec)
}

func (c *Converter) receipt(
	r *model.Receipt,
	rec model.Recovered,
	inc *model.Inclusion,
	pos ReceiptPosition,
	exec *model.ExecutionContext,
) (*rpctypes.Receipt, error) {
	tx := rec.Tx
	if tx == nil {
		return nil, newError(KindUnsupportedTransactionKind, "nil transaction")
	}
	if inc == nil {
		return nil, newError(KindMissingBlockContext, "receipt of tx %s: block context required", tx.Hash())
	}
	if r == nil {
		return nil, newError(KindInvalidReceipt, "tx %s: missing receipt", tx.Hash())
	}
	if r.Kind != tx.Kind() {
		return nil, newError(KindInvalidReceipt, "tx %s: receipt kind %s does not match transaction kind %s", tx.Hash(), r.Kind, tx.Kind())
	}
	if r.CumulativeGasUsed < pos.PrevCumulativeGasUsed {
		return nil, newError(KindInvalidReceipt, "tx %s: cumulative gas %d below previous %d",
			tx.Hash(), r.CumulativeGasUsed, pos.PrevCumulativeGasUsed)
	}
	if err := c.supports(tx); err != nil {
		return nil, err
	}
	from, err := sender(rec)
	if err != nil {
		return nil, err
	}
	var baseFee *big.Int
	if exec != nil {
		baseFee = exec.BaseFee
	}
	price, err := gasPrice(tx, baseFee, true)
	if err != nil {
		return nil, err
	}

	logs, bloom := denormalizeLogs(r.Logs, inc, tx.Hash(), pos.FirstLogIndex)
	out := &rpctypes.Receipt{
		BlockHash:         inc.BlockHash,
		BlockNumber:       hexutil.Uint64(inc.BlockNumber),
		TransactionHash:   tx.Hash(),
		TransactionIndex:  hexutil.Uint64(inc.Index),
		From:              from,
		To:                tx.To(),
		GasUsed:           hexutil.Uint64(r.CumulativeGasUsed - pos.PrevCumulativeGasUsed),
		CumulativeGasUsed: hexutil.Uint64(r.CumulativeGasUsed),
		EffectiveGasPrice: (*hexutil.Big)(price),
		Logs:              logs,
		LogsBloom:         bloom,
		Type:              hexutil.Uint64(tx.Type()),
	}
	if len(r.PostState) > 0 {
		out.Root = append(hexutil.Bytes(nil), r.PostState...)
	} else {
		status := hexutil.Uint64(r.Status)
		out.Status = &status
	}
	if r.ContractAddress != nil {
		addr := *r.ContractAddress
		out.ContractAddress = &addr
	}

	switch tx.Inner().(type) {
	case *model.LegacyTx, *model.AccessListTx, *model.DynamicFeeTx, *model.SetCodeTx:
	case *model.BlobTx:
		if exec == nil || exec.BlobBaseFee == nil {
			return nil, newError(KindMissingExecutionContext, "tx %s: blob gas price needs the block blob base fee", tx.Hash())
		}
		used := hexutil.Uint64(blobGasUsed(tx))
		out.BlobGasUsed = &used
		out.BlobGasPrice = (*hexutil.Big)(new(big.Int).Set(exec.BlobBaseFee))
	case *model.DepositTx:
		if c.variant.Extended() {
			out.DepositReceiptFields = depositReceiptFields(r)
		}
		return out, nil
	default:
		return nil, newError(KindUnsupportedTransactionKind, "tx %s: kind %s", tx.Hash(), tx.Kind())
	}

	if c.variant.Extended() {
		if exec == nil || exec.L1 == nil {
			return nil, newError(KindMissingExecutionContext, "tx %s: l1 fee not supplied", tx.Hash())
		}
		fields, err := l1FeeFields(exec.L1)
		if err != nil {
			return nil, wrapError(KindMissingExecutionContext, err, "tx %s: l1 fee incomplete", tx.Hash())
		}
		out.L1FeeFields = fields
	}
	return out, nil
}

func depositReceiptFields(r *model.Receipt) *rpctypes.DepositReceiptFields {
	fields := &rpctypes.DepositReceiptFields{}
	if r.DepositNonce != nil {
		nonce := hexutil.Uint64(*r.DepositNonce)
		fields.DepositNonce = &nonce
	}
	if r.DepositReceiptVersion != nil {
		version := hexutil.Uint64(*r.DepositReceiptVersion)
		fields.DepositReceiptVersion = &version
	}
	return fields
}

// l1FeeFields renders fee. Gas price, gas used and fee are required; the scalars depend on the
// fork and are copied when present.
func l1FeeFields(fee *model.L1Fee) (*rpctypes.L1FeeFields, error) {
	switch {
	case fee.GasPrice == nil:
		return nil, errors.New("l1 gas price missing")
	case fee.GasUsed == nil:
		return nil, errors.New("l1 gas used missing")
	case fee.Fee == nil:
		return nil, errors.New("l1 fee missing")
	}
	fields := &rpctypes.L1FeeFields{
		L1GasPrice: hexBig(fee.GasPrice),
		L1GasUsed:  hexBig(fee.GasUsed),
		L1Fee:      hexBig(fee.Fee),
	}
	if fee.BaseFeeScalar != nil {
		scalar := hexutil.Uint64(*fee.BaseFeeScalar)
		fields.L1BaseFeeScalar = &scalar
	}
	if fee.BlobBaseFee != nil {
		fields.L1BlobBaseFee = hexBig(fee.BlobBaseFee)
	}
	if fee.BlobBaseFeeScalar != nil {
		scalar := hexutil.Uint64(*fee.BlobBaseFeeScalar)
		fields.L1BlobBaseFeeScalar = &scalar
	}
	return fields, nil
}

// hexBig copies v, which must be non-nil.
func hexBig(v *big.Int) *hexutil.Big {
	return (*hexutil.Big)(new(big.Int).Set(v))
}
