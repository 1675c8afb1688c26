package convert

import (
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/model"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/rpctypes"
)

// Transaction converts tx. inc is nil for transactions that are not part of a sealed block; exec
// is only consulted for fee and deposit fields.
func (c *Converter) Transaction(tx model.Recovered, inc *model.Inclusion, exec *model.ExecutionContext) (out *rpctypes.Transaction, err error) {
	started := time.Now()
	defer func() {
		c.observe("transaction", err, started)
	}()
	return c.transaction(tx, inc, exec)
}

func (c *Converter) transaction(rec model.Recovered, inc *model.Inclusion, exec *model.ExecutionContext) (*rpctypes.Transaction, error) {
	tx := rec.Tx
	if tx == nil {
		return nil, newError(KindUnsupportedTransactionKind, "nil transaction")
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
	price, err := gasPrice(tx, baseFee, inc != nil)
	if err != nil {
		return nil, err
	}

	out := &rpctypes.Transaction{
		From:     from,
		Gas:      hexutil.Uint64(tx.Gas()),
		GasPrice: (*hexutil.Big)(price),
		Hash:     tx.Hash(),
		Input:    tx.Data(),
		Nonce:    hexutil.Uint64(tx.Nonce()),
		To:       tx.To(),
		Value:    (*hexutil.Big)(tx.Value()),
		Type:     hexutil.Uint64(tx.Type()),
	}
	if inc != nil {
		blockHash := inc.BlockHash
		index := hexutil.Uint64(inc.Index)
		out.BlockHash = &blockHash
		out.BlockNumber = (*hexutil.Big)(new(big.Int).SetUint64(inc.BlockNumber))
		out.TransactionIndex = &index
	}

	switch t := tx.Inner().(type) {
	case *model.LegacyTx:
		err = setSignature(out, tx, false)
		if id := legacyChainID(t.V); id != nil {
			out.ChainID = (*hexutil.Big)(id)
		}
	case *model.AccessListTx:
		err = setSignature(out, tx, true)
		setAccessList(out, tx)
		out.ChainID = (*hexutil.Big)(tx.ChainID())
	case *model.DynamicFeeTx:
		err = errors.Join(setSignature(out, tx, true), setFeeCaps(out, tx))
		setAccessList(out, tx)
		out.ChainID = (*hexutil.Big)(tx.ChainID())
	case *model.BlobTx:
		err = errors.Join(setSignature(out, tx, true), setFeeCaps(out, tx))
		setAccessList(out, tx)
		out.ChainID = (*hexutil.Big)(tx.ChainID())
		if blobFeeCap := tx.BlobGasFeeCap(); blobFeeCap != nil {
			out.MaxFeePerBlobGas = (*hexutil.Big)(blobFeeCap)
		} else {
			err = errors.Join(err, newError(KindInvalidTransaction, "tx %s: max fee per blob gas missing", tx.Hash()))
		}
		out.BlobVersionedHashes = tx.BlobHashes()
	case *model.SetCodeTx:
		err = errors.Join(setSignature(out, tx, true), setFeeCaps(out, tx))
		setAccessList(out, tx)
		out.ChainID = (*hexutil.Big)(tx.ChainID())
		out.AuthorizationList = tx.AuthList()
	case *model.DepositTx:
		zero := (*hexutil.Big)(new(big.Int))
		out.V, out.R, out.S = zero, zero, zero
		if exec != nil && exec.DepositNonce != nil {
			out.Nonce = hexutil.Uint64(*exec.DepositNonce)
		}
		if c.variant.Extended() {
			out.DepositFields = depositFields(t, exec)
		}
	default:
		return nil, newError(KindUnsupportedTransactionKind, "tx %s: kind %s", tx.Hash(), tx.Kind())
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// supports rejects kinds that have no wire form in the converter's variant.
func (c *Converter) supports(tx *model.Transaction) error {
	if tx.Kind() == model.KindBlob && !c.variant.BlobFields() {
		return newError(KindUnsupportedTransactionKind, "tx %s: %s transactions have no %s wire form", tx.Hash(), tx.Kind(), c.variant)
	}
	return nil
}

// sender returns the authenticated sender. Deposits carry their own.
func sender(rec model.Recovered) (common.Address, error) {
	if d, ok := rec.Tx.Deposit(); ok {
		return d.From, nil
	}
	if rec.From == nil {
		return common.Address{}, newError(KindMissingSender, "tx %s: sender not supplied", rec.Tx.Hash())
	}
	return *rec.From, nil
}

func setSignature(out *rpctypes.Transaction, tx *model.Transaction, typed bool) error {
	v, r, s, _ := tx.RawSignature()
	if v == nil || r == nil || s == nil {
		return newError(KindInvalidTransaction, "tx %s: signature incomplete", tx.Hash())
	}
	out.V, out.R, out.S = (*hexutil.Big)(v), (*hexutil.Big)(r), (*hexutil.Big)(s)
	if typed {
		parity := hexutil.Uint64(v.Uint64())
		out.YParity = &parity
	}
	return nil
}

func setAccessList(out *rpctypes.Transaction, tx *model.Transaction) {
	if al, ok := tx.AccessList(); ok {
		out.AccessList = &al
	}
}

func setFeeCaps(out *rpctypes.Transaction, tx *model.Transaction) error {
	feeCap, tipCap := tx.GasFeeCap(), tx.GasTipCap()
	if feeCap == nil || tipCap == nil {
		return newError(KindInvalidTransaction, "tx %s: max fee or max priority fee missing", tx.Hash())
	}
	out.MaxFeePerGas, out.MaxPriorityFeePerGas = (*hexutil.Big)(feeCap), (*hexutil.Big)(tipCap)
	return nil
}

func depositFields(t *model.DepositTx, exec *model.ExecutionContext) *rpctypes.DepositFields {
	fields := &rpctypes.DepositFields{SourceHash: t.SourceHash}
	if t.Mint != nil {
		fields.Mint = (*hexutil.Big)(new(big.Int).Set(t.Mint))
	}
	if t.IsSystemTransaction {
		isSystem := true
		fields.IsSystemTx = &isSystem
	}
	if exec != nil && exec.DepositReceiptVersion != nil {
		version := hexutil.Uint64(*exec.DepositReceiptVersion)
		fields.DepositReceiptVersion = &version
	}
	return fields
}

// legacyChainID derives the EIP-155 chain id from a legacy V value; nil for unprotected signatures.
func legacyChainID(v *big.Int) *big.Int {
	if v == nil || v.Cmp(big.NewInt(35)) < 0 {
		return nil
	}
	id := new(big.Int).Sub(v, big.NewInt(35))
	return id.Rsh(id, 1)
}
