// Package gethview adapts go-ethereum types and upstream JSON-RPC payloads into canonical model
// objects. Sender recovery happens here and nowhere else.
package gethview

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/model"
)

// FromGethTransaction rebuilds the canonical form of tx.
func FromGethTransaction(tx *types.Transaction) (*model.Transaction, error) {
	v, r, s := tx.RawSignatureValues()
	var inner model.TxData
	switch tx.Type() {
	case types.LegacyTxType:
		inner = &model.LegacyTx{
			Nonce: tx.Nonce(), GasPrice: tx.GasPrice(), Gas: tx.Gas(), To: tx.To(), Value: tx.Value(),
			Data: tx.Data(), V: v, R: r, S: s,
		}
	case types.AccessListTxType:
		inner = &model.AccessListTx{
			ChainID: tx.ChainId(), Nonce: tx.Nonce(), GasPrice: tx.GasPrice(), Gas: tx.Gas(), To: tx.To(),
			Value: tx.Value(), Data: tx.Data(), AccessList: tx.AccessList(), V: v, R: r, S: s,
		}
	case types.DynamicFeeTxType:
		inner = &model.DynamicFeeTx{
			ChainID: tx.ChainId(), Nonce: tx.Nonce(), GasTipCap: tx.GasTipCap(), GasFeeCap: tx.GasFeeCap(),
			Gas: tx.Gas(), To: tx.To(), Value: tx.Value(), Data: tx.Data(), AccessList: tx.AccessList(),
			V: v, R: r, S: s,
		}
	case types.BlobTxType:
		to := tx.To()
		if to == nil {
			return nil, fmt.Errorf("blob tx %s without recipient", tx.Hash())
		}
		inner = &model.BlobTx{
			ChainID: tx.ChainId(), Nonce: tx.Nonce(), GasTipCap: tx.GasTipCap(), GasFeeCap: tx.GasFeeCap(),
			Gas: tx.Gas(), To: *to, Value: tx.Value(), Data: tx.Data(), AccessList: tx.AccessList(),
			BlobFeeCap: tx.BlobGasFeeCap(), BlobHashes: tx.BlobHashes(), V: v, R: r, S: s,
		}
	case types.SetCodeTxType:
		to := tx.To()
		if to == nil {
			return nil, fmt.Errorf("set code tx %s without recipient", tx.Hash())
		}
		inner = &model.SetCodeTx{
			ChainID: tx.ChainId(), Nonce: tx.Nonce(), GasTipCap: tx.GasTipCap(), GasFeeCap: tx.GasFeeCap(),
			Gas: tx.Gas(), To: *to, Value: tx.Value(), Data: tx.Data(), AccessList: tx.AccessList(),
			AuthList: tx.SetCodeAuthorizations(), V: v, R: r, S: s,
		}
	default:
		return nil, fmt.Errorf("tx %s: unsupported type %d", tx.Hash(), tx.Type())
	}
	out, err := model.NewTransaction(inner)
	if err != nil {
		return nil, err
	}
	if out.Hash() != tx.Hash() {
		return nil, fmt.Errorf("tx %s: canonical hash %s differs", tx.Hash(), out.Hash())
	}
	return out, nil
}

// Sender recovers the signer of tx with the latest signer for chainID.
func Sender(tx *types.Transaction, chainID *big.Int) (common.Address, error) {
	return types.Sender(types.LatestSignerForChainID(chainID), tx)
}

// Recover converts tx and authenticates its sender.
func Recover(tx *types.Transaction, chainID *big.Int) (model.Recovered, error) {
	canonical, err := FromGethTransaction(tx)
	if err != nil {
		return model.Recovered{}, err
	}
	from, err := Sender(tx, chainID)
	if err != nil {
		return model.Recovered{}, fmt.Errorf("recover sender of %s: %w", tx.Hash(), err)
	}
	return model.WithSender(canonical, from), nil
}

type txEnvelope struct {
	Type hexutil.Uint64  `json:"type"`
	Hash common.Hash     `json:"hash"`
	From *common.Address `json:"from"`
}

type depositJSON struct {
	SourceHash common.Hash     `json:"sourceHash"`
	From       common.Address  `json:"from"`
	To         *common.Address `json:"to"`
	Mint       *hexutil.Big    `json:"mint"`
	Value      *hexutil.Big    `json:"value"`
	Gas        hexutil.Uint64  `json:"gas"`
	IsSystemTx *bool           `json:"isSystemTx"`
	Input      hexutil.Bytes   `json:"input"`
}

// DecodeTransaction decodes a transaction object as served by eth_getBlockBy* with full
// transactions. Deposits are decoded here because go-ethereum does not know their type.
func DecodeTransaction(raw json.RawMessage, chainID *big.Int) (model.Recovered, error) {
	var env txEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return model.Recovered{}, fmt.Errorf("decode transaction envelope: %w", err)
	}
	if model.Kind(env.Type) == model.KindDeposit {
		return decodeDeposit(raw, env.Hash)
	}

	var tx types.Transaction
	if err := tx.UnmarshalJSON(raw); err != nil {
		return model.Recovered{}, fmt.Errorf("decode transaction %s: %w", env.Hash, err)
	}
	canonical, err := FromGethTransaction(&tx)
	if err != nil {
		return model.Recovered{}, err
	}
	from, err := Sender(&tx, chainID)
	if err != nil {
		// Signatures from chains with unknown signing rules cannot be recovered locally.
		if env.From == nil {
			return model.Recovered{}, fmt.Errorf("recover sender of %s: %w", tx.Hash(), err)
		}
		from = *env.From
	}
	return model.WithSender(canonical, from), nil
}

func decodeDeposit(raw json.RawMessage, reported common.Hash) (model.Recovered, error) {
	var d depositJSON
	if err := json.Unmarshal(raw, &d); err != nil {
		return model.Recovered{}, fmt.Errorf("decode deposit %s: %w", reported, err)
	}
	inner := &model.DepositTx{
		SourceHash:          d.SourceHash,
		From:                d.From,
		To:                  d.To,
		Mint:                d.Mint.ToInt(),
		Value:               d.Value.ToInt(),
		Gas:                 uint64(d.Gas),
		IsSystemTransaction: d.IsSystemTx != nil && *d.IsSystemTx,
		Data:                d.Input,
	}
	tx, err := model.NewTransaction(inner)
	if err != nil {
		return model.Recovered{}, err
	}
	if reported != (common.Hash{}) && tx.Hash() != reported {
		return model.Recovered{}, fmt.Errorf("deposit %s: canonical hash %s differs", reported, tx.Hash())
	}
	from := d.From
	return model.Recovered{Tx: tx, From: &from}, nil
}
