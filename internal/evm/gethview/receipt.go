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

// FromGethReceipt strips the block and transaction identity off r.
func FromGethReceipt(r *types.Receipt) *model.Receipt {
	out := &model.Receipt{
		Kind:              model.Kind(r.Type),
		Status:            r.Status,
		CumulativeGasUsed: r.CumulativeGasUsed,
		Logs:              make([]model.Log, 0, len(r.Logs)),
	}
	if len(r.PostState) > 0 {
		out.PostState = common.CopyBytes(r.PostState)
	}
	if r.ContractAddress != (common.Address{}) {
		addr := r.ContractAddress
		out.ContractAddress = &addr
	}
	for _, l := range r.Logs {
		out.Logs = append(out.Logs, model.Log{
			Address: l.Address,
			Topics:  append([]common.Hash(nil), l.Topics...),
			Data:    common.CopyBytes(l.Data),
		})
	}
	return out
}

// Receipt is a decoded upstream receipt: the canonical receipt plus the engine-computed facts the
// upstream node reported alongside it.
type Receipt struct {
	Receipt      *model.Receipt
	TxHash       common.Hash
	BlobGasPrice *big.Int
	// L1 is set for non-deposit receipts of settlement-layer chains.
	L1 *model.L1Fee
}

type extendedReceiptJSON struct {
	DepositNonce          *hexutil.Uint64 `json:"depositNonce"`
	DepositReceiptVersion *hexutil.Uint64 `json:"depositReceiptVersion"`
	L1GasPrice            *hexutil.Big    `json:"l1GasPrice"`
	L1GasUsed             *hexutil.Big    `json:"l1GasUsed"`
	L1Fee                 *hexutil.Big    `json:"l1Fee"`
	L1BaseFeeScalar       *hexutil.Uint64 `json:"l1BaseFeeScalar"`
	L1BlobBaseFee         *hexutil.Big    `json:"l1BlobBaseFee"`
	L1BlobBaseFeeScalar   *hexutil.Uint64 `json:"l1BlobBaseFeeScalar"`
}

// DecodeReceipt decodes a receipt object as served by eth_getBlockReceipts.
func DecodeReceipt(raw json.RawMessage) (*Receipt, error) {
	var r types.Receipt
	if err := r.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	var ext extendedReceiptJSON
	if err := json.Unmarshal(raw, &ext); err != nil {
		return nil, fmt.Errorf("decode receipt %s extension: %w", r.TxHash, err)
	}

	out := &Receipt{
		Receipt: FromGethReceipt(&r),
		TxHash:  r.TxHash,
	}
	if r.BlobGasPrice != nil {
		out.BlobGasPrice = new(big.Int).Set(r.BlobGasPrice)
	}
	if ext.DepositNonce != nil {
		nonce := uint64(*ext.DepositNonce)
		out.Receipt.DepositNonce = &nonce
	}
	if ext.DepositReceiptVersion != nil {
		version := uint64(*ext.DepositReceiptVersion)
		out.Receipt.DepositReceiptVersion = &version
	}
	if ext.L1Fee != nil {
		out.L1 = &model.L1Fee{
			GasPrice:          ext.L1GasPrice.ToInt(),
			GasUsed:           ext.L1GasUsed.ToInt(),
			Fee:               ext.L1Fee.ToInt(),
			BaseFeeScalar:     uint64Ptr(ext.L1BaseFeeScalar),
			BlobBaseFee:       ext.L1BlobBaseFee.ToInt(),
			BlobBaseFeeScalar: uint64Ptr(ext.L1BlobBaseFeeScalar),
		}
	}
	return out, nil
}

func uint64Ptr(v *hexutil.Uint64) *uint64 {
	if v == nil {
		return nil
	}
	n := uint64(*v)
	return &n
}
