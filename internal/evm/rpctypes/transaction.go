// Package rpctypes defines the JSON-RPC wire shapes returned to clients.
//
// Fields that only exist in the extended (L2 settlement) family are grouped in embedded pointer
// structs. A nil embedded pointer contributes no keys at all to the encoded object.
package rpctypes

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// Transaction is the wire form of a transaction.
type Transaction struct {
	BlockHash            *common.Hash                 `json:"blockHash"`
	BlockNumber          *hexutil.Big                 `json:"blockNumber"`
	From                 common.Address               `json:"from"`
	Gas                  hexutil.Uint64               `json:"gas"`
	GasPrice             *hexutil.Big                 `json:"gasPrice"`
	MaxFeePerGas         *hexutil.Big                 `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big                 `json:"maxPriorityFeePerGas,omitempty"`
	MaxFeePerBlobGas     *hexutil.Big                 `json:"maxFeePerBlobGas,omitempty"`
	Hash                 common.Hash                  `json:"hash"`
	Input                hexutil.Bytes                `json:"input"`
	Nonce                hexutil.Uint64               `json:"nonce"`
	To                   *common.Address              `json:"to"`
	TransactionIndex     *hexutil.Uint64              `json:"transactionIndex"`
	Value                *hexutil.Big                 `json:"value"`
	Type                 hexutil.Uint64               `json:"type"`
	AccessList           *types.AccessList            `json:"accessList,omitempty"`
	ChainID              *hexutil.Big                 `json:"chainId,omitempty"`
	BlobVersionedHashes  []common.Hash                `json:"blobVersionedHashes,omitempty"`
	AuthorizationList    []types.SetCodeAuthorization `json:"authorizationList,omitempty"`
	V                    *hexutil.Big                 `json:"v"`
	R                    *hexutil.Big                 `json:"r"`
	S                    *hexutil.Big                 `json:"s"`
	YParity              *hexutil.Uint64              `json:"yParity,omitempty"`

	*DepositFields
}

// DepositFields are the extended-family fields of a deposit transaction.
type DepositFields struct {
	SourceHash            common.Hash     `json:"sourceHash"`
	Mint                  *hexutil.Big    `json:"mint,omitempty"`
	IsSystemTx            *bool           `json:"isSystemTx,omitempty"`
	DepositReceiptVersion *hexutil.Uint64 `json:"depositReceiptVersion,omitempty"`
}

// TransactionRequest is the request-construction form accepted by eth_call, eth_sendTransaction
// and friends.
type TransactionRequest struct {
	From                 *common.Address              `json:"from,omitempty"`
	To                   *common.Address              `json:"to,omitempty"`
	Gas                  *hexutil.Uint64              `json:"gas,omitempty"`
	GasPrice             *hexutil.Big                 `json:"gasPrice,omitempty"`
	MaxFeePerGas         *hexutil.Big                 `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big                 `json:"maxPriorityFeePerGas,omitempty"`
	MaxFeePerBlobGas     *hexutil.Big                 `json:"maxFeePerBlobGas,omitempty"`
	Value                *hexutil.Big                 `json:"value,omitempty"`
	Nonce                *hexutil.Uint64              `json:"nonce,omitempty"`
	Input                hexutil.Bytes                `json:"input,omitempty"`
	AccessList           *types.AccessList            `json:"accessList,omitempty"`
	ChainID              *hexutil.Big                 `json:"chainId,omitempty"`
	Type                 *hexutil.Uint64              `json:"type,omitempty"`
	BlobVersionedHashes  []common.Hash                `json:"blobVersionedHashes,omitempty"`
	AuthorizationList    []types.SetCodeAuthorization `json:"authorizationList,omitempty"`
}

// depositTxType mirrors the canonical deposit type tag.
const depositTxType = 0x7e

// ToRequest rebuilds the request that would produce this transaction. Deposits are created by the
// settlement layer and have no request form.
func (tx *Transaction) ToRequest() (TransactionRequest, bool) {
	if tx.Type == depositTxType {
		return TransactionRequest{}, false
	}
	from := tx.From
	gas := tx.Gas
	nonce := tx.Nonce
	typ := tx.Type
	req := TransactionRequest{
		From:                &from,
		To:                  copyAddress(tx.To),
		Gas:                 &gas,
		Value:               copyHexBig(tx.Value),
		Nonce:               &nonce,
		Input:               append(hexutil.Bytes(nil), tx.Input...),
		ChainID:             copyHexBig(tx.ChainID),
		Type:                &typ,
		BlobVersionedHashes: append([]common.Hash(nil), tx.BlobVersionedHashes...),
		AuthorizationList:   append([]types.SetCodeAuthorization(nil), tx.AuthorizationList...),
		MaxFeePerBlobGas:    copyHexBig(tx.MaxFeePerBlobGas),
	}
	if tx.AccessList != nil {
		al := append(types.AccessList(nil), (*tx.AccessList)...)
		req.AccessList = &al
	}
	// For fee-market transactions gasPrice is derived; the request carries the caps instead.
	if tx.MaxFeePerGas != nil {
		req.MaxFeePerGas = copyHexBig(tx.MaxFeePerGas)
		req.MaxPriorityFeePerGas = copyHexBig(tx.MaxPriorityFeePerGas)
	} else {
		req.GasPrice = copyHexBig(tx.GasPrice)
	}
	return req, true
}

func copyAddress(a *common.Address) *common.Address {
	if a == nil {
		return nil
	}
	cpy := *a
	return &cpy
}

func copyHexBig(v *hexutil.Big) *hexutil.Big {
	if v == nil {
		return nil
	}
	return (*hexutil.Big)(new(big.Int).Set(v.ToInt()))
}
