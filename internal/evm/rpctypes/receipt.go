package rpctypes

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// Receipt is the wire form of a transaction receipt.
type Receipt struct {
	BlockHash         common.Hash     `json:"blockHash"`
	BlockNumber       hexutil.Uint64  `json:"blockNumber"`
	TransactionHash   common.Hash     `json:"transactionHash"`
	TransactionIndex  hexutil.Uint64  `json:"transactionIndex"`
	From              common.Address  `json:"from"`
	To                *common.Address `json:"to"`
	GasUsed           hexutil.Uint64  `json:"gasUsed"`
	CumulativeGasUsed hexutil.Uint64  `json:"cumulativeGasUsed"`
	EffectiveGasPrice *hexutil.Big    `json:"effectiveGasPrice"`
	ContractAddress   *common.Address `json:"contractAddress"`
	Logs              []*types.Log    `json:"logs"`
	LogsBloom         types.Bloom     `json:"logsBloom"`
	Type              hexutil.Uint64  `json:"type"`
	Status            *hexutil.Uint64 `json:"status,omitempty"`
	Root              hexutil.Bytes   `json:"root,omitempty"`
	BlobGasUsed       *hexutil.Uint64 `json:"blobGasUsed,omitempty"`
	BlobGasPrice      *hexutil.Big    `json:"blobGasPrice,omitempty"`

	*L1FeeFields
	*DepositReceiptFields
}

// L1FeeFields report the settlement-layer data fee of a non-deposit transaction.
type L1FeeFields struct {
	L1GasPrice          *hexutil.Big    `json:"l1GasPrice"`
	L1GasUsed           *hexutil.Big    `json:"l1GasUsed"`
	L1Fee               *hexutil.Big    `json:"l1Fee"`
	L1BaseFeeScalar     *hexutil.Uint64 `json:"l1BaseFeeScalar,omitempty"`
	L1BlobBaseFee       *hexutil.Big    `json:"l1BlobBaseFee,omitempty"`
	L1BlobBaseFeeScalar *hexutil.Uint64 `json:"l1BlobBaseFeeScalar,omitempty"`
}

// DepositReceiptFields are reported for deposit receipts only.
type DepositReceiptFields struct {
	DepositNonce          *hexutil.Uint64 `json:"depositNonce,omitempty"`
	DepositReceiptVersion *hexutil.Uint64 `json:"depositReceiptVersion,omitempty"`
}
