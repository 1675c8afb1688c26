package model

import "github.com/ethereum/go-ethereum/common"

const (
	// ReceiptStatusFailed is the status of a transaction whose execution reverted.
	ReceiptStatusFailed = uint64(0)
	// ReceiptStatusSuccessful is the status of a transaction that executed successfully.
	ReceiptStatusSuccessful = uint64(1)
)

// Log is an event emitted during execution. It does not reference its block or transaction.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// Receipt is the execution outcome of a single transaction as produced by the engine.
type Receipt struct {
	Kind Kind
	// PostState is set instead of Status for pre-Byzantium receipts.
	PostState         []byte
	Status            uint64
	CumulativeGasUsed uint64
	Logs              []Log
	ContractAddress   *common.Address

	// Deposit receipts only.
	DepositNonce          *uint64
	DepositReceiptVersion *uint64
}
