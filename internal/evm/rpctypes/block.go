package rpctypes

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// Block is the wire form of a block. Transactions holds either common.Hash values or
// *Transaction values, depending on what the caller asked for.
type Block struct {
	Hash                  common.Hash        `json:"hash"`
	ParentHash            common.Hash        `json:"parentHash"`
	Sha3Uncles            common.Hash        `json:"sha3Uncles"`
	Miner                 common.Address     `json:"miner"`
	StateRoot             common.Hash        `json:"stateRoot"`
	TransactionsRoot      common.Hash        `json:"transactionsRoot"`
	ReceiptsRoot          common.Hash        `json:"receiptsRoot"`
	LogsBloom             types.Bloom        `json:"logsBloom"`
	Difficulty            *hexutil.Big       `json:"difficulty"`
	Number                *hexutil.Big       `json:"number"`
	GasLimit              hexutil.Uint64     `json:"gasLimit"`
	GasUsed               hexutil.Uint64     `json:"gasUsed"`
	Timestamp             hexutil.Uint64     `json:"timestamp"`
	ExtraData             hexutil.Bytes      `json:"extraData"`
	MixHash               common.Hash        `json:"mixHash"`
	Nonce                 types.BlockNonce   `json:"nonce"`
	BaseFeePerGas         *hexutil.Big       `json:"baseFeePerGas,omitempty"`
	WithdrawalsRoot       *common.Hash       `json:"withdrawalsRoot,omitempty"`
	BlobGasUsed           *hexutil.Uint64    `json:"blobGasUsed,omitempty"`
	ExcessBlobGas         *hexutil.Uint64    `json:"excessBlobGas,omitempty"`
	ParentBeaconBlockRoot *common.Hash       `json:"parentBeaconBlockRoot,omitempty"`
	RequestsHash          *common.Hash       `json:"requestsHash,omitempty"`
	Size                  hexutil.Uint64     `json:"size"`
	Uncles                []common.Hash      `json:"uncles"`
	Transactions          []any              `json:"transactions"`
	Withdrawals           *types.Withdrawals `json:"withdrawals,omitempty"`
}
