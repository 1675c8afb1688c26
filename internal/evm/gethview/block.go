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

// FromGethBlock converts b, recovering every sender with the signer for chainID.
func FromGethBlock(b *types.Block, chainID *big.Int) (*model.Block, error) {
	out := &model.Block{
		Header:       model.NewHeader(b.Header()),
		Transactions: make([]model.Recovered, 0, len(b.Transactions())),
		Uncles:       b.Uncles(),
		Withdrawals:  b.Withdrawals(),
		Size:         b.Size(),
	}
	for _, tx := range b.Transactions() {
		rec, err := Recover(tx, chainID)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", b.NumberU64(), err)
		}
		out.Transactions = append(out.Transactions, rec)
	}
	return out, nil
}

// Block is a decoded upstream block. Uncle headers are not part of the block payload; callers
// fetch them by hash when they need them.
type Block struct {
	Block       *model.Block
	UncleHashes []common.Hash
}

type blockBody struct {
	Hash         common.Hash        `json:"hash"`
	Transactions []json.RawMessage  `json:"transactions"`
	Uncles       []common.Hash      `json:"uncles"`
	Withdrawals  *types.Withdrawals `json:"withdrawals"`
	Size         hexutil.Uint64     `json:"size"`
}

// DecodeBlock decodes a block served by eth_getBlockBy* with full transaction objects.
func DecodeBlock(raw json.RawMessage, chainID *big.Int) (*Block, error) {
	var h types.Header
	if err := h.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	var body blockBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode block body: %w", err)
	}

	header := model.NewHeader(&h)
	if body.Hash != (common.Hash{}) && header.Hash() != body.Hash {
		return nil, fmt.Errorf("block %d: header hash %s differs from reported %s", header.Number(), header.Hash(), body.Hash)
	}
	out := &model.Block{
		Header:       header,
		Transactions: make([]model.Recovered, 0, len(body.Transactions)),
		Size:         uint64(body.Size),
	}
	if body.Withdrawals != nil {
		out.Withdrawals = *body.Withdrawals
	}
	for i, rawTx := range body.Transactions {
		rec, err := DecodeTransaction(rawTx, chainID)
		if err != nil {
			return nil, fmt.Errorf("block %d tx %d: %w", header.Number(), i, err)
		}
		out.Transactions = append(out.Transactions, rec)
	}
	return &Block{Block: out, UncleHashes: body.Uncles}, nil
}

// Assemble splits decoded receipts into canonical receipts and the block environment. Receipts
// must be in block order.
func Assemble(receipts []*Receipt) ([]*model.Receipt, *model.BlockEnv) {
	out := make([]*model.Receipt, 0, len(receipts))
	env := &model.BlockEnv{L1: make([]*model.L1Fee, len(receipts))}
	for i, r := range receipts {
		out = append(out, r.Receipt)
		env.L1[i] = r.L1
		if env.BlobBaseFee == nil && r.BlobGasPrice != nil {
			env.BlobBaseFee = r.BlobGasPrice
		}
	}
	return out, env
}
