package convert

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/model"
)

// ReceiptPosition locates a receipt's gas and logs inside its block.
type ReceiptPosition struct {
	// PrevCumulativeGasUsed is the cumulative gas of the preceding receipt, zero for the first.
	PrevCumulativeGasUsed uint64
	// FirstLogIndex is the block-wide index of the receipt's first log.
	FirstLogIndex uint64
}

// logPositions hands out receipt positions while walking a block's receipts in order. Log indices
// continue across transaction boundaries.
type logPositions struct {
	next ReceiptPosition
}

func (p *logPositions) take(r *model.Receipt) ReceiptPosition {
	pos := p.next
	p.next = ReceiptPosition{
		PrevCumulativeGasUsed: r.CumulativeGasUsed,
		FirstLogIndex:         pos.FirstLogIndex + uint64(len(r.Logs)),
	}
	return pos
}

// PositionOf computes the position of receipts[index] from the receipts preceding it.
func PositionOf(receipts []*model.Receipt, index int) (ReceiptPosition, bool) {
	if index < 0 || index >= len(receipts) {
		return ReceiptPosition{}, false
	}
	var positions logPositions
	for _, r := range receipts[:index] {
		if r == nil {
			return ReceiptPosition{}, false
		}
		positions.take(r)
	}
	return positions.next, true
}

// denormalizeLogs stitches block and transaction identity into canonical logs and builds the bloom.
func denormalizeLogs(logs []model.Log, inc *model.Inclusion, txHash common.Hash, first uint64) ([]*types.Log, types.Bloom) {
	var bloom types.Bloom
	out := make([]*types.Log, 0, len(logs))
	for i, l := range logs {
		topics := make([]common.Hash, len(l.Topics))
		copy(topics, l.Topics)
		out = append(out, &types.Log{
			Address:     l.Address,
			Topics:      topics,
			Data:        common.CopyBytes(l.Data),
			BlockNumber: inc.BlockNumber,
			TxHash:      txHash,
			TxIndex:     uint(inc.Index),
			BlockHash:   inc.BlockHash,
			Index:       uint(first + uint64(i)),
		})
		bloom.Add(l.Address.Bytes())
		for _, topic := range l.Topics {
			bloom.Add(topic.Bytes())
		}
	}
	return out, bloom
}
