package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Header is a sealed block header: the upstream header plus its hash, computed once.
type Header struct {
	inner *types.Header
	hash  common.Hash
}

// NewHeader seals h. The header is copied so later changes to h are not observed.
func NewHeader(h *types.Header) *Header {
	cpy := types.CopyHeader(h)
	return &Header{inner: cpy, hash: cpy.Hash()}
}

func (h *Header) Hash() common.Hash { return h.hash }

func (h *Header) Number() uint64 {
	if h.inner.Number == nil {
		return 0
	}
	return h.inner.Number.Uint64()
}

func (h *Header) Time() uint64 { return h.inner.Time }

// BaseFee returns the block base fee, or nil before London.
func (h *Header) BaseFee() *big.Int { return copyBig(h.inner.BaseFee) }

// Inner returns a copy of the underlying header.
func (h *Header) Inner() *types.Header { return types.CopyHeader(h.inner) }

// Block is a canonical block with its transactions in execution order.
type Block struct {
	Header       *Header
	Transactions []Recovered
	Uncles       []*types.Header
	// Withdrawals is nil before Shanghai.
	Withdrawals types.Withdrawals
	// Size is the encoded block size reported by storage.
	Size uint64
}

// Inclusion locates a transaction inside a sealed block.
type Inclusion struct {
	BlockHash   common.Hash
	BlockNumber uint64
	Index       uint64
}

// InclusionAt returns the inclusion context of the transaction at index in b.
func (b *Block) InclusionAt(index uint64) *Inclusion {
	return &Inclusion{
		BlockHash:   b.Header.Hash(),
		BlockNumber: b.Header.Number(),
		Index:       index,
	}
}

// IndexOf returns the position of the transaction with the given hash.
func (b *Block) IndexOf(hash common.Hash) (uint64, bool) {
	for i, tx := range b.Transactions {
		if tx.Tx != nil && tx.Tx.Hash() == hash {
			return uint64(i), true
		}
	}
	return 0, false
}
