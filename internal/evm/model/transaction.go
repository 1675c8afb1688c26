// Package model defines the canonical, execution-facing EVM objects consumed by the RPC conversion layer.
package model

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// Kind is the EIP-2718 type tag of a canonical transaction.
type Kind uint8

const (
	KindLegacy     Kind = types.LegacyTxType
	KindAccessList Kind = types.AccessListTxType
	KindDynamicFee Kind = types.DynamicFeeTxType
	KindBlob       Kind = types.BlobTxType
	KindSetCode    Kind = types.SetCodeTxType
	// KindDeposit is the L2 deposit transaction type, created by the settlement layer.
	KindDeposit Kind = 0x7e
)

func (k Kind) String() string {
	switch k {
	case KindLegacy:
		return "legacy"
	case KindAccessList:
		return "access_list"
	case KindDynamicFee:
		return "dynamic_fee"
	case KindBlob:
		return "blob"
	case KindSetCode:
		return "set_code"
	case KindDeposit:
		return "deposit"
	default:
		return fmt.Sprintf("unknown(0x%x)", uint8(k))
	}
}

// TxData is the closed set of canonical transaction payloads.
type TxData interface {
	kind() Kind
}

// LegacyTx is a pre-EIP-2718 transaction.
type LegacyTx struct {
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       *common.Address
	Value    *big.Int
	Data     []byte
	V, R, S  *big.Int
}

// AccessListTx is an EIP-2930 transaction.
type AccessListTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasPrice   *big.Int
	Gas        uint64
	To         *common.Address
	Value      *big.Int
	Data       []byte
	AccessList types.AccessList
	V, R, S    *big.Int
}

// DynamicFeeTx is an EIP-1559 transaction.
type DynamicFeeTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	To         *common.Address
	Value      *big.Int
	Data       []byte
	AccessList types.AccessList
	V, R, S    *big.Int
}

// BlobTx is an EIP-4844 transaction. Sidecars are never part of the canonical form.
type BlobTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	To         common.Address
	Value      *big.Int
	Data       []byte
	AccessList types.AccessList
	BlobFeeCap *big.Int
	BlobHashes []common.Hash
	V, R, S    *big.Int
}

// SetCodeTx is an EIP-7702 transaction.
type SetCodeTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	To         common.Address
	Value      *big.Int
	Data       []byte
	AccessList types.AccessList
	AuthList   []types.SetCodeAuthorization
	V, R, S    *big.Int
}

// DepositTx is a settlement-layer deposit. It carries its sender and no signature.
type DepositTx struct {
	SourceHash          common.Hash
	From                common.Address
	To                  *common.Address
	Mint                *big.Int
	Value               *big.Int
	Gas                 uint64
	IsSystemTransaction bool
	Data                []byte
}

func (*LegacyTx) kind() Kind     { return KindLegacy }
func (*AccessListTx) kind() Kind { return KindAccessList }
func (*DynamicFeeTx) kind() Kind { return KindDynamicFee }
func (*BlobTx) kind() Kind       { return KindBlob }
func (*SetCodeTx) kind() Kind    { return KindSetCode }
func (*DepositTx) kind() Kind    { return KindDeposit }

// Transaction is a sealed canonical transaction: the payload plus its hash and EIP-2718 encoding.
type Transaction struct {
	inner   TxData
	hash    common.Hash
	encoded []byte
}

// NewTransaction seals inner, computing its encoding and hash once.
func NewTransaction(inner TxData) (*Transaction, error) {
	if inner == nil {
		return nil, errors.New("nil transaction payload")
	}
	encoded, err := encode(inner)
	if err != nil {
		return nil, fmt.Errorf("encode %s transaction: %w", inner.kind(), err)
	}
	return &Transaction{
		inner:   inner,
		hash:    crypto.Keccak256Hash(encoded),
		encoded: encoded,
	}, nil
}

// Inner returns the typed payload for exhaustive matching.
func (tx *Transaction) Inner() TxData { return tx.inner }

// Kind returns the transaction type tag.
func (tx *Transaction) Kind() Kind { return tx.inner.kind() }

// Type returns the EIP-2718 type byte.
func (tx *Transaction) Type() uint8 { return uint8(tx.inner.kind()) }

// Hash returns the canonical transaction hash.
func (tx *Transaction) Hash() common.Hash { return tx.hash }

// MarshalBinary returns the EIP-2718 encoding.
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	return common.CopyBytes(tx.encoded), nil
}

// ChainID returns the chain id of typed transactions; nil for legacy and deposit transactions.
func (tx *Transaction) ChainID() *big.Int {
	switch t := tx.inner.(type) {
	case *AccessListTx:
		return copyBig(t.ChainID)
	case *DynamicFeeTx:
		return copyBig(t.ChainID)
	case *BlobTx:
		return copyBig(t.ChainID)
	case *SetCodeTx:
		return copyBig(t.ChainID)
	default:
		return nil
	}
}

func (tx *Transaction) Nonce() uint64 {
	switch t := tx.inner.(type) {
	case *LegacyTx:
		return t.Nonce
	case *AccessListTx:
		return t.Nonce
	case *DynamicFeeTx:
		return t.Nonce
	case *BlobTx:
		return t.Nonce
	case *SetCodeTx:
		return t.Nonce
	default:
		return 0
	}
}

func (tx *Transaction) Gas() uint64 {
	switch t := tx.inner.(type) {
	case *LegacyTx:
		return t.Gas
	case *AccessListTx:
		return t.Gas
	case *DynamicFeeTx:
		return t.Gas
	case *BlobTx:
		return t.Gas
	case *SetCodeTx:
		return t.Gas
	case *DepositTx:
		return t.Gas
	default:
		return 0
	}
}

// GasPrice returns the flat gas price. Fee-market transactions report their max fee per gas,
// deposits report zero.
func (tx *Transaction) GasPrice() *big.Int {
	switch t := tx.inner.(type) {
	case *LegacyTx:
		return copyBig(t.GasPrice)
	case *AccessListTx:
		return copyBig(t.GasPrice)
	case *DepositTx:
		return new(big.Int)
	default:
		return tx.GasFeeCap()
	}
}

// GasFeeCap returns the max fee per gas, or nil for transactions outside the fee market.
func (tx *Transaction) GasFeeCap() *big.Int {
	switch t := tx.inner.(type) {
	case *DynamicFeeTx:
		return copyBig(t.GasFeeCap)
	case *BlobTx:
		return copyBig(t.GasFeeCap)
	case *SetCodeTx:
		return copyBig(t.GasFeeCap)
	default:
		return nil
	}
}

// GasTipCap returns the max priority fee per gas, or nil for transactions outside the fee market.
func (tx *Transaction) GasTipCap() *big.Int {
	switch t := tx.inner.(type) {
	case *DynamicFeeTx:
		return copyBig(t.GasTipCap)
	case *BlobTx:
		return copyBig(t.GasTipCap)
	case *SetCodeTx:
		return copyBig(t.GasTipCap)
	default:
		return nil
	}
}

// IsFeeMarket reports whether the transaction prices gas with a max fee and a priority fee.
func (tx *Transaction) IsFeeMarket() bool {
	switch tx.inner.(type) {
	case *DynamicFeeTx, *BlobTx, *SetCodeTx:
		return true
	default:
		return false
	}
}

// To returns the recipient, or nil for contract creation.
func (tx *Transaction) To() *common.Address {
	var to *common.Address
	switch t := tx.inner.(type) {
	case *LegacyTx:
		to = t.To
	case *AccessListTx:
		to = t.To
	case *DynamicFeeTx:
		to = t.To
	case *BlobTx:
		to = &t.To
	case *SetCodeTx:
		to = &t.To
	case *DepositTx:
		to = t.To
	}
	if to == nil {
		return nil
	}
	cpy := *to
	return &cpy
}

func (tx *Transaction) Value() *big.Int {
	var v *big.Int
	switch t := tx.inner.(type) {
	case *LegacyTx:
		v = t.Value
	case *AccessListTx:
		v = t.Value
	case *DynamicFeeTx:
		v = t.Value
	case *BlobTx:
		v = t.Value
	case *SetCodeTx:
		v = t.Value
	case *DepositTx:
		v = t.Value
	}
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

func (tx *Transaction) Data() []byte {
	switch t := tx.inner.(type) {
	case *LegacyTx:
		return common.CopyBytes(t.Data)
	case *AccessListTx:
		return common.CopyBytes(t.Data)
	case *DynamicFeeTx:
		return common.CopyBytes(t.Data)
	case *BlobTx:
		return common.CopyBytes(t.Data)
	case *SetCodeTx:
		return common.CopyBytes(t.Data)
	case *DepositTx:
		return common.CopyBytes(t.Data)
	default:
		return nil
	}
}

// AccessList returns the EIP-2930 access list of typed transactions.
func (tx *Transaction) AccessList() (types.AccessList, bool) {
	switch t := tx.inner.(type) {
	case *AccessListTx:
		return t.AccessList, true
	case *DynamicFeeTx:
		return t.AccessList, true
	case *BlobTx:
		return t.AccessList, true
	case *SetCodeTx:
		return t.AccessList, true
	default:
		return nil, false
	}
}

// BlobHashes returns the versioned blob hashes of blob transactions.
func (tx *Transaction) BlobHashes() []common.Hash {
	if t, ok := tx.inner.(*BlobTx); ok {
		return append([]common.Hash(nil), t.BlobHashes...)
	}
	return nil
}

// BlobGasFeeCap returns the max fee per blob gas of blob transactions.
func (tx *Transaction) BlobGasFeeCap() *big.Int {
	if t, ok := tx.inner.(*BlobTx); ok {
		return copyBig(t.BlobFeeCap)
	}
	return nil
}

// AuthList returns the EIP-7702 authorizations of set-code transactions.
func (tx *Transaction) AuthList() []types.SetCodeAuthorization {
	if t, ok := tx.inner.(*SetCodeTx); ok {
		return append([]types.SetCodeAuthorization(nil), t.AuthList...)
	}
	return nil
}

// RawSignature returns V, R, S. Deposits have no signature and report ok == false.
func (tx *Transaction) RawSignature() (v, r, s *big.Int, ok bool) {
	switch t := tx.inner.(type) {
	case *LegacyTx:
		return copyBig(t.V), copyBig(t.R), copyBig(t.S), true
	case *AccessListTx:
		return copyBig(t.V), copyBig(t.R), copyBig(t.S), true
	case *DynamicFeeTx:
		return copyBig(t.V), copyBig(t.R), copyBig(t.S), true
	case *BlobTx:
		return copyBig(t.V), copyBig(t.R), copyBig(t.S), true
	case *SetCodeTx:
		return copyBig(t.V), copyBig(t.R), copyBig(t.S), true
	default:
		return nil, nil, nil, false
	}
}

// Deposit returns the deposit payload when the transaction is a deposit.
func (tx *Transaction) Deposit() (DepositTx, bool) {
	t, ok := tx.inner.(*DepositTx)
	if !ok {
		return DepositTx{}, false
	}
	return *t, true
}

// Recovered pairs a transaction with the sender authenticated upstream. From is nil when unknown.
type Recovered struct {
	Tx   *Transaction
	From *common.Address
}

// WithSender is a convenience constructor for Recovered.
func WithSender(tx *Transaction, from common.Address) Recovered {
	return Recovered{Tx: tx, From: &from}
}

type depositRLP struct {
	SourceHash          common.Hash
	From                common.Address
	To                  *common.Address `rlp:"nil"`
	Mint                *big.Int        `rlp:"nil"`
	Value               *big.Int
	Gas                 uint64
	IsSystemTransaction bool
	Data                []byte
}

func encode(inner TxData) ([]byte, error) {
	switch t := inner.(type) {
	case *LegacyTx:
		return types.NewTx(&types.LegacyTx{
			Nonce: t.Nonce, GasPrice: t.GasPrice, Gas: t.Gas, To: t.To, Value: t.Value, Data: t.Data,
			V: t.V, R: t.R, S: t.S,
		}).MarshalBinary()
	case *AccessListTx:
		return types.NewTx(&types.AccessListTx{
			ChainID: t.ChainID, Nonce: t.Nonce, GasPrice: t.GasPrice, Gas: t.Gas, To: t.To, Value: t.Value,
			Data: t.Data, AccessList: t.AccessList, V: t.V, R: t.R, S: t.S,
		}).MarshalBinary()
	case *DynamicFeeTx:
		return types.NewTx(&types.DynamicFeeTx{
			ChainID: t.ChainID, Nonce: t.Nonce, GasTipCap: t.GasTipCap, GasFeeCap: t.GasFeeCap, Gas: t.Gas,
			To: t.To, Value: t.Value, Data: t.Data, AccessList: t.AccessList, V: t.V, R: t.R, S: t.S,
		}).MarshalBinary()
	case *BlobTx:
		u, err := toUint256(t.ChainID, t.GasTipCap, t.GasFeeCap, t.Value, t.BlobFeeCap, t.V, t.R, t.S)
		if err != nil {
			return nil, err
		}
		return types.NewTx(&types.BlobTx{
			ChainID: u[0], Nonce: t.Nonce, GasTipCap: u[1], GasFeeCap: u[2], Gas: t.Gas, To: t.To,
			Value: u[3], Data: t.Data, AccessList: t.AccessList, BlobFeeCap: u[4], BlobHashes: t.BlobHashes,
			V: u[5], R: u[6], S: u[7],
		}).MarshalBinary()
	case *SetCodeTx:
		u, err := toUint256(t.ChainID, t.GasTipCap, t.GasFeeCap, t.Value, t.V, t.R, t.S)
		if err != nil {
			return nil, err
		}
		return types.NewTx(&types.SetCodeTx{
			ChainID: u[0], Nonce: t.Nonce, GasTipCap: u[1], GasFeeCap: u[2], Gas: t.Gas, To: t.To,
			Value: u[3], Data: t.Data, AccessList: t.AccessList, AuthList: t.AuthList,
			V: u[4], R: u[5], S: u[6],
		}).MarshalBinary()
	case *DepositTx:
		value := t.Value
		if value == nil {
			value = new(big.Int)
		}
		payload, err := rlp.EncodeToBytes(&depositRLP{
			SourceHash:          t.SourceHash,
			From:                t.From,
			To:                  t.To,
			Mint:                t.Mint,
			Value:               value,
			Gas:                 t.Gas,
			IsSystemTransaction: t.IsSystemTransaction,
			Data:                t.Data,
		})
		if err != nil {
			return nil, err
		}
		return append([]byte{byte(KindDeposit)}, payload...), nil
	default:
		return nil, fmt.Errorf("unsupported payload %T", inner)
	}
}

func toUint256(values ...*big.Int) ([]*uint256.Int, error) {
	out := make([]*uint256.Int, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = new(uint256.Int)
			continue
		}
		if v.Sign() < 0 {
			return nil, fmt.Errorf("negative value %s", v)
		}
		u, overflow := uint256.FromBig(v)
		if overflow {
			return nil, fmt.Errorf("value %s overflows 256 bits", v)
		}
		out[i] = u
	}
	return out, nil
}

func copyBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
