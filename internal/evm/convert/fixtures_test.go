package convert

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/model"
)

var (
	alice    = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob      = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	emitter  = common.HexToAddress("0x00000000000000000000000000000000000e0e0e")
	transfer = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
)

func mustTx(t *testing.T, inner model.TxData) *model.Transaction {
	t.Helper()

	tx, err := model.NewTransaction(inner)
	if err != nil {
		t.Fatalf("NewTransaction() error = %v", err)
	}
	return tx
}

func mustConverter(t *testing.T, variant Variant, opts ...Option) *Converter {
	t.Helper()

	c, err := New(variant, opts...)
	if err != nil {
		t.Fatalf("New(%s) error = %v", variant, err)
	}
	return c
}

func legacyTx(nonce uint64) *model.LegacyTx {
	to := bob
	return &model.LegacyTx{
		Nonce:    nonce,
		GasPrice: big.NewInt(40),
		Gas:      21_000,
		To:       &to,
		Value:    big.NewInt(1_000),
		V:        big.NewInt(37),
		R:        big.NewInt(1),
		S:        big.NewInt(2),
	}
}

func dynamicFeeTx(nonce uint64, feeCap, tipCap int64) *model.DynamicFeeTx {
	to := bob
	return &model.DynamicFeeTx{
		ChainID:   big.NewInt(1),
		Nonce:     nonce,
		GasTipCap: big.NewInt(tipCap),
		GasFeeCap: big.NewInt(feeCap),
		Gas:       50_000,
		To:        &to,
		Value:     big.NewInt(7),
		Data:      []byte{0xca, 0xfe},
		AccessList: types.AccessList{
			{Address: emitter, StorageKeys: []common.Hash{transfer}},
		},
		V: big.NewInt(1),
		R: big.NewInt(3),
		S: big.NewInt(4),
	}
}

func blobTx(nonce uint64) *model.BlobTx {
	return &model.BlobTx{
		ChainID:    big.NewInt(1),
		Nonce:      nonce,
		GasTipCap:  big.NewInt(10),
		GasFeeCap:  big.NewInt(100),
		Gas:        21_000,
		To:         bob,
		Value:      big.NewInt(0),
		BlobFeeCap: big.NewInt(30),
		BlobHashes: []common.Hash{common.HexToHash("0x01aa"), common.HexToHash("0x01bb")},
		V:          big.NewInt(0),
		R:          big.NewInt(5),
		S:          big.NewInt(6),
	}
}

func depositTx() *model.DepositTx {
	to := bob
	return &model.DepositTx{
		SourceHash: common.HexToHash("0x5050"),
		From:       alice,
		To:         &to,
		Mint:       big.NewInt(1_000_000),
		Value:      big.NewInt(1_000_000),
		Gas:        100_000,
	}
}

func testHeader(baseFee int64) *model.Header {
	return model.NewHeader(&types.Header{
		ParentHash: common.HexToHash("0x01"),
		Number:     big.NewInt(1234),
		Difficulty: big.NewInt(0),
		GasLimit:   30_000_000,
		GasUsed:    100_000,
		Time:       1_700_000_000,
		BaseFee:    big.NewInt(baseFee),
	})
}

func testBlock(t *testing.T, txs ...model.TxData) *model.Block {
	t.Helper()

	b := &model.Block{Header: testHeader(50), Size: 1024}
	for _, inner := range txs {
		tx := mustTx(t, inner)
		if _, ok := inner.(*model.DepositTx); ok {
			b.Transactions = append(b.Transactions, model.Recovered{Tx: tx})
			continue
		}
		b.Transactions = append(b.Transactions, model.WithSender(tx, alice))
	}
	return b
}

func testReceipt(kind model.Kind, cumulative uint64, logs int) *model.Receipt {
	r := &model.Receipt{
		Kind:              kind,
		Status:            model.ReceiptStatusSuccessful,
		CumulativeGasUsed: cumulative,
	}
	for i := 0; i < logs; i++ {
		r.Logs = append(r.Logs, model.Log{
			Address: emitter,
			Topics:  []common.Hash{transfer},
			Data:    []byte{byte(i)},
		})
	}
	return r
}

func l1Env(n int) *model.BlockEnv {
	env := &model.BlockEnv{BlobBaseFee: big.NewInt(3)}
	scalar := uint64(1368)
	for i := 0; i < n; i++ {
		env.L1 = append(env.L1, &model.L1Fee{
			GasPrice:      big.NewInt(20),
			GasUsed:       big.NewInt(1600),
			Fee:           big.NewInt(32_000),
			BaseFeeScalar: &scalar,
		})
	}
	return env
}
