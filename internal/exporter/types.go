package exporter

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Source serves canonical blocks. Implementations return ethereum.NotFound for heights the
	// node does not have yet.
	Source interface {
		BlockNumber(ctx context.Context) (uint64, error)
		BlockByNumber(ctx context.Context, number rpc.BlockNumber) (*model.Block, error)
		BlockReceipts(ctx context.Context, hash common.Hash) ([]*model.Receipt, *model.BlockEnv, error)
	}
	// Sink persists converted records. Records arrive in ascending height order.
	Sink interface {
		Write(ctx context.Context, records []Record) error
	}
	Metrics interface {
		ObserveFetchBlock(err error, height uint64, started time.Time)
		ObserveWriteBatch(err error, blocks int, started time.Time)
		SetHead(height uint64)
		SetExported(height uint64)
	}
)
