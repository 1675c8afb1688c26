package service

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Upstream serves canonical objects from the execution node. Implementations return
	// ethereum.NotFound for unknown objects.
	Upstream interface {
		BlockNumber(ctx context.Context) (uint64, error)
		BlockByNumber(ctx context.Context, number rpc.BlockNumber) (*model.Block, error)
		BlockByHash(ctx context.Context, hash common.Hash) (*model.Block, error)
		BlockReceipts(ctx context.Context, hash common.Hash) ([]*model.Receipt, *model.BlockEnv, error)
		TransactionByHash(ctx context.Context, hash common.Hash) (model.Recovered, *common.Hash, error)
		TransactionCount(ctx context.Context, account common.Address, number rpc.BlockNumber) (uint64, error)
		Code(ctx context.Context, account common.Address, number rpc.BlockNumber) ([]byte, error)
	}
	CallMetrics interface {
		ObserveCall(method string, err error, started time.Time)
	}
)
