// Package transport exposes gRPC/HTTP handlers.
package transport

import (
	"context"
	"sync"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/clock"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

// HeadSource reports the latest block number of the upstream node.
type HeadSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// EthService is the health service name of the JSON-RPC namespace.
const EthService = "eth"

// HealthReporter checks the upstream node and publishes the result on a gRPC health server.
// The overall status ("") and EthService always carry the same value.
type HealthReporter struct {
	logger   *zap.Logger
	source   HeadSource
	server   *health.Server
	interval time.Duration
	timeout  time.Duration
	sleep    func(context.Context, time.Duration) error

	mu     sync.Mutex
	status healthpb.HealthCheckResponse_ServingStatus
	head   uint64
}

// NewHealthReporter returns a reporter probing source every interval.
func NewHealthReporter(logger *zap.Logger, source HeadSource, server *health.Server, interval time.Duration) *HealthReporter {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &HealthReporter{
		logger:   logger,
		source:   source,
		server:   server,
		interval: interval,
		timeout:  interval,
		sleep:    clock.SleepWithContext,
		status:   healthpb.HealthCheckResponse_UNKNOWN,
	}
}

// Check queries the upstream once and publishes the outcome.
func (h *HealthReporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	head, err := h.source.BlockNumber(ctx)
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	h.mu.Lock()
	prev := h.status
	h.status = status
	if err == nil {
		h.head = head
	}
	h.mu.Unlock()

	if prev != status {
		if err != nil {
			h.logger.Warn("upstream unhealthy", zap.Error(err))
		} else {
			h.logger.Info("upstream healthy", zap.Uint64("head", head))
		}
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(EthService, status)
	return status
}

// Head returns the last block number observed by a successful check.
func (h *HealthReporter) Head() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.head
}

// Run checks until ctx is canceled, then marks every service as shutting down.
func (h *HealthReporter) Run(ctx context.Context) error {
	for {
		h.Check(ctx)
		if err := h.sleep(ctx, h.interval); err != nil {
			h.server.Shutdown()
			return err
		}
	}
}
