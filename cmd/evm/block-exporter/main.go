// Package main exports converted blocks and receipts as newline-delimited JSON or into ClickHouse.
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	networks "github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/config"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/convert"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/repository/clickhouse"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/upstream"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/exporter"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/metrics"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var config struct {
	Network        string `long:"network" env:"EVM_EXPORTER_NETWORK" description:"network profile" default:"ethereum"`
	NetworksFile   string `long:"networks-file" env:"EVM_EXPORTER_NETWORKS_FILE" description:"yaml file with network profiles"`
	RPCURL         string `long:"rpc-url" env:"EVM_EXPORTER_RPC_URL" description:"upstream node url, overrides the profile"`
	WSURL          string `long:"ws-url" env:"EVM_EXPORTER_WS_URL" description:"websocket url for new head notifications in follow mode"`
	RPS            int    `long:"rps" env:"EVM_EXPORTER_RPS" description:"upstream requests per second, overrides the profile"`
	From           uint64 `long:"from" env:"EVM_EXPORTER_FROM" description:"first block"`
	To             uint64 `long:"to" env:"EVM_EXPORTER_TO" description:"last block, defaults to the current head"`
	Follow         bool   `long:"follow" env:"EVM_EXPORTER_FOLLOW" description:"keep exporting new blocks after the range"`
	Confirmations  uint64 `long:"confirmations" env:"EVM_EXPORTER_CONFIRMATIONS" description:"blocks to stay behind the head in follow mode" default:"12"`
	Workers        int    `long:"workers" env:"EVM_EXPORTER_WORKERS" description:"concurrent block fetches" default:"8"`
	ChunkSize      uint64 `long:"chunk-size" env:"EVM_EXPORTER_CHUNK_SIZE" description:"blocks per chunk" default:"100"`
	FlushPerSecond int    `long:"flush-rps" env:"EVM_EXPORTER_FLUSH_RPS" description:"output flushes per second, 0 for unlimited"`
	Out            string `long:"out" env:"EVM_EXPORTER_OUT" description:"output file, stdout when empty"`
	ClickhouseDSN  string `long:"clickhouse-dsn" env:"EVM_EXPORTER_CLICKHOUSE_DSN" description:"store blocks in clickhouse instead of writing json lines"`
	Resume         bool   `long:"resume" env:"EVM_EXPORTER_RESUME" description:"start after the highest block stored in clickhouse"`
	MetricsAddr    string `long:"metrics-addr" env:"EVM_EXPORTER_METRICS_ADDR" description:"prometheus addr, disabled when empty"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()
	if _, err := flags.ParseArgs(&config, os.Args); err != nil {
		logger.Fatal("Failed to parse arguments", zap.Error(err))
	}

	network, err := networks.Select(config.NetworksFile, config.Network, config.RPCURL, config.RPS)
	if err != nil {
		logger.Fatal("Failed to select network", zap.Error(err))
	}
	logger = logger.With(zap.String("network", network.Name))

	rpcMetrics := metrics.NewRPCClient(network.Name)
	client, err := upstream.Dial(ctx, network.RPCURL, network.ChainIDBig(), network.RPS, rpcMetrics)
	if err != nil {
		logger.Fatal("Failed to dial upstream", zap.Error(err))
	}
	defer client.Close()
	if err := client.VerifyChainID(ctx); err != nil {
		logger.Fatal("Upstream chain mismatch", zap.Error(err))
	}

	converter, err := convert.New(network.Variant,
		convert.WithLogger(logger.Named("converter")),
		convert.WithMetrics(metrics.NewConverter(network.Name, network.Variant)),
	)
	if err != nil {
		logger.Fatal("Failed to create converter", zap.Error(err))
	}

	var sink exporter.Sink
	if config.ClickhouseDSN != "" {
		repo, err := clickhouse.NewRepository(config.ClickhouseDSN, network.Name, metrics.NewClickhouseRepository())
		if err != nil {
			logger.Fatal("Failed to open clickhouse", zap.Error(err))
		}
		defer func() {
			if err := repo.Close(); err != nil {
				logger.Error("Failed to close clickhouse", zap.Error(err))
			}
		}()
		if config.Resume {
			height, ok, err := repo.MaxBlockHeight(ctx)
			if err != nil {
				logger.Fatal("Failed to read stored height", zap.Error(err))
			}
			if ok && height >= config.From {
				config.From = height + 1
				logger.Info("Resuming after stored height", zap.Uint64("height", height))
			}
		}
		sink = repo
	} else {
		var out io.Writer = os.Stdout
		if config.Out != "" {
			f, err := os.OpenFile(config.Out, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				logger.Fatal("Failed to open output", zap.Error(err))
			}
			defer func() {
				if err := f.Close(); err != nil {
					logger.Error("Failed to close output", zap.Error(err))
				}
			}()
			out = f
		}
		sink = exporter.NewJSONLines(out)
	}

	if config.MetricsAddr != "" {
		go serveMetrics(ctx, config.MetricsAddr, logger)
	}

	opts := exporter.Options{
		WorkerCount:    config.Workers,
		ChunkSize:      config.ChunkSize,
		Confirmations:  config.Confirmations,
		FlushPerSecond: config.FlushPerSecond,
	}
	if config.Follow {
		opts.HeadSignal = headSignal(ctx, network, rpcMetrics, logger)
	}

	exp, err := exporter.New(client, converter, sink, metrics.NewExporter(network.Name), logger.Named("exporter"), opts)
	if err != nil {
		logger.Fatal("Failed to create exporter", zap.Error(err))
	}

	if !config.Follow {
		to := config.To
		if to == 0 {
			if to, err = client.BlockNumber(ctx); err != nil {
				logger.Fatal("Failed to fetch head", zap.Error(err))
			}
		}
		if to < config.From {
			logger.Info("Nothing to export", zap.Uint64("from", config.From), zap.Uint64("to", to))
			return
		}
		if err := exp.Export(ctx, config.From, to); err != nil {
			logger.Fatal("Export failed", zap.Error(err))
		}
		logger.Info("Export finished", zap.Uint64("from", config.From), zap.Uint64("to", to))
		return
	}

	if err := exp.Follow(ctx, config.From); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Follow failed", zap.Error(err))
	}
	logger.Info("Exporter stopped")
}

// headSignal subscribes to new heads over config.WSURL. Without it, or when the subscription
// cannot be set up, follow mode polls.
func headSignal(ctx context.Context, network networks.Network, rpcMetrics upstream.RPCMetrics, logger *zap.Logger) <-chan struct{} {
	if config.WSURL == "" {
		return nil
	}
	ws, err := upstream.Dial(ctx, config.WSURL, network.ChainIDBig(), 0, rpcMetrics)
	if err != nil {
		logger.Warn("Head subscription unavailable, polling instead", zap.Error(err))
		return nil
	}
	go func() {
		<-ctx.Done()
		ws.Close()
	}()
	heads, err := ws.HeadSignal(ctx, logger.Named("heads"))
	if err != nil {
		logger.Warn("Head subscription unavailable, polling instead", zap.Error(err))
		return nil
	}
	return heads
}

func serveMetrics(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	s := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		if err := s.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shutdown metrics server", zap.Error(err))
		}
	}()
	logger.Info("Starting metrics server", zap.String("addr", addr))
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Failed to serve metrics", zap.Error(err))
	}
}
