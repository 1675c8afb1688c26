// Package main runs the eth namespace JSON-RPC proxy in front of an execution node.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	networks "github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/config"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/convert"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/upstream"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/metrics"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/service"
	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/transport"
	grpcMiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpcZap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	grpcRecovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpcCtxTags "github.com/grpc-ecosystem/go-grpc-middleware/tags"
	grpcPrometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var config struct {
	Network        string        `long:"network" env:"EVM_RPC_PROXY_NETWORK" description:"network profile" default:"ethereum"`
	NetworksFile   string        `long:"networks-file" env:"EVM_RPC_PROXY_NETWORKS_FILE" description:"yaml file with network profiles"`
	RPCURL         string        `long:"rpc-url" env:"EVM_RPC_PROXY_RPC_URL" description:"upstream node url, overrides the profile"`
	RPS            int           `long:"rps" env:"EVM_RPC_PROXY_RPS" description:"upstream requests per second, overrides the profile"`
	Addr           string        `long:"addr" env:"EVM_RPC_PROXY_ADDR" description:"json-rpc http addr" default:":8545"`
	GRPCAddr       string        `long:"grpc-addr" env:"EVM_RPC_PROXY_GRPC_ADDR" description:"grpc health addr" default:":8546"`
	HealthInterval time.Duration `long:"health-interval" env:"EVM_RPC_PROXY_HEALTH_INTERVAL" description:"upstream health check interval" default:"10s"`
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
	grpcZap.ReplaceGrpcLoggerV2(logger)
	if _, err := flags.ParseArgs(&config, os.Args); err != nil {
		logger.Fatal("Failed to parse arguments", zap.Error(err))
	}

	network, err := networks.Select(config.NetworksFile, config.Network, config.RPCURL, config.RPS)
	if err != nil {
		logger.Fatal("Failed to select network", zap.Error(err))
	}
	logger = logger.With(zap.String("network", network.Name), zap.Stringer("variant", network.Variant))

	client, err := upstream.Dial(ctx, network.RPCURL, network.ChainIDBig(), network.RPS, metrics.NewRPCClient(network.Name))
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

	rpcServer := rpc.NewServer()
	defer rpcServer.Stop()
	eth := service.NewEthService(logger.Named("eth"), client, converter, metrics.NewService(network.Name))
	if err := rpcServer.RegisterName("eth", eth); err != nil {
		logger.Fatal("Register eth service", zap.Error(err))
	}

	chain := []grpc.UnaryServerInterceptor{
		grpcRecovery.UnaryServerInterceptor(),
		grpcCtxTags.UnaryServerInterceptor(),
		grpcPrometheus.UnaryServerInterceptor,
		grpcZap.UnaryServerInterceptor(logger),
	}
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(grpcMiddleware.ChainUnaryServer(chain...)),
	)
	grpcPrometheus.EnableHandlingTimeHistogram()

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	grpcPrometheus.Register(grpcServer)

	reporter := transport.NewHealthReporter(logger.Named("health"), client, healthServer, config.HealthInterval)
	go func() {
		_ = reporter.Run(ctx)
	}()

	socket, err := net.Listen("tcp", config.GRPCAddr)
	if err != nil {
		logger.Fatal("net.Listen error", zap.Error(err))
	}
	go func() {
		if serveErr := grpcServer.Serve(socket); serveErr != nil {
			logger.Fatal("Start GRPC server", zap.Error(serveErr))
		}
	}()
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down gRPC server")
		grpcServer.GracefulStop()
	}()

	mux := http.NewServeMux()
	mux.Handle("/", rpcServer)
	mux.Handle("/ws", rpcServer.WebsocketHandler([]string{"*"}))
	mux.Handle("/metrics", promhttp.Handler())

	s := &http.Server{
		Addr:              config.Addr,
		Handler:           cors.Default().Handler(mux),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down the http server")
		if err := s.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("Starting HTTP server", zap.String("addr", config.Addr))
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Failed to listen and serve", zap.Error(err))
	}
}
