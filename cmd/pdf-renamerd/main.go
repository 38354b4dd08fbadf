package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/pdf-renamer/internal/app"
	"github.com/joseph-ayodele/pdf-renamer/internal/async"
	"github.com/joseph-ayodele/pdf-renamer/internal/common"
	"github.com/joseph-ayodele/pdf-renamer/internal/ingest"
	"github.com/joseph-ayodele/pdf-renamer/internal/pipeline"
	"github.com/joseph-ayodele/pdf-renamer/internal/server"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (optional)")
		watchDir   = flag.String("watch", "", "register PDFs that appear in this directory (optional)")
		debounce   = flag.Duration("debounce", 750*time.Millisecond, "quiet period before a watched file is registered")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfigFile(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.HealthCheck(ctx); err != nil {
		logger.Error("DB health failed", "error", err)
		os.Exit(1)
	}
	logger.Info("DB health OK")

	// gRPC health + reflection for grpcurl
	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("grpc listen failed", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	go func() {
		logger.Info("gRPC serving", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve", "error", err)
		}
	}()

	// HTTP API
	h := server.NewHandler(server.Deps{
		Files:     a.Files,
		Ingestor:  a.Registrar,
		Processor: a.Pipeline,
		Exporter:  a.Exporter,
		Runner:    async.NewRunner(logger),
		Progress:  pipeline.NewProgress(),
		Health:    a.HealthCheck,
		Logger:    logger,
	})
	e := server.NewEcho(h)
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP serving", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	if *watchDir != "" {
		go func() {
			err := a.Registrar.Watch(ctx, ingest.WatchConfig{
				Roots:       []string{*watchDir},
				InitialScan: true,
				Debounce:    *debounce,
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("watch stopped", "dir", *watchDir, "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down...")
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	h.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
	fmt.Println("stopped.")
}
