package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DispatchEngine/config"
	"DispatchEngine/log"
	"DispatchEngine/server"

	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dispatch-engine: %v\n", err)
		os.Exit(1)
	}
	if err := log.Init(cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "dispatch-engine: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	s := server.New(cfg)
	if err := s.Initialize(context.Background()); err != nil {
		log.L().Fatal("Initialization failed", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Serve()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.L().Info("Received signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.L().Error("Server stopped", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		log.L().Error("Shutdown finished with errors", zap.Error(err))
	}
}
