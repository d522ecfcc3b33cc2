package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/apollosolutions/subgraph-mock/internal/config"
	"github.com/apollosolutions/subgraph-mock/internal/federation"
	"github.com/apollosolutions/subgraph-mock/internal/httpapi"
	"github.com/apollosolutions/subgraph-mock/internal/state"
	"github.com/apollosolutions/subgraph-mock/pkg/logger"
)

func main() {
	var configPath, schemaPath string

	root := &cobra.Command{
		Use:   "subgraphmock",
		Short: "Serve a programmable mock of a federated GraphQL subgraph",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, schemaPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to a YAML config file (optional)")
	root.Flags().StringVar(&schemaPath, "schema", "", "path to the subgraph's SDL file (required)")
	root.MarkFlagRequired("schema")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, schemaPath string) error {
	zapLogger, err := logger.NewLogger(logger.Config{Level: os.Getenv("LOG_LEVEL"), Format: "console", OutputPath: "stdout"})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	log := zapLogger.Desugar()

	schemaBytes, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("read schema file: %w", err)
	}
	bundle, err := federation.Load(string(schemaBytes), log)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	var configBytes []byte
	if configPath != "" {
		configBytes, err = os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
	}
	port, cfg, err := config.Parse(configBytes, log)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	configState := state.NewConfig(cfg)
	schemaState := state.NewSchema(bundle)

	// start is the process-lifetime reference instant every latency
	// generator computes its wave offset against; it must never be
	// recomputed per request or per config reload.
	start := time.Now()

	app := httpapi.NewServer(configState, schemaState, start, zapLogger)

	watcherCtx, cancelWatcher := context.WithCancel(context.Background())
	watcher := federation.NewWatcher(schemaPath, string(schemaBytes), schemaState.Set, log)
	go watcher.Run(watcherCtx)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", port)
		log.Info("starting subgraph mock", zap.String("addr", addr), zap.String("schema", schemaPath))
		if err := app.Listen(addr); err != nil {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		cancelWatcher()
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
		log.Info("shutting down")
	}

	cancelWatcher()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Warn("server forced to shutdown", zap.Error(err))
	}
	return nil
}
