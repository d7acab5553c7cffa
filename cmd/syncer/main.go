package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/matchsync/internal/app"
	"github.com/riskibarqy/matchsync/internal/config"
	"github.com/riskibarqy/matchsync/internal/observability"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	inv, err := parseInvocation(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printUsage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	if inv.SeasonID == 0 {
		inv.SeasonID = cfg.SyncDefaultSeasonID
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "command", inv.Command)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	tel, err := observability.Start(cfg, inv.Command, logger)
	if err != nil {
		logger.Error("start telemetry", "error", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			logger.Warn("shutdown telemetry", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger, app.Options{Memory: inv.Memory})
	if err != nil {
		logger.Error("build app", "error", err)
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close app", "error", err)
		}
	}()

	started := time.Now()
	ctx, endTrace := tel.Trace(ctx)
	result, err := dispatch(ctx, a, inv)
	endTrace(err)
	if writeErr := writeResult(os.Stdout, result); writeErr != nil {
		logger.Error("write result", "error", writeErr)
		return 1
	}
	if err != nil {
		logger.ErrorContext(ctx, "command failed", "error", err, "duration_ms", time.Since(started).Milliseconds())
		return 1
	}
	logger.InfoContext(ctx, "command finished", "duration_ms", time.Since(started).Milliseconds())
	return 0
}
