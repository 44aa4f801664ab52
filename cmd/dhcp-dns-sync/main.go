package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/grocky/dhcp-dns-sync/internal/domain"
	"github.com/grocky/dhcp-dns-sync/internal/metrics"
	"github.com/grocky/dhcp-dns-sync/internal/pfsense"
	"github.com/grocky/dhcp-dns-sync/internal/pihole"
	"github.com/grocky/dhcp-dns-sync/internal/reconcile"
	"github.com/grocky/dhcp-dns-sync/internal/verify"
)

func main() {
	// Variables already set in the environment win over .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
	}

	cfg, err := LoadConfig(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(os.Stderr, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	setupProfiling()
	code := run(ctx, cfg, logger)
	stopProfiling()
	os.Exit(code)
}

func newLogger(w io.Writer, cfg Config) *slog.Logger {
	logLevel := slog.LevelInfo
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: logLevel}

	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// run performs one sync and returns the process exit code.
func run(ctx context.Context, cfg Config, logger *slog.Logger) int {
	logger.Info("starting sync", "config", cfg)

	source := pfsense.New(pfsense.Config{
		BaseURL:     cfg.PfSenseURL(),
		ClientID:    cfg.PfSense.ClientID,
		ClientToken: cfg.PfSense.ClientToken,
		Interface:   cfg.PfSense.Interface,
		Domain:      cfg.Domain,
		Timeout:     cfg.Timeout,
		Insecure:    cfg.PfSense.Insecure,
	}, logger)

	target := pihole.New(pihole.Config{
		BaseURL:  cfg.PiholeURL(),
		Password: cfg.Pihole.Password,
		Timeout:  cfg.Timeout,
		Insecure: cfg.Pihole.Insecure,
	}, logger)

	syncCfg := reconcile.Config{
		Concurrency: cfg.Concurrency,
		DryRun:      cfg.DryRun,
	}
	if cfg.VerifyDNS != "" {
		syncCfg.Verifier = verify.New(cfg.VerifyDNS, 0, logger)
	}

	recorder := metrics.NewRecorder()
	start := time.Now()

	report, err := reconcile.NewSyncer(source, target, syncCfg, logger).Run(ctx)

	recorder.Observe(report, err, time.Since(start), time.Now())
	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if pushErr := recorder.Push(pushCtx, cfg.PushgatewayURL); pushErr != nil {
			logger.Warn("metrics push failed", "error", pushErr)
		}
		cancel()
	}

	switch {
	case domain.IsNoActions(err):
		logger.Info("no actions to perform",
			"source", report.SourceRecords,
			"target", report.TargetRecords,
		)
		return 0

	case err != nil:
		logger.Error("sync failed", "error", err, "failed", report.Failed())
		return 1

	case report.DryRun:
		logger.Info("dry run complete, no changes made", "actions", len(report.Actions))
		return 0
	}

	logger.Info("sync complete",
		"actions", len(report.Actions),
		"mismatches", len(report.Mismatches),
	)
	return 0
}
