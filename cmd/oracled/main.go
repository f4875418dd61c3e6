package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xxusd-labs/lst-oracle/pkg/oracle"
	"github.com/xxusd-labs/lst-oracle/pkg/oracle/config"
	"github.com/xxusd-labs/lst-oracle/pkg/oracle/db"
	"github.com/xxusd-labs/lst-oracle/pkg/oracle/logger"
	"github.com/xxusd-labs/lst-oracle/pkg/oracle/store"
	"github.com/xxusd-labs/lst-oracle/pkg/oracle/switchboard"
)

type oracleEnvConfig struct {
	RPCEndpoint      string
	ProgramID        solana.PublicKey
	Authority        solana.PublicKey
	FeedProvider     solana.PublicKey
	BatchFeedAccount solana.PublicKey
	SOLFeedAccount   solana.PublicKey
	PollInterval     time.Duration
	MetricsAddr      string
}

func parseEnvConfig() (oracleEnvConfig, error) {
	cfg := oracleEnvConfig{
		PollInterval: time.Minute,
		MetricsAddr:  ":9090",
	}

	var err error
	if cfg.RPCEndpoint = os.Getenv("ORACLE_RPC_ENDPOINT"); cfg.RPCEndpoint == "" {
		return cfg, fmt.Errorf("env var ORACLE_RPC_ENDPOINT is required")
	}
	for envVarName, target := range map[string]*solana.PublicKey{
		"ORACLE_PROGRAM_ID":         &cfg.ProgramID,
		"ORACLE_AUTHORITY":          &cfg.Authority,
		"ORACLE_FEED_PROVIDER":      &cfg.FeedProvider,
		"ORACLE_BATCH_FEED_ACCOUNT": &cfg.BatchFeedAccount,
		"ORACLE_SOL_FEED_ACCOUNT":   &cfg.SOLFeedAccount,
	} {
		value := os.Getenv(envVarName)
		if value == "" {
			return cfg, fmt.Errorf("env var %s is required", envVarName)
		}
		if *target, err = solana.PublicKeyFromBase58(value); err != nil {
			return cfg, fmt.Errorf("failed to parse env var %s: %w", envVarName, err)
		}
	}
	if value, isPresent := os.LookupEnv("ORACLE_POLL_INTERVAL"); isPresent {
		if cfg.PollInterval, err = time.ParseDuration(value); err != nil {
			return cfg, fmt.Errorf("failed to parse env var ORACLE_POLL_INTERVAL, see https://pkg.go.dev/time#ParseDuration: %w", err)
		}
	}
	if value, isPresent := os.LookupEnv("ORACLE_METRICS_ADDR"); isPresent {
		cfg.MetricsAddr = value
	}
	return cfg, nil
}

func main() {
	baseLog, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer func() { _ = baseLog.Sync() }()
	lggr := logger.Wrap(baseLog.With(zap.String("project", "lst-oracle")))

	envCfg, err := parseEnvConfig()
	if err != nil {
		lggr.Fatalf("failed to parse oracle config: %s", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(envCfg.MetricsAddr, nil); err != nil && err != http.ErrServerClosed {
			lggr.Errorf("metrics server: %s", err)
		}
	}()

	cfg := config.NewConfig(db.OracleCfg{}, lggr)
	ora := oracle.New(cfg, lggr)
	if err := ora.Initialize(envCfg.Authority, envCfg.FeedProvider); err != nil {
		lggr.Fatalf("failed to initialize oracle: %s", err)
	}

	loader := switchboard.NewLoader(envCfg.RPCEndpoint, envCfg.FeedProvider)
	accounts := store.NewMemory()

	lggr.Infof("polling feeds every %s", envCfg.PollInterval)
	tick := time.After(0)
	for {
		select {
		case <-ctx.Done():
			lggr.Infof("shutting down")
			return
		case <-tick:
			start := time.Now()
			pollOnce(ctx, lggr, ora, loader, accounts, envCfg)
			tick = time.After(envCfg.PollInterval - time.Since(start))
		}
	}
}

func pollOnce(ctx context.Context, lggr logger.Logger, ora *oracle.Oracle, loader *switchboard.Loader, accounts store.Storage, envCfg oracleEnvConfig) {
	if feed, err := loader.LoadFeed(ctx, envCfg.BatchFeedAccount, rpc.CommitmentConfirmed); err != nil {
		lggr.Errorf("failed to load batch feed: %s", err)
	} else if err := ora.UpdateAll(envCfg.Authority, feed); err != nil {
		lggr.Warnf("batch update rejected: %s", err)
	}

	if feed, err := loader.LoadFeed(ctx, envCfg.SOLFeedAccount, rpc.CommitmentConfirmed); err != nil {
		lggr.Errorf("failed to load SOL feed: %s", err)
	} else if err := ora.UpdateSOLPrice(envCfg.Authority, feed); err != nil {
		lggr.Warnf("SOL update rejected: %s", err)
	}

	header, data := ora.Snapshot()
	if err := store.Save(accounts, envCfg.ProgramID, header, data); err != nil {
		lggr.Errorf("failed to persist oracle state: %s", err)
	}
}
