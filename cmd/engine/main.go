// cmd/engine/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fossrlabs/fossr-engine/internal/api"
	"github.com/fossrlabs/fossr-engine/internal/config"
	"github.com/fossrlabs/fossr-engine/internal/engine"
	"github.com/fossrlabs/fossr-engine/internal/entropy"
	"github.com/fossrlabs/fossr-engine/internal/events"
	"github.com/fossrlabs/fossr-engine/internal/ledger"
	"github.com/fossrlabs/fossr-engine/internal/logger"
	"github.com/fossrlabs/fossr-engine/internal/market"
	"github.com/fossrlabs/fossr-engine/internal/runner"
	"github.com/fossrlabs/fossr-engine/internal/storage"
	"github.com/fossrlabs/fossr-engine/internal/storage/postgres"
	"github.com/fossrlabs/fossr-engine/internal/wallet"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the engine configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Development = cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("Engine terminated", zap.Error(err))
	}
	log.Info("Engine stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	log.Info("Starting bonding-curve engine")

	authority, err := wallet.NewWallet(cfg.AuthorityKey)
	if err != nil {
		return fmt.Errorf("failed to load authority wallet: %w", err)
	}
	log.Info("Authority loaded", zap.String("pubkey", authority.String()))

	mint, err := resolveMint(cfg.TokenMint)
	if err != nil {
		return err
	}

	tokens := ledger.NewTokenLedger(mint, log.Logger)
	vault := ledger.NewVault(log.Logger)
	vault.Bootstrap(cfg.VaultOpening)

	var source market.EntropySource
	if cfg.RPCEndpoint != "" {
		endpoints := strings.Split(cfg.RPCEndpoint, ",")
		rpcSource, err := entropy.NewRPCSource(endpoints, log.Logger)
		if err != nil {
			return fmt.Errorf("failed to build entropy source: %w", err)
		}
		source = rpcSource
		log.Info("Lock entropy sourced from RPC", zap.Strings("endpoints", endpoints))
	} else {
		source = entropy.NewStaticSource(nil)
		log.Warn("No RPC endpoint configured, lock entropy falls back to timestamps")
	}

	m, err := market.New(&market.Config{
		Owner:        authority.PublicKey,
		TokenMint:    mint,
		InitialPrice: cfg.InitialPrice,
		InitialPot:   cfg.InitialPot,
		Ledger:       tokens,
		Vault:        vault,
		Entropy:      source,
		Logger:       log.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize market: %w", err)
	}

	var store storage.Storage
	if cfg.PostgresURL != "" {
		store, err = postgres.NewStorage(cfg.PostgresURL, log.Logger)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
		if err := store.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("Postgres storage ready")
	} else {
		log.Warn("No postgres_url configured, running without persistence")
	}

	bus := events.NewBus(log.Logger, 256)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := bus.Shutdown(shutdownCtx); err != nil {
			log.Warn("Event bus shutdown incomplete", zap.Error(err))
		}
	}()

	service := engine.NewService(&engine.ServiceConfig{
		Market:  m,
		Storage: store,
		Bus:     bus,
		Logger:  log.Logger,
	})

	server := api.NewServer(&api.Config{
		Service:    service,
		Authority:  authority.PublicKey,
		ListenAddr: cfg.ListenAddr,
		Logger:     log.Logger,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx)
	})

	if cfg.RunnerEnabled {
		airdrop := runner.New(&runner.Config{
			Service:   service,
			Holders:   tokens,
			Authority: authority.PublicKey,
			Interval:  time.Duration(cfg.RunnerInterval) * time.Second,
			Retries:   cfg.RunnerRetries,
			Logger:    log.Logger,
		})
		g.Go(func() error {
			return airdrop.Run(ctx)
		})
	}

	return g.Wait()
}

// resolveMint parses the configured mint, or generates a fresh one for
// standalone runs where no deployed mint exists yet.
func resolveMint(raw string) (solana.PublicKey, error) {
	if raw == "" {
		mint := solana.NewWallet().PublicKey()
		return mint, nil
	}
	mint, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid token_mint: %w", err)
	}
	return mint, nil
}
