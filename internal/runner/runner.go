// internal/runner/runner.go
package runner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/fossrlabs/fossr-engine/internal/ledger"
	"github.com/fossrlabs/fossr-engine/internal/market"
)

// marketService is the slice of the engine the runner drives.
type marketService interface {
	State() market.State
	Award(ctx context.Context, caller, recipient solana.PublicKey) (*market.WinnerRecord, error)
	ResetCycle(ctx context.Context, caller solana.PublicKey) error
}

// holderSource lists accounts eligible for the airdrop.
type holderSource interface {
	Holders(ctx context.Context, minBalance uint64) ([]ledger.Holder, error)
}

// Runner is the airdrop authority loop. Each tick it checks the cycle
// boundary, draws one winner from the eligible holders and pays the pot,
// then re-arms the cycle once the boundary has passed.
type Runner struct {
	service   marketService
	holders   holderSource
	authority solana.PublicKey
	interval  time.Duration
	retries   int
	logger    *zap.Logger

	now  func() int64
	pick func(n int) int
}

type Config struct {
	Service   marketService
	Holders   holderSource
	Authority solana.PublicKey
	Interval  time.Duration
	Retries   int
	Logger    *zap.Logger
}

func New(cfg *Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Runner{
		service:   cfg.Service,
		holders:   cfg.Holders,
		authority: cfg.Authority,
		interval:  interval,
		retries:   cfg.Retries,
		logger:    logger.Named("airdrop_runner"),
		now:       func() int64 { return time.Now().Unix() },
		pick:      rand.Intn,
	}
}

// Run polls until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("Airdrop runner started",
		zap.String("authority", r.authority.String()),
		zap.Duration("poll_interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Airdrop runner stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.Tick(ctx); err != nil {
				r.logger.Error("Airdrop cycle step failed", zap.Error(err))
			}
		}
	}
}

// Tick executes one poll step: re-arm a spent cycle, or draw and pay a
// winner when the boundary has passed and the pot is funded.
func (r *Runner) Tick(ctx context.Context) error {
	state := r.service.State()
	now := r.now()

	if now < state.NextCycleBoundary {
		return nil
	}

	if state.CycleAwarded {
		if err := r.service.ResetCycle(ctx, r.authority); err != nil {
			return fmt.Errorf("failed to re-arm airdrop cycle: %w", err)
		}
		r.logger.Info("Airdrop cycle re-armed",
			zap.Int64("previous_boundary", state.NextCycleBoundary))
		return nil
	}

	if state.IncentivePot == 0 {
		r.logger.Debug("Airdrop boundary reached with empty pot, skipping draw")
		return nil
	}

	winner, err := r.drawWinner(ctx)
	if err != nil {
		return err
	}
	if winner == nil {
		r.logger.Info("No eligible holders for airdrop, pot carries forward",
			zap.Uint64("pot", state.IncentivePot))
		return nil
	}

	record, err := r.awardWithRetry(ctx, winner.Owner)
	if err != nil {
		return fmt.Errorf("failed to pay airdrop: %w", err)
	}

	r.logger.Info("Airdrop paid",
		zap.String("winner", record.Winner.String()),
		zap.Uint64("amount", record.Amount),
		zap.Int("eligible_holders", winner.poolSize))
	return nil
}

type draw struct {
	ledger.Holder
	poolSize int
}

func (r *Runner) drawWinner(ctx context.Context) (*draw, error) {
	holders, err := r.holders.Holders(ctx, market.MinAirdropEligible)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible holders: %w", err)
	}
	if len(holders) == 0 {
		return nil, nil
	}
	selected := holders[r.pick(len(holders))]
	return &draw{Holder: selected, poolSize: len(holders)}, nil
}

func (r *Runner) awardWithRetry(ctx context.Context, winner solana.PublicKey) (*market.WinnerRecord, error) {
	operation := func() (*market.WinnerRecord, error) {
		record, err := r.service.Award(ctx, r.authority, winner)
		if err != nil {
			// Rule violations will not heal on retry.
			if errors.Is(err, market.ErrUnauthorized) ||
				errors.Is(err, market.ErrAirdropAlreadyExecuted) ||
				errors.Is(err, market.ErrNotEligibleForAirdrop) {
				return nil, backoff.Permanent(err)
			}
			r.logger.Warn("Airdrop payment attempt failed, retrying", zap.Error(err))
			return nil, err
		}
		return record, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(r.retries+1)),
	)
}
