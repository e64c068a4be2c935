// internal/market/market.go
package market

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenLedger is the fungible-asset collaborator. Every call may fail;
// the Market never commits local state before its transfers succeed.
type TokenLedger interface {
	Mint(ctx context.Context, to solana.PublicKey, amount uint64) error
	Burn(ctx context.Context, from solana.PublicKey, amount uint64) error
	Balance(ctx context.Context, holder solana.PublicKey) (uint64, error)
}

// Vault holds the lamport proceeds backing sell-side redemptions.
type Vault interface {
	Deposit(ctx context.Context, from solana.PublicKey, lamports uint64) error
	Withdraw(ctx context.Context, to solana.PublicKey, lamports uint64) error
	Balance(ctx context.Context) (uint64, error)
}

// EntropySource supplies a recent-hash fragment and a slot-style
// monotonic counter for the lock scheduler. A production source is
// backed by chain RPC; tests inject a fixed one.
type EntropySource interface {
	Fragment(ctx context.Context) (hash []byte, counter uint64, err error)
}

// Market owns one State instance and applies the public operations to it
// as atomic transitions. On chain each instruction ran with exclusive
// access to the state account; out here the mutex stands in for that.
type Market struct {
	mu      sync.Mutex
	state   State
	winner  *WinnerRecord
	ledger  TokenLedger
	vault   Vault
	entropy EntropySource
	logger  *zap.Logger

	now func() int64 // swapped out in tests
}

// Config carries everything New needs to initialize a market.
type Config struct {
	Owner        solana.PublicKey
	TokenMint    solana.PublicKey
	InitialPrice uint64
	InitialPot   uint64
	Ledger       TokenLedger
	Vault        Vault
	Entropy      EntropySource
	Logger       *zap.Logger
}

// New creates the market state and aligns the first cycle boundary.
func New(cfg *Config) (*Market, error) {
	if cfg.Ledger == nil || cfg.Vault == nil || cfg.Entropy == nil {
		return nil, fmt.Errorf("market: ledger, vault and entropy source are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	now := time.Now().Unix()
	m := &Market{
		state: State{
			Owner:              cfg.Owner,
			TokenMint:          cfg.TokenMint,
			CurrentPrice:       cfg.InitialPrice,
			NextCycleBoundary:  NextCycleBoundary(now),
			IncentivePot:       cfg.InitialPot,
			LastCycleTimestamp: now,
		},
		ledger:  cfg.Ledger,
		vault:   cfg.Vault,
		entropy: cfg.Entropy,
		logger:  logger.Named("market"),
		now:     func() int64 { return time.Now().Unix() },
	}

	m.logger.Info("Market initialized",
		zap.String("owner", cfg.Owner.String()),
		zap.String("token_mint", cfg.TokenMint.String()),
		zap.Uint64("initial_price", cfg.InitialPrice),
		zap.Uint64("initial_pot", cfg.InitialPot),
		zap.Int64("next_cycle_boundary", m.state.NextCycleBoundary))

	return m, nil
}

// Buy converts lamports into tokens at the current curve price, applies
// the fee split, assigns a tiered lock and steps the price up.
//
// All arithmetic for the post-trade state is done before the deposit and
// mint are requested, so a failed transfer aborts with nothing changed.
func (m *Market) Buy(ctx context.Context, buyer solana.PublicKey, nativeIn uint64) (*TradeReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	gross, err := QuoteBuy(m.state.CurrentPrice, nativeIn)
	if err != nil {
		return nil, err
	}
	fees, err := SplitBuy(gross)
	if err != nil {
		return nil, err
	}

	frag, counter, err := m.entropy.Fragment(ctx)
	if err != nil {
		// Scheduler falls back to the timestamp seed on a short fragment.
		m.logger.Warn("Entropy source unavailable, falling back to timestamp seed", zap.Error(err))
		frag, counter = nil, 0
	}
	lockSeconds := LockDuration(nativeIn, now, counter, frag)
	tier := TierFor(nativeIn)

	nextPrice, err := NextBuyPrice(m.state.CurrentPrice, nativeIn)
	if err != nil {
		return nil, err
	}
	totalBurned, err := checkedAdd(m.state.TotalBurned, fees.Burn)
	if err != nil {
		return nil, err
	}
	totalTrades, err := checkedAdd(m.state.TotalTrades, 1)
	if err != nil {
		return nil, err
	}
	pot, err := checkedAdd(m.state.IncentivePot, fees.Raffle)
	if err != nil {
		return nil, err
	}

	if err := m.vault.Deposit(ctx, buyer, nativeIn); err != nil {
		return nil, fmt.Errorf("vault deposit failed: %w", err)
	}
	// The burn share is simply never minted.
	if err := m.ledger.Mint(ctx, buyer, fees.NetToBuyer); err != nil {
		return nil, fmt.Errorf("token mint failed: %w", err)
	}

	m.state.CurrentPrice = nextPrice
	m.state.TotalBurned = totalBurned
	m.state.TotalTrades = totalTrades
	m.state.IncentivePot = pot

	receipt := &TradeReceipt{
		ID:        uuid.New().String(),
		Buyer:     buyer,
		NativeIn:  nativeIn,
		TokensOut: fees.NetToBuyer,
		LockTier:  tier.Name,
		CreatedAt: now,
		UnlockAt:  now + lockSeconds,
	}

	m.logger.Info("Buy executed",
		zap.String("buyer", buyer.String()),
		zap.Uint64("lamports_in", nativeIn),
		zap.Uint64("tokens_out", fees.NetToBuyer),
		zap.Uint64("burn_fee", fees.Burn),
		zap.Uint64("raffle_fee", fees.Raffle),
		zap.Uint64("price", nextPrice),
		zap.String("lock_tier", tier.Name),
		zap.Int64("unlock_at", receipt.UnlockAt))

	return receipt, nil
}

// Sell redeems tokens against the vault: the sell-burn fee comes off the
// token amount, the remainder converts at the current price, and the
// price steps down to no lower than the floor.
func (m *Market) Sell(ctx context.Context, seller solana.PublicKey, tokenIn uint64) (*SellReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	if tokenIn < MinSellAmount {
		return nil, ErrSellAmountTooSmall
	}
	balance, err := m.ledger.Balance(ctx, seller)
	if err != nil {
		return nil, fmt.Errorf("balance lookup failed: %w", err)
	}
	if balance < tokenIn {
		return nil, ErrInsufficientBalance
	}

	quote, err := QuoteSell(m.state.CurrentPrice, tokenIn)
	if err != nil {
		return nil, err
	}

	vaultBalance, err := m.vault.Balance(ctx)
	if err != nil {
		return nil, fmt.Errorf("vault balance lookup failed: %w", err)
	}
	if vaultBalance < quote.NativeOut {
		return nil, ErrInsufficientVaultBalance
	}

	totalBurned, err := checkedAdd(m.state.TotalBurned, quote.BurnFee)
	if err != nil {
		return nil, err
	}
	nextPrice := NextSellPrice(m.state.CurrentPrice, quote.NativeOut)

	// The full token amount is burned; only the net converts to lamports.
	if err := m.ledger.Burn(ctx, seller, tokenIn); err != nil {
		return nil, fmt.Errorf("token burn failed: %w", err)
	}
	if err := m.vault.Withdraw(ctx, seller, quote.NativeOut); err != nil {
		return nil, fmt.Errorf("vault withdrawal failed: %w", err)
	}

	m.state.TotalBurned = totalBurned
	m.state.CurrentPrice = nextPrice

	m.logger.Info("Sell executed",
		zap.String("seller", seller.String()),
		zap.Uint64("tokens_in", tokenIn),
		zap.Uint64("burn_fee", quote.BurnFee),
		zap.Uint64("lamports_out", quote.NativeOut),
		zap.Uint64("price", nextPrice))

	return &SellReceipt{
		Seller:    seller,
		TokenIn:   tokenIn,
		BurnFee:   quote.BurnFee,
		NativeOut: quote.NativeOut,
		CreatedAt: now,
	}, nil
}

// Award pays the whole pot to a recipient chosen by the owner. One
// winner per cycle; the recipient must already hold the eligibility
// balance. Winner selection is deliberately outside this state machine.
func (m *Market) Award(ctx context.Context, caller, recipient solana.PublicKey) (*WinnerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !caller.Equals(m.state.Owner) {
		return nil, ErrUnauthorized
	}
	if m.state.CycleAwarded {
		return nil, ErrAirdropAlreadyExecuted
	}
	balance, err := m.ledger.Balance(ctx, recipient)
	if err != nil {
		return nil, fmt.Errorf("recipient balance lookup failed: %w", err)
	}
	if balance < MinAirdropEligible {
		return nil, ErrNotEligibleForAirdrop
	}

	now := m.now()
	amount := m.state.IncentivePot

	winnerAccount, _, err := solana.FindAssociatedTokenAddress(recipient, m.state.TokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive winner token account: %w", err)
	}

	if err := m.ledger.Mint(ctx, recipient, amount); err != nil {
		return nil, fmt.Errorf("award mint failed: %w", err)
	}

	record := &WinnerRecord{
		Winner:        recipient,
		WinnerAccount: winnerAccount,
		Amount:        amount,
		AwardedAt:     now,
	}
	m.winner = record
	m.state.CycleAwarded = true
	m.state.LastCycleTimestamp = now
	m.state.IncentivePot = 0

	m.logger.Info("Airdrop awarded",
		zap.String("winner", recipient.String()),
		zap.Uint64("amount", amount),
		zap.Int64("awarded_at", now))

	return record, nil
}

// ResetCycle advances the boundary to the next aligned interval strictly
// after now and re-arms the one-shot award flag. Calling it again right
// away fails: the fresh boundary is already in the future.
func (m *Market) ResetCycle(ctx context.Context, caller solana.PublicKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !caller.Equals(m.state.Owner) {
		return ErrUnauthorized
	}
	now := m.now()
	if now < m.state.NextCycleBoundary {
		return ErrAirdropNotReady
	}

	m.state.NextCycleBoundary = NextCycleBoundary(now)
	m.state.CycleAwarded = false

	m.logger.Info("Airdrop cycle reset",
		zap.Int64("next_cycle_boundary", m.state.NextCycleBoundary))
	return nil
}

// SetPot overwrites the incentive pot. Administrative escape hatch with
// no validation, matching the owner's other privileged operations; it is
// kept separate from the trading invariants on purpose.
func (m *Market) SetPot(caller solana.PublicKey, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !caller.Equals(m.state.Owner) {
		return ErrUnauthorized
	}
	m.state.IncentivePot = amount
	m.logger.Info("Incentive pot overwritten", zap.Uint64("amount", amount))
	return nil
}

// SetTokenMint points the market at a new mint, for migrations.
func (m *Market) SetTokenMint(caller, mint solana.PublicKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !caller.Equals(m.state.Owner) {
		return ErrUnauthorized
	}
	m.state.TokenMint = mint
	m.logger.Info("Token mint updated", zap.String("mint", mint.String()))
	return nil
}

// Snapshot returns a copy of the current state.
func (m *Market) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastWinner returns the most recent award, if any cycle has paid out.
func (m *Market) LastWinner() (WinnerRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.winner == nil {
		return WinnerRecord{}, false
	}
	return *m.winner, true
}

// Owner reports the authority identity.
func (m *Market) Owner() solana.PublicKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Owner
}
