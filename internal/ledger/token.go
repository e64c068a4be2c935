// internal/ledger/token.go
package ledger

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

var (
	ErrInsufficientFunds = errors.New("insufficient token balance")
	ErrZeroAddress       = errors.New("zero address")
)

// TokenLedger is an in-process fungible-asset ledger keyed by owner
// identity. It plays the role the SPL token program plays on chain:
// mint, burn, transfer and balance reads, each call independently
// failable.
type TokenLedger struct {
	mu       sync.RWMutex
	mint     solana.PublicKey
	balances map[solana.PublicKey]uint64
	supply   uint64
	logger   *zap.Logger
}

// Holder pairs an owner with its balance and derived token account.
type Holder struct {
	Owner   solana.PublicKey
	Account solana.PublicKey
	Balance uint64
}

func NewTokenLedger(mint solana.PublicKey, logger *zap.Logger) *TokenLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenLedger{
		mint:     mint,
		balances: make(map[solana.PublicKey]uint64),
		logger:   logger.Named("token_ledger"),
	}
}

// Mint credits freshly issued tokens to a holder.
func (l *TokenLedger) Mint(_ context.Context, to solana.PublicKey, amount uint64) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[to] += amount
	l.supply += amount

	l.logger.Debug("Minted tokens",
		zap.String("to", to.String()),
		zap.Uint64("amount", amount),
		zap.Uint64("supply", l.supply))
	return nil
}

// Burn destroys tokens held by a holder.
func (l *TokenLedger) Burn(_ context.Context, from solana.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return ErrInsufficientFunds
	}
	l.balances[from] -= amount
	l.supply -= amount
	if l.balances[from] == 0 {
		delete(l.balances, from)
	}

	l.logger.Debug("Burned tokens",
		zap.String("from", from.String()),
		zap.Uint64("amount", amount),
		zap.Uint64("supply", l.supply))
	return nil
}

// Transfer moves tokens between holders.
func (l *TokenLedger) Transfer(_ context.Context, from, to solana.PublicKey, amount uint64) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return ErrInsufficientFunds
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	if l.balances[from] == 0 {
		delete(l.balances, from)
	}
	return nil
}

// Balance reads a holder's balance. Unknown holders read as zero.
func (l *TokenLedger) Balance(_ context.Context, holder solana.PublicKey) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[holder], nil
}

// Supply reports total outstanding tokens.
func (l *TokenLedger) Supply() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.supply
}

// Holders lists every holder at or above the given balance, sorted by
// descending balance then address for a stable order. The airdrop runner
// uses this to build its eligibility pool.
func (l *TokenLedger) Holders(_ context.Context, minBalance uint64) ([]Holder, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	holders := make([]Holder, 0, len(l.balances))
	for owner, balance := range l.balances {
		if balance < minBalance {
			continue
		}
		account, _, err := solana.FindAssociatedTokenAddress(owner, l.mint)
		if err != nil {
			return nil, err
		}
		holders = append(holders, Holder{Owner: owner, Account: account, Balance: balance})
	}

	sort.Slice(holders, func(i, j int) bool {
		if holders[i].Balance != holders[j].Balance {
			return holders[i].Balance > holders[j].Balance
		}
		return holders[i].Owner.String() < holders[j].Owner.String()
	})
	return holders, nil
}
