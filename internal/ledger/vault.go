// internal/ledger/vault.go
package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

var ErrVaultOverdrawn = errors.New("vault overdrawn")

// Vault is the native-currency balance holder backing sell-side
// redemptions, the equivalent of a program-owned account seeded with
// the rent-exempt minimum. Bootstrap does that seeding idempotently.
type Vault struct {
	mu      sync.RWMutex
	balance uint64
	seeded  bool
	logger  *zap.Logger
}

func NewVault(logger *zap.Logger) *Vault {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Vault{logger: logger.Named("vault")}
}

// Bootstrap seeds the vault once with an opening balance. Calling it
// again is a no-op so init scripts can retry safely.
func (v *Vault) Bootstrap(openingBalance uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.seeded {
		v.logger.Debug("Vault already bootstrapped")
		return
	}
	v.balance = openingBalance
	v.seeded = true
	v.logger.Info("Vault bootstrapped", zap.Uint64("opening_balance", openingBalance))
}

// Deposit credits buy proceeds into the vault.
func (v *Vault) Deposit(_ context.Context, from solana.PublicKey, lamports uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.balance += lamports
	v.logger.Debug("Vault deposit",
		zap.String("from", from.String()),
		zap.Uint64("lamports", lamports),
		zap.Uint64("balance", v.balance))
	return nil
}

// Withdraw pays sell proceeds out of the vault.
func (v *Vault) Withdraw(_ context.Context, to solana.PublicKey, lamports uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.balance < lamports {
		return ErrVaultOverdrawn
	}
	v.balance -= lamports
	v.logger.Debug("Vault withdrawal",
		zap.String("to", to.String()),
		zap.Uint64("lamports", lamports),
		zap.Uint64("balance", v.balance))
	return nil
}

// Balance reads the vault's lamport balance.
func (v *Vault) Balance(_ context.Context) (uint64, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.balance, nil
}
