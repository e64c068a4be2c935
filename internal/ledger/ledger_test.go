package ledger

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTokenLedgerMintBurn(t *testing.T) {
	ctx := context.Background()
	l := NewTokenLedger(solana.NewWallet().PublicKey(), zap.NewNop())
	holder := solana.NewWallet().PublicKey()

	require.NoError(t, l.Mint(ctx, holder, 1_000))
	require.NoError(t, l.Mint(ctx, holder, 500))

	balance, err := l.Balance(ctx, holder)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500), balance)
	assert.Equal(t, uint64(1_500), l.Supply())

	require.NoError(t, l.Burn(ctx, holder, 600))
	balance, _ = l.Balance(ctx, holder)
	assert.Equal(t, uint64(900), balance)
	assert.Equal(t, uint64(900), l.Supply())

	assert.ErrorIs(t, l.Burn(ctx, holder, 901), ErrInsufficientFunds)
	assert.ErrorIs(t, l.Mint(ctx, solana.PublicKey{}, 1), ErrZeroAddress)
}

func TestTokenLedgerTransfer(t *testing.T) {
	ctx := context.Background()
	l := NewTokenLedger(solana.NewWallet().PublicKey(), zap.NewNop())
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()

	require.NoError(t, l.Mint(ctx, a, 100))
	require.NoError(t, l.Transfer(ctx, a, b, 40))

	balA, _ := l.Balance(ctx, a)
	balB, _ := l.Balance(ctx, b)
	assert.Equal(t, uint64(60), balA)
	assert.Equal(t, uint64(40), balB)

	assert.ErrorIs(t, l.Transfer(ctx, a, b, 61), ErrInsufficientFunds)
	assert.Equal(t, uint64(100), l.Supply(), "transfers never change supply")
}

func TestTokenLedgerHolders(t *testing.T) {
	ctx := context.Background()
	l := NewTokenLedger(solana.NewWallet().PublicKey(), zap.NewNop())

	rich := solana.NewWallet().PublicKey()
	mid := solana.NewWallet().PublicKey()
	poor := solana.NewWallet().PublicKey()
	require.NoError(t, l.Mint(ctx, rich, 10_000))
	require.NoError(t, l.Mint(ctx, mid, 5_000))
	require.NoError(t, l.Mint(ctx, poor, 100))

	holders, err := l.Holders(ctx, 5_000)
	require.NoError(t, err)
	require.Len(t, holders, 2)
	assert.Equal(t, rich, holders[0].Owner)
	assert.Equal(t, mid, holders[1].Owner)
	assert.False(t, holders[0].Account.IsZero())
}

func TestVault(t *testing.T) {
	ctx := context.Background()
	v := NewVault(zap.NewNop())
	payer := solana.NewWallet().PublicKey()

	v.Bootstrap(1_000)
	v.Bootstrap(9_999_999) // second call must be ignored
	balance, err := v.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), balance)

	require.NoError(t, v.Deposit(ctx, payer, 500))
	require.NoError(t, v.Withdraw(ctx, payer, 1_200))
	balance, _ = v.Balance(ctx)
	assert.Equal(t, uint64(300), balance)

	assert.ErrorIs(t, v.Withdraw(ctx, payer, 301), ErrVaultOverdrawn)
}
