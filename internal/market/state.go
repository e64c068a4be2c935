// internal/market/state.go
package market

import "github.com/gagliardetto/solana-go"

// State is the shared economic record every operation reads and writes.
// A copy of it is what Snapshot hands out; the live instance is only
// touched under the Market's lock.
type State struct {
	Owner              solana.PublicKey
	TokenMint          solana.PublicKey
	CurrentPrice       uint64 // lamports per TokenScale smallest units
	TotalBurned        uint64
	TotalTrades        uint64
	NextCycleBoundary  int64 // unix seconds, always AirdropInterval-aligned
	IncentivePot       uint64
	CycleAwarded       bool
	LastCycleTimestamp int64
}

// TradeReceipt records one buy. UnlockAt is advisory: nothing in this
// engine blocks a transfer before it (enforcement would belong to the
// token ledger).
type TradeReceipt struct {
	ID        string
	Buyer     solana.PublicKey
	NativeIn  uint64
	TokensOut uint64
	LockTier  string
	CreatedAt int64
	UnlockAt  int64
}

// SellReceipt records one redemption.
type SellReceipt struct {
	Seller    solana.PublicKey
	TokenIn   uint64
	BurnFee   uint64
	NativeOut uint64
	CreatedAt int64
}

// WinnerRecord holds only the most recent award; it is overwritten each
// cycle, never appended.
type WinnerRecord struct {
	Winner        solana.PublicKey
	WinnerAccount solana.PublicKey
	Amount        uint64
	AwardedAt     int64
}
