// internal/market/errors.go
package market

import "errors"

// Every failure mode is a named condition. Callers match with errors.Is;
// none of these leave partial state behind.
var (
	ErrInsufficientBalance      = errors.New("insufficient balance")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrArithmeticOverflow       = errors.New("arithmetic overflow")
	ErrInsufficientVaultBalance = errors.New("insufficient vault balance")
	ErrInvalidPrice             = errors.New("invalid price")
	ErrBuyAmountTooSmall        = errors.New("buy amount too small")
	ErrBuyAmountTooLarge        = errors.New("buy amount too large")
	ErrSellAmountTooSmall       = errors.New("sell amount too small")
	ErrNotEligibleForAirdrop    = errors.New("not eligible for airdrop: need 10,000+ tokens")
	ErrAirdropNotReady          = errors.New("airdrop not ready: wait for next cycle")
	ErrAirdropAlreadyExecuted   = errors.New("airdrop already executed this cycle: one winner per cycle")
)
