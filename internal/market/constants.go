// internal/market/constants.go
package market

// Fee rates in hundred-thousandths: BasisPoints = 100_000 means 100%.
const (
	BurnFeeBPS     uint64 = 69  // 0.069% burned on buys
	DevFeeBPS      uint64 = 31  // 0.031% dev fee, declared but charged by no operation
	RaffleFeeBPS   uint64 = 621 // 0.621% added to the airdrop pot on buys
	SellBurnFeeBPS uint64 = 10  // 0.1% burned on sells
	BasisPoints    uint64 = 100_000
)

// Bonding curve parameters. Prices are lamports per TokenScale smallest units.
const (
	TokenScale uint64 = 1_000_000_000 // 9 decimals
	MinPrice   uint64 = 100           // price floor, sells never push below this
)

// Trade size bounds.
const (
	MinBuyAmount  uint64 = 10_000_000      // 0.01 SOL
	MaxBuyAmount  uint64 = 100_000_000_000 // 100 SOL
	MinSellAmount uint64 = 1_000_000_000   // 1 token
)

// Lock tier thresholds in lamports. Larger buys fall into shorter tiers.
const (
	Tier1Threshold uint64 = 100_000_000   // 0.1 SOL
	Tier2Threshold uint64 = 500_000_000   // 0.5 SOL
	Tier3Threshold uint64 = 1_000_000_000 // 1.0 SOL
)

// Lock tier duration bounds in seconds.
const (
	Tier1Min int64 = 5 * 60
	Tier1Max int64 = 5 * 60 * 60
	Tier2Min int64 = 4 * 60
	Tier2Max int64 = 4 * 60 * 60
	Tier3Min int64 = 3 * 60
	Tier3Max int64 = 3 * 60 * 60
	Tier4Min int64 = 1 * 60
	Tier4Max int64 = 1 * 60 * 60
)

// Airdrop cycle parameters.
const (
	AirdropInterval    int64  = 300                // seconds between cycle boundaries
	MinAirdropEligible uint64 = 10_000_000_000_000 // 10,000 tokens to qualify for an award
)
