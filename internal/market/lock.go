// internal/market/lock.go
package market

import "encoding/binary"

// LockTier is one of the four size-based duration buckets.
type LockTier struct {
	Name string
	Min  int64 // seconds, inclusive
	Max  int64 // seconds, exclusive via modulo
}

var lockTiers = [4]LockTier{
	{Name: "A", Min: Tier1Min, Max: Tier1Max},
	{Name: "B", Min: Tier2Min, Max: Tier2Max},
	{Name: "C", Min: Tier3Min, Max: Tier3Max},
	{Name: "D", Min: Tier4Min, Max: Tier4Max},
}

// TierFor selects the lock tier for a buy size. Thresholds are
// strictly-below: a buy exactly at a threshold lands in the next tier.
func TierFor(nativeIn uint64) LockTier {
	switch {
	case nativeIn < Tier1Threshold:
		return lockTiers[0]
	case nativeIn < Tier2Threshold:
		return lockTiers[1]
	case nativeIn < Tier3Threshold:
		return lockTiers[2]
	default:
		return lockTiers[3]
	}
}

// LockDuration picks a pseudo-random duration in the tier's range from
// the entropy fragment, the current unix time and a monotonic counter.
// The additions wrap on purpose; wraparound is part of the mixing, not a
// failure. When the fragment is shorter than 8 bytes the timestamp
// stands in as the seed.
//
// Both entropy inputs are knowable ahead of time by whoever submits the
// trade, so the result is advisory metadata, not an unpredictable draw.
func LockDuration(nativeIn uint64, now int64, counter uint64, entropy []byte) int64 {
	tier := TierFor(nativeIn)

	seed := uint64(now)
	if len(entropy) >= 8 {
		seed = binary.LittleEndian.Uint64(entropy[:8])
	}

	combined := seed + uint64(now) + counter
	offset := int64(combined % uint64(tier.Max-tier.Min))
	return tier.Min + offset
}
