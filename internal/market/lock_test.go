package market

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		name     string
		nativeIn uint64
		want     string
	}{
		{name: "small buy", nativeIn: 10_000_000, want: "A"},
		{name: "just below first threshold", nativeIn: Tier1Threshold - 1, want: "A"},
		{name: "exactly at first threshold", nativeIn: Tier1Threshold, want: "B"},
		{name: "just below second threshold", nativeIn: Tier2Threshold - 1, want: "B"},
		{name: "exactly at second threshold", nativeIn: Tier2Threshold, want: "C"},
		{name: "just below third threshold", nativeIn: Tier3Threshold - 1, want: "C"},
		{name: "exactly at third threshold", nativeIn: Tier3Threshold, want: "D"},
		{name: "whale buy", nativeIn: MaxBuyAmount, want: "D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierFor(tt.nativeIn).Name)
		})
	}
}

func TestLockDurationWithinTierRange(t *testing.T) {
	entropy := make([]byte, 32)
	for i := range entropy {
		entropy[i] = byte(i * 37)
	}

	for _, nativeIn := range []uint64{MinBuyAmount, Tier1Threshold, Tier2Threshold, Tier3Threshold, MaxBuyAmount} {
		tier := TierFor(nativeIn)
		for counter := uint64(0); counter < 1000; counter++ {
			d := LockDuration(nativeIn, 1_700_000_000, counter, entropy)
			assert.GreaterOrEqual(t, d, tier.Min)
			assert.Less(t, d, tier.Max, "modulo keeps the duration strictly below the tier maximum")
		}
	}
}

func TestLockDurationDeterministic(t *testing.T) {
	entropy := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	a := LockDuration(50_000_000, 1_700_000_000, 42, entropy)
	b := LockDuration(50_000_000, 1_700_000_000, 42, entropy)
	assert.Equal(t, a, b)
}

func TestLockDurationEntropyFallback(t *testing.T) {
	now := int64(1_700_000_123)
	// Fewer than 8 bytes: the timestamp doubles as the seed.
	short := LockDuration(50_000_000, now, 7, []byte{1, 2, 3})
	none := LockDuration(50_000_000, now, 7, nil)
	assert.Equal(t, short, none)

	// With 8+ bytes the fragment is the seed instead.
	frag := make([]byte, 8)
	binary.LittleEndian.PutUint64(frag, 12345)
	withEntropy := LockDuration(50_000_000, now, 7, frag)
	tier := TierFor(uint64(50_000_000))
	expected := tier.Min + int64((12345+uint64(now)+7)%uint64(tier.Max-tier.Min))
	assert.Equal(t, expected, withEntropy)
}

func TestLockDurationWrappingMix(t *testing.T) {
	// Seeds near MaxUint64 must wrap, not fail.
	frag := make([]byte, 8)
	binary.LittleEndian.PutUint64(frag, ^uint64(0))
	d := LockDuration(50_000_000, 1_700_000_000, ^uint64(0), frag)
	tier := TierFor(uint64(50_000_000))
	assert.GreaterOrEqual(t, d, tier.Min)
	assert.Less(t, d, tier.Max)
}
