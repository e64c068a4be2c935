// internal/market/airdrop.go
package market

// Cycle states as reported to clients. The transitions are driven by
// ResetCycle and Award on the Market; the pot keeps accumulating buy
// fees in every state, so a late reset only delays the payout.
const (
	CycleAwaitingBoundary = "awaiting_boundary"
	CycleReady            = "ready"
	CycleAwarded          = "awarded"
)

// NextCycleBoundary aligns t up to the next AirdropInterval multiple
// strictly after t.
func NextCycleBoundary(t int64) int64 {
	rem := t % AirdropInterval
	if rem == 0 {
		return t + AirdropInterval
	}
	return t + (AirdropInterval - rem)
}

// CycleStatus classifies the cycle at a given instant.
func CycleStatus(s State, now int64) string {
	if s.CycleAwarded {
		return CycleAwarded
	}
	if now >= s.NextCycleBoundary {
		return CycleReady
	}
	return CycleAwaitingBoundary
}
