// internal/events/types.go
package events

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// EventType represents the type of event.
type EventType string

const (
	// Trade events
	TradeExecuted EventType = "trade.executed"
	TradeSettled  EventType = "trade.settled"

	// Curve events
	PriceUpdated EventType = "price.updated"

	// Airdrop events
	AirdropAwarded EventType = "airdrop.awarded"
	CycleReset     EventType = "cycle.reset"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.EventTime }

// TradeExecutedEvent is emitted after a successful buy.
type TradeExecutedEvent struct {
	BaseEvent
	Buyer     solana.PublicKey
	NativeIn  uint64
	TokensOut uint64
	LockTier  string
	UnlockAt  int64
}

// TradeSettledEvent is emitted after a successful sell.
type TradeSettledEvent struct {
	BaseEvent
	Seller    solana.PublicKey
	TokenIn   uint64
	NativeOut uint64
}

// PriceUpdatedEvent is emitted whenever a trade moves the curve.
type PriceUpdatedEvent struct {
	BaseEvent
	OldPrice uint64
	NewPrice uint64
}

// AirdropAwardedEvent is emitted when a cycle pays its winner.
type AirdropAwardedEvent struct {
	BaseEvent
	Winner solana.PublicKey
	Amount uint64
}

// CycleResetEvent is emitted when the authority re-arms the cycle.
type CycleResetEvent struct {
	BaseEvent
	NextBoundary int64
}
