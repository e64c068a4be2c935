// internal/engine/service.go
package engine

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/fossrlabs/fossr-engine/internal/events"
	"github.com/fossrlabs/fossr-engine/internal/market"
	"github.com/fossrlabs/fossr-engine/internal/storage"
	"github.com/fossrlabs/fossr-engine/internal/storage/models"
)

// Service fronts the market engine: it runs the operation, persists the
// audit trail and publishes events. Persistence and publication are
// best-effort and never veto an already-committed trade.
type Service struct {
	market  *market.Market
	storage storage.Storage
	bus     *events.Bus
	logger  *zap.Logger
}

// ServiceConfig wires a Service.
type ServiceConfig struct {
	Market  *market.Market
	Storage storage.Storage // nil disables persistence
	Bus     *events.Bus
	Logger  *zap.Logger
}

func NewService(cfg *ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		market:  cfg.Market,
		storage: cfg.Storage,
		bus:     cfg.Bus,
		logger:  logger.Named("engine"),
	}
}

// Buy executes a purchase and records its receipt.
func (s *Service) Buy(ctx context.Context, buyer solana.PublicKey, nativeIn uint64) (*market.TradeReceipt, error) {
	priorPrice := s.market.Snapshot().CurrentPrice
	receipt, err := s.market.Buy(ctx, buyer, nativeIn)
	if err != nil {
		return nil, err
	}

	if s.storage != nil {
		record := &models.Receipt{
			ReceiptID: receipt.ID,
			Buyer:     receipt.Buyer.String(),
			NativeIn:  receipt.NativeIn,
			TokensOut: receipt.TokensOut,
			LockTier:  receipt.LockTier,
			BoughtAt:  receipt.CreatedAt,
			UnlockAt:  receipt.UnlockAt,
		}
		if err := s.storage.SaveReceipt(ctx, record); err != nil {
			s.logger.Error("Failed to persist trade receipt",
				zap.String("receipt_id", receipt.ID), zap.Error(err))
		}
		s.saveSnapshot(ctx)
	}

	s.publish(events.TradeExecutedEvent{
		BaseEvent: events.BaseEvent{EventType: events.TradeExecuted, EventTime: time.Now()},
		Buyer:     receipt.Buyer,
		NativeIn:  receipt.NativeIn,
		TokensOut: receipt.TokensOut,
		LockTier:  receipt.LockTier,
		UnlockAt:  receipt.UnlockAt,
	})
	s.publishPriceChange(priorPrice)

	return receipt, nil
}

// Sell executes a redemption and records its settlement.
func (s *Service) Sell(ctx context.Context, seller solana.PublicKey, tokenIn uint64) (*market.SellReceipt, error) {
	priorPrice := s.market.Snapshot().CurrentPrice
	receipt, err := s.market.Sell(ctx, seller, tokenIn)
	if err != nil {
		return nil, err
	}

	if s.storage != nil {
		record := &models.Settlement{
			Seller:    receipt.Seller.String(),
			TokenIn:   receipt.TokenIn,
			BurnFee:   receipt.BurnFee,
			NativeOut: receipt.NativeOut,
			SoldAt:    receipt.CreatedAt,
		}
		if err := s.storage.SaveSettlement(ctx, record); err != nil {
			s.logger.Error("Failed to persist settlement", zap.Error(err))
		}
		s.saveSnapshot(ctx)
	}

	s.publish(events.TradeSettledEvent{
		BaseEvent: events.BaseEvent{EventType: events.TradeSettled, EventTime: time.Now()},
		Seller:    receipt.Seller,
		TokenIn:   receipt.TokenIn,
		NativeOut: receipt.NativeOut,
	})
	s.publishPriceChange(priorPrice)

	return receipt, nil
}

// Award pays the pot to a recipient on behalf of the authority.
func (s *Service) Award(ctx context.Context, caller, recipient solana.PublicKey) (*market.WinnerRecord, error) {
	record, err := s.market.Award(ctx, caller, recipient)
	if err != nil {
		return nil, err
	}

	if s.storage != nil {
		row := &models.Winner{
			Winner:        record.Winner.String(),
			WinnerAccount: record.WinnerAccount.String(),
			Amount:        record.Amount,
			AwardedAt:     record.AwardedAt,
		}
		if err := s.storage.SaveWinner(ctx, row); err != nil {
			s.logger.Error("Failed to persist winner", zap.Error(err))
		}
		s.saveSnapshot(ctx)
	}

	s.publish(events.AirdropAwardedEvent{
		BaseEvent: events.BaseEvent{EventType: events.AirdropAwarded, EventTime: time.Now()},
		Winner:    record.Winner,
		Amount:    record.Amount,
	})

	return record, nil
}

// ResetCycle re-arms the airdrop cycle on behalf of the authority.
func (s *Service) ResetCycle(ctx context.Context, caller solana.PublicKey) error {
	if err := s.market.ResetCycle(ctx, caller); err != nil {
		return err
	}

	state := s.market.Snapshot()
	s.publish(events.CycleResetEvent{
		BaseEvent:    events.BaseEvent{EventType: events.CycleReset, EventTime: time.Now()},
		NextBoundary: state.NextCycleBoundary,
	})
	return nil
}

// SetPot overwrites the incentive pot (authority only).
func (s *Service) SetPot(caller solana.PublicKey, amount uint64) error {
	return s.market.SetPot(caller, amount)
}

// SetTokenMint migrates the market to a new mint (authority only).
func (s *Service) SetTokenMint(caller, mint solana.PublicKey) error {
	return s.market.SetTokenMint(caller, mint)
}

// State returns a copy of the market state.
func (s *Service) State() market.State {
	return s.market.Snapshot()
}

// LastWinner returns the most recent award, if any.
func (s *Service) LastWinner() (market.WinnerRecord, bool) {
	return s.market.LastWinner()
}

// Receipts lists persisted receipts for a buyer.
func (s *Service) Receipts(ctx context.Context, buyer string, limit, offset int) ([]*models.Receipt, error) {
	if s.storage == nil {
		return nil, nil
	}
	return s.storage.ListReceipts(ctx, buyer, limit, offset)
}

func (s *Service) saveSnapshot(ctx context.Context) {
	state := s.market.Snapshot()
	snapshot := &models.Snapshot{
		CurrentPrice:      state.CurrentPrice,
		TotalBurned:       state.TotalBurned,
		TotalTrades:       state.TotalTrades,
		IncentivePot:      state.IncentivePot,
		NextCycleBoundary: state.NextCycleBoundary,
		CycleAwarded:      state.CycleAwarded,
		TakenAt:           time.Now().Unix(),
	}
	if err := s.storage.SaveSnapshot(ctx, snapshot); err != nil {
		s.logger.Error("Failed to persist market snapshot", zap.Error(err))
	}
}

func (s *Service) publishPriceChange(priorPrice uint64) {
	current := s.market.Snapshot().CurrentPrice
	if current == priorPrice {
		return
	}
	s.publish(events.PriceUpdatedEvent{
		BaseEvent: events.BaseEvent{EventType: events.PriceUpdated, EventTime: time.Now()},
		OldPrice:  priorPrice,
		NewPrice:  current,
	})
}

func (s *Service) publish(event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("event_type", string(event.Type())), zap.Error(err))
	}
}
