// internal/api/server.go
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fossrlabs/fossr-engine/internal/engine"
	"github.com/fossrlabs/fossr-engine/internal/market"
)

// Server exposes the market engine over HTTP. Admin routes act on
// behalf of the configured authority key.
type Server struct {
	service   *engine.Service
	authority solana.PublicKey
	logger    *zap.Logger
	router    *gin.Engine
	http      *http.Server
}

type Config struct {
	Service    *engine.Service
	Authority  solana.PublicKey
	ListenAddr string
	Logger     *zap.Logger
}

func NewServer(cfg *Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		service:   cfg.Service,
		authority: cfg.Authority,
		logger:    logger.Named("api"),
		router:    router,
		http: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/state", s.handleState)
		v1.GET("/winner", s.handleWinner)
		v1.GET("/receipts/:buyer", s.handleReceipts)
		v1.POST("/buy", s.handleBuy)
		v1.POST("/sell", s.handleSell)

		admin := v1.Group("/admin")
		{
			admin.POST("/award", s.handleAward)
			admin.POST("/reset", s.handleReset)
			admin.POST("/pot", s.handleSetPot)
			admin.POST("/mint", s.handleSetMint)
		}
	}
}

// Run serves until the context is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type stateResponse struct {
	Owner             string `json:"owner"`
	TokenMint         string `json:"token_mint"`
	CurrentPrice      uint64 `json:"current_price"`
	TotalBurned       uint64 `json:"total_burned"`
	TotalTrades       uint64 `json:"total_trades"`
	IncentivePot      uint64 `json:"incentive_pot"`
	IncentivePotSOL   string `json:"incentive_pot_sol"`
	NextCycleBoundary int64  `json:"next_cycle_boundary"`
	CycleAwarded      bool   `json:"cycle_awarded"`
	CycleStatus       string `json:"cycle_status"`
	LastCycleAt       int64  `json:"last_cycle_at"`
}

func (s *Server) handleState(c *gin.Context) {
	state := s.service.State()
	c.JSON(http.StatusOK, stateResponse{
		Owner:             state.Owner.String(),
		TokenMint:         state.TokenMint.String(),
		CurrentPrice:      state.CurrentPrice,
		TotalBurned:       state.TotalBurned,
		TotalTrades:       state.TotalTrades,
		IncentivePot:      state.IncentivePot,
		IncentivePotSOL:   lamportsToSOL(state.IncentivePot),
		NextCycleBoundary: state.NextCycleBoundary,
		CycleAwarded:      state.CycleAwarded,
		CycleStatus:       market.CycleStatus(state, time.Now().Unix()),
		LastCycleAt:       state.LastCycleTimestamp,
	})
}

type buyRequest struct {
	Buyer    string `json:"buyer" binding:"required"`
	NativeIn uint64 `json:"native_in" binding:"required"`
}

type buyResponse struct {
	ReceiptID string `json:"receipt_id"`
	Buyer     string `json:"buyer"`
	NativeIn  uint64 `json:"native_in"`
	NativeSOL string `json:"native_in_sol"`
	TokensOut uint64 `json:"tokens_out"`
	Tokens    string `json:"tokens_out_whole"`
	LockTier  string `json:"lock_tier"`
	CreatedAt int64  `json:"created_at"`
	UnlockAt  int64  `json:"unlock_at"`
}

func (s *Server) handleBuy(c *gin.Context) {
	var req buyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	buyer, err := solana.PublicKeyFromBase58(req.Buyer)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid buyer address"})
		return
	}

	receipt, err := s.service.Buy(c.Request.Context(), buyer, req.NativeIn)
	if err != nil {
		s.writeMarketError(c, err)
		return
	}

	c.JSON(http.StatusOK, buyResponse{
		ReceiptID: receipt.ID,
		Buyer:     receipt.Buyer.String(),
		NativeIn:  receipt.NativeIn,
		NativeSOL: lamportsToSOL(receipt.NativeIn),
		TokensOut: receipt.TokensOut,
		Tokens:    baseUnitsToWhole(receipt.TokensOut),
		LockTier:  receipt.LockTier,
		CreatedAt: receipt.CreatedAt,
		UnlockAt:  receipt.UnlockAt,
	})
}

type sellRequest struct {
	Seller  string `json:"seller" binding:"required"`
	TokenIn uint64 `json:"token_in" binding:"required"`
}

type sellResponse struct {
	Seller    string `json:"seller"`
	TokenIn   uint64 `json:"token_in"`
	BurnFee   uint64 `json:"burn_fee"`
	NativeOut uint64 `json:"native_out"`
	NativeSOL string `json:"native_out_sol"`
	CreatedAt int64  `json:"created_at"`
}

func (s *Server) handleSell(c *gin.Context) {
	var req sellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seller, err := solana.PublicKeyFromBase58(req.Seller)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seller address"})
		return
	}

	receipt, err := s.service.Sell(c.Request.Context(), seller, req.TokenIn)
	if err != nil {
		s.writeMarketError(c, err)
		return
	}

	c.JSON(http.StatusOK, sellResponse{
		Seller:    receipt.Seller.String(),
		TokenIn:   receipt.TokenIn,
		BurnFee:   receipt.BurnFee,
		NativeOut: receipt.NativeOut,
		NativeSOL: lamportsToSOL(receipt.NativeOut),
		CreatedAt: receipt.CreatedAt,
	})
}

func (s *Server) handleWinner(c *gin.Context) {
	record, ok := s.service.LastWinner()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no airdrop has been awarded yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"winner":         record.Winner.String(),
		"winner_account": record.WinnerAccount.String(),
		"amount":         record.Amount,
		"amount_whole":   baseUnitsToWhole(record.Amount),
		"awarded_at":     record.AwardedAt,
	})
}

func (s *Server) handleReceipts(c *gin.Context) {
	buyer := c.Param("buyer")
	if _, err := solana.PublicKeyFromBase58(buyer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid buyer address"})
		return
	}

	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)

	receipts, err := s.service.Receipts(c.Request.Context(), buyer, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load receipts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipts": receipts, "count": len(receipts)})
}

type awardRequest struct {
	Winner string `json:"winner" binding:"required"`
}

func (s *Server) handleAward(c *gin.Context) {
	var req awardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	winner, err := solana.PublicKeyFromBase58(req.Winner)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid winner address"})
		return
	}

	record, err := s.service.Award(c.Request.Context(), s.authority, winner)
	if err != nil {
		s.writeMarketError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"winner":     record.Winner.String(),
		"amount":     record.Amount,
		"awarded_at": record.AwardedAt,
	})
}

func (s *Server) handleReset(c *gin.Context) {
	if err := s.service.ResetCycle(c.Request.Context(), s.authority); err != nil {
		s.writeMarketError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"next_cycle_boundary": s.service.State().NextCycleBoundary})
}

type setPotRequest struct {
	Amount uint64 `json:"amount"`
}

func (s *Server) handleSetPot(c *gin.Context) {
	var req setPotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.service.SetPot(s.authority, req.Amount); err != nil {
		s.writeMarketError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"incentive_pot": req.Amount})
}

type setMintRequest struct {
	Mint string `json:"mint" binding:"required"`
}

func (s *Server) handleSetMint(c *gin.Context) {
	var req setMintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mint, err := solana.PublicKeyFromBase58(req.Mint)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mint address"})
		return
	}
	if err := s.service.SetTokenMint(s.authority, mint); err != nil {
		s.writeMarketError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token_mint": mint.String()})
}

func (s *Server) writeMarketError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, market.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, market.ErrBuyAmountTooSmall),
		errors.Is(err, market.ErrBuyAmountTooLarge),
		errors.Is(err, market.ErrSellAmountTooSmall),
		errors.Is(err, market.ErrInvalidPrice),
		errors.Is(err, market.ErrInsufficientBalance),
		errors.Is(err, market.ErrNotEligibleForAirdrop):
		status = http.StatusBadRequest
	case errors.Is(err, market.ErrAirdropAlreadyExecuted),
		errors.Is(err, market.ErrAirdropNotReady):
		status = http.StatusConflict
	case errors.Is(err, market.ErrInsufficientVaultBalance),
		errors.Is(err, market.ErrArithmeticOverflow):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// lamportsToSOL renders a lamport amount as a SOL decimal string.
func lamportsToSOL(lamports uint64) string {
	return decimal.NewFromUint64(lamports).Shift(-9).String()
}

// baseUnitsToWhole renders token base units as whole tokens.
func baseUnitsToWhole(units uint64) string {
	return decimal.NewFromUint64(units).Shift(-9).String()
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
