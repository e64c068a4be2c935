package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fossrlabs/fossr-engine/internal/engine"
	"github.com/fossrlabs/fossr-engine/internal/entropy"
	"github.com/fossrlabs/fossr-engine/internal/ledger"
	"github.com/fossrlabs/fossr-engine/internal/market"
)

type apiFixture struct {
	server *Server
	tokens *ledger.TokenLedger
	owner  solana.PublicKey
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	logger := zaptest.NewLogger(t)

	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	tokens := ledger.NewTokenLedger(mint, logger)

	m, err := market.New(&market.Config{
		Owner:        owner,
		TokenMint:    mint,
		InitialPrice: 100,
		Ledger:       tokens,
		Vault:        ledger.NewVault(logger),
		Entropy:      entropy.NewStaticSource([]byte{9, 8, 7, 6, 5, 4, 3, 2}),
		Logger:       logger,
	})
	require.NoError(t, err)

	service := engine.NewService(&engine.ServiceConfig{Market: m, Logger: logger})
	server := NewServer(&Config{
		Service:    service,
		Authority:  owner,
		ListenAddr: ":0",
		Logger:     logger,
	})
	return &apiFixture{server: server, tokens: tokens, owner: owner}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStateEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(100), body["current_price"])
	assert.Equal(t, f.owner.String(), body["owner"])
	assert.Equal(t, "0", body["incentive_pot_sol"])
	assert.Contains(t, []string{market.CycleAwaitingBoundary, market.CycleReady}, body["cycle_status"])
}

func TestBuyEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	buyer := solana.NewWallet().PublicKey()

	rec := f.do(t, http.MethodPost, "/api/v1/buy", map[string]any{
		"buyer":     buyer.String(),
		"native_in": 1_000_000_000,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["receipt_id"])
	assert.Equal(t, buyer.String(), body["buyer"])
	assert.NotEmpty(t, body["lock_tier"])
	assert.Greater(t, body["tokens_out"].(float64), float64(0))
	assert.Equal(t, "1", body["native_in_sol"])
}

func TestBuyEndpointRejectsBadInput(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/buy", map[string]any{
		"buyer":     "not-an-address",
		"native_in": 1_000_000_000,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/buy", map[string]any{
		"buyer":     solana.NewWallet().PublicKey().String(),
		"native_in": market.MinBuyAmount - 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSellEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	trader := solana.NewWallet().PublicKey()

	rec := f.do(t, http.MethodPost, "/api/v1/buy", map[string]any{
		"buyer":     trader.String(),
		"native_in": 1_000_000_000,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/sell", map[string]any{
		"seller":   trader.String(),
		"token_in": market.MinSellAmount,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Greater(t, body["native_out"].(float64), float64(0))
}

func TestSellEndpointRejectsPoorSeller(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/sell", map[string]any{
		"seller":   solana.NewWallet().PublicKey().String(),
		"token_in": market.MinSellAmount,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWinnerEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/winner", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	winner := solana.NewWallet().PublicKey()
	require.NoError(t, f.tokens.Mint(context.Background(), winner, market.MinAirdropEligible))

	rec = f.do(t, http.MethodPost, "/api/v1/admin/pot", map[string]any{"amount": 12345})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/admin/award", map[string]any{"winner": winner.String()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/winner", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, winner.String(), body["winner"])
	assert.Equal(t, float64(12345), body["amount"])
}

func TestAwardEndpointConflictsOnSecondDraw(t *testing.T) {
	f := newAPIFixture(t)
	winner := solana.NewWallet().PublicKey()
	require.NoError(t, f.tokens.Mint(context.Background(), winner, market.MinAirdropEligible))

	rec := f.do(t, http.MethodPost, "/api/v1/admin/pot", map[string]any{"amount": 500})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/admin/award", map[string]any{"winner": winner.String()})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/admin/award", map[string]any{"winner": winner.String()})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestResetEndpointBeforeBoundary(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/admin/reset", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSetMintEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	next := solana.NewWallet().PublicKey()

	rec := f.do(t, http.MethodPost, "/api/v1/admin/mint", map[string]any{"mint": next.String()})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/state", nil)
	body := decodeBody(t, rec)
	assert.Equal(t, next.String(), body["token_mint"])
}

func TestReceiptsEndpointValidatesAddress(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/receipts/%s", "bogus"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
