package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/deadliner/internal/metrics"
	"github.com/dukerupert/deadliner/internal/model"
	"github.com/dukerupert/deadliner/internal/store"
)

func setupWalletHandler(t *testing.T) (*WalletHandler, *store.WalletStore) {
	t.Helper()
	ws := store.NewWalletStore(setupTestDB(t))
	h := NewWalletHandler(ws, nil, metrics.New(), discardLogger())
	h.now = fixedClock
	return h, ws
}

func fundWallet(t *testing.T, ws *store.WalletStore, userID string, points int) {
	t.Helper()
	if _, err := ws.AddSession(context.Background(), userID, points, 3600); err != nil {
		t.Fatalf("fund wallet: %v", err)
	}
}

func TestGetWalletCreatesEmpty(t *testing.T) {
	h, ws := setupWalletHandler(t)

	rec := httptest.NewRecorder()
	h.Get(rec, newRequest(t, "GET", "/api/wallet", nil, testUser))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	w := decodeBody[model.Wallet](t, rec)
	if w.UserID != "demo_user" || w.TotalPoints != 0 || len(w.RewardsRedeemed) != 0 {
		t.Errorf("wallet = %+v", w)
	}

	stored, _ := ws.Get(context.Background(), "demo_user")
	if stored == nil {
		t.Error("expected wallet to be persisted")
	}
}

func TestRedeemJSONBody(t *testing.T) {
	h, ws := setupWalletHandler(t)
	fundWallet(t, ws, "demo_user", 1200)

	rec := httptest.NewRecorder()
	h.Redeem(rec, newRequest(t, "POST", "/api/wallet/redeem", map[string]any{"tier_points": 1000, "amount": 50}, testUser))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[struct {
		Message    string           `json:"message"`
		Redemption model.Redemption `json:"redemption"`
	}](t, rec)
	if resp.Message != "Reward redeemed successfully" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Redemption.Points != 1000 || resp.Redemption.Amount != 50 {
		t.Errorf("redemption = %+v", resp.Redemption)
	}
	if resp.Redemption.RedeemedAt != "2026-02-05T09:30:00.000000" {
		t.Errorf("redeemed_at = %q", resp.Redemption.RedeemedAt)
	}

	w, _ := ws.Get(context.Background(), "demo_user")
	if w.TotalPoints != 200 || w.TotalEarnings != 50 {
		t.Errorf("wallet after redeem = %+v", w)
	}
	if len(w.RewardsRedeemed) != 1 {
		t.Errorf("expected 1 redemption, got %d", len(w.RewardsRedeemed))
	}
}

func TestRedeemQueryParams(t *testing.T) {
	h, ws := setupWalletHandler(t)
	fundWallet(t, ws, "demo_user", 3000)

	rec := httptest.NewRecorder()
	h.Redeem(rec, newRequest(t, "POST", "/api/wallet/redeem?tier_points=3000&amount=150", nil, testUser))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}

	w, _ := ws.Get(context.Background(), "demo_user")
	if w.TotalPoints != 0 || w.TotalEarnings != 150 {
		t.Errorf("wallet after redeem = %+v", w)
	}
}

func TestRedeemErrors(t *testing.T) {
	h, ws := setupWalletHandler(t)

	rec := httptest.NewRecorder()
	h.Redeem(rec, newRequest(t, "POST", "/api/wallet/redeem", map[string]any{"tier_points": 1000, "amount": 50}, testUser))
	if rec.Code != http.StatusNotFound {
		t.Errorf("no wallet: status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	fundWallet(t, ws, "demo_user", 500)
	rec = httptest.NewRecorder()
	h.Redeem(rec, newRequest(t, "POST", "/api/wallet/redeem", map[string]any{"tier_points": 1000, "amount": 50}, testUser))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("insufficient: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if resp := decodeBody[map[string]string](t, rec); resp["error"] != "insufficient points" {
		t.Errorf("error = %q", resp["error"])
	}
	w, _ := ws.Get(context.Background(), "demo_user")
	if w.TotalPoints != 500 || w.TotalEarnings != 0 || len(w.RewardsRedeemed) != 0 {
		t.Errorf("wallet changed on failed redeem: %+v", w)
	}

	rec = httptest.NewRecorder()
	h.Redeem(rec, newRequest(t, "POST", "/api/wallet/redeem?tier_points=abc&amount=1", nil, testUser))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad query: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = httptest.NewRecorder()
	h.Redeem(rec, newRequest(t, "POST", "/api/wallet/redeem", map[string]any{"tier_points": 0, "amount": 1}, testUser))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero tier: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRewardTiers(t *testing.T) {
	h, ws := setupWalletHandler(t)

	rec := httptest.NewRecorder()
	h.Tiers(rec, newRequest(t, "GET", "/api/wallet/tiers", nil, testUser))
	resp := decodeBody[tiersResponse](t, rec)
	if len(resp.Tiers) != 4 {
		t.Errorf("expected 4 tiers, got %d", len(resp.Tiers))
	}
	if resp.TotalPoints != 0 || resp.NextTier == nil || resp.NextTier.Points != 1000 {
		t.Errorf("tiers without wallet = %+v", resp)
	}
	if w, _ := ws.Get(context.Background(), "demo_user"); w != nil {
		t.Error("tiers should not create a wallet")
	}

	fundWallet(t, ws, "demo_user", 12000)
	rec = httptest.NewRecorder()
	h.Tiers(rec, newRequest(t, "GET", "/api/wallet/tiers", nil, testUser))
	resp = decodeBody[tiersResponse](t, rec)
	if resp.TotalPoints != 12000 || resp.NextTier != nil {
		t.Errorf("tiers with 12000 points = %+v", resp)
	}
}
