package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/deadliner/internal/auth"
	"github.com/dukerupert/deadliner/internal/metrics"
	"github.com/dukerupert/deadliner/internal/model"
	"github.com/dukerupert/deadliner/internal/scheduler"
	"github.com/dukerupert/deadliner/internal/store"
	"github.com/dukerupert/deadliner/internal/websocket"
)

type WalletHandler struct {
	walletStore *store.WalletStore
	hub         *websocket.Hub
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

func NewWalletHandler(ws *store.WalletStore, hub *websocket.Hub, m *metrics.Metrics, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{walletStore: ws, hub: hub, metrics: m, logger: logger, now: time.Now}
}

// Get returns the caller's wallet, creating an empty one on first access.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.walletStore.GetOrCreate(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeInternal(w, h.logger, "fetching wallet", err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

type redeemRequest struct {
	TierPoints int     `json:"tier_points" validate:"gt=0"`
	Amount     float64 `json:"amount" validate:"gte=0"`
}

// parseRedeemRequest reads tier_points and amount from the query string when
// present, otherwise from a JSON body.
func parseRedeemRequest(r *http.Request) (redeemRequest, error) {
	var req redeemRequest
	q := r.URL.Query()
	if q.Has("tier_points") || q.Has("amount") {
		var err error
		if req.TierPoints, err = strconv.Atoi(q.Get("tier_points")); err != nil {
			return req, errors.New("tier_points must be an integer")
		}
		if req.Amount, err = strconv.ParseFloat(q.Get("amount"), 64); err != nil {
			return req, errors.New("amount must be a number")
		}
		return req, nil
	}
	if err := decodeJSON(r, &req); err != nil {
		return req, errors.New("invalid JSON")
	}
	return req, nil
}

func (h *WalletHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	req, err := parseRedeemRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateRequest(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	userID := auth.UserID(r.Context())
	redemption, err := h.walletStore.Redeem(r.Context(), userID, model.Redemption{
		ID:         uuid.NewString(),
		Points:     req.TierPoints,
		Amount:     req.Amount,
		RedeemedAt: timestamp(h.now()),
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "wallet not found")
		return
	case errors.Is(err, store.ErrInsufficientPoints):
		writeError(w, http.StatusBadRequest, "insufficient points")
		return
	case err != nil:
		writeInternal(w, h.logger, "redeeming reward", err)
		return
	}

	h.metrics.PointsRedeemed(redemption.Points)
	h.logger.Info("reward redeemed", "user_id", userID, "points", redemption.Points, "amount", redemption.Amount)
	broadcast(h.hub, userID, websocket.NewMessage("wallet", "redeemed", redemption.ID, map[string]any{
		"points": redemption.Points,
		"amount": redemption.Amount,
	}))

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Reward redeemed successfully",
		"redemption": redemption,
	})
}

type tiersResponse struct {
	Tiers       []model.RewardTier `json:"tiers"`
	TotalPoints int                `json:"total_points"`
	NextTier    *model.RewardTier  `json:"next_tier"`
}

// Tiers lists the reward catalog and the next tier the caller is working toward.
func (h *WalletHandler) Tiers(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.walletStore.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeInternal(w, h.logger, "fetching reward tiers", err)
		return
	}
	points := 0
	if wallet != nil {
		points = wallet.TotalPoints
	}

	writeJSON(w, http.StatusOK, tiersResponse{
		Tiers:       scheduler.RewardTiers(),
		TotalPoints: points,
		NextTier:    scheduler.NextTier(points),
	})
}
