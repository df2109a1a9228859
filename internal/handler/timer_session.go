package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/deadliner/internal/auth"
	"github.com/dukerupert/deadliner/internal/metrics"
	"github.com/dukerupert/deadliner/internal/model"
	"github.com/dukerupert/deadliner/internal/scheduler"
	"github.com/dukerupert/deadliner/internal/store"
	"github.com/dukerupert/deadliner/internal/websocket"
)

type TimerSessionHandler struct {
	sessionStore *store.TimerSessionStore
	walletStore  *store.WalletStore
	hub          *websocket.Hub
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time
}

func NewTimerSessionHandler(ss *store.TimerSessionStore, ws *store.WalletStore, hub *websocket.Hub, m *metrics.Metrics, logger *slog.Logger) *TimerSessionHandler {
	return &TimerSessionHandler{sessionStore: ss, walletStore: ws, hub: hub, metrics: m, logger: logger, now: time.Now}
}

type timerSessionRequest struct {
	TaskID       *string `json:"task_id"`
	TaskTitle    string  `json:"task_title"`
	StartTime    string  `json:"start_time" validate:"required"`
	EndTime      *string `json:"end_time"`
	Duration     *int    `json:"duration" validate:"required,gte=0"`
	PointsEarned *int    `json:"points_earned" validate:"omitempty,gte=0"`
	Completed    bool    `json:"completed"`
}

// Create records a finished timer session and credits the caller's wallet.
// Points default to the duration-based award when the client sends none.
func (h *TimerSessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req timerSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := validateRequest(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	userID := auth.UserID(r.Context())
	points := scheduler.PointsForDuration(*req.Duration)
	if req.PointsEarned != nil {
		points = *req.PointsEarned
	}

	ts := model.TimerSession{
		ID:           uuid.NewString(),
		UserID:       userID,
		TaskID:       req.TaskID,
		TaskTitle:    req.TaskTitle,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Duration:     *req.Duration,
		PointsEarned: points,
		Completed:    req.Completed,
	}

	created, err := h.sessionStore.Create(r.Context(), ts, timestamp(h.now()))
	if err != nil {
		writeInternal(w, h.logger, "creating timer session", err)
		return
	}

	wallet, err := h.walletStore.AddSession(r.Context(), userID, created.PointsEarned, created.Duration)
	if err != nil {
		writeInternal(w, h.logger, "creating timer session", err)
		return
	}

	h.metrics.PointsEarned(created.PointsEarned)
	broadcast(h.hub, userID, websocket.NewMessage("timer_session", "created", created.ID, nil))
	broadcast(h.hub, userID, websocket.NewMessage("wallet", "updated", userID, map[string]any{
		"total_points": wallet.TotalPoints,
	}))

	writeJSON(w, http.StatusOK, created)
}

func (h *TimerSessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessionStore.ListByUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeInternal(w, h.logger, "fetching timer sessions", err)
		return
	}
	if sessions == nil {
		sessions = []model.TimerSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}
