package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/deadliner/internal/auth"
	"github.com/dukerupert/deadliner/internal/model"
	"github.com/dukerupert/deadliner/internal/store"
)

const upcomingWindow = 7 * 24 * time.Hour

type StatsHandler struct {
	taskStore       *store.TaskStore
	assignmentStore *store.AssignmentStore
	logger          *slog.Logger
	now             func() time.Time
}

func NewStatsHandler(ts *store.TaskStore, as *store.AssignmentStore, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{taskStore: ts, assignmentStore: as, logger: logger, now: time.Now}
}

// Get reports task completion and the number of assignments due in the next
// seven days. Due dates are compared as strings against naive timestamps.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	total, completed, err := h.taskStore.Counts(r.Context(), userID)
	if err != nil {
		writeInternal(w, h.logger, "fetching stats", err)
		return
	}

	now := h.now()
	upcoming, err := h.assignmentStore.CountDueBetween(r.Context(), userID, timestamp(now), timestamp(now.Add(upcomingWindow)))
	if err != nil {
		writeInternal(w, h.logger, "fetching stats", err)
		return
	}

	stats := model.Stats{
		TotalTasks:        total,
		CompletedTasks:    completed,
		UpcomingDeadlines: upcoming,
	}
	if total > 0 {
		stats.CompletionRate = float64(completed) / float64(total) * 100
	}
	writeJSON(w, http.StatusOK, stats)
}
