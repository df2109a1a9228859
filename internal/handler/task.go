package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/deadliner/internal/auth"
	"github.com/dukerupert/deadliner/internal/model"
	"github.com/dukerupert/deadliner/internal/scheduler"
	"github.com/dukerupert/deadliner/internal/store"
	"github.com/dukerupert/deadliner/internal/websocket"
)

type TaskHandler struct {
	taskStore *store.TaskStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{taskStore: ts, hub: hub, logger: logger}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskStore.ListByUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeInternal(w, h.logger, "fetching tasks", err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id := r.PathValue("id")

	ok, err := h.taskStore.Complete(r.Context(), userID, id)
	if err != nil {
		writeInternal(w, h.logger, "completing task", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("task", "completed", id, nil))

	writeJSON(w, http.StatusOK, map[string]string{"message": "Task completed successfully"})
}

type rescheduleRequest struct {
	NewDate string `json:"new_date" validate:"required"`
}

// Reschedule takes new_date from the query string or, failing that, a JSON body.
func (h *TaskHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id := r.PathValue("id")

	req := rescheduleRequest{NewDate: r.URL.Query().Get("new_date")}
	if req.NewDate == "" {
		if err := decodeJSON(r, &req); err != nil && err != errEmptyBody {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}
	req.NewDate = strings.TrimSpace(req.NewDate)
	if msg := validateRequest(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), userID, id)
	if err != nil {
		writeInternal(w, h.logger, "rescheduling task", err)
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	moved := scheduler.Reschedule(*task, req.NewDate)
	ok, err := h.taskStore.Reschedule(r.Context(), userID, id, moved.ScheduledDate)
	if err != nil {
		writeInternal(w, h.logger, "rescheduling task", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("task", "rescheduled", id, map[string]any{
		"from": task.ScheduledDate,
		"to":   moved.ScheduledDate,
	}))

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Task rescheduled successfully",
		"task":    moved,
	})
}

// DailyPlan assembles the caller's plan for the {date} path value.
func (h *TaskHandler) DailyPlan(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")

	tasks, err := h.taskStore.ListByUserAndDate(r.Context(), auth.UserID(r.Context()), date)
	if err != nil {
		writeInternal(w, h.logger, "fetching daily plan", err)
		return
	}

	writeJSON(w, http.StatusOK, scheduler.AssembleDailyPlan(tasks, date))
}
