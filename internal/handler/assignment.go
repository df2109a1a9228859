package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/deadliner/internal/auth"
	"github.com/dukerupert/deadliner/internal/metrics"
	"github.com/dukerupert/deadliner/internal/model"
	"github.com/dukerupert/deadliner/internal/scheduler"
	"github.com/dukerupert/deadliner/internal/store"
	"github.com/dukerupert/deadliner/internal/websocket"
)

type AssignmentHandler struct {
	assignmentStore *store.AssignmentStore
	taskStore       *store.TaskStore
	userStore       *store.UserStore
	hub             *websocket.Hub
	metrics         *metrics.Metrics
	logger          *slog.Logger
	now             func() time.Time
}

func NewAssignmentHandler(as *store.AssignmentStore, ts *store.TaskStore, us *store.UserStore, hub *websocket.Hub, m *metrics.Metrics, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentStore: as,
		taskStore:       ts,
		userStore:       us,
		hub:             hub,
		metrics:         m,
		logger:          logger,
		now:             time.Now,
	}
}

type assignmentRequest struct {
	Title          string   `json:"title" validate:"required"`
	Subject        string   `json:"subject" validate:"required"`
	Type           string   `json:"type" validate:"required"`
	DueDate        string   `json:"due_date" validate:"required"`
	Priority       string   `json:"priority" validate:"required"`
	EstimatedHours *float64 `json:"estimated_hours" validate:"required,gte=0,lte=10000"`
	Description    *string  `json:"description"`
}

// Create stores an assignment and its generated study tasks.
func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Subject = strings.TrimSpace(req.Subject)
	if msg := validateRequest(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ac, _ := auth.FromContext(r.Context())
	now := h.now()
	a := model.Assignment{
		ID:             uuid.NewString(),
		Title:          req.Title,
		Subject:        req.Subject,
		Type:           model.AssignmentType(req.Type),
		DueDate:        req.DueDate,
		Priority:       model.Priority(req.Priority),
		EstimatedHours: *req.EstimatedHours,
		Description:    req.Description,
		CreatedAt:      timestamp(now),
		UserID:         ac.UserID,
	}

	user, err := h.userStore.GetOrCreate(r.Context(), model.User{
		ID:           ac.UserID,
		Email:        ac.Email,
		Name:         ac.Name,
		StudyProfile: model.DefaultStudyProfile(),
		CreatedAt:    a.CreatedAt,
	})
	if err != nil {
		writeInternal(w, h.logger, "creating assignment", err)
		return
	}

	// Generate before persisting so a rejected due date leaves nothing behind.
	tasks, err := scheduler.Generate(a, user.StudyProfile, now)
	if errors.Is(err, scheduler.ErrDueDateTooFar) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeInternal(w, h.logger, "creating assignment", err)
		return
	}

	created, err := h.assignmentStore.CreateWithTasks(r.Context(), a, tasks)
	if err != nil {
		writeInternal(w, h.logger, "creating assignment", err)
		return
	}

	h.metrics.TasksGenerated(string(a.Type), len(tasks))
	h.logger.Info("assignment created", "assignment_id", a.ID, "type", a.Type, "tasks", len(tasks))
	broadcast(h.hub, ac.UserID, websocket.NewMessage("assignment", "created", a.ID, map[string]any{"tasks": len(tasks)}))

	writeJSON(w, http.StatusOK, created)
}

func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.assignmentStore.ListByUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeInternal(w, h.logger, "fetching assignments", err)
		return
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

// Delete removes an assignment and every task generated for it.
func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id := r.PathValue("id")

	deleted, err := h.assignmentStore.Delete(r.Context(), userID, id)
	if err != nil {
		writeInternal(w, h.logger, "deleting assignment", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "assignment not found")
		return
	}

	n, err := h.taskStore.DeleteByAssignment(r.Context(), userID, id)
	if err != nil {
		writeInternal(w, h.logger, "deleting assignment", err)
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("assignment", "deleted", id, map[string]any{"tasks_deleted": n}))

	writeJSON(w, http.StatusOK, map[string]string{"message": "Assignment and associated tasks deleted successfully"})
}
