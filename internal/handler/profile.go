package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/deadliner/internal/auth"
	"github.com/dukerupert/deadliner/internal/model"
	"github.com/dukerupert/deadliner/internal/store"
	"github.com/dukerupert/deadliner/internal/websocket"
)

type ProfileHandler struct {
	userStore *store.UserStore
	hub       *websocket.Hub
	logger    *slog.Logger
	now       func() time.Time
}

func NewProfileHandler(us *store.UserStore, hub *websocket.Hub, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{userStore: us, hub: hub, logger: logger, now: time.Now}
}

type profileRequest struct {
	DailyStudyHours     float64  `json:"daily_study_hours" validate:"gte=0,lte=24"`
	PreferredStudyTimes []string `json:"preferred_study_times"`
	Subjects            []string `json:"subjects"`
	StudyStyle          string   `json:"study_style"`
}

// Get returns the stored profile, or the defaults for a user never stored.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.userStore.GetByID(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeInternal(w, h.logger, "fetching profile", err)
		return
	}
	if u == nil {
		writeJSON(w, http.StatusOK, model.DefaultStudyProfile())
		return
	}
	writeJSON(w, http.StatusOK, u.StudyProfile)
}

// Update replaces the whole profile. Fields missing from the body take their defaults.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	def := model.DefaultStudyProfile()
	req := profileRequest{
		DailyStudyHours:     def.DailyStudyHours,
		PreferredStudyTimes: def.PreferredStudyTimes,
		Subjects:            def.Subjects,
		StudyStyle:          string(def.StudyStyle),
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := validateRequest(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ac, _ := auth.FromContext(r.Context())
	userID := ac.UserID
	u := model.User{
		ID:    userID,
		Email: ac.Email,
		Name:  ac.Name,
		StudyProfile: model.StudyProfile{
			DailyStudyHours:     req.DailyStudyHours,
			PreferredStudyTimes: req.PreferredStudyTimes,
			Subjects:            req.Subjects,
			StudyStyle:          model.StudyStyle(req.StudyStyle),
		},
		CreatedAt: timestamp(h.now()),
	}
	if err := h.userStore.UpsertProfile(r.Context(), u); err != nil {
		writeInternal(w, h.logger, "updating profile", err)
		return
	}

	broadcast(h.hub, userID, websocket.NewMessage("profile", "updated", userID, nil))

	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated successfully"})
}
