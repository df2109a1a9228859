package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/deadliner/internal/websocket"
)

// timestampLayout matches the naive ISO-8601 timestamps stored for created_at,
// redeemed_at and compared against due_date strings.
const timestampLayout = "2006-01-02T15:04:05.000000"

var errEmptyBody = errors.New("empty body")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeInternal reports an unexpected failure with its underlying message.
func writeInternal(w http.ResponseWriter, logger *slog.Logger, action string, err error) {
	logger.Error(action, "error", err)
	writeError(w, http.StatusInternalServerError, "error "+action+": "+err.Error())
}

// decodeJSON decodes the request body into v. It returns errEmptyBody when
// there is no body at all so callers can fall back to query parameters.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

func broadcast(hub *websocket.Hub, userID string, msg websocket.Message) {
	if hub != nil {
		hub.BroadcastTo(userID, msg)
	}
}

func timestamp(t time.Time) string {
	return t.Format(timestampLayout)
}
