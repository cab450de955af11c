package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/marmos91/smbmanager/pkg/controlplane/models"
	"github.com/marmos91/smbmanager/pkg/controlplane/runtime"
)

// Limits for GET /api/v1/history.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 1000
)

// HistoryHandler serves the apply audit trail.
type HistoryHandler struct {
	rt *runtime.Runtime
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(rt *runtime.Runtime) *HistoryHandler {
	return &HistoryHandler{rt: rt}
}

// HistoryEntry is one recorded apply.
type HistoryEntry struct {
	ID         string            `json:"id"`
	Section    string            `json:"section"`
	Scope      string            `json:"scope"`
	Operation  string            `json:"operation"`
	Actor      string            `json:"actor"`
	ToSet      map[string]string `json:"to_set"`
	ToDelete   []string          `json:"to_delete"`
	State      string            `json:"state"`
	Error      string            `json:"error,omitempty"`
	DurationMs float64           `json:"duration_ms"`
	CreatedAt  time.Time         `json:"created_at"`
}

// List handles GET /api/v1/history?section=&limit=.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxHistoryLimit)
	}

	records, err := h.rt.History(r.Context(), r.URL.Query().Get("section"), limit)
	if err != nil {
		writeError(w, r, err, "Failed to list history")
		return
	}

	out := make([]HistoryEntry, len(records))
	for i, rec := range records {
		out[i] = historyEntry(rec)
	}
	WriteJSONOK(w, out)
}

func historyEntry(rec *models.ApplyRecord) HistoryEntry {
	return HistoryEntry{
		ID:         rec.ID,
		Section:    rec.Section,
		Scope:      rec.Scope,
		Operation:  rec.Operation,
		Actor:      rec.Actor,
		ToSet:      rec.ToSet,
		ToDelete:   rec.ToDelete,
		State:      rec.State,
		Error:      rec.Error,
		DurationMs: rec.DurationMs,
		CreatedAt:  rec.CreatedAt,
	}
}
