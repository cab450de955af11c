package handlers

import (
	"net/http"

	"github.com/marmos91/smbmanager/internal/controlplane/api/middleware"
	"github.com/marmos91/smbmanager/pkg/controlplane/runtime"
	"github.com/marmos91/smbmanager/pkg/reconcile"
)

// SessionHandler handles edit session endpoints.
//
// A session pins the baseline an editor started from, so that the apply
// diffs against what the editor saw rather than what is current.
type SessionHandler struct {
	rt *runtime.Runtime
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(rt *runtime.Runtime) *SessionHandler {
	return &SessionHandler{rt: rt}
}

// OpenSessionRequest is the request body for POST /api/v1/sessions.
type OpenSessionRequest struct {
	Section string `json:"section" validate:"required"`
}

// Open handles POST /api/v1/sessions.
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	s, err := h.rt.OpenEdit(r.Context(), req.Section, middleware.Actor(r.Context()))
	if err != nil {
		writeError(w, r, err, "Failed to open edit session")
		return
	}
	WriteJSONCreated(w, s)
}

// Get handles GET /api/v1/sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.rt.GetSession(pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Failed to get edit session")
		return
	}
	WriteJSONOK(w, s)
}

// Apply handles POST /api/v1/sessions/{id}/apply. The body is the edited
// form. The session is closed whatever the outcome.
func (h *SessionHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var form reconcile.Form
	if !decodeJSONBody(w, r, &form) {
		return
	}

	res, err := h.rt.ApplyEdit(r.Context(), pathParam(r, "id"), form, middleware.Actor(r.Context()))
	writeApplyResult(w, r, res, err, http.StatusOK)
}

// Cancel handles DELETE /api/v1/sessions/{id}.
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.rt.CancelEdit(pathParam(r, "id")); err != nil {
		writeError(w, r, err, "Failed to cancel edit session")
		return
	}
	WriteNoContent(w)
}
