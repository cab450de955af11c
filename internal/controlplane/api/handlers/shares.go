package handlers

import (
	"net/http"

	"github.com/marmos91/smbmanager/internal/controlplane/api/middleware"
	"github.com/marmos91/smbmanager/pkg/controlplane/runtime"
	"github.com/marmos91/smbmanager/pkg/reconcile"
)

// ShareHandler handles share section endpoints.
type ShareHandler struct {
	rt *runtime.Runtime
}

// NewShareHandler creates a new ShareHandler.
func NewShareHandler(rt *runtime.Runtime) *ShareHandler {
	return &ShareHandler{rt: rt}
}

// CreateShareRequest is the request body for POST /api/v1/shares.
type CreateShareRequest struct {
	Name string         `json:"name" validate:"required"`
	Path string         `json:"path" validate:"required"`
	Form reconcile.Form `json:"form"`
}

// List handles GET /api/v1/shares.
func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	shares, err := h.rt.ListShares(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to list shares")
		return
	}
	WriteJSONOK(w, shares)
}

// Create handles POST /api/v1/shares.
//
// Runs `net conf addshare` and applies the form against the new section.
// A form that fails after the share was added returns 422 and leaves the
// share in place.
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateShareRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	res, err := h.rt.CreateShare(r.Context(), req.Name, req.Path, req.Form, middleware.Actor(r.Context()))
	writeApplyResult(w, r, res, err, http.StatusCreated)
}

// Get handles GET /api/v1/shares/{name}.
func (h *ShareHandler) Get(w http.ResponseWriter, r *http.Request) {
	share, err := h.rt.GetShare(r.Context(), pathParam(r, "name"))
	if err != nil {
		writeError(w, r, err, "Failed to get share")
		return
	}
	WriteJSONOK(w, share)
}

// Update handles PUT /api/v1/shares/{name}. The body is the edited form.
func (h *ShareHandler) Update(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	if err := runtime.ValidateShareName(name); err != nil {
		writeError(w, r, err, "Invalid share name")
		return
	}

	var form reconcile.Form
	if !decodeJSONBody(w, r, &form) {
		return
	}

	res, err := h.rt.UpdateSection(r.Context(), name, form, middleware.Actor(r.Context()))
	writeApplyResult(w, r, res, err, http.StatusOK)
}

// Delete handles DELETE /api/v1/shares/{name}.
func (h *ShareHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.rt.DeleteShare(r.Context(), pathParam(r, "name"), middleware.Actor(r.Context())); err != nil {
		writeError(w, r, err, "Failed to delete share")
		return
	}
	WriteNoContent(w)
}
