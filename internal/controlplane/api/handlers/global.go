package handlers

import (
	"net/http"

	"github.com/marmos91/smbmanager/internal/controlplane/api/middleware"
	"github.com/marmos91/smbmanager/pkg/controlplane/runtime"
	"github.com/marmos91/smbmanager/pkg/reconcile"
	"github.com/marmos91/smbmanager/pkg/smbconf"
)

// GlobalHandler handles the [global] section endpoints.
type GlobalHandler struct {
	rt *runtime.Runtime
}

// NewGlobalHandler creates a new GlobalHandler.
func NewGlobalHandler(rt *runtime.Runtime) *GlobalHandler {
	return &GlobalHandler{rt: rt}
}

// Get handles GET /api/v1/global.
func (h *GlobalHandler) Get(w http.ResponseWriter, r *http.Request) {
	section, err := h.rt.GetGlobal(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to get global section")
		return
	}
	WriteJSONOK(w, section)
}

// Update handles PUT /api/v1/global.
func (h *GlobalHandler) Update(w http.ResponseWriter, r *http.Request) {
	var form reconcile.Form
	if !decodeJSONBody(w, r, &form) {
		return
	}

	res, err := h.rt.UpdateSection(r.Context(), smbconf.GlobalSection, form, middleware.Actor(r.Context()))
	writeApplyResult(w, r, res, err, http.StatusOK)
}
