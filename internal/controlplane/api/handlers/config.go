package handlers

import (
	"io"
	"net/http"

	"github.com/marmos91/smbmanager/pkg/controlplane/runtime"
)

// ConfigHandler serves the whole registry configuration.
type ConfigHandler struct {
	rt *runtime.Runtime
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(rt *runtime.Runtime) *ConfigHandler {
	return &ConfigHandler{rt: rt}
}

// Raw handles GET /api/v1/config/raw: the configuration rendered in
// smb.conf syntax.
func (h *ConfigHandler) Raw(w http.ResponseWriter, r *http.Request) {
	text, err := h.rt.RawConfig(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to read configuration")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, text)
}
