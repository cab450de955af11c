package handlers

import (
	"errors"
	"net/http"

	"github.com/marmos91/smbmanager/internal/logger"
	"github.com/marmos91/smbmanager/pkg/controlplane/models"
	"github.com/marmos91/smbmanager/pkg/controlplane/runtime"
	"github.com/marmos91/smbmanager/pkg/netconf"
	"github.com/marmos91/smbmanager/pkg/reconcile"
)

// MapError translates a runtime or store error to an HTTP status and problem
// detail. Unknown errors map to 500 with fallback as detail.
func MapError(err error, fallback string) (int, string) {
	var sinkErr *netconf.SinkError
	var applyErr *reconcile.ApplyError

	switch {
	// Not found -> 404
	case errors.Is(err, models.ErrShareNotFound):
		return http.StatusNotFound, "Share not found"
	case errors.Is(err, models.ErrSessionNotFound):
		return http.StatusNotFound, "Edit session not found"
	case errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, models.ErrApplyRecordNotFound):
		return http.StatusNotFound, "Apply record not found"

	case errors.Is(err, models.ErrSessionExpired):
		return http.StatusGone, "Edit session expired"

	// Conflicts -> 409
	case errors.Is(err, models.ErrDuplicateShare):
		return http.StatusConflict, "Share already exists"
	case errors.Is(err, models.ErrDuplicateUser):
		return http.StatusConflict, "User already exists"

	// Bad input -> 400
	case errors.Is(err, models.ErrInvalidShareName),
		errors.Is(err, models.ErrInvalidSharePath),
		errors.Is(err, models.ErrPasswordTooShort),
		errors.Is(err, models.ErrPasswordTooLong):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, models.ErrUserDisabled):
		return http.StatusForbidden, "User account is disabled"

	// The configuration could not be read: the upstream is `net`.
	case errors.Is(err, models.ErrConfigUnavailable):
		return http.StatusBadGateway, err.Error()

	// `net` refused a change: its output is the detail, verbatim.
	case errors.As(err, &applyErr):
		return http.StatusUnprocessableEntity, applyErr.Error()
	case errors.As(err, &sinkErr):
		return http.StatusUnprocessableEntity, sinkErr.Error()
	}

	return http.StatusInternalServerError, fallback
}

// writeError writes err as a problem response.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, detail := MapError(err, fallback)
	if status >= http.StatusInternalServerError {
		logger.ErrorCtx(r.Context(), fallback, logger.Err(err))
	}
	WriteProblem(w, status, detail)
}

// writeApplyResult writes the result of a change with status, or the
// apply-failed problem carrying the partial result.
func writeApplyResult(w http.ResponseWriter, r *http.Request, res *runtime.ApplyResult, err error, status int) {
	if err == nil {
		WriteJSON(w, status, res)
		return
	}

	var applyErr *reconcile.ApplyError
	if errors.As(err, &applyErr) {
		logger.WarnCtx(r.Context(), "Apply failed",
			logger.Section(applyErr.Section), logger.Step(string(applyErr.Step)), logger.Err(err))
		WriteApplyProblem(w, string(applyErr.Step), applyErr.Error(), res)
		return
	}
	writeError(w, r, err, "Failed to apply changes")
}
