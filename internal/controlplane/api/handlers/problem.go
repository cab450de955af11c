// Package handlers implements the control plane REST endpoints. Failures
// are written as RFC 7807 problem documents.
package handlers

import (
	"encoding/json"
	"net/http"
)

// ContentTypeProblemJSON is the media type of every error response.
const ContentTypeProblemJSON = "application/problem+json"

// ProblemTypeApplyFailed marks a change that `net` refused part-way.
const ProblemTypeApplyFailed = "urn:smbm:problem:apply-failed"

// Problem is an RFC 7807 problem document.
type Problem struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// ApplyProblem extends Problem for failed applies. Detail is the `net`
// output verbatim and Result what was changed before the failing step.
type ApplyProblem struct {
	Problem
	Step   string `json:"step,omitempty"`
	Result any    `json:"result,omitempty"`
}

// WriteProblem writes an about:blank problem titled after status.
func WriteProblem(w http.ResponseWriter, status int, detail string) {
	encode(w, status, ContentTypeProblemJSON, Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}

// WriteApplyProblem writes the 422 problem of a failed apply.
func WriteApplyProblem(w http.ResponseWriter, step, detail string, result any) {
	const status = http.StatusUnprocessableEntity
	encode(w, status, ContentTypeProblemJSON, ApplyProblem{
		Problem: Problem{Type: ProblemTypeApplyFailed, Title: "Apply Failed", Status: status, Detail: detail},
		Step:    step,
		Result:  result,
	})
}

func BadRequest(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusBadRequest, detail)
}

func Unauthorized(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusUnauthorized, detail)
}

func Forbidden(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusForbidden, detail)
}

func InternalServerError(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusInternalServerError, detail)
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	encode(w, status, "application/json", v)
}

func WriteJSONOK(w http.ResponseWriter, v any)      { WriteJSON(w, http.StatusOK, v) }
func WriteJSONCreated(w http.ResponseWriter, v any) { WriteJSON(w, http.StatusCreated, v) }
func WriteNoContent(w http.ResponseWriter)          { w.WriteHeader(http.StatusNoContent) }

func encode(w http.ResponseWriter, status int, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
