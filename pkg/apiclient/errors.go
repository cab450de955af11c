package apiclient

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ProblemTypeApplyFailed identifies apply failures in problem documents.
const ProblemTypeApplyFailed = "urn:smbm:problem:apply-failed"

// APIError is an RFC 7807 problem document returned by the API.
type APIError struct {
	StatusCode int    `json:"status"`
	Type       string `json:"type,omitempty"`
	Title      string `json:"title,omitempty"`
	Detail     string `json:"detail,omitempty"`

	// Step and Result are set on apply failures: the step that failed and
	// what had changed by then.
	Step   string       `json:"step,omitempty"`
	Result *ApplyResult `json:"result,omitempty"`
}

// Error implements the error interface. For apply failures this is the
// `net` output, verbatim.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Title != "" {
		return e.Title
	}
	return http.StatusText(e.StatusCode)
}

// IsAuthError returns true if this is an authentication error.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsNotFound returns true if this is a not found error.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsConflict returns true if this is a conflict error.
func (e *APIError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// IsValidationError returns true if the request was rejected as invalid.
func (e *APIError) IsValidationError() bool {
	return e.StatusCode == http.StatusBadRequest
}

// IsApplyFailure returns true if `net` rejected part of an apply.
func (e *APIError) IsApplyFailure() bool {
	return e.Type == ProblemTypeApplyFailed
}

// IsExpired returns true if an edit session expired.
func (e *APIError) IsExpired() bool {
	return e.StatusCode == http.StatusGone
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// decodeError reads a problem document. Health envelopes carry their
// message in "error"; anything else is kept as text.
func decodeError(status int, body []byte) *APIError {
	var doc struct {
		APIError
		Message string `json:"error"`
	}
	if json.Unmarshal(body, &doc) == nil {
		apiErr := doc.APIError
		if apiErr.Detail == "" {
			apiErr.Detail = doc.Message
		}
		if apiErr.Detail != "" || apiErr.Title != "" {
			apiErr.StatusCode = status
			return &apiErr
		}
	}
	return &APIError{
		StatusCode: status,
		Detail:     strings.TrimSpace(string(body)),
	}
}
