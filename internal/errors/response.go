package errors

import (
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrorResponse is the JSON body returned by every API handler on failure.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Display       string                 `json:"message"`
	InternalError string                 `json:"internal_error,omitempty"`
	Details       map[string]interface{} `json:"details,omitempty"`
}

// NewErrorResponse builds the response body. The display message is the first
// hint on the chain, or a generic message when there is none; internal errors
// never leak their message to the caller.
func NewErrorResponse(err error) ErrorResponse {
	status := HTTPStatusFromErr(err)

	display := http.StatusText(status)
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		display = hints[0]
	}

	detail := ErrorDetail{Display: display}
	if status < http.StatusInternalServerError {
		detail.InternalError = err.Error()
		if details := GetReportableDetails(err); len(details) > 0 {
			detail.Details = details
		}
	}

	return ErrorResponse{Success: false, Error: detail}
}

// HTTPStatusFromErr maps a marked error to its HTTP status.
func HTTPStatusFromErr(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err), IsConflict(err), IsAuthentication(err), IsAlreadyExists(err), IsInvalidOperation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsUnauthorized(err):
		return http.StatusUnauthorized
	case IsPermissionDenied(err):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Code returns a short machine readable name for the error class, used in logs.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return "validation"
	case IsConflict(err):
		return "conflict"
	case IsAuthentication(err):
		return "authentication"
	case IsNotFound(err):
		return "not_found"
	case IsUnauthorized(err):
		return "unauthorized"
	case IsPermissionDenied(err):
		return "permission_denied"
	case IsUpstream(err):
		return "upstream"
	case IsDatabase(err):
		return "persistence"
	default:
		return strings.ReplaceAll(strings.ToLower(http.StatusText(HTTPStatusFromErr(err))), " ", "_")
	}
}
