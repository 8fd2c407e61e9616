package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "registro/pkg/domain-errors"
)

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encoding failure can only truncate the body.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError translates transport-agnostic domain errors into HTTP status codes
// and error bodies. Server-side failures never echo their message to the caller.
func WriteError(w http.ResponseWriter, err error) {
	code, ok := dErrors.CodeOf(err)
	if !ok {
		code = dErrors.CodeInternal
	}

	status := DomainCodeToHTTPStatus(code)
	response := ErrorResponse{Error: DomainCodeToHTTPCode(code)}
	if ok && status < http.StatusInternalServerError {
		var domainErr *dErrors.Error
		errors.As(err, &domainErr)
		response.ErrorDescription = domainErr.Message
	}
	WriteJSON(w, status, response)
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeCapacityExceeded:
		return http.StatusTooManyRequests
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeStoreUnavailable, dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to the "error" field of the JSON body.
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest:
		return "bad_request"
	case dErrors.CodeInvalidInput:
		return "invalid_input"
	case dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return "validation_error"
	case dErrors.CodeConflict:
		return "conflict"
	case dErrors.CodeCapacityExceeded:
		return "capacity_exceeded"
	case dErrors.CodeTimeout:
		return "timeout"
	default:
		return "internal_error"
	}
}
