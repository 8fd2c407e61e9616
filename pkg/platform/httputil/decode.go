package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"

	dErrors "registro/pkg/domain-errors"
)

// DecodeJSON reads exactly one JSON value from the body into a new T. On
// failure it writes the error response and returns nil, false:
//   - a body over the size limit is 413 request_too_large
//   - an empty body, malformed JSON or trailing data is 400 bad_request
//   - a field of the wrong JSON type is 400 invalid_input naming the field
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(&req)
	if err == nil && dec.More() {
		err = errTrailingData
	}
	if err == nil {
		return &req, true
	}

	logger.WarnContext(ctx, "failed to decode request body",
		"error", err,
		"request_id", requestID,
	)
	var (
		maxBytesErr *http.MaxBytesError
		typeErr     *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &maxBytesErr):
		WriteJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:            "request_too_large",
			ErrorDescription: "request body too large",
		})
	case errors.Is(err, io.EOF):
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body is required"))
	case errors.As(err, &typeErr) && typeErr.Field != "":
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s must be a %s", typeErr.Field, jsonKind(typeErr.Type))))
	default:
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
	}
	return nil, false
}

var errTrailingData = errors.New("unexpected data after JSON body")

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "list"
	default:
		return "object"
	}
}

// Validatable is implemented by request types that support validation.
type Validatable interface {
	Validate() error
}

// Normalizable is implemented by request types that support normalization.
type Normalizable interface {
	Normalize()
}

// Sanitizable is implemented by request types that support sanitization.
type Sanitizable interface {
	Sanitize()
}

// PrepareRequest runs Sanitize, Normalize and Validate, in that order, on the
// hooks the request implements.
func PrepareRequest(req any) error {
	if s, ok := req.(Sanitizable); ok {
		s.Sanitize()
	}
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := req.(Validatable); ok {
		return v.Validate()
	}
	return nil
}

// DecodeAndPrepare combines JSON decoding with request preparation.
// A plain error from Validate is reported as a validation failure; domain
// errors keep their code.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req, ok := DecodeJSON[T](w, r, logger, ctx, requestID)
	if !ok {
		return nil, false
	}

	if err := PrepareRequest(req); err != nil {
		logger.WarnContext(ctx, "invalid request",
			"error", err,
			"request_id", requestID,
		)
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			WriteError(w, err)
		} else {
			WriteError(w, dErrors.New(dErrors.CodeValidation, err.Error()))
		}
		return nil, false
	}

	return req, true
}
