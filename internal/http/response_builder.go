// Package http provides the JSON API server and its handlers.
//
// This file implements the Builder Pattern for JSON responses and the
// mapping from service errors to status codes.

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"brokemate/internal/core"
	applog "brokemate/internal/log"
	"brokemate/internal/services"
)

// errBadRequest marks malformed requests: bad JSON, wrong content type or
// unparsable query values.
var errBadRequest = errors.New("bad request")

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	data       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Data sets the value encoded as the response body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.data == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	body, err := json.Marshal(b.data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"internal_error","message":"encoding response failed"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse creates an error response with a machine readable code.
func ErrorResponse(statusCode int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Data(ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Data(v).Write(w)
}

// classifyError maps service errors to a status and error code. Unknown
// errors are internal.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, services.ErrMissingUser):
		return http.StatusBadRequest, applog.ErrorTypeValidation
	case core.IsValidation(err), errors.Is(err, services.ErrPINMismatch):
		return http.StatusUnprocessableEntity, applog.ErrorTypeValidation
	case errors.Is(err, services.ErrInvalidPIN):
		return http.StatusUnauthorized, applog.ErrorTypeAuth
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrProfileNotFound):
		return http.StatusNotFound, applog.ErrorTypeNotFound
	case errors.Is(err, services.ErrProfileExists), errors.Is(err, services.ErrStaleResponse):
		return http.StatusConflict, applog.ErrorTypeConflict
	case errors.Is(err, services.ErrAdapterFailed), errors.Is(err, services.ErrAdapterContract):
		return http.StatusBadGateway, applog.ErrorTypeUpstream
	case errors.Is(err, services.ErrAssistantUnavailable):
		return http.StatusServiceUnavailable, applog.ErrorTypeUpstream
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, applog.ErrorTypeTimeout
	default:
		return http.StatusInternalServerError, applog.ErrorTypeInternal
	}
}

// writeError sends err as a JSON error. Internal errors are logged and
// their text is not exposed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classifyError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err.Error())
		message = "internal error"
	}
	ErrorResponse(status, code, message).Write(w)
}
