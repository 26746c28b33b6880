package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/johnwards/leaddesk/internal/domain"
	"github.com/johnwards/leaddesk/internal/session"
	"github.com/johnwards/leaddesk/internal/store"
)

// Error categories.
const (
	CategoryValidationError  = "VALIDATION_ERROR"
	CategoryObjectNotFound   = "OBJECT_NOT_FOUND"
	CategoryConflict         = "CONFLICT"
	CategoryStoreUnavailable = "STORE_UNAVAILABLE"
	CategoryInternalError    = "INTERNAL_ERROR"
)

// Error is the JSON error envelope returned by every endpoint.
type Error struct {
	Status        string        `json:"status"`
	Message       string        `json:"message"`
	CorrelationID string        `json:"correlationId"`
	Category      string        `json:"category"`
	Errors        []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail describes one invalid input.
type ErrorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	In      string `json:"in,omitempty"`
}

// NewNotFoundError creates a 404 error with the OBJECT_NOT_FOUND category.
func NewNotFoundError(message, correlationID string) *Error {
	return &Error{
		Status:        "error",
		Message:       message,
		CorrelationID: correlationID,
		Category:      CategoryObjectNotFound,
	}
}

// NewValidationError creates a 400 error with the VALIDATION_ERROR category.
func NewValidationError(message, correlationID string, details []ErrorDetail) *Error {
	return &Error{
		Status:        "error",
		Message:       message,
		CorrelationID: correlationID,
		Category:      CategoryValidationError,
		Errors:        details,
	}
}

// NewConflictError creates a 409 error with the CONFLICT category.
func NewConflictError(message, correlationID string) *Error {
	return &Error{
		Status:        "error",
		Message:       message,
		CorrelationID: correlationID,
		Category:      CategoryConflict,
	}
}

// NewInternalError creates a 500 error with the INTERNAL_ERROR category.
func NewInternalError(message, correlationID string) *Error {
	return &Error{
		Status:        "error",
		Message:       message,
		CorrelationID: correlationID,
		Category:      CategoryInternalError,
	}
}

// WriteError writes an Error as a JSON response with the given HTTP status code.
func WriteError(w http.ResponseWriter, statusCode int, apiErr *Error) {
	WriteJSON(w, statusCode, apiErr)
}

// WriteSessionError maps an error from the session, workspace or store
// layers onto a status code and category:
//
//	ValidationError        400 VALIDATION_ERROR
//	NotFoundError          404 OBJECT_NOT_FOUND
//	save in progress       409 CONFLICT
//	no open modal          409 CONFLICT
//	StoreUnavailableError  503 STORE_UNAVAILABLE
//
// Anything else is a 500.
func WriteSessionError(w http.ResponseWriter, correlationID string, err error) {
	status, category := classify(err)

	apiErr := &Error{
		Status:        "error",
		Message:       err.Error(),
		CorrelationID: correlationID,
		Category:      category,
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		apiErr.Errors = []ErrorDetail{{Message: verr.Message, Code: "INVALID_FIELD", In: verr.Field}}
	}

	switch status {
	case http.StatusServiceUnavailable:
		slog.Warn("lead store unavailable", "error", err, "correlation_id", correlationID)
	case http.StatusInternalServerError:
		slog.Error("unhandled error", "error", err, "correlation_id", correlationID)
	}

	WriteError(w, status, apiErr)
}

// ErrorCategory returns the category WriteSessionError would report for
// err, or "OK" for nil.
func ErrorCategory(err error) string {
	if err == nil {
		return "OK"
	}
	_, category := classify(err)
	return category
}

func classify(err error) (int, string) {
	var (
		verr        *domain.ValidationError
		notFound    *session.NotFoundError
		unavailable *session.StoreUnavailableError
	)

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, CategoryValidationError
	case errors.As(err, &notFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, CategoryObjectNotFound
	case errors.Is(err, session.ErrSaveInProgress),
		errors.Is(err, session.ErrNoSelection),
		errors.Is(err, session.ErrNoAddForm),
		errors.Is(err, store.ErrConflict):
		return http.StatusConflict, CategoryConflict
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable, CategoryStoreUnavailable
	default:
		return http.StatusInternalServerError, CategoryInternalError
	}
}
