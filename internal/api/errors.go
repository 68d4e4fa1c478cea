package api

import (
	"errors"
	"fmt"
	"net/http"

	"StockScope/internal/model"
)

// AppError represents application-level error with HTTP status.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Field: field, Status: status}
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// NotFoundError creates a 404 error.
func NotFoundError(message string) *AppError {
	return NewAppError("ERR_NOT_FOUND", "", message, http.StatusNotFound)
}

// BadRequestError creates a 400 error.
func BadRequestError(field, message string) *AppError {
	return NewAppError("ERR_BAD_REQUEST", field, message, http.StatusBadRequest)
}

// TooManyRequestsError creates a 429 error.
func TooManyRequestsError(message string) *AppError {
	return NewAppError("ERR_RATE_LIMITED", "", message, http.StatusTooManyRequests)
}

// InternalError creates a 500 error.
func InternalError(message string) *AppError {
	return NewAppError("ERR_INTERNAL", "", message, http.StatusInternalServerError)
}

// noDataMessage is shown when a ticker/period combination yields nothing.
const noDataMessage = "no data available for the selected ticker/period"

// fromPipelineError maps pipeline sentinels onto HTTP errors.
func fromPipelineError(err error) *AppError {
	switch {
	case errors.Is(err, model.ErrNoData), errors.Is(err, model.ErrEmptyInput):
		return NotFoundError(noDataMessage).WithError(err)
	case errors.Is(err, model.ErrInvalidPeriod):
		return BadRequestError("period", err.Error()).WithError(err)
	case errors.Is(err, model.ErrUnknownIndicator), errors.Is(err, model.ErrInvalidWindow):
		return BadRequestError("indicators", err.Error()).WithError(err)
	case errors.Is(err, model.ErrUnknownChartKind):
		return BadRequestError("chart", err.Error()).WithError(err)
	default:
		return InternalError("dashboard generation failed").WithError(err)
	}
}
