package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses. Secret key
// material must never be placed in Message or Err.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // wrapped internal error, not exposed to clients
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

// ---- Upstream tokenization service (UPS) ----

func ErrMalformedUpstreamPayload(err error) *AppError {
	return Wrap("UPS_002", "Malformed upstream response payload", http.StatusBadGateway, err)
}

// ---- Rate limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System (SYS) ----

func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
