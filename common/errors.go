package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"go-taskhub-api/logger"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Domain error kinds. Services wrap these so handlers can map them to HTTP
// status codes with errors.Is without inspecting message strings. The
// messages attached by services are deliberately generic: a rejected token
// is never told apart as expired/revoked/forged on the wire.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
)

func Unauthorized(message string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, message)
}

func Forbidden(message string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, message)
}

func Conflict(message string) error {
	return fmt.Errorf("%w: %s", ErrConflict, message)
}

func NotFound(message string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, message)
}

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// FromDomainError maps a service error onto the HTTP error envelope.
// Anything outside the four domain kinds is an unexpected fault and
// surfaces as a 500 with the internal cause kept out of the response body.
func FromDomainError(err error) *AppError {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return NewAppError(http.StatusUnauthorized, "Invalid credentials or token", err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, "Insufficient permissions", err)
	case errors.Is(err, ErrConflict):
		return NewAppError(http.StatusConflict, "Resource conflict", err)
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, "Resource not found", err)
	default:
		return NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Code,
			"internal_error": e.Err.Error(),
		}).Error(e.Message)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Code)
	json.NewEncoder(w).Encode(e)
}
