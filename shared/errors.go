package shared

import (
	"errors"
	"net/http"
)

// AppError is a client-safe error carrying the HTTP status it should render
// with. Data holds optional context the caller can react to, e.g. the partial
// score an expired session had accumulated.
type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func NewNotFoundError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Message: message, Err: err}
}

func NewUnauthorizedError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusUnauthorized, Message: message, Err: err}
}

func NewForbiddenError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusForbidden, Message: message, Err: err}
}

func NewBadRequestError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: message, Err: err}
}

// NewConflictError marks operations against a session that is already in a
// terminal state.
func NewConflictError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusConflict, Message: message, Err: err}
}

// NewGoneError marks a session that passed its time limit. Data carries the
// score attained up to the expiry point.
func NewGoneError(err error, message string, data interface{}) *AppError {
	return &AppError{StatusCode: http.StatusGone, Message: message, Data: data, Err: err}
}

func NewValidationError(err error, message string, data interface{}) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: message, Data: data, Err: err}
}

func NewInternalError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Message: message, Err: err}
}
