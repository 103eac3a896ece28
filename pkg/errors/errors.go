// Package errors defines the AppError every layer returns to the HTTP edge.
// The code decides the status; rejections of a calendar transition carry the
// rejection kind under Details["kind"].
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound             = "NOT_FOUND"
	CodeValidation           = "VALIDATION_ERROR"
	CodeConflict             = "CONFLICT"
	CodeInternal             = "INTERNAL_ERROR"
	CodeBadRequest           = "BAD_REQUEST"
	CodeTimeout              = "TIMEOUT"
	CodeUnavailable          = "SERVICE_UNAVAILABLE"
	CodeInvalidInput         = "INVALID_INPUT"
	CodePreconditionRequired = "PRECONDITION_REQUIRED"
)

var statusByCode = map[string]int{
	CodeNotFound:             http.StatusNotFound,
	CodeValidation:           http.StatusUnprocessableEntity,
	CodeConflict:             http.StatusConflict,
	CodeInternal:             http.StatusInternalServerError,
	CodeBadRequest:           http.StatusBadRequest,
	CodeTimeout:              http.StatusGatewayTimeout,
	CodeUnavailable:          http.StatusServiceUnavailable,
	CodeInvalidInput:         http.StatusBadRequest,
	CodePreconditionRequired: http.StatusPreconditionRequired,
}

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode falls back to the code table when no explicit status was set.
func (e *AppError) StatusCode() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Kind is the rejection or failure kind recorded in Details, if any.
func (e *AppError) Kind() string {
	kind, _ := e.Details["kind"].(string)
	return kind
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

func coded(code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: statusByCode[code]}
}

func NotFound(resource string) *AppError {
	return coded(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func NotFoundWithID(resource, id string) *AppError {
	return NotFound(resource).WithDetails(map[string]any{
		"resource": resource,
		"id":       id,
	})
}

// Validation is the answer to a rejected transition or an invalid payload.
func Validation(message string, details map[string]any) *AppError {
	return coded(CodeValidation, message).WithDetails(details)
}

func InvalidInput(message string) *AppError {
	return coded(CodeInvalidInput, message)
}

func Conflict(message string) *AppError {
	return coded(CodeConflict, message)
}

func Internal(message string, err error) *AppError {
	e := coded(CodeInternal, message)
	e.Err = err
	return e
}

func PreconditionRequired(message string) *AppError {
	return coded(CodePreconditionRequired, message)
}

func Timeout(message string) *AppError {
	return coded(CodeTimeout, message)
}

func Unavailable(service string) *AppError {
	return coded(CodeUnavailable, fmt.Sprintf("%s is temporarily unavailable", service))
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError never returns nil. Unknown errors become an opaque 500 that
// still unwraps to the cause.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
