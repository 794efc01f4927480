package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorCode string

const (
	ErrValidation         ErrorCode = "VALIDATION_FAILED"
	ErrDependencyNotReady ErrorCode = "DEPENDENCY_NOT_READY"
	ErrProvider           ErrorCode = "PROVIDER_ERROR"
	ErrContentInvariant   ErrorCode = "CONTENT_INVARIANT"
	ErrUpdateUnsupported  ErrorCode = "UPDATE_UNSUPPORTED"
	ErrInternal           ErrorCode = "INTERNAL"
	ErrNotFound           ErrorCode = "NOT_FOUND"
)

// HTTPStatus is used by the gateway for failures of the HTTP request
// itself; lifecycle FAILED responses are still delivered with 200.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	case ErrUpdateUnsupported:
		return http.StatusConflict
	case ErrDependencyNotReady:
		return http.StatusServiceUnavailable
	case ErrProvider, ErrContentInvariant:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Fixed failure reasons reported to the lifecycle engine.
const (
	ReasonMissingParameters  = "Not all Parameters Maintained"
	ReasonMissingDirectory   = "Directory ID not provided"
	ReasonEndpointNotFound   = "Endpoint not found"
	ReasonAdminPasswordEmpty = "AdminPassword not found"
)

// AppError is a classified failure. Message is what ends up in the
// lifecycle response reason; Err keeps the underlying cause for logs and
// errors.Is/As.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Retryable reports whether the caller is expected to succeed by retrying
// once the dependency settles.
func (e *AppError) Retryable() bool {
	return e.Code == ErrDependencyNotReady
}

func NewAppError(code ErrorCode, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

func WrapAppError(code ErrorCode, msg string, err error) *AppError {
	return &AppError{Code: code, Message: msg, Err: err}
}

// CodeOf returns the classification of err, or ErrProvider for anything
// that was not classified locally.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return ErrValidation
	}
	return ErrProvider
}

// ValidationError lists every required property that was absent or could
// not be parsed.
type ValidationError struct {
	Reason  string
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	if len(parts) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(parts, "; "))
}
