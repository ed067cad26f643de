package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/careercardinal/jobtracker/pkg/log"
)

type ErrorType int

const (
	ErrValidation ErrorType = iota
	ErrConfig
	ErrUpstream
	ErrStore
	ErrNotFound
	ErrUnknown
)

// Error is the typed error returned by the service layer. Message is safe to
// show to API callers; Cause and Context are for logs.
type Error struct {
	Type    ErrorType
	Message string
	Context map[string]any
	Cause   error
}

func NewError(errorType ErrorType, message string) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
	}
}

func NewErrorWithCause(errorType ErrorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
		Cause:   cause,
	}
}

func (e *Error) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Type.String(), e.Message))

	if len(e.Context) > 0 {
		var ctxParts []string
		for k, v := range e.Context {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("context: %s", strings.Join(ctxParts, ", ")))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) WithContext(key string, value any) *Error {
	e.Context[key] = value
	return e
}

func (t ErrorType) String() string {
	switch t {
	case ErrValidation:
		return "Validation"
	case ErrConfig:
		return "Config"
	case ErrUpstream:
		return "Upstream"
	case ErrStore:
		return "Store"
	case ErrNotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}

// HTTPStatus maps an error type onto the status code the API answers with.
func (t ErrorType) HTTPStatus() int {
	switch t {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	case ErrUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func IsErrorType(err error, errorType ErrorType) bool {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Type == errorType
	}
	return false
}

// StatusAndMessage classifies err for an HTTP response. Untyped errors become
// a generic 500 so internal details never reach the caller.
func StatusAndMessage(err error) (int, string) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Type.HTTPStatus(), svcErr.Message
	}
	return http.StatusInternalServerError, "internal server error"
}

func WrapError(err error, errorType ErrorType, message string) *Error {
	return NewErrorWithCause(errorType, message, err)
}

// LogError logs err with its full context at a level matching its type.
func LogError(err error) {
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		log.Error("Unknown Error: %v", err)
		return
	}
	switch svcErr.Type {
	case ErrValidation, ErrNotFound:
		log.Debug("Request rejected: %v", err)
	default:
		log.Error("Error Detail: %v", err)
	}
}

func SafeExecute(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewError(ErrUnknown, fmt.Sprintf("runtime error: %v", r))
		}
	}()

	return fn()
}
