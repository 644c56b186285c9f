// Package errors defines the application error taxonomy surfaced by the onboarding core.
package errors

import (
	"errors"
	"fmt"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Kind classifies an AppError for callers that map errors to responses.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindInternal   Kind = "internal"
)

type AppError struct {
	Kind     Kind
	Code     string
	Message  string
	Severity Severity
	cause    error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

func NewValidationError(msg string) *AppError {
	return &AppError{
		Kind:     KindValidation,
		Code:     "E100",
		Message:  msg,
		Severity: SeverityLow,
	}
}

func NewNotFoundError(entity string, id int64) *AppError {
	return &AppError{
		Kind:     KindNotFound,
		Code:     "E110",
		Message:  fmt.Sprintf("%s with id %d not found", entity, id),
		Severity: SeverityLow,
	}
}

func NewConflictError(msg string, cause error) *AppError {
	return &AppError{
		Kind:     KindConflict,
		Code:     "E400",
		Message:  msg,
		Severity: SeverityMedium,
		cause:    cause,
	}
}

// NewStateError reports an onboarding step requested out of order.
func NewStateError(msg string, cause error) *AppError {
	return &AppError{
		Kind:     KindConflict,
		Code:     "E410",
		Message:  msg,
		Severity: SeverityMedium,
		cause:    cause,
	}
}

func NewInternalError(operation string, cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Kind:     KindInternal,
		Code:     "E200",
		Message:  fmt.Sprintf("%s failed: %s", operation, underlyingMsg),
		Severity: SeverityHigh,
		cause:    cause,
	}
}

// KindOf returns the kind of the first AppError in err's chain; anything else is internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Kind
	}

	return KindInternal
}

func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return err != nil && KindOf(err) == KindNotFound }
func IsConflict(err error) bool   { return err != nil && KindOf(err) == KindConflict }
func IsInternal(err error) bool   { return err != nil && KindOf(err) == KindInternal }
