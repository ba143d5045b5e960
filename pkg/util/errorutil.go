package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by the Discord surface and the HTTP API.
const (
	CodePermissionDenied    = "PERMISSION_DENIED"
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyWarned       = "ALREADY_WARNED"
	CodeDuplicateChannel    = "DUPLICATE_CHANNEL"
	CodeMisconfiguredTarget = "MISCONFIGURED_TARGET"
	CodeBlacklisted         = "BLACKLISTED"
	CodeExpired             = "EXPIRED"
	CodeValidation          = "VALIDATION_FAILED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInternal            = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks. A DomainError matches a sentinel when the codes match.
var (
	ErrPermissionDenied    = &DomainError{Code: CodePermissionDenied, Message: "permission denied"}
	ErrNotFound            = &DomainError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyWarned       = &DomainError{Code: CodeAlreadyWarned, Message: "already warned"}
	ErrDuplicateChannel    = &DomainError{Code: CodeDuplicateChannel, Message: "duplicate channel"}
	ErrMisconfiguredTarget = &DomainError{Code: CodeMisconfiguredTarget, Message: "misconfigured target"}
	ErrBlacklisted         = &DomainError{Code: CodeBlacklisted, Message: "blacklisted"}
	ErrExpired             = &DomainError{Code: CodeExpired, Message: "expired"}
	ErrValidation          = &DomainError{Code: CodeValidation, Message: "validation failed"}
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	details["resource"] = resource
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewPermissionDenied(message string) error {
	return NewDomainError(CodePermissionDenied, message, http.StatusForbidden, nil)
}

func NewAlreadyWarned(details map[string]any) error {
	return NewDomainError(CodeAlreadyWarned, "inactivity warning already sent", http.StatusConflict, details)
}

func NewDuplicateChannel(details map[string]any) error {
	return NewDomainError(CodeDuplicateChannel, "ticket already exists for channel", http.StatusConflict, details)
}

func NewMisconfiguredTarget(target string, details map[string]any) error {
	return NewDomainError(CodeMisconfiguredTarget, fmt.Sprintf("%s is not configured correctly", target), http.StatusServiceUnavailable, details)
}

func NewBlacklisted(details map[string]any) error {
	return NewDomainError(CodeBlacklisted, "user is blacklisted from opening tickets", http.StatusForbidden, details)
}

func NewExpired(message string) error {
	return NewDomainError(CodeExpired, message, http.StatusGone, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		if domainErr.HTTPStatus == 0 {
			clone := *domainErr
			clone.HTTPStatus = http.StatusInternalServerError
			return &clone
		}
		return domainErr
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// CodeOf returns the domain code of err, or CodeInternal for foreign errors.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	return ToDomainError(err).Code
}

// NotFoundResource names the missing resource of a NotFound error, or "".
func NotFoundResource(err error) string {
	var de *DomainError
	if !errors.As(err, &de) || de.Code != CodeNotFound {
		return ""
	}
	resource, _ := de.Details["resource"].(string)
	return resource
}

// UserMessage returns text safe to show to a chat user. Internal errors
// never leak their cause.
func UserMessage(err error) string {
	de := ToDomainError(err)
	if de == nil {
		return ""
	}
	if de.Code == CodeInternal {
		return "Something went wrong. Please try again."
	}
	return de.Message
}
