// Package domainerrors provides coded errors for the workflow core. Services
// return these so transport can translate failures into structured responses
// without inspecting error strings. For raw infrastructure facts (row missing,
// conflicting write) stores return pkg/platform/sentinel errors instead;
// services translate them into coded errors here.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failure for callers. Every rejected operation carries
// exactly one code plus a human-readable reason.
type Code string

const (
	// CodeNotFound: the referenced order/document/product/requirement/user
	// does not exist.
	CodeNotFound Code = "not_found"

	// CodeUnauthorized: caller is not authenticated.
	CodeUnauthorized Code = "unauthorized"

	// CodeForbidden: caller is authenticated but lacks the required role or
	// ownership.
	CodeForbidden Code = "forbidden"

	// CodeValidation: a mandatory field is missing or malformed (rejection
	// notes, signature credential, request body fields).
	CodeValidation Code = "validation_error"

	// CodeCompliance: a shipment or order-ready transition was attempted
	// while the checklist is not fully approved.
	CodeCompliance Code = "compliance_error"

	// CodeConflict: a concurrent transition invalidated a precondition the
	// caller observed (stale state).
	CodeConflict Code = "conflict"

	// CodeAnchorFailed: provenance notarization failed. Recovered locally;
	// never surfaced as a failure of the triggering business operation.
	CodeAnchorFailed Code = "anchor_failed"

	CodeBadRequest Code = "bad_request"
	CodeTimeout    Code = "timeout"
	CodeInternal   Code = "internal"
)

// Error is a coded domain error. Details carries structured context the
// caller can act on (which requirement is missing, which role is required).
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.wrapped }

// New creates a coded error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, wrapped: err}
}

// WithDetails returns a copy carrying structured context for the caller.
func (e *Error) WithDetails(details map[string]any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// HasCode reports whether err (anywhere in its chain) is a domain error with
// the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// non-domain errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the HTTP status transport should respond with.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeCompliance, CodeConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
