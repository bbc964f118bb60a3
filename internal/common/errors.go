// Package common defines the error taxonomy shared by every layer of the
// credential service. Callers should use errors.Is / errors.As or KindOf to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
)

// Kind classifies an Error. Transports map kinds onto status codes.
type Kind string

const (
	KindBadRequest    Kind = "bad_request"
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindRejected      Kind = "rejected"
	KindStorage       Kind = "storage_unavailable"
	KindNotification  Kind = "notification_failure"
	KindTokenIssuance Kind = "token_issuance_failure"
	KindEntropy       Kind = "entropy_failure"
	KindInternal      Kind = "internal"
)

// Error is a classified error.
//   - Kind: category used for transport mapping
//   - Field: the payload field a BadRequest/Validation error refers to
//   - Message: safe summary that may be shown to clients
//   - Cause: wrapped internal error, for logs only
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports kind equality so that errors.Is(err, &Error{Kind: k}) works
// without comparing messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Field == "" || t.Field == e.Field)
}

// BadRequest reports a missing required field.
func BadRequest(field string) *Error {
	return &Error{Kind: KindBadRequest, Field: field, Message: "missing " + field}
}

// Validation reports a field that failed a format or policy check.
func Validation(field, check string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: check}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found", Cause: ErrorNotFound}
}

func Storage(cause error) *Error {
	return &Error{Kind: KindStorage, Message: "storage unavailable", Cause: cause}
}

func Notification(cause error) *Error {
	return &Error{Kind: KindNotification, Message: "notification failed", Cause: cause}
}

func TokenIssuance(cause error) *Error {
	return &Error{Kind: KindTokenIssuance, Message: "token issuance failed", Cause: cause}
}

func Entropy(cause error) *Error {
	return &Error{Kind: KindEntropy, Message: "secure random source failed", Cause: cause}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal
// when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsClientError reports whether the kind describes a problem with the
// request itself, as opposed to a failure of the service or a collaborator.
func IsClientError(k Kind) bool {
	switch k {
	case KindBadRequest, KindValidation, KindNotFound:
		return true
	}
	return false
}
