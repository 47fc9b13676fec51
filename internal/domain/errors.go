package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an Error for callers that need to map it to a transport status.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindThreshold      Kind = "threshold"
)

// Error is an application error whose Message is safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a sentinel of the same kind, so that
// errors.Is(err, ErrConflict) matches every conflict regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrAuthorization  = &Error{Kind: KindAuthorization}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrConflict       = &Error{Kind: KindConflict}
	ErrThreshold      = &Error{Kind: KindThreshold}
)

func Validation(msg string) error     { return &Error{Kind: KindValidation, Message: msg} }
func Authentication(msg string) error { return &Error{Kind: KindAuthentication, Message: msg} }
func Authorization(msg string) error  { return &Error{Kind: KindAuthorization, Message: msg} }
func NotFound(msg string) error       { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) error       { return &Error{Kind: KindConflict, Message: msg} }
func Threshold(msg string) error      { return &Error{Kind: KindThreshold, Message: msg} }

// Wrap attaches a cause to a classified error.
func Wrap(kind Kind, msg string, cause error) error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or "" for
// unclassified (internal) errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// PublicMessage returns the caller-safe message of a classified error.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal server error"
}
