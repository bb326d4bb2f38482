package domain

import (
	"errors"
	"fmt"
)

// ErrKind groups errors by how the transport layer should answer them.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"
	KindConflict       ErrKind = "conflict"
	KindAuth           ErrKind = "auth"
	KindNotFound       ErrKind = "not_found"
	KindRateLimited    ErrKind = "rate_limited"
	KindInfrastructure ErrKind = "infrastructure"
	KindInternal       ErrKind = "internal"
)

// Stable machine codes. Clients match on these.
const (
	CodeInvalidJSON        = "invalid_json"
	CodeMissingField       = "missing_field"
	CodeInvalidField       = "invalid_field"
	CodeEmailAlreadyExists = "email_already_exists"
	CodeInvalidCredentials = "invalid_credentials"
	CodeUserNotFound       = "user_not_found"
	CodeRateLimited        = "rate_limited"
	CodeDBUnavailable      = "db_unavailable"
	CodeHashFailed         = "hash_failed"
	CodeInternal           = "internal_error"
)

// Error is the only error type that crosses from the account service to
// transport. Message is safe to show clients; Cause is for logs only.
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s/%s: %s", e.Kind, e.Code, e.Message)
	if e.Cause == nil {
		return msg
	}
	return msg + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	e := New(kind, code, msg)
	e.Cause = cause
	return e
}

// WithMeta sets meta on err and returns it.
func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

// Is reports whether err is a domain error carrying code.
func Is(err error, code string) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}

// KindOf returns the kind of a domain error, or KindInternal for anything else.
func KindOf(err error) ErrKind {
	var de *Error
	if !errors.As(err, &de) {
		return KindInternal
	}
	return de.Kind
}

// request shape

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, CodeInvalidJSON, "invalid JSON body", cause)
}

func ErrMissingField(field string) *Error {
	e := New(KindValidation, CodeMissingField, "missing required field")
	return WithMeta(e, map[string]string{"field": field})
}

func ErrInvalidField(field, reason string) *Error {
	e := New(KindValidation, CodeInvalidField, "invalid field")
	return WithMeta(e, map[string]string{"field": field, "reason": reason})
}

// account state

func ErrEmailAlreadyExists() *Error {
	return New(KindConflict, CodeEmailAlreadyExists, "Email already registered")
}

// ErrInvalidCredentials covers both an unknown email and a wrong password.
func ErrInvalidCredentials() *Error {
	return New(KindAuth, CodeInvalidCredentials, "Invalid credentials")
}

func ErrUserNotFound() *Error {
	return New(KindNotFound, CodeUserNotFound, "User not found")
}

func ErrRateLimited(scope string) *Error {
	e := New(KindRateLimited, CodeRateLimited, "too many requests")
	return WithMeta(e, map[string]string{"scope": scope})
}

// dependencies

func ErrDBUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, CodeDBUnavailable, "database unavailable", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, CodeHashFailed, "password hashing failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, CodeInternal, "internal error", cause)
}
