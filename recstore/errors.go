package recstore

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	ErrInvalidAttribute  ErrorKind = "invalid_attribute"
	ErrMissingAttribute  ErrorKind = "missing_attribute"
	ErrInvalidStorage    ErrorKind = "invalid_storage"
	ErrStorageAccess     ErrorKind = "storage_access"
	ErrStorageConnection ErrorKind = "storage_connection"
)

// Error is the single error type returned by all providers and the store
// facade. Kind classifies the failure, Service names the backend that raised
// it, and Errors carries underlying driver error strings for connection
// failures.
type Error struct {
	Kind    ErrorKind
	Service string
	Message string
	Field   string
	Errors  []string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Service != "" {
		base = fmt.Sprintf("%s: %s", e.Service, base)
	}
	if e.Field != "" {
		base = fmt.Sprintf("%s (field=%s)", base, e.Field)
	}
	if len(e.Errors) > 0 {
		base = fmt.Sprintf("%s [%s]", base, strings.Join(e.Errors, "; "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind ErrorKind, service, msg string) *Error {
	return &Error{Kind: kind, Service: service, Message: msg}
}

func Wrap(kind ErrorKind, service, msg string, cause error) *Error {
	return &Error{Kind: kind, Service: service, Message: msg, Cause: cause}
}

// InvalidAttributeError reports a bad or missing construction parameter.
// Always fatal at construction, never retried.
func InvalidAttributeError(service, msg string) *Error {
	return &Error{Kind: ErrInvalidAttribute, Service: service, Message: msg}
}

// MissingAttributeError reports a required field absent from input data.
func MissingAttributeError(service, field string) *Error {
	return &Error{Kind: ErrMissingAttribute, Service: service, Message: "required field missing", Field: field}
}

// InvalidStorageError reports an unknown or disabled storage key.
func InvalidStorageError(key string) *Error {
	return &Error{Kind: ErrInvalidStorage, Message: fmt.Sprintf("invalid storage: %s", key)}
}

// AccessError reports an I/O or query failure after a valid handle existed.
func AccessError(service, msg string, cause error) *Error {
	return &Error{Kind: ErrStorageAccess, Service: service, Message: msg, Cause: cause}
}

// ConnectionError reports a failure to establish a connection or handle.
func ConnectionError(service, msg string, errs []string, cause error) *Error {
	return &Error{Kind: ErrStorageConnection, Service: service, Message: msg, Errors: errs, Cause: cause}
}

func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
