package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies failures for the request boundary.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindNoOpUpdate
	KindUnauthorized
	KindStoreUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindNoOpUpdate:
		return "no_op_update"
	case KindUnauthorized:
		return "unauthorized"
	case KindStoreUnavailable:
		return "store_unavailable"
	case KindInternal:
		return "internal"
	}
	return "unknown"
}

// Error is a classified error. Message is safe to show to API clients,
// Err carries the underlying cause and is only logged.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ValidationError(format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)})
}

func NotFoundError(entity string, id int64) error {
	return errors.WithStack(&Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %d not found", entity, id)})
}

func ConflictError(format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)})
}

// NoOpUpdateError is returned by updates that carry no recognized field.
func NoOpUpdateError() error {
	return errors.WithStack(&Error{Kind: KindNoOpUpdate, Message: "no field to update"})
}

func UnauthorizedError(message string) error {
	return errors.WithStack(&Error{Kind: KindUnauthorized, Message: message})
}

// StoreUnavailableError hides the database cause behind a generic message.
func StoreUnavailableError(cause error) error {
	return errors.WithStack(&Error{Kind: KindStoreUnavailable, Message: "database unavailable", Err: cause})
}

// KindOf returns the kind of the first classified error in the chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
