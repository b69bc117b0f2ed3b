/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package api

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies why a ledger call was rejected. Every kind is fatal
// to the call and leaves the ledger state untouched.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindAuthorization means the caller lacks the required role.
	KindAuthorization
	// KindValidation means malformed input: zero amounts, mismatched batch
	// lengths, past end times.
	KindValidation
	// KindSignature covers every signature failure with a single message.
	KindSignature
	// KindStateConflict means the call would violate a stored invariant.
	KindStateConflict
	// KindStorage wraps failures of the underlying database.
	KindStorage
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindSignature:
		return "signature"
	case KindStateConflict:
		return "state conflict"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every service entry point.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// Is matches any *Error with the same kind and message, so sentinel values
// keep working after a round trip through the RPC layer.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == e.Msg
}

func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func AuthorizationError(format string, args ...interface{}) *Error {
	return NewError(KindAuthorization, format, args...)
}

func ValidationError(format string, args ...interface{}) *Error {
	return NewError(KindValidation, format, args...)
}

func StateConflictError(format string, args ...interface{}) *Error {
	return NewError(KindStateConflict, format, args...)
}

// StorageError wraps a database failure, keeping the cause for logging.
func StorageError(err error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return errors.WithStack(&Error{Kind: KindStorage, Msg: fmt.Sprintf("%s: %v", msg, err)})
}

// ErrInvalidSignature is deliberately the same for every signed field.
var ErrInvalidSignature = &Error{Kind: KindSignature, Msg: "Invalid Signature"}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
