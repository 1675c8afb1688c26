package convert

import (
	"errors"
	"fmt"
)

// Kind is a stable category of conversion failure. Callers should branch on Kind rather than on
// error strings.
type Kind string

const (
	// KindMissingExecutionContext: a derived field needs runtime facts that were not supplied.
	KindMissingExecutionContext Kind = "MissingExecutionContext"
	// KindUnsupportedTransactionKind: the transaction kind has no mapping under the active variant.
	KindUnsupportedTransactionKind Kind = "UnsupportedTransactionKind"
	// KindMissingSender: the authenticated sender was not supplied.
	KindMissingSender Kind = "MissingSender"
	// KindMissingBlockContext: block identity is needed to denormalize the output.
	KindMissingBlockContext Kind = "MissingBlockContext"
	// KindLengthMismatch: a block's transactions and receipts do not pair up.
	KindLengthMismatch Kind = "LengthMismatch"
	// KindInvalidReceipt: a receipt contradicts its transaction or its predecessor.
	KindInvalidReceipt Kind = "InvalidReceipt"
	// KindInvalidTransaction: a canonical transaction lacks a field its kind requires.
	KindInvalidTransaction Kind = "InvalidTransaction"
)

// Class separates failures a client can trigger from failures that indicate corrupted upstream data.
type Class string

const (
	ClassRoutine   Class = "routine"
	ClassInvariant Class = "invariant"
)

// Class returns the handling class of the kind.
func (k Kind) Class() Class {
	switch k {
	case KindLengthMismatch, KindInvalidReceipt, KindInvalidTransaction:
		return ClassInvariant
	default:
		return ClassRoutine
	}
}

// Error is the structured conversion error.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, cause error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf returns the Kind of a conversion error, or "" when err is not one.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}

// IsKind reports whether err is (or wraps) a conversion error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsInvariant reports whether err signals inconsistent upstream data rather than a routine failure.
func IsInvariant(err error) bool {
	kind := KindOf(err)
	return kind != "" && kind.Class() == ClassInvariant
}
