package numrange

import "errors"

// Kind classifies why a range request failed.
type Kind string

// Kind values.
const (
	KindNone          Kind = ""
	KindNonInteger    Kind = "non_integer"
	KindInvertedRange Kind = "inverted_range"
	KindRangeTooLarge Kind = "range_too_large"
	KindUnexpected    Kind = "unexpected"
)

// String returns the kind as a label suitable for logs and metrics.
func (k Kind) String() string {
	if k == KindNone {
		return "ok"
	}
	return string(k)
}

// Sentinel errors matched by *Error through errors.Is.
var (
	ErrNonInteger    = errors.New("start and end must be integers")
	ErrInvertedRange = errors.New("start must be less than or equal to end")
	ErrRangeTooLarge = errors.New("range exceeds maximum allowed size")
	ErrUnexpected    = errors.New("unexpected range failure")
)

// Error is a range failure carrying its kind and the human readable reason.
type Error struct {
	kind   Kind
	reason string
}

// NewError creates an Error of the given kind.
func NewError(kind Kind, reason string) *Error {
	return &Error{kind: kind, reason: reason}
}

// Error implements the error interface.
func (e *Error) Error() string { return e.reason }

// Kind returns the failure kind.
func (e *Error) Kind() Kind { return e.kind }

// Reason returns the human readable reason.
func (e *Error) Reason() string { return e.reason }

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	switch e.kind {
	case KindNonInteger:
		return target == ErrNonInteger
	case KindInvertedRange:
		return target == ErrInvertedRange
	case KindRangeTooLarge:
		return target == ErrRangeTooLarge
	case KindUnexpected:
		return target == ErrUnexpected
	default:
		return false
	}
}
