package numrange

import (
	"fmt"
)

// unexpectedPrefix starts every message for faults the validator did not
// anticipate.
const unexpectedPrefix = "Unexpected error: "

// errorPrefix starts every validation failure rendered at the boundary.
const errorPrefix = "Error: "

// Result is the tagged outcome of GenerateRange: Ok with the rendered text,
// or Err with a message.
type Result struct {
	text string
	err  *Error
}

// Ok creates a successful Result.
func Ok(text string) Result {
	return Result{text: text}
}

// Fail creates a failed Result of the given kind.
func Fail(kind Kind, message string) Result {
	return Result{err: NewError(kind, message)}
}

// OK reports whether the result carries text.
func (r Result) OK() bool { return r.err == nil }

// Text returns the rendered sequence. Empty for failures.
func (r Result) Text() string { return r.text }

// Message returns the failure message. Empty for successes.
func (r Result) Message() string {
	if r.err == nil {
		return ""
	}
	return r.err.Reason()
}

// Kind returns the failure kind, or KindNone on success.
func (r Result) Kind() Kind {
	if r.err == nil {
		return KindNone
	}
	return r.err.Kind()
}

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

// String renders the result the way it is surfaced to requesters: the
// sequence on success, otherwise a message starting with "Error:" or
// "Unexpected error:".
func (r Result) String() string {
	switch {
	case r.err == nil:
		return r.text
	case r.err.Kind() == KindUnexpected:
		return r.err.Reason()
	default:
		return errorPrefix + r.err.Reason()
	}
}

func unexpected(detail string) Result {
	return Fail(KindUnexpected, unexpectedPrefix+detail)
}

// GenerateRange validates the requested interval and, when valid, renders
// it. It never panics: unanticipated faults come back as KindUnexpected.
func GenerateRange(limits Limits, start, end float64) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = unexpected(fmt.Sprint(r))
		}
	}()

	v := Validate(limits, start, end)
	if !v.Valid() {
		return Fail(v.Kind(), v.Reason())
	}

	s, err := toInt64(v.Start())
	if err != nil {
		return unexpected(err.Error())
	}
	e, err := toInt64(v.End())
	if err != nil {
		return unexpected(err.Error())
	}

	if size := v.End() - v.Start() + 1; size > MaxRenderableSize {
		return unexpected(fmt.Sprintf("cannot allocate a range of %s elements (limit %d)",
			formatNumber(size), MaxRenderableSize))
	}

	return Ok(enumerate(s, e))
}

// enumerate is swapped in tests to exercise the recover path.
var enumerate = Enumerate

// Generate runs GenerateRange for a decoded request.
func (r Request) Generate(limits Limits) Result {
	return GenerateRange(limits, r.Start, r.End)
}

// int64 bounds as float64; 2^63 itself is not representable as int64.
const (
	minInt64Float = -9223372036854775808.0
	maxInt64Float = 9223372036854775808.0
)

func toInt64(v float64) (int64, error) {
	if v < minInt64Float || v >= maxInt64Float {
		return 0, fmt.Errorf("value %s overflows a 64-bit integer", formatNumber(v))
	}
	return int64(v), nil
}
