// Package numrange validates inclusive integer intervals and renders them as
// comma-separated text.
package numrange

import (
	"fmt"
	"math"
	"strconv"
)

// DefaultMaxRangeSize is the largest number of elements a range may contain
// when no explicit limit is configured.
const DefaultMaxRangeSize = 1000

// MaxRenderableSize is the largest number of elements GenerateRange will
// allocate for, whatever the configured limit. Larger valid ranges come back
// as unexpected faults instead of exhausting memory.
const MaxRenderableSize = 1_000_000

// Limits bounds what a single request may ask for. The zero value uses
// DefaultMaxRangeSize.
type Limits struct {
	maxRangeSize int
}

// NewLimits creates Limits with the given maximum range size. Non-positive
// values fall back to DefaultMaxRangeSize.
func NewLimits(maxRangeSize int) Limits {
	if maxRangeSize <= 0 {
		maxRangeSize = DefaultMaxRangeSize
	}
	return Limits{maxRangeSize: maxRangeSize}
}

// DefaultLimits returns Limits using DefaultMaxRangeSize.
func DefaultLimits() Limits {
	return NewLimits(DefaultMaxRangeSize)
}

// MaxRangeSize returns the largest allowed element count.
func (l Limits) MaxRangeSize() int {
	if l.maxRangeSize <= 0 {
		return DefaultMaxRangeSize
	}
	return l.maxRangeSize
}

// Request is a raw, untrusted range request as decoded from a transport.
type Request struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Validation is the outcome of Validate: either valid with the sanitized
// bounds, or invalid with a reason.
type Validation struct {
	valid  bool
	start  float64
	end    float64
	kind   Kind
	reason string
}

// Valid reports whether the request passed every check.
func (v Validation) Valid() bool { return v.valid }

// Start returns the sanitized start bound. Only meaningful when Valid.
func (v Validation) Start() float64 { return v.start }

// End returns the sanitized end bound. Only meaningful when Valid.
func (v Validation) End() float64 { return v.end }

// Kind returns the failure kind, or KindNone when valid.
func (v Validation) Kind() Kind { return v.kind }

// Reason returns the failure reason, or an empty string when valid.
func (v Validation) Reason() string { return v.reason }

// Size returns the number of elements in a valid range.
func (v Validation) Size() int {
	if !v.valid {
		return 0
	}
	return int(v.end-v.start) + 1
}

func invalid(kind Kind, reason string) Validation {
	return Validation{kind: kind, reason: reason}
}

// Validate checks a requested interval. Checks run in order and the first
// failure wins: both bounds integral, start <= end, size within limits.
func Validate(limits Limits, start, end float64) Validation {
	if !isInteger(start) || !isInteger(end) {
		return invalid(KindNonInteger, fmt.Sprintf(
			"Both start and end must be integers. Received start: %s, end: %s",
			formatNumber(start), formatNumber(end),
		))
	}

	if start > end {
		return invalid(KindInvertedRange, fmt.Sprintf(
			"Start number (%s) must be less than or equal to end number (%s).",
			formatNumber(start), formatNumber(end),
		))
	}

	maxSize := limits.MaxRangeSize()
	size := end - start + 1
	if size > float64(maxSize) {
		return invalid(KindRangeTooLarge, fmt.Sprintf(
			"Range size (%s) exceeds maximum allowed size (%d).",
			formatNumber(size), maxSize,
		))
	}

	return Validation{valid: true, start: start, end: end}
}

func isInteger(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return math.Trunc(v) == v
}

// formatNumber renders v the way requesters typed it: negative zero is 0
// and infinities are spelled out.
func formatNumber(v float64) string {
	switch {
	case v == 0:
		return "0"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
