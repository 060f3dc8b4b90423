package numrange

import (
	"strconv"
	"strings"
)

// strategyThreshold is the span below which ranges are built incrementally.
// Larger ranges are rendered into a slice first and joined.
const strategyThreshold = 100

// Enumerate renders every integer in [start, end] separated by commas.
// The bounds must already be validated; behaviour is undefined otherwise.
func Enumerate(start, end int64) string {
	if end-start < strategyThreshold {
		return appendSequence(start, end)
	}
	return joinSequence(start, end)
}

func appendSequence(start, end int64) string {
	count := end - start + 1
	buf := make([]byte, 0, count*4)
	for i := int64(0); i < count; i++ {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendInt(buf, start+i, 10)
	}
	return string(buf)
}

func joinSequence(start, end int64) string {
	count := end - start + 1
	parts := make([]string, count)
	for i := range parts {
		parts[i] = strconv.FormatInt(start+int64(i), 10)
	}
	return strings.Join(parts, ",")
}
