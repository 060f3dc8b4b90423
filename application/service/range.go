// Package service provides application layer services that orchestrate domain operations.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/helixml/numrange/domain/numrange"
	"github.com/helixml/numrange/infrastructure/metrics"
)

// RangeCapabilityName is the capability name the range service is exposed under.
const RangeCapabilityName = "getNumberRange"

// Range generates number ranges under fixed limits, recording metrics and
// logging every outcome.
type Range struct {
	limits  numrange.Limits
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewRange creates a Range service. A nil logger uses slog.Default and a
// nil recorder discards metrics.
func NewRange(limits numrange.Limits, logger *slog.Logger, recorder metrics.Recorder) *Range {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &Range{
		limits:  limits,
		logger:  logger,
		metrics: recorder,
	}
}

// Limits returns the limits every generation is checked against.
func (r *Range) Limits() numrange.Limits {
	return r.limits
}

// Generate validates and renders the inclusive range [start, end].
func (r *Range) Generate(ctx context.Context, start, end float64) numrange.Result {
	r.logger.DebugContext(ctx, "generating number range",
		slog.Float64("start", start),
		slog.Float64("end", end),
	)

	began := time.Now()
	result := numrange.GenerateRange(r.limits, start, end)
	r.metrics.ObserveInvocation(RangeCapabilityName, result.Kind().String(), time.Since(began).Seconds())

	if !result.OK() {
		r.logger.WarnContext(ctx, "number range rejected",
			slog.String("kind", result.Kind().String()),
			slog.String("reason", result.Message()),
		)
		return result
	}

	r.logger.DebugContext(ctx, "generated number range",
		slog.Int("length", len(result.Text())),
	)
	return result
}
