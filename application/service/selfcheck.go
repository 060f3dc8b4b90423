package service

import (
	"context"
	"log/slog"
)

// SampleRange is a named range exercised by the self check.
type SampleRange struct {
	Label string  `json:"label" yaml:"label"`
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// CheckOutcome is the result of running one SampleRange.
type CheckOutcome struct {
	Sample SampleRange `json:"sample" yaml:"sample"`
	OK     bool        `json:"ok" yaml:"ok"`
	Output string      `json:"output" yaml:"output"`
}

// SampleRanges returns the ranges the self check runs.
func SampleRanges() []SampleRange {
	return []SampleRange{
		{Label: "Simple range", Start: 3, End: 8},
		{Label: "Single number", Start: 7, End: 7},
		{Label: "Negative numbers", Start: -3, End: 3},
	}
}

// RunSelfCheck generates each sample through ranges, logs the outcome, and
// returns them in order. Failures are reported, not returned as errors.
func RunSelfCheck(ctx context.Context, ranges *Range, logger *slog.Logger, samples ...SampleRange) []CheckOutcome {
	if logger == nil {
		logger = slog.Default()
	}
	if len(samples) == 0 {
		samples = SampleRanges()
	}

	logger.InfoContext(ctx, "running self check", slog.Int("samples", len(samples)))

	outcomes := make([]CheckOutcome, 0, len(samples))
	for _, sample := range samples {
		result := ranges.Generate(ctx, sample.Start, sample.End)
		outcome := CheckOutcome{Sample: sample, OK: result.OK(), Output: result.String()}
		outcomes = append(outcomes, outcome)

		attrs := []any{
			slog.String("label", sample.Label),
			slog.Float64("start", sample.Start),
			slog.Float64("end", sample.End),
			slog.String("output", outcome.Output),
		}
		if outcome.OK {
			logger.InfoContext(ctx, "self check passed", attrs...)
		} else {
			logger.WarnContext(ctx, "self check failed", attrs...)
		}
	}

	logger.InfoContext(ctx, "self check completed")
	return outcomes
}
