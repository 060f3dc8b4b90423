package main

import (
	"log/slog"

	"github.com/helixml/numrange"
	"github.com/helixml/numrange/infrastructure/provider"
	"github.com/helixml/numrange/internal/config"
)

// clientOptions returns the numrange.Option slice derived from AppConfig.
// Callers append entrypoint-specific options before passing the full slice
// to numrange.New.
func clientOptions(cfg config.AppConfig, logger *slog.Logger) []numrange.Option {
	opts := []numrange.Option{
		numrange.WithMaxRangeSize(cfg.MaxRangeSize()),
		numrange.WithSystemPrompt(cfg.SystemPrompt()),
		numrange.WithMaxToolRounds(cfg.MaxToolRounds()),
		numrange.WithMetrics(cfg.MetricsEnabled()),
	}
	if logger != nil {
		opts = append(opts, numrange.WithLogger(logger))
	}

	return append(opts, textOptions(cfg)...)
}

// textOptions returns a numrange.Option for the language model when the LLM
// endpoint is configured, or an empty slice otherwise.
func textOptions(cfg config.AppConfig) []numrange.Option {
	endpoint := cfg.LLMEndpoint()
	if endpoint == nil || !endpoint.IsConfigured() {
		return nil
	}

	return []numrange.Option{
		numrange.WithOpenAIConfig(provider.OpenAIConfig{
			APIKey:        endpoint.APIKey(),
			BaseURL:       endpoint.BaseURL(),
			ChatModel:     endpoint.Model(),
			Timeout:       endpoint.Timeout(),
			MaxRetries:    endpoint.MaxRetries(),
			InitialDelay:  endpoint.InitialDelay(),
			BackoffFactor: endpoint.BackoffFactor(),
		}),
	}
}
