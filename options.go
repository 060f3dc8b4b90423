package numrange

import (
	"io"
	"log/slog"

	"github.com/helixml/numrange/infrastructure/provider"
	"github.com/helixml/numrange/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	maxRangeSize   int
	textProvider   provider.TextGenerator
	logger         *slog.Logger
	systemPrompt   string
	maxToolRounds  int
	metricsEnabled bool
	closers        []io.Closer
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		maxRangeSize:   config.DefaultMaxRangeSize,
		maxToolRounds:  config.DefaultMaxToolRounds,
		metricsEnabled: config.DefaultMetricsEnabled,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithMaxRangeSize sets the largest number of elements a range may contain.
func WithMaxRangeSize(n int) Option {
	return func(c *clientConfig) {
		c.maxRangeSize = n
	}
}

// WithOpenAI sets OpenAI as the language model behind the agent.
func WithOpenAI(apiKey string) Option {
	return func(c *clientConfig) {
		c.textProvider = provider.NewOpenAIProvider(apiKey)
	}
}

// WithOpenAIConfig sets an OpenAI-compatible endpoint with custom configuration.
func WithOpenAIConfig(cfg provider.OpenAIConfig) Option {
	return func(c *clientConfig) {
		c.textProvider = provider.NewOpenAIProviderFromConfig(cfg)
	}
}

// WithTextProvider sets a custom text generation provider.
func WithTextProvider(p provider.TextGenerator) Option {
	return func(c *clientConfig) {
		c.textProvider = p
	}
}

// WithSystemPrompt overrides the agent's system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *clientConfig) {
		c.systemPrompt = prompt
	}
}

// WithMaxToolRounds limits how many rounds of tool calls one chat may run.
func WithMaxToolRounds(n int) Option {
	return func(c *clientConfig) {
		c.maxToolRounds = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithMetrics enables or disables Prometheus metrics collection.
func WithMetrics(enabled bool) Option {
	return func(c *clientConfig) {
		c.metricsEnabled = enabled
	}
}

// WithCloser registers a resource to be closed when the Client shuts down.
// Closers are called in registration order after the client stops.
func WithCloser(c io.Closer) Option {
	return func(cfg *clientConfig) {
		cfg.closers = append(cfg.closers, c)
	}
}
