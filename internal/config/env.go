package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., LLM_ENDPOINT_BASE_URL).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 7378)
	Port int `envconfig:"PORT" default:"7378"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// MaxRangeSize is the largest number of elements a range may contain.
	// Env: MAX_RANGE_SIZE (default: 1000)
	MaxRangeSize int `envconfig:"MAX_RANGE_SIZE" default:"1000"`

	// SystemPrompt replaces the agent's default system prompt.
	// Env: SYSTEM_PROMPT
	SystemPrompt string `envconfig:"SYSTEM_PROMPT"`

	// AgentMaxToolRounds limits tool-call rounds per chat request.
	// Env: AGENT_MAX_TOOL_ROUNDS (default: 4)
	AgentMaxToolRounds int `envconfig:"AGENT_MAX_TOOL_ROUNDS" default:"4"`

	// LLMEndpoint configures the chat completion service.
	LLMEndpoint EndpointEnv `envconfig:"LLM_ENDPOINT"`

	// OpenAIAPIKey is used when LLM_ENDPOINT_API_KEY is empty.
	// Env: OPENAI_API_KEY
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// OpenServAPIKey is the agent platform key.
	// Env: OPENSERV_API_KEY
	OpenServAPIKey string `envconfig:"OPENSERV_API_KEY"`

	// CORSAllowedOrigins is a comma-separated list of allowed origins.
	// Env: CORS_ALLOWED_ORIGINS (default: *)
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// MetricsEnabled mounts the Prometheus endpoint.
	// Env: METRICS_ENABLED (default: true)
	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"true"`

	// SelfCheck runs sample ranges when the server starts.
	// Env: SELF_CHECK (default: false)
	SelfCheck bool `envconfig:"SELF_CHECK" default:"false"`
}

// EndpointEnv holds environment configuration for an AI endpoint.
type EndpointEnv struct {
	// BaseURL is the base URL for the endpoint.
	// Env: *_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Model is the chat model identifier.
	// Env: *_MODEL (default: gpt-4o-mini)
	Model string `envconfig:"MODEL" default:"gpt-4o-mini"`

	// APIKey is the API key for authentication.
	// Env: *_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Timeout is the request timeout in seconds.
	// Env: *_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// MaxRetries is the maximum number of retries.
	// Env: *_MAX_RETRIES (default: 5)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"5"`

	// InitialDelay is the initial retry delay in seconds.
	// Env: *_INITIAL_DELAY (default: 2.0)
	InitialDelay float64 `envconfig:"INITIAL_DELAY" default:"2.0"`

	// BackoffFactor is the retry backoff multiplier.
	// Env: *_BACKOFF_FACTOR (default: 2.0)
	BackoffFactor float64 `envconfig:"BACKOFF_FACTOR" default:"2.0"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "NUMRANGE" would require NUMRANGE_PORT instead of PORT.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// Normalize fills values that fall back to other variables.
func (e EnvConfig) Normalize() EnvConfig {
	if e.LLMEndpoint.APIKey == "" {
		e.LLMEndpoint.APIKey = e.OpenAIAPIKey
	}
	return e
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.MaxRangeSize != 0 {
		cfg = applyOption(cfg, WithMaxRangeSize(e.MaxRangeSize))
	}
	if e.SystemPrompt != "" {
		cfg = applyOption(cfg, WithSystemPrompt(e.SystemPrompt))
	}
	cfg = applyOption(cfg, WithMaxToolRounds(e.AgentMaxToolRounds))

	if e.LLMEndpoint.IsConfigured() {
		cfg = applyOption(cfg, WithLLMEndpoint(e.LLMEndpoint.ToEndpoint()))
	}

	cfg = applyOption(cfg, WithOpenServAPIKey(e.OpenServAPIKey))
	if e.CORSAllowedOrigins != "" {
		cfg = applyOption(cfg, WithCORSAllowedOrigins(ParseList(e.CORSAllowedOrigins)))
	}
	cfg = applyOption(cfg, WithMetricsEnabled(e.MetricsEnabled))
	cfg = applyOption(cfg, WithSelfCheck(e.SelfCheck))

	return cfg
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// IsConfigured returns true if the endpoint has a key or a base URL.
func (e EndpointEnv) IsConfigured() bool {
	return e.APIKey != "" || e.BaseURL != ""
}

// ToEndpoint converts EndpointEnv to Endpoint.
func (e EndpointEnv) ToEndpoint() Endpoint {
	opts := []EndpointOption{
		WithModel(e.Model),
		WithTimeout(time.Duration(e.Timeout * float64(time.Second))),
		WithMaxRetries(e.MaxRetries),
		WithInitialDelay(time.Duration(e.InitialDelay * float64(time.Second))),
		WithBackoffFactor(e.BackoffFactor),
	}

	if e.BaseURL != "" {
		opts = append(opts, WithBaseURL(e.BaseURL))
	}
	if e.APIKey != "" {
		opts = append(opts, WithAPIKey(e.APIKey))
	}

	return NewEndpointWithOptions(opts...)
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
