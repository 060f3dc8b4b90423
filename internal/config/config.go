// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/helixml/numrange/domain/numrange"
)

// Default configuration values.
const (
	DefaultHost                  = "0.0.0.0"
	DefaultPort                  = 7378
	DefaultLogLevel              = "INFO"
	DefaultMaxRangeSize          = 1000
	DefaultMaxToolRounds         = 4
	DefaultCORSAllowedOrigins    = "*"
	DefaultMetricsEnabled        = true
	DefaultEndpointModel         = "gpt-4o-mini"
	DefaultEndpointTimeout       = 60 * time.Second
	DefaultEndpointMaxRetries    = 5
	DefaultEndpointInitialDelay  = 2 * time.Second
	DefaultEndpointBackoffFactor = 2.0
)

// Configuration errors.
var (
	ErrInvalidPort         = errors.New("port must be between 1 and 65535")
	ErrInvalidMaxRangeSize = fmt.Errorf("max range size must be between 1 and %d", numrange.MaxRenderableSize)
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// Endpoint configures an OpenAI-compatible chat completion service.
type Endpoint struct {
	baseURL       string
	model         string
	apiKey        string
	timeout       time.Duration
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
}

// NewEndpoint creates a new Endpoint with defaults.
func NewEndpoint() Endpoint {
	return Endpoint{
		model:         DefaultEndpointModel,
		timeout:       DefaultEndpointTimeout,
		maxRetries:    DefaultEndpointMaxRetries,
		initialDelay:  DefaultEndpointInitialDelay,
		backoffFactor: DefaultEndpointBackoffFactor,
	}
}

// BaseURL returns the base URL for the endpoint.
func (e Endpoint) BaseURL() string { return e.baseURL }

// Model returns the model identifier.
func (e Endpoint) Model() string { return e.model }

// APIKey returns the API key.
func (e Endpoint) APIKey() string { return e.apiKey }

// Timeout returns the request timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// MaxRetries returns the maximum retry count.
func (e Endpoint) MaxRetries() int { return e.maxRetries }

// InitialDelay returns the initial retry delay.
func (e Endpoint) InitialDelay() time.Duration { return e.initialDelay }

// BackoffFactor returns the retry backoff multiplier.
func (e Endpoint) BackoffFactor() float64 { return e.backoffFactor }

// IsConfigured returns true if the endpoint can be called: it has an API
// key, or a base URL for a self-hosted server that needs none.
func (e Endpoint) IsConfigured() bool {
	return e.apiKey != "" || e.baseURL != ""
}

// EndpointOption is a functional option for Endpoint.
type EndpointOption func(*Endpoint)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) EndpointOption {
	return func(e *Endpoint) { e.baseURL = url }
}

// WithModel sets the model. Empty keeps the default.
func WithModel(model string) EndpointOption {
	return func(e *Endpoint) {
		if model != "" {
			e.model = model
		}
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) EndpointOption {
	return func(e *Endpoint) { e.apiKey = key }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.timeout = d }
}

// WithMaxRetries sets the maximum retry count.
func WithMaxRetries(n int) EndpointOption {
	return func(e *Endpoint) { e.maxRetries = n }
}

// WithInitialDelay sets the initial retry delay.
func WithInitialDelay(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.initialDelay = d }
}

// WithBackoffFactor sets the retry backoff multiplier.
func WithBackoffFactor(f float64) EndpointOption {
	return func(e *Endpoint) { e.backoffFactor = f }
}

// NewEndpointWithOptions creates an Endpoint with functional options.
func NewEndpointWithOptions(opts ...EndpointOption) Endpoint {
	e := NewEndpoint()
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host               string
	port               int
	logLevel           string
	logFormat          LogFormat
	maxRangeSize       int
	systemPrompt       string
	maxToolRounds      int
	llmEndpoint        *Endpoint
	openservAPIKey     string
	corsAllowedOrigins []string
	metricsEnabled     bool
	selfCheck          bool
}

// DefaultLogger returns the default slog logger for library consumers.
func DefaultLogger() *slog.Logger {
	return slog.Default()
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:               DefaultHost,
		port:               DefaultPort,
		logLevel:           DefaultLogLevel,
		logFormat:          LogFormatPretty,
		maxRangeSize:       DefaultMaxRangeSize,
		maxToolRounds:      DefaultMaxToolRounds,
		corsAllowedOrigins: []string{DefaultCORSAllowedOrigins},
		metricsEnabled:     DefaultMetricsEnabled,
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// MaxRangeSize returns the largest number of elements a range may contain.
func (c AppConfig) MaxRangeSize() int { return c.maxRangeSize }

// SystemPrompt returns the agent system prompt. Empty means the agent default.
func (c AppConfig) SystemPrompt() string { return c.systemPrompt }

// MaxToolRounds returns how many tool-call rounds one chat request may run.
func (c AppConfig) MaxToolRounds() int { return c.maxToolRounds }

// LLMEndpoint returns the chat completion endpoint, or nil when none is configured.
func (c AppConfig) LLMEndpoint() *Endpoint { return c.llmEndpoint }

// OpenServAPIKey returns the agent platform API key.
func (c AppConfig) OpenServAPIKey() string { return c.openservAPIKey }

// CORSAllowedOrigins returns the origins allowed to call the API from a browser.
func (c AppConfig) CORSAllowedOrigins() []string {
	origins := make([]string, len(c.corsAllowedOrigins))
	copy(origins, c.corsAllowedOrigins)
	return origins
}

// MetricsEnabled returns whether /metrics is mounted.
func (c AppConfig) MetricsEnabled() bool { return c.metricsEnabled }

// SelfCheck returns whether sample ranges run at server start.
func (c AppConfig) SelfCheck() bool { return c.selfCheck }

// Validate reports configuration values the server cannot run with.
func (c AppConfig) Validate() error {
	var errs []error
	if c.port < 1 || c.port > 65535 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidPort, c.port))
	}
	if c.maxRangeSize <= 0 || c.maxRangeSize > numrange.MaxRenderableSize {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidMaxRangeSize, c.maxRangeSize))
	}
	return errors.Join(errs...)
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithMaxRangeSize sets the largest allowed range.
func WithMaxRangeSize(n int) AppConfigOption {
	return func(c *AppConfig) { c.maxRangeSize = n }
}

// WithSystemPrompt sets the agent system prompt.
func WithSystemPrompt(prompt string) AppConfigOption {
	return func(c *AppConfig) { c.systemPrompt = prompt }
}

// WithMaxToolRounds sets the agent tool-call round limit.
func WithMaxToolRounds(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.maxToolRounds = n
		}
	}
}

// WithLLMEndpoint sets the chat completion endpoint.
func WithLLMEndpoint(e Endpoint) AppConfigOption {
	return func(c *AppConfig) { c.llmEndpoint = &e }
}

// WithOpenServAPIKey sets the agent platform API key.
func WithOpenServAPIKey(key string) AppConfigOption {
	return func(c *AppConfig) { c.openservAPIKey = key }
}

// WithCORSAllowedOrigins sets the allowed browser origins.
func WithCORSAllowedOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		c.corsAllowedOrigins = make([]string, len(origins))
		copy(c.corsAllowedOrigins, origins)
	}
}

// WithMetricsEnabled sets whether /metrics is mounted.
func WithMetricsEnabled(enabled bool) AppConfigOption {
	return func(c *AppConfig) { c.metricsEnabled = enabled }
}

// WithSelfCheck sets whether sample ranges run at server start.
func WithSelfCheck(enabled bool) AppConfigOption {
	return func(c *AppConfig) { c.selfCheck = enabled }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Secrets are reported only as set or unset.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("addr", c.Addr()),
		slog.String("log_level", c.logLevel),
		slog.String("log_format", string(c.logFormat)),
		slog.Int("max_range_size", c.maxRangeSize),
		slog.Int("max_tool_rounds", c.maxToolRounds),
		slog.String("llm_base_url", c.endpointBaseURL()),
		slog.String("llm_model", c.endpointModel()),
		slog.Bool("llm_api_key_set", c.llmEndpoint != nil && c.llmEndpoint.APIKey() != ""),
		slog.Bool("openserv_api_key_set", c.openservAPIKey != ""),
		slog.String("cors_allowed_origins", strings.Join(c.corsAllowedOrigins, ",")),
		slog.Bool("metrics_enabled", c.metricsEnabled),
		slog.Bool("self_check", c.selfCheck),
	}
}

func (c AppConfig) endpointBaseURL() string {
	if c.llmEndpoint == nil {
		return "(not configured)"
	}
	if c.llmEndpoint.BaseURL() == "" {
		return "(default)"
	}
	return c.llmEndpoint.BaseURL()
}

func (c AppConfig) endpointModel() string {
	if c.llmEndpoint == nil {
		return "(not configured)"
	}
	return c.llmEndpoint.Model()
}

// ParseList parses a comma-separated string, dropping blank entries.
func ParseList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
