package config

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestDefaultConstants(t *testing.T) {
	if DefaultHost != "0.0.0.0" {
		t.Errorf("DefaultHost = %v, want '0.0.0.0'", DefaultHost)
	}
	if DefaultPort != 7378 {
		t.Errorf("DefaultPort = %v, want 7378", DefaultPort)
	}
	if DefaultLogLevel != "INFO" {
		t.Errorf("DefaultLogLevel = %v, want 'INFO'", DefaultLogLevel)
	}
	if DefaultMaxRangeSize != 1000 {
		t.Errorf("DefaultMaxRangeSize = %v, want 1000", DefaultMaxRangeSize)
	}
	if DefaultMaxToolRounds != 4 {
		t.Errorf("DefaultMaxToolRounds = %v, want 4", DefaultMaxToolRounds)
	}
	if DefaultEndpointTimeout != 60*time.Second {
		t.Errorf("DefaultEndpointTimeout = %v, want 60s", DefaultEndpointTimeout)
	}
	if DefaultEndpointMaxRetries != 5 {
		t.Errorf("DefaultEndpointMaxRetries = %v, want 5", DefaultEndpointMaxRetries)
	}
}

func TestNewAppConfig_Defaults(t *testing.T) {
	cfg := NewAppConfig()

	if cfg.Addr() != "0.0.0.0:7378" {
		t.Errorf("Addr() = %v, want 0.0.0.0:7378", cfg.Addr())
	}
	if cfg.LogFormat() != LogFormatPretty {
		t.Errorf("LogFormat() = %v, want pretty", cfg.LogFormat())
	}
	if cfg.MaxRangeSize() != DefaultMaxRangeSize {
		t.Errorf("MaxRangeSize() = %v, want %v", cfg.MaxRangeSize(), DefaultMaxRangeSize)
	}
	if cfg.LLMEndpoint() != nil {
		t.Error("LLMEndpoint() should be nil by default")
	}
	if !cfg.MetricsEnabled() {
		t.Error("MetricsEnabled() should be true by default")
	}
	if cfg.SelfCheck() {
		t.Error("SelfCheck() should be false by default")
	}
	if got := cfg.CORSAllowedOrigins(); len(got) != 1 || got[0] != "*" {
		t.Errorf("CORSAllowedOrigins() = %v, want [*]", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestAppConfig_Options(t *testing.T) {
	cfg := NewAppConfigWithOptions(
		WithHost("127.0.0.1"),
		WithPort(9000),
		WithLogLevel("DEBUG"),
		WithLogFormat(LogFormatJSON),
		WithMaxRangeSize(50),
		WithSystemPrompt("count"),
		WithMaxToolRounds(2),
		WithOpenServAPIKey("os-key"),
		WithCORSAllowedOrigins([]string{"https://a.example"}),
		WithMetricsEnabled(false),
		WithSelfCheck(true),
	)

	if cfg.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr() = %v, want 127.0.0.1:9000", cfg.Addr())
	}
	if cfg.LogLevel() != "DEBUG" {
		t.Errorf("LogLevel() = %v, want DEBUG", cfg.LogLevel())
	}
	if cfg.LogFormat() != LogFormatJSON {
		t.Errorf("LogFormat() = %v, want json", cfg.LogFormat())
	}
	if cfg.MaxRangeSize() != 50 {
		t.Errorf("MaxRangeSize() = %v, want 50", cfg.MaxRangeSize())
	}
	if cfg.SystemPrompt() != "count" {
		t.Errorf("SystemPrompt() = %v, want count", cfg.SystemPrompt())
	}
	if cfg.MaxToolRounds() != 2 {
		t.Errorf("MaxToolRounds() = %v, want 2", cfg.MaxToolRounds())
	}
	if cfg.OpenServAPIKey() != "os-key" {
		t.Errorf("OpenServAPIKey() = %v, want os-key", cfg.OpenServAPIKey())
	}
	if cfg.MetricsEnabled() {
		t.Error("MetricsEnabled() should be false")
	}
	if !cfg.SelfCheck() {
		t.Error("SelfCheck() should be true")
	}
}

func TestAppConfig_MaxToolRoundsIgnoresNonPositive(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithMaxToolRounds(0))

	if cfg.MaxToolRounds() != DefaultMaxToolRounds {
		t.Errorf("MaxToolRounds() = %v, want %v", cfg.MaxToolRounds(), DefaultMaxToolRounds)
	}
}

func TestAppConfig_Apply(t *testing.T) {
	base := NewAppConfigWithOptions(WithPort(9000))
	next := base.Apply(WithMaxRangeSize(10))

	if base.MaxRangeSize() != DefaultMaxRangeSize {
		t.Errorf("Apply mutated receiver: MaxRangeSize() = %v", base.MaxRangeSize())
	}
	if next.Port() != 9000 || next.MaxRangeSize() != 10 {
		t.Errorf("Apply() = port %v size %v, want 9000 10", next.Port(), next.MaxRangeSize())
	}
}

func TestAppConfig_CORSAllowedOriginsCopies(t *testing.T) {
	origins := []string{"https://a.example"}
	cfg := NewAppConfigWithOptions(WithCORSAllowedOrigins(origins))
	origins[0] = "mutated"

	got := cfg.CORSAllowedOrigins()
	got[0] = "also mutated"

	if cfg.CORSAllowedOrigins()[0] != "https://a.example" {
		t.Errorf("CORSAllowedOrigins() = %v, want https://a.example", cfg.CORSAllowedOrigins())
	}
}

func TestAppConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []AppConfigOption
		wantErr []error
	}{
		{name: "port zero", opts: []AppConfigOption{WithPort(0)}, wantErr: []error{ErrInvalidPort}},
		{name: "port too high", opts: []AppConfigOption{WithPort(70000)}, wantErr: []error{ErrInvalidPort}},
		{name: "range size zero", opts: []AppConfigOption{WithMaxRangeSize(0)}, wantErr: []error{ErrInvalidMaxRangeSize}},
		{name: "range size above ceiling", opts: []AppConfigOption{WithMaxRangeSize(1_000_001)}, wantErr: []error{ErrInvalidMaxRangeSize}},
		{name: "range size at ceiling", opts: []AppConfigOption{WithMaxRangeSize(1_000_000)}},
		{
			name:    "both",
			opts:    []AppConfigOption{WithPort(-1), WithMaxRangeSize(-5)},
			wantErr: []error{ErrInvalidPort, ErrInvalidMaxRangeSize},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAppConfigWithOptions(tt.opts...).Validate()
			if len(tt.wantErr) == 0 && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("Validate() = %v, want %v", err, want)
				}
			}
		})
	}
}

func TestEndpoint_Options(t *testing.T) {
	e := NewEndpointWithOptions(
		WithBaseURL("http://localhost:11434/v1"),
		WithModel("llama3"),
		WithAPIKey("k"),
		WithTimeout(5*time.Second),
		WithMaxRetries(1),
		WithInitialDelay(time.Second),
		WithBackoffFactor(3),
	)

	if e.BaseURL() != "http://localhost:11434/v1" {
		t.Errorf("BaseURL() = %v", e.BaseURL())
	}
	if e.Model() != "llama3" {
		t.Errorf("Model() = %v, want llama3", e.Model())
	}
	if e.Timeout() != 5*time.Second || e.MaxRetries() != 1 || e.InitialDelay() != time.Second || e.BackoffFactor() != 3 {
		t.Errorf("retry settings = %v %v %v %v", e.Timeout(), e.MaxRetries(), e.InitialDelay(), e.BackoffFactor())
	}
	if !e.IsConfigured() {
		t.Error("IsConfigured() should be true")
	}
}

func TestEndpoint_EmptyModelKeepsDefault(t *testing.T) {
	e := NewEndpointWithOptions(WithModel(""))

	if e.Model() != DefaultEndpointModel {
		t.Errorf("Model() = %v, want %v", e.Model(), DefaultEndpointModel)
	}
	if e.IsConfigured() {
		t.Error("IsConfigured() should be false without key or base URL")
	}
}

func TestAppConfig_LogAttrsMasksSecrets(t *testing.T) {
	cfg := NewAppConfigWithOptions(
		WithLLMEndpoint(NewEndpointWithOptions(WithAPIKey("sk-secret"))),
		WithOpenServAPIKey("os-secret"),
	)

	for _, attr := range cfg.LogAttrs() {
		if attr.Value.Kind() == slog.KindString {
			v := attr.Value.String()
			if v == "sk-secret" || v == "os-secret" {
				t.Errorf("LogAttrs() leaked secret in %s", attr.Key)
			}
		}
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{}},
		{"*", []string{"*"}},
		{"a, b ,,c", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		got := ParseList(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("ParseList(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseList(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
			}
		}
	}
}
