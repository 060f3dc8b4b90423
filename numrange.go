// Package numrange provides an agent capability that enumerates the integers
// between two bounds as a comma-separated string.
//
// The capability is exposed to language models as the getNumberRange tool,
// over MCP, and over a small HTTP API. Library consumers can call it
// directly:
//
//	client, err := numrange.New(
//	    numrange.WithMaxRangeSize(1000),
//	    numrange.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Direct invocation
//	result := client.Ranges.Generate(ctx, 3, 8)
//	fmt.Println(result) // 3,4,5,6,7,8
//
//	// Through the capability registry, with JSON arguments
//	out, err := client.Capabilities.Invoke(ctx, "getNumberRange",
//	    json.RawMessage(`{"start": -2, "end": 2}`))
//
//	// Let the language model decide
//	reply, err := client.Agent.Respond(ctx, "numbers from 1 to 5 please")
package numrange

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/helixml/numrange/application/service"
	domainrange "github.com/helixml/numrange/domain/numrange"
	"github.com/helixml/numrange/infrastructure/metrics"
	"github.com/helixml/numrange/internal/config"
)

// Client is the main entry point for the numrange library.
//
// Access services via struct fields:
//
//	client.Ranges.Generate(ctx, 1, 5)
//	client.Capabilities.List()
//	client.Agent.Respond(ctx, "count from 1 to 5")
type Client struct {
	Ranges       *service.Range
	Capabilities *service.Registry
	Agent        *service.Agent

	metrics *metrics.Prom
	closers []io.Closer

	logger *slog.Logger
	closed atomic.Bool
	mu     sync.Mutex
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.maxRangeSize <= 0 || cfg.maxRangeSize > domainrange.MaxRenderableSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxRangeSize, cfg.maxRangeSize)
	}

	logger := cfg.logger
	if logger == nil {
		logger = config.DefaultLogger()
	}

	var recorder metrics.Recorder = metrics.Noop{}
	var prom *metrics.Prom
	if cfg.metricsEnabled {
		prom = metrics.NewProm()
		recorder = prom
	}

	ranges := service.NewRange(domainrange.NewLimits(cfg.maxRangeSize), logger, recorder)

	registry := service.NewRegistry(logger)
	if err := registry.Register(service.NewRangeCapability(ranges)); err != nil {
		return nil, fmt.Errorf("register range capability: %w", err)
	}

	agent := service.NewAgent(cfg.textProvider, registry, logger,
		service.WithSystemPrompt(cfg.systemPrompt),
		service.WithMaxToolRounds(cfg.maxToolRounds),
	)
	if !agent.Available() {
		logger.Debug("no language model configured, agent disabled")
	}

	return &Client{
		Ranges:       ranges,
		Capabilities: registry,
		Agent:        agent,
		metrics:      prom,
		closers:      cfg.closers,
		logger:       logger,
	}, nil
}

// Metrics returns the Prometheus collectors, or nil when metrics are disabled.
func (c *Client) Metrics() *metrics.Prom {
	return c.metrics
}

// HTTPMetrics returns the recorder for HTTP request metrics. It never
// returns nil.
func (c *Client) HTTPMetrics() metrics.HTTPRecorder {
	if c.metrics == nil {
		return metrics.Noop{}
	}
	return c.metrics
}

// Close releases resources registered with WithCloser.
// A second call returns ErrClientClosed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}

	return nil
}

// Closed reports whether Close has been called.
func (c *Client) Closed() bool {
	return c.closed.Load()
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}
