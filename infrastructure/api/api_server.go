package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/helixml/numrange"
	apimiddleware "github.com/helixml/numrange/infrastructure/api/middleware"
	v1 "github.com/helixml/numrange/infrastructure/api/v1"
	mcpinternal "github.com/helixml/numrange/internal/mcp"
)

// RequestTimeout bounds every /api/v1 request.
const RequestTimeout = 60 * time.Second

// InfoResponse is served at the root path.
type InfoResponse struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

// APIServer provides an HTTP API backed by a numrange Client.
type APIServer struct {
	client       *numrange.Client
	version      string
	corsOrigins  []string
	router       chi.Router
	routerCalled bool
	logger       *slog.Logger

	mu       sync.Mutex
	server   *Server
	shutdown bool
}

// NewAPIServer creates a new APIServer wired to the given Client.
// corsOrigins lists the browser origins allowed to call the API; empty
// disables CORS headers.
func NewAPIServer(client *numrange.Client, version string, corsOrigins []string) *APIServer {
	return &APIServer{
		client:      client,
		version:     version,
		corsOrigins: corsOrigins,
		logger:      client.Logger(),
	}
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call MountRoutes().
// If not called, ListenAndServe creates a default router with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

// mountRoutes wires up all routes on the given router.
func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	capabilitiesRouter := v1.NewCapabilitiesRouter(c)
	rangesRouter := v1.NewRangesRouter(c)
	chatRouter := v1.NewChatRouter(c)

	router.Get("/", a.info)
	router.Get("/health", HealthHandler)
	router.Get("/healthz", HealthHandler)

	if prom := c.Metrics(); prom != nil {
		router.Handle("/metrics", prom.Handler())
	}

	router.Group(func(r chi.Router) {
		if len(a.corsOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: a.corsOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Content-Type", apimiddleware.CorrelationIDHeader, "Mcp-Session-Id", "Mcp-Protocol-Version"},
				ExposedHeaders: []string{apimiddleware.CorrelationIDHeader, "Mcp-Session-Id"},
				MaxAge:         300,
			}))
		}

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(chimiddleware.Timeout(RequestTimeout))

			r.Mount("/capabilities", capabilitiesRouter.Routes())
			r.Mount("/ranges", rangesRouter.Routes())
			r.Mount("/chat", chatRouter.Routes())
		})

		// MCP streams and sets its own session headers, so it gets no
		// Timeout middleware.
		mcpSrv := mcpinternal.NewServer(c.Ranges, c.Capabilities, a.version, a.logger)
		r.Mount("/mcp", mcpSrv.HTTPHandler())
	})
}

func (a *APIServer) info(w http.ResponseWriter, _ *http.Request) {
	descriptors := a.client.Capabilities.List()
	names := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		names = append(names, d.Name)
	}
	apimiddleware.WriteJSON(w, http.StatusOK, InfoResponse{
		Name:         mcpinternal.ServerName,
		Version:      a.version,
		Capabilities: names,
	})
}

// HealthHandler reports the server as healthy.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server, ok := a.prepare(addr)
	if !ok {
		return nil
	}
	return server.Start()
}

// Serve serves the API on listener until Shutdown.
func (a *APIServer) Serve(listener net.Listener) error {
	server, ok := a.prepare(listener.Addr().String())
	if !ok {
		_ = listener.Close()
		return nil
	}
	return server.Serve(listener)
}

// prepare builds the HTTP server and mounts the routes. It reports false
// when Shutdown has already been requested.
func (a *APIServer) prepare(addr string) (*Server, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.shutdown {
		return nil, false
	}

	server := NewServer(addr, a.logger)
	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}
	a.server = &server
	return a.server, true
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	a.shutdown = true
	server := a.server
	a.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
