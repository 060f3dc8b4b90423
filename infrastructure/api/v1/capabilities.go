// Package v1 implements the /api/v1 routes.
package v1

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/numrange"
	"github.com/helixml/numrange/infrastructure/api/middleware"
	"github.com/helixml/numrange/infrastructure/api/v1/dto"
)

// maxArgumentBytes bounds capability argument bodies.
const maxArgumentBytes = 64 << 10

// CapabilitiesRouter handles capability endpoints.
type CapabilitiesRouter struct {
	client *numrange.Client
	logger *slog.Logger
}

// NewCapabilitiesRouter creates a new CapabilitiesRouter.
func NewCapabilitiesRouter(client *numrange.Client) *CapabilitiesRouter {
	return &CapabilitiesRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for capability endpoints.
func (r *CapabilitiesRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Get("/{name}", r.Get)
	router.Post("/{name}", r.Invoke)

	return router
}

// List handles GET /api/v1/capabilities.
func (r *CapabilitiesRouter) List(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, dto.NewCapabilityListResponse(r.client.Capabilities.List()))
}

// Get handles GET /api/v1/capabilities/{name}.
func (r *CapabilitiesRouter) Get(w http.ResponseWriter, req *http.Request) {
	descriptor, err := r.client.Capabilities.Get(chi.URLParam(req, "name"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewCapabilityResponse(descriptor))
}

// Invoke handles POST /api/v1/capabilities/{name}. The body is the JSON
// argument object. Failures inside the capability are part of its output,
// so a rejected range still answers 200.
func (r *CapabilitiesRouter) Invoke(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "name")

	body, err := io.ReadAll(io.LimitReader(req.Body, maxArgumentBytes+1))
	if err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "read request body", err), r.logger)
		return
	}
	if len(body) > maxArgumentBytes {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusRequestEntityTooLarge, "request body too large", nil), r.logger)
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "request body must be a JSON object", nil), r.logger)
		return
	}

	output, err := r.client.Capabilities.Invoke(req.Context(), name, body)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.InvocationResponse{Name: name, Output: output})
}
