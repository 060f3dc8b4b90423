package v1

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/numrange"
	"github.com/helixml/numrange/infrastructure/api/middleware"
	"github.com/helixml/numrange/infrastructure/api/v1/dto"
)

// RangesRouter serves ranges from query parameters.
type RangesRouter struct {
	client *numrange.Client
	logger *slog.Logger
}

// NewRangesRouter creates a new RangesRouter.
func NewRangesRouter(client *numrange.Client) *RangesRouter {
	return &RangesRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for range endpoints.
func (r *RangesRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.Generate)

	return router
}

// Generate handles GET /api/v1/ranges?start=&end=.
func (r *RangesRouter) Generate(w http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()

	start, err := numberParam(query.Get("start"), "start")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	end, err := numberParam(query.Get("end"), "end")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	result := r.client.Ranges.Generate(req.Context(), start, end)
	middleware.WriteJSON(w, http.StatusOK, dto.NewRangeResponse(start, end, result))
}

func numberParam(raw, name string) (float64, error) {
	if raw == "" {
		return 0, middleware.NewAPIError(http.StatusBadRequest, fmt.Sprintf("%s is required", name), nil)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, middleware.NewAPIError(http.StatusBadRequest, fmt.Sprintf("%s must be a number", name), err)
	}
	return v, nil
}
