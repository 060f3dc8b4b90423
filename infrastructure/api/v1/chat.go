package v1

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/numrange"
	"github.com/helixml/numrange/infrastructure/api/middleware"
	"github.com/helixml/numrange/infrastructure/api/v1/dto"
)

// maxChatBytes bounds chat request bodies.
const maxChatBytes = 64 << 10

// ChatRouter lets a language model answer requests using the capabilities.
type ChatRouter struct {
	client *numrange.Client
	logger *slog.Logger
}

// NewChatRouter creates a new ChatRouter.
func NewChatRouter(client *numrange.Client) *ChatRouter {
	return &ChatRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for chat endpoints.
func (r *ChatRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Chat)

	return router
}

// Chat handles POST /api/v1/chat.
func (r *ChatRouter) Chat(w http.ResponseWriter, req *http.Request) {
	var body dto.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxChatBytes)).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, req, middleware.NewAPIError(http.StatusRequestEntityTooLarge, "request body too large", nil), r.logger)
			return
		}
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err), r.logger)
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "message is required", nil), r.logger)
		return
	}

	reply, err := r.client.Agent.Respond(req.Context(), body.Message)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.NewChatResponse(reply))
}
