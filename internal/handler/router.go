package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chathandler "github.com/boweryconnect/companion/internal/handler/chat"
	statushandler "github.com/boweryconnect/companion/internal/handler/status"
	streamhandler "github.com/boweryconnect/companion/internal/handler/stream"
	middlewarePkg "github.com/boweryconnect/companion/internal/middleware"
	"github.com/boweryconnect/companion/internal/service/assistant"
	"github.com/boweryconnect/companion/internal/service/connectivity"
	syncservice "github.com/boweryconnect/companion/internal/service/sync"
	"github.com/boweryconnect/companion/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(assistantSvc *assistant.Service, monitor *connectivity.Monitor, scheduler *syncservice.Scheduler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chathandler.New(assistantSvc)
	statusHandler := statushandler.New(monitor, scheduler)
	statusFeed := statushandler.NewWebSocketHandler(statusHandler)
	streamHandler := streamhandler.New(assistantSvc)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		statusHandler.RegisterRoutes(api)
		statusFeed.RegisterWebSocketRoutes(api)
		streamHandler.RegisterRoutes(api)
	})

	// Own liveness, distinct from the remote service's /health.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	return r
}
