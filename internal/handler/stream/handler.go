// Package stream exposes the exchange pipeline over Server-Sent Events so
// the UI can show progress while a slow remote turn is in flight.
package stream

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/boweryconnect/companion/internal/service/assistant"
	"github.com/boweryconnect/companion/pkg/utils"
)

// Handler streams one exchange per request.
type Handler struct {
	assistant *assistant.Service
}

// New creates the stream handler.
func New(assistantSvc *assistant.Service) *Handler {
	return &Handler{assistant: assistantSvc}
}

// RegisterRoutes mounts the SSE endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	message := r.URL.Query().Get("message")
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	current, err := h.assistant.Current()
	if err != nil || current.ID != sessionID {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	req := assistant.ExchangeRequest{
		Text:               message,
		Language:           r.URL.Query().Get("language"),
		IsVoice:            r.URL.Query().Get("voice") == "true",
		KeystrokeIntervals: parseIntervals(r.URL.Query().Get("intervals")),
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "status", map[string]string{"state": "queued"})

	result, err := h.assistant.Exchange(r.Context(), req)
	if err != nil {
		utils.SendSSEEvent(w, flusher, "error", map[string]string{"error": err.Error()})
		return
	}

	utils.SendSSEEvent(w, flusher, "response", result)
}

// parseIntervals reads comma-separated keystroke gaps, skipping junk.
func parseIntervals(raw string) []int {
	if raw == "" {
		return nil
	}
	var intervals []int
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		intervals = append(intervals, n)
	}
	return intervals
}
