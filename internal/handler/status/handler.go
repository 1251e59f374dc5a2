package status

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/boweryconnect/companion/internal/service/connectivity"
	syncservice "github.com/boweryconnect/companion/internal/service/sync"
	"github.com/boweryconnect/companion/pkg/utils"
)

// Handler surfaces connectivity and sync state to the UI layer.
type Handler struct {
	monitor   *connectivity.Monitor
	scheduler *syncservice.Scheduler
}

// New creates the status handler.
func New(monitor *connectivity.Monitor, scheduler *syncservice.Scheduler) *Handler {
	return &Handler{monitor: monitor, scheduler: scheduler}
}

// RegisterRoutes mounts connectivity and sync routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/status", h.handleStatus)
	r.Post("/connectivity/check", h.handleConnectivityCheck)
	r.Get("/sync/status", h.handleSyncStatus)
	r.Post("/sync/actions", h.handleEnqueue)
	r.Post("/sync/drain", h.handleDrain)
	r.Get("/sync/attention", h.handleAttention)
	r.Post("/sync/attention/{actionID}/ack", h.handleAttentionAck)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	syncStatus, err := h.scheduler.Status()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to read sync status")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"connectivity": h.monitor.Snapshot(),
		"sync":         syncStatus,
	})
}

func (h *Handler) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.scheduler.Status()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to read sync status")
		return
	}
	utils.RespondJSON(w, http.StatusOK, status)
}

// handleConnectivityCheck forces a health probe, e.g. on cold start.
func (h *Handler) handleConnectivityCheck(w http.ResponseWriter, r *http.Request) {
	h.monitor.CheckHealth(r.Context())
	utils.RespondJSON(w, http.StatusOK, h.monitor.Snapshot())
}

// handleEnqueue adds a durable action that must survive offline gaps, such
// as a job-application submission.
func (h *Handler) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Kind    string          `json:"kind"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Kind == "" {
		utils.RespondError(w, http.StatusBadRequest, "kind is required")
		return
	}

	action, err := h.scheduler.Enqueue(payload.Kind, payload.Payload)
	if err != nil {
		// The caller retries the enqueue; the failure is never swallowed.
		utils.RespondError(w, http.StatusInternalServerError, "failed to enqueue action")
		return
	}
	utils.RespondJSON(w, http.StatusAccepted, action)
}

func (h *Handler) handleDrain(w http.ResponseWriter, r *http.Request) {
	result, err := h.scheduler.Drain(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "drain failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleAttention(w http.ResponseWriter, r *http.Request) {
	status, err := h.scheduler.Status()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to read attention list")
		return
	}
	utils.RespondJSON(w, http.StatusOK, status.NeedsAttention)
}

func (h *Handler) handleAttentionAck(w http.ResponseWriter, r *http.Request) {
	actionID := chi.URLParam(r, "actionID")
	if err := h.scheduler.Acknowledge(actionID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to acknowledge")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}
