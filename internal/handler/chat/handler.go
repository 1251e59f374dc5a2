package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/boweryconnect/companion/internal/service/assistant"
	"github.com/boweryconnect/companion/internal/store"
	"github.com/boweryconnect/companion/pkg/utils"
)

// Handler exposes the conversation engine to the UI layer.
type Handler struct {
	assistant *assistant.Service
}

// New creates the chat handler.
func New(assistantSvc *assistant.Service) *Handler {
	return &Handler{assistant: assistantSvc}
}

// RegisterRoutes mounts the conversation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleOpenSession)
	r.Get("/session/current", h.handleCurrentSession)
	r.Post("/session/current/calm-ack", h.handleCalmAck)
	r.Post("/session/current/persist", h.handlePersist)
	r.Post("/messages", h.handleSendMessage)
	r.Get("/preferences", h.handlePreferences)
	r.Put("/preferences", h.handleUpdatePreferences)
}

// handleOpenSession creates the current session, restoring a fresh-enough
// persisted snapshot when one exists.
func (h *Handler) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Language string `json:"language"`
	}
	if r.Body != nil {
		// An empty body means no explicit language; the service falls back
		// to the stored preference. A broken body reads the same way.
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	session, restored := h.assistant.Open(payload.Language)
	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"session":  session,
		"restored": restored,
	})
}

func (h *Handler) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.assistant.Current()
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "no active session")
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

// handleCalmAck is the explicit de-escalation acknowledgment; mood never
// lowers any other way.
func (h *Handler) handleCalmAck(w http.ResponseWriter, r *http.Request) {
	mood, err := h.assistant.AcknowledgeCalm()
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "no active session")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"mood": mood})
}

// handlePersist snapshots the session, e.g. when the app backgrounds.
func (h *Handler) handlePersist(w http.ResponseWriter, r *http.Request) {
	if err := h.assistant.Persist(); err != nil {
		if errors.Is(err, assistant.ErrNoSession) {
			utils.RespondError(w, http.StatusNotFound, "no active session")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to persist session")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "persisted"})
}

func (h *Handler) handlePreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.assistant.Preferences()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to read preferences")
		return
	}
	utils.RespondJSON(w, http.StatusOK, prefs)
}

// handleUpdatePreferences persists language, ambience, and voice choices so
// they survive restarts and feed sessions that do not name a language.
func (h *Handler) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Language     string `json:"language"`
		Ambience     string `json:"ambience"`
		VoiceEnabled bool   `json:"voiceEnabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prefs, err := h.assistant.UpdatePreferences(store.Preferences{
		Language:     payload.Language,
		Ambience:     payload.Ambience,
		VoiceEnabled: payload.VoiceEnabled,
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	utils.RespondJSON(w, http.StatusOK, prefs)
}

// handleSendMessage runs one full exchange: classify, append, dispatch,
// escalate, persist. The response always carries an assistant message,
// fallback or not.
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text               string `json:"text"`
		KeystrokeIntervals []int  `json:"keystrokeIntervals"`
		Language           string `json:"language"`
		IsVoice            bool   `json:"isVoice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Text == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	result, err := h.assistant.Exchange(r.Context(), assistant.ExchangeRequest{
		Text:               payload.Text,
		KeystrokeIntervals: payload.KeystrokeIntervals,
		Language:           payload.Language,
		IsVoice:            payload.IsVoice,
	})
	if err != nil {
		if errors.Is(err, assistant.ErrClosed) {
			utils.RespondError(w, http.StatusServiceUnavailable, "assistant shutting down")
			return
		}
		// Caller went away mid-turn; the turn is still recorded.
		utils.RespondError(w, http.StatusRequestTimeout, "request abandoned")
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}
