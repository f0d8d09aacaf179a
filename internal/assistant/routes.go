package assistant

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kisanmitra/kisanmitra/internal/conversation"
)

// RegisterRoutes mounts the chat and classification API onto the given
// router.
func (e *Engine) RegisterRoutes(r chi.Router) {
	r.Post("/api/chat/message", e.handleMessage)
	r.Post("/api/nlp/classify", e.handleClassify)
	r.Get("/api/chat/sessions/{sessionID}", e.handleSession)
	r.Get("/api/chat/users/{userID}/preferences", e.handlePreferences)
	r.Get("/api/chat/stats", e.handleStats)
}

type messageRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

func (e *Engine) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	reply, err := e.ProcessMessage(r.Context(), req.UserID, req.SessionID, req.Message)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

type classifyRequest struct {
	Text string `json:"text"`
}

func (e *Engine) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	writeJSON(w, http.StatusOK, e.classifier.Classify(req.Text))
}

func (e *Engine) handleSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	convo, err := e.manager.LookupSession(r.Context(), sessionID)
	if errors.Is(err, conversation.ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found: " + sessionID})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, convo)
}

func (e *Engine) handlePreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := e.manager.GetUserPreferences(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (e *Engine) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := e.manager.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
