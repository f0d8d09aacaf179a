// Package livechat serves the WebSocket chat surface: each connection is
// a live conversation with the assistant engine.
package livechat

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/kisanmitra/kisanmitra/internal/assistant"
	"github.com/kisanmitra/kisanmitra/internal/rules"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler serves the live chat websocket.
type Handler struct {
	engine *assistant.Engine
}

// NewHandler creates the websocket handler.
func NewHandler(engine *assistant.Engine) *Handler {
	return &Handler{engine: engine}
}

// RegisterRoutes mounts the websocket endpoint onto the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/chat", h.handleWebSocket)
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type      string `json:"type"`       // "message" or "classify"
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"` // empty for new sessions
	Content   string `json:"content"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type        string       `json:"type"` // "response" or "error"
	SessionID   string       `json:"session_id"`
	Content     string       `json:"content"`
	Intent      rules.Intent `json:"intent,omitempty"`
	Confidence  float64      `json:"confidence,omitempty"`
	FollowUps   []string     `json:"follow_up_questions,omitempty"`
	Suggestions []string     `json:"suggestions,omitempty"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("livechat: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("livechat: websocket read: %v", err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			h.sendError(conn, "", "invalid message format")
			continue
		}

		if req.Content == "" {
			h.sendError(conn, req.SessionID, "content is required")
			continue
		}

		switch req.Type {
		case "message":
			h.handleChatMessage(conn, r, req)
		case "classify":
			h.handleClassifyMessage(conn, req)
		default:
			h.sendError(conn, req.SessionID, "unknown message type: "+req.Type)
		}
	}
}

func (h *Handler) handleChatMessage(conn *websocket.Conn, r *http.Request, req chatRequest) {
	if req.UserID == "" {
		h.sendError(conn, req.SessionID, "user_id is required")
		return
	}

	reply, err := h.engine.ProcessMessage(r.Context(), req.UserID, req.SessionID, req.Content)
	if err != nil {
		h.sendError(conn, req.SessionID, "processing failed: "+err.Error())
		return
	}

	h.sendResponse(conn, chatResponse{
		Type:        "response",
		SessionID:   reply.SessionID,
		Content:     reply.Content,
		Intent:      reply.Response.Metadata.Intent,
		Confidence:  reply.Response.Confidence,
		FollowUps:   reply.Response.FollowUpQuestions,
		Suggestions: reply.Suggestions,
	})
}

func (h *Handler) handleClassifyMessage(conn *websocket.Conn, req chatRequest) {
	cls := h.engine.Classifier().Classify(req.Content)

	h.sendResponse(conn, chatResponse{
		Type:       "response",
		SessionID:  req.SessionID,
		Content:    string(cls.PrimaryIntent),
		Intent:     cls.PrimaryIntent,
		Confidence: cls.Confidence,
	})
}

func (h *Handler) sendResponse(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("livechat: websocket write: %v", err)
	}
}

func (h *Handler) sendError(conn *websocket.Conn, sessionID, message string) {
	resp := chatResponse{
		Type:      "error",
		SessionID: sessionID,
		Content:   message,
	}
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("livechat: websocket write error: %v", err)
	}
}
