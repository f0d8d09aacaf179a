package livechat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/kisanmitra/kisanmitra/internal/assistant"
	"github.com/kisanmitra/kisanmitra/internal/classifier"
	"github.com/kisanmitra/kisanmitra/internal/conversation"
	"github.com/kisanmitra/kisanmitra/internal/db"
	"github.com/kisanmitra/kisanmitra/internal/responder"
	"github.com/kisanmitra/kisanmitra/internal/rules"
)

func setupTest(t *testing.T) *httptest.Server {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cls, err := classifier.New(rules.Default())
	if err != nil {
		t.Fatalf("building classifier: %v", err)
	}
	mgr := conversation.NewManager(conversation.NewSQLiteStore(database))
	engine := assistant.NewEngine(cls, mgr, responder.NewGenerator(nil))

	r := chi.NewRouter()
	NewHandler(engine).RegisterRoutes(r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketUpgrade(t *testing.T) {
	server := setupTest(t)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
}

func TestWebSocketChatMessage(t *testing.T) {
	conn := dial(t, setupTest(t))

	msg := chatRequest{Type: "message", UserID: "farmer1", Content: "which crop should I grow in punjab?"}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	var resp chatResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}

	if resp.Type != "response" {
		t.Fatalf("type = %q, want response: %q", resp.Type, resp.Content)
	}
	if resp.SessionID == "" {
		t.Error("response should carry a session id")
	}
	if resp.Intent != rules.IntentCropRecommendation {
		t.Errorf("intent = %q, want crop_recommendation", resp.Intent)
	}
}

func TestWebSocketSessionContinuity(t *testing.T) {
	conn := dial(t, setupTest(t))

	first := chatRequest{Type: "message", UserID: "farmer1", Content: "I farm in punjab"}
	if err := conn.WriteJSON(first); err != nil {
		t.Fatalf("write: %v", err)
	}
	var firstResp chatResponse
	if err := conn.ReadJSON(&firstResp); err != nil {
		t.Fatalf("read: %v", err)
	}

	second := chatRequest{Type: "message", UserID: "farmer1", SessionID: firstResp.SessionID, Content: "what should I grow?"}
	if err := conn.WriteJSON(second); err != nil {
		t.Fatalf("write: %v", err)
	}
	var secondResp chatResponse
	if err := conn.ReadJSON(&secondResp); err != nil {
		t.Fatalf("read: %v", err)
	}

	if secondResp.SessionID != firstResp.SessionID {
		t.Errorf("session id changed between turns: %q then %q", firstResp.SessionID, secondResp.SessionID)
	}
	if !strings.Contains(secondResp.Content, "punjab") {
		t.Errorf("reply %q should remember the punjab location", secondResp.Content)
	}
}

func TestWebSocketClassify(t *testing.T) {
	conn := dial(t, setupTest(t))

	msg := chatRequest{Type: "classify", Content: "aphid attack on my cotton"}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	var resp chatResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Intent != rules.IntentPestManagement {
		t.Errorf("intent = %q, want pest_management", resp.Intent)
	}
}

func TestWebSocketMissingUser(t *testing.T) {
	conn := dial(t, setupTest(t))

	msg := chatRequest{Type: "message", Content: "hello"}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	var resp chatResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Type != "error" || !strings.Contains(resp.Content, "user_id is required") {
		t.Errorf("response = %+v, want user_id error", resp)
	}
}

func TestWebSocketEmptyContent(t *testing.T) {
	conn := dial(t, setupTest(t))

	msg := chatRequest{Type: "message", UserID: "farmer1", Content: ""}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	var resp chatResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Type != "error" || !strings.Contains(resp.Content, "content is required") {
		t.Errorf("response = %+v, want content error", resp)
	}
}

func TestWebSocketUnknownType(t *testing.T) {
	conn := dial(t, setupTest(t))

	msg := chatRequest{Type: "unknown", Content: "hello"}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	var resp chatResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Type != "error" || !strings.Contains(resp.Content, "unknown message type") {
		t.Errorf("response = %+v, want unknown type error", resp)
	}
}
