package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kisanmitra/kisanmitra/internal/classifier"
	"github.com/kisanmitra/kisanmitra/internal/conversation"
	"github.com/kisanmitra/kisanmitra/internal/db"
	"github.com/kisanmitra/kisanmitra/internal/market"
	"github.com/kisanmitra/kisanmitra/internal/responder"
	"github.com/kisanmitra/kisanmitra/internal/rules"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening in-memory db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cls, err := classifier.New(rules.Default())
	if err != nil {
		t.Fatalf("building classifier: %v", err)
	}

	prices := market.NewStore(database)
	if _, err := prices.EnsureSeeded(context.Background()); err != nil {
		t.Fatalf("seeding prices: %v", err)
	}

	mgr := conversation.NewManager(conversation.NewSQLiteStore(database))
	return NewEngine(cls, mgr, responder.NewGenerator(prices))
}

func TestProcessMessageFullTurn(t *testing.T) {
	e := newTestEngine(t)

	reply, err := e.ProcessMessage(context.Background(), "farmer1", "", "What crop should I grow in punjab with clay soil?")
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if reply.SessionID == "" {
		t.Error("reply should carry the resolved session id")
	}
	if reply.Content == "" {
		t.Error("reply content should not be empty")
	}
	if reply.Response.Metadata.Intent != rules.IntentCropRecommendation {
		t.Errorf("intent = %q, want crop_recommendation", reply.Response.Metadata.Intent)
	}
	if reply.Summary == "" {
		t.Error("reply should carry the post-turn summary")
	}

	// The session now remembers punjab for the next turn.
	convo, err := e.Manager().LookupSession(context.Background(), reply.SessionID)
	if err != nil {
		t.Fatalf("LookupSession: %v", err)
	}
	if convo.Profile.Location != "punjab" {
		t.Errorf("location = %q, want punjab absorbed from the turn", convo.Profile.Location)
	}
	if len(convo.History) != 2 {
		t.Errorf("history = %d turns, want user and bot turn recorded", len(convo.History))
	}
}

func TestProcessMessageRequiresUser(t *testing.T) {
	e := newTestEngine(t)

	if _, err := e.ProcessMessage(context.Background(), "  ", "", "hello"); err == nil {
		t.Fatal("blank user id should be rejected")
	}
}

func TestProcessMessageMarketQuoteFlowsThrough(t *testing.T) {
	e := newTestEngine(t)

	reply, err := e.ProcessMessage(context.Background(), "farmer1", "", "What is the market price of wheat?")
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if reply.Response.Metadata.Intent != rules.IntentMarketInquiry {
		t.Errorf("intent = %q, want market_inquiry", reply.Response.Metadata.Intent)
	}
	if !strings.Contains(reply.Content, "₹") {
		t.Errorf("content %q should quote a seeded price", reply.Content)
	}
}

func TestChatMessageEndpoint(t *testing.T) {
	e := newTestEngine(t)
	r := chi.NewRouter()
	e.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	body, _ := json.Marshal(messageRequest{UserID: "farmer1", Message: "My tomato plants are dying, please help urgent!"})
	resp, err := http.Post(srv.URL+"/api/chat/message", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var reply Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if reply.Response.Strategy.Type != responder.StrategyEmergency {
		t.Errorf("strategy = %q, want emergency for an urgent message", reply.Response.Strategy.Type)
	}

	// The session endpoint serves the stored context.
	sessResp, err := http.Get(srv.URL + "/api/chat/sessions/" + reply.SessionID)
	if err != nil {
		t.Fatalf("GET session: %v", err)
	}
	defer sessResp.Body.Close()
	if sessResp.StatusCode != http.StatusOK {
		t.Errorf("session status = %d", sessResp.StatusCode)
	}
}

func TestSessionEndpointNotFound(t *testing.T) {
	e := newTestEngine(t)
	r := chi.NewRouter()
	e.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/chat/sessions/ghost")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestClassifyEndpoint(t *testing.T) {
	e := newTestEngine(t)
	r := chi.NewRouter()
	e.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	body, _ := json.Marshal(classifyRequest{Text: "how to control aphid on cotton"})
	resp, err := http.Post(srv.URL+"/api/nlp/classify", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	var result classifier.IntentClassification
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if result.PrimaryIntent != rules.IntentPestManagement {
		t.Errorf("intent = %q, want pest_management", result.PrimaryIntent)
	}
	if !result.HasEntity(rules.EntityPest) {
		t.Error("classification should extract the aphid pest entity")
	}
}

func TestStatsEndpoint(t *testing.T) {
	e := newTestEngine(t)
	r := chi.NewRouter()
	e.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	if _, err := e.ProcessMessage(context.Background(), "farmer1", "", "hello"); err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	resp, err := http.Get(srv.URL + "/api/chat/stats")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var stats conversation.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if stats.TotalSessions != 1 || stats.ActiveInMemory != 1 {
		t.Errorf("stats = %+v, want one live session", stats)
	}
}
