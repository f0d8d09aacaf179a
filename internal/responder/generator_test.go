package responder

import (
	"context"
	"strings"
	"testing"

	"github.com/kisanmitra/kisanmitra/internal/classifier"
	"github.com/kisanmitra/kisanmitra/internal/conversation"
	"github.com/kisanmitra/kisanmitra/internal/rules"
)

type stubPrices struct {
	quotes map[string][2]string
}

func (s *stubPrices) Quote(_ context.Context, crop string) (string, string, bool) {
	q, ok := s.quotes[crop]
	return q[0], q[1], ok
}

func blankContext() *conversation.Context {
	return &conversation.Context{
		SessionID:      "s1",
		UserID:         "u1",
		ActiveEntities: make(map[rules.EntityKind][]string),
		Profile:        conversation.UserProfile{UserID: "u1", CommunicationStyle: conversation.StyleFriendly},
	}
}

func TestStrategyUrgencyWins(t *testing.T) {
	cls := classifier.IntentClassification{
		PrimaryIntent: rules.IntentDiseaseDiagnosis,
		Sentiment:     rules.SentimentUrgent,
		Urgency:       rules.UrgencyHigh,
	}
	s := decideStrategy(cls, blankContext())
	if s.Type != StrategyEmergency || s.Tone != ToneUrgent || s.PersonalizationLevel != 5 {
		t.Errorf("strategy = %+v, want emergency/urgent/5", s)
	}
}

func TestStrategyPerIntent(t *testing.T) {
	tests := []struct {
		intent rules.Intent
		typ    string
		tone   string
		level  int
	}{
		{rules.IntentDiseaseDiagnosis, StrategyDiagnostic, ToneProfessional, 4},
		{rules.IntentCropRecommendation, StrategyRecommendatory, ToneFriendly, 5},
		{rules.IntentMarketInquiry, StrategyInformative, ToneProfessional, 3},
		{rules.IntentSoilManagement, StrategyEducational, ToneFriendly, 4},
		{rules.IntentGeneralQuestion, StrategyInteractive, ToneFriendly, 3},
	}
	for _, tt := range tests {
		cls := classifier.IntentClassification{PrimaryIntent: tt.intent}
		s := decideStrategy(cls, blankContext())
		if s.Type != tt.typ || s.Tone != tt.tone || s.PersonalizationLevel != tt.level {
			t.Errorf("%s: strategy = %+v, want %s/%s/%d", tt.intent, s, tt.typ, tt.tone, tt.level)
		}
	}
}

func TestStrategyToneOverrideFromStyle(t *testing.T) {
	ctx := blankContext()
	ctx.Profile.CommunicationStyle = conversation.StyleDirect

	cls := classifier.IntentClassification{PrimaryIntent: rules.IntentCropRecommendation}
	if s := decideStrategy(cls, ctx); s.Tone != ToneProfessional {
		t.Errorf("direct style should force professional tone, got %q", s.Tone)
	}

	ctx.Profile.CommunicationStyle = conversation.StyleEncouraging
	if s := decideStrategy(cls, ctx); s.Tone != ToneEncouraging {
		t.Errorf("encouraging style should force encouraging tone, got %q", s.Tone)
	}
}

func TestGenerateFillsTemplateFromProfileAndEntities(t *testing.T) {
	g := NewGenerator(nil)
	ctx := blankContext()
	ctx.Profile.Location = "punjab"
	ctx.Profile.SoilType = "clay"

	cls := classifier.IntentClassification{
		PrimaryIntent: rules.IntentCropRecommendation,
		Confidence:    0.4,
		Entities:      []classifier.Entity{{Kind: rules.EntityCrop, Value: "rice"}},
	}

	resp := g.Generate(context.Background(), cls, ctx)
	for _, want := range []string{"punjab", "clay", "rice", "kharif"} {
		if !strings.Contains(resp.Content, want) {
			t.Errorf("content %q missing %q", resp.Content, want)
		}
	}
	if resp.Metadata.Intent != rules.IntentCropRecommendation {
		t.Errorf("metadata intent = %q", resp.Metadata.Intent)
	}
}

func TestGenerateFallsBackToDefaults(t *testing.T) {
	g := NewGenerator(nil)

	cls := classifier.IntentClassification{
		PrimaryIntent: rules.IntentCropRecommendation,
		Confidence:    0.2,
	}
	resp := g.Generate(context.Background(), cls, blankContext())
	if !strings.Contains(resp.Content, "your region") || !strings.Contains(resp.Content, "suitable crops") {
		t.Errorf("content %q should use placeholder defaults", resp.Content)
	}
}

func TestGenerateMarketQuote(t *testing.T) {
	prices := &stubPrices{quotes: map[string][2]string{"wheat": {"2250", "rising"}}}
	g := NewGenerator(prices)

	cls := classifier.IntentClassification{
		PrimaryIntent: rules.IntentMarketInquiry,
		Confidence:    0.5,
		Entities:      []classifier.Entity{{Kind: rules.EntityCrop, Value: "wheat"}},
	}
	resp := g.Generate(context.Background(), cls, blankContext())
	if !strings.Contains(resp.Content, "₹2250/quintal") {
		t.Errorf("content %q missing quoted price", resp.Content)
	}
	if !strings.Contains(resp.Content, "rising") {
		t.Errorf("content %q missing trend", resp.Content)
	}
}

func TestGenerateDiseaseTreatmentFromKnowledge(t *testing.T) {
	g := NewGenerator(nil)

	cls := classifier.IntentClassification{
		PrimaryIntent: rules.IntentDiseaseDiagnosis,
		Confidence:    0.6,
		Entities:      []classifier.Entity{{Kind: rules.EntityDisease, Value: "powdery mildew"}},
	}
	resp := g.Generate(context.Background(), cls, blankContext())
	if !strings.Contains(resp.Content, "powdery mildew") {
		t.Errorf("content %q missing disease name", resp.Content)
	}
	if !strings.Contains(resp.Content, "sulfur-based fungicide") {
		t.Errorf("content %q missing treatment from knowledge base", resp.Content)
	}
}

func TestGenerateDynamicForUntemplatedIntent(t *testing.T) {
	g := NewGenerator(nil)

	cls := classifier.IntentClassification{
		PrimaryIntent: rules.IntentIrrigationAdvice,
		Confidence:    0.3,
	}
	resp := g.Generate(context.Background(), cls, blankContext())
	if resp.Metadata.TemplateUsed != "dynamic" {
		t.Errorf("template used = %q, want dynamic", resp.Metadata.TemplateUsed)
	}
	if resp.Content == "" {
		t.Error("dynamic reply should not be empty")
	}
}

func TestPersonalizationRegionHint(t *testing.T) {
	g := NewGenerator(nil)
	ctx := blankContext()
	ctx.Profile.Location = "maharashtra"

	cls := classifier.IntentClassification{
		PrimaryIntent: rules.IntentCropRecommendation,
		Confidence:    0.4,
	}
	resp := g.Generate(context.Background(), cls, ctx)
	if !strings.Contains(resp.Content, "cotton-growing region") {
		t.Errorf("content %q missing regional hint", resp.Content)
	}
}

func TestPersonalizationSkippedAtShallowLevel(t *testing.T) {
	cls := classifier.IntentClassification{PrimaryIntent: rules.IntentMarketInquiry}
	strategy := ResponseStrategy{Type: StrategyInformative, Tone: ToneProfessional, PersonalizationLevel: 2}

	ctx := blankContext()
	ctx.Profile.Location = "punjab"
	got := personalize("base.", cls, ctx, strategy)
	if got != "base." {
		t.Errorf("level 2 should skip personalization, got %q", got)
	}
}

func TestSuggestedActionsCappedWithProfileGaps(t *testing.T) {
	cls := classifier.IntentClassification{PrimaryIntent: rules.IntentCropRecommendation}
	actions := suggestedActions(cls, blankContext())
	if len(actions) != maxSuggestedActions {
		t.Fatalf("actions = %d, want %d", len(actions), maxSuggestedActions)
	}
}

func TestFollowUpQuestionsSkipCapturedEntities(t *testing.T) {
	cls := classifier.IntentClassification{
		PrimaryIntent: rules.IntentCropRecommendation,
		Entities: []classifier.Entity{
			{Kind: rules.EntityLocation, Value: "punjab"},
			{Kind: rules.EntitySoilType, Value: "clay"},
		},
	}
	questions := followUpQuestions(cls, blankContext())
	for _, q := range questions {
		if strings.Contains(q, "location") || strings.Contains(q, "type of soil") {
			t.Errorf("question %q asks for an already-captured entity", q)
		}
	}
	if len(questions) > maxFollowUpQuestions {
		t.Errorf("questions = %d, want at most %d", len(questions), maxFollowUpQuestions)
	}
}

func TestResponseConfidenceFormula(t *testing.T) {
	cls := classifier.IntentClassification{
		Confidence: 0.4,
		Entities: []classifier.Entity{
			{Kind: rules.EntityCrop, Value: "rice"},
			{Kind: rules.EntityLocation, Value: "punjab"},
		},
	}
	ctx := blankContext()
	ctx.Profile.Location = "punjab"
	ctx.Profile.FarmSize = "5 acres"
	ctx.Profile.SoilType = "clay"
	ctx.History = []conversation.Turn{{}, {}, {}}

	// 0.4 + 0.1 + 0.1 + 0.1 + 0.05 + 2*0.05 = 0.85
	got := responseConfidence(cls, ctx)
	if got < 0.849 || got > 0.851 {
		t.Errorf("confidence = %v, want 0.85", got)
	}

	cls.Confidence = 0.95
	if got := responseConfidence(cls, ctx); got != 1.0 {
		t.Errorf("confidence = %v, want clamped at 1.0", got)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	g := NewGenerator(nil)
	cls := classifier.IntentClassification{
		PrimaryIntent: rules.IntentCropRecommendation,
		Confidence:    0.4,
		Entities:      []classifier.Entity{{Kind: rules.EntityCrop, Value: "wheat"}},
	}
	a := g.Generate(context.Background(), cls, blankContext())
	b := g.Generate(context.Background(), cls, blankContext())
	if a.Content != b.Content {
		t.Errorf("identical inputs rendered different replies:\n%q\n%q", a.Content, b.Content)
	}
}
