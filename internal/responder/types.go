package responder

import (
	"time"

	"github.com/kisanmitra/kisanmitra/internal/classifier"
	"github.com/kisanmitra/kisanmitra/internal/rules"
)

// Response strategy types.
const (
	StrategyInformative    = "informative"
	StrategyDiagnostic     = "diagnostic"
	StrategyRecommendatory = "recommendatory"
	StrategyEducational    = "educational"
	StrategyEmergency      = "emergency"
	StrategyInteractive    = "interactive"
)

// Response tones.
const (
	ToneProfessional = "professional"
	ToneFriendly     = "friendly"
	ToneUrgent       = "urgent"
	ToneEncouraging  = "encouraging"
)

// ResponseStrategy describes how a reply should be shaped before its
// content is rendered.
type ResponseStrategy struct {
	Type                 string `json:"type"`
	Tone                 string `json:"tone"`
	Format               string `json:"format"`
	PersonalizationLevel int    `json:"personalization_level"`
	IncludeSuggestions   bool   `json:"include_suggestions"`
	IncludeFollowUps     bool   `json:"include_follow_ups"`
}

// Metadata carries the classification trace alongside a generated reply
// so callers can audit why the engine said what it said.
type Metadata struct {
	Intent       rules.Intent        `json:"intent"`
	Entities     []classifier.Entity `json:"entities"`
	Sentiment    rules.Sentiment     `json:"sentiment"`
	Urgency      rules.Urgency       `json:"urgency"`
	ContextClues []string            `json:"context_clues"`
	GeneratedAt  time.Time           `json:"generated_at"`
	TemplateUsed string              `json:"template_used"`
}

// GeneratedResponse is the engine's complete reply to one utterance.
type GeneratedResponse struct {
	Content           string           `json:"content"`
	Strategy          ResponseStrategy `json:"strategy"`
	Confidence        float64          `json:"confidence"`
	SuggestedActions  []string         `json:"suggested_actions"`
	FollowUpQuestions []string         `json:"follow_up_questions"`
	Metadata          Metadata         `json:"metadata"`
}
