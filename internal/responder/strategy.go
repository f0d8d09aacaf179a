package responder

import (
	"github.com/kisanmitra/kisanmitra/internal/classifier"
	"github.com/kisanmitra/kisanmitra/internal/conversation"
	"github.com/kisanmitra/kisanmitra/internal/rules"
)

// decideStrategy maps the classification to a response shape. The rules
// are ordered: urgency wins over everything, then the intent picks the
// type, tone, and personalization depth. The user's stored communication
// style can then override the tone.
func decideStrategy(cls classifier.IntentClassification, ctx *conversation.Context) ResponseStrategy {
	var (
		typ   string
		tone  string
		level int
	)

	switch {
	case cls.Urgency == rules.UrgencyHigh || cls.Sentiment == rules.SentimentUrgent:
		typ, tone, level = StrategyEmergency, ToneUrgent, 5
	case cls.PrimaryIntent == rules.IntentDiseaseDiagnosis:
		typ, tone, level = StrategyDiagnostic, ToneProfessional, 4
	case cls.PrimaryIntent == rules.IntentCropRecommendation:
		typ, tone, level = StrategyRecommendatory, ToneFriendly, 5
	case cls.PrimaryIntent == rules.IntentMarketInquiry:
		typ, tone, level = StrategyInformative, ToneProfessional, 3
	case cls.PrimaryIntent == rules.IntentSoilManagement:
		typ, tone, level = StrategyEducational, ToneFriendly, 4
	default:
		typ, tone, level = StrategyInteractive, ToneFriendly, 3
	}

	if ctx != nil {
		switch ctx.Profile.CommunicationStyle {
		case conversation.StyleDirect:
			tone = ToneProfessional
		case conversation.StyleEncouraging:
			tone = ToneEncouraging
		}
	}

	return ResponseStrategy{
		Type:                 typ,
		Tone:                 tone,
		Format:               "text",
		PersonalizationLevel: level,
		IncludeSuggestions:   true,
		IncludeFollowUps:     true,
	}
}
