// Package responder turns an intent classification and the session
// context into a rendered reply: a strategy decision, a filled template
// or composed fallback, personalization passes, suggested actions, and
// follow-up questions.
package responder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kisanmitra/kisanmitra/internal/classifier"
	"github.com/kisanmitra/kisanmitra/internal/conversation"
	"github.com/kisanmitra/kisanmitra/internal/knowledge"
	"github.com/kisanmitra/kisanmitra/internal/rules"
)

const (
	maxSuggestedActions  = 4
	maxFollowUpQuestions = 3
)

// PriceSource answers live market quotes for the market-inquiry
// templates. A nil source falls back to template defaults.
type PriceSource interface {
	Quote(ctx context.Context, crop string) (pricePerQuintal, trend string, ok bool)
}

// Generator renders replies. Identical inputs always render identical
// output.
type Generator struct {
	prices PriceSource
	now    func() time.Time
}

// NewGenerator creates a Generator. prices may be nil.
func NewGenerator(prices PriceSource) *Generator {
	return &Generator{prices: prices, now: time.Now}
}

// Generate builds the complete reply for one classified utterance against
// the session context as it stood before this turn.
func (g *Generator) Generate(ctx context.Context, cls classifier.IntentClassification, convo *conversation.Context) GeneratedResponse {
	strategy := decideStrategy(cls, convo)

	vars := g.entityVars(ctx, cls, convo)
	content, templateUsed := g.renderContent(cls, convo, strategy, vars)
	content = personalize(content, cls, convo, strategy)

	return GeneratedResponse{
		Content:           content,
		Strategy:          strategy,
		Confidence:        responseConfidence(cls, convo),
		SuggestedActions:  suggestedActions(cls, convo),
		FollowUpQuestions: followUpQuestions(cls, convo),
		Metadata: Metadata{
			Intent:       cls.PrimaryIntent,
			Entities:     cls.Entities,
			Sentiment:    cls.Sentiment,
			Urgency:      cls.Urgency,
			ContextClues: cls.ContextClues,
			GeneratedAt:  g.now(),
			TemplateUsed: templateUsed,
		},
	}
}

// renderContent fills the intent's template, or composes a dynamic reply
// for intents that have none. Profile facts shadow entity values for the
// location, soil type, and farm size placeholders.
func (g *Generator) renderContent(cls classifier.IntentClassification, convo *conversation.Context, strategy ResponseStrategy, vars map[string]string) (content, templateUsed string) {
	tmpl, ok := pickTemplate(cls.PrimaryIntent, strategy.Tone)
	if !ok {
		return g.dynamicResponse(cls, convo), "dynamic"
	}

	resolve := func(name string) (string, bool) {
		if convo != nil {
			switch name {
			case "location":
				if convo.Profile.Location != "" {
					return convo.Profile.Location, true
				}
			case "soil_type":
				if convo.Profile.SoilType != "" {
					return convo.Profile.SoilType, true
				}
			case "farm_size":
				if convo.Profile.FarmSize != "" {
					return convo.Profile.FarmSize, true
				}
			}
		}
		v, ok := vars[name]
		return v, ok
	}

	return fillTemplate(tmpl.text, resolve), strategy.Type
}

// entityVars maps this turn's entities to template placeholders, pulling
// in agronomy knowledge and market quotes where available.
func (g *Generator) entityVars(ctx context.Context, cls classifier.IntentClassification, convo *conversation.Context) map[string]string {
	vars := make(map[string]string)

	for _, e := range cls.Entities {
		switch e.Kind {
		case rules.EntityCrop:
			if _, seen := vars["crop_name"]; seen {
				continue
			}
			vars["crop_name"] = e.Value
			if profile, ok := knowledge.Crop(e.Value); ok {
				if len(profile.Seasons) > 0 {
					vars["season"] = profile.Seasons[0]
				}
				vars["reason"] = fmt.Sprintf("it yields %s over %s", profile.Yield, profile.Duration)
			}
			if g.prices != nil {
				if price, trend, ok := g.prices.Quote(ctx, e.Value); ok {
					vars["price"] = price
					vars["trend"] = trend
				}
			}
		case rules.EntityDisease:
			vars["disease_name"] = e.Value
			if d, ok := knowledge.Disease(e.Value); ok {
				vars["treatment"] = d.Treatment
				vars["immediate_action"] = d.Treatment
			}
		case rules.EntityPest:
			vars["pest_name"] = e.Value
			if p, ok := knowledge.Pest(e.Value); ok {
				vars["treatment_method"] = p.Treatment
			}
		case rules.EntityLocation:
			vars["location"] = e.Value
		case rules.EntitySeason:
			vars["season"] = e.Value
		case rules.EntitySoilType:
			vars["soil_type"] = e.Value
			if s, ok := knowledge.Soil(e.Value); ok && len(s.Solutions) > 0 {
				vars["fertilizer"] = s.Solutions[0]
			}
		}
	}

	if cls.Sentiment == rules.SentimentUrgent || cls.Urgency == rules.UrgencyHigh {
		vars["emergency_type"] = string(cls.PrimaryIntent)
	}

	return vars
}

// dynamicResponse composes a reply for intents without a template: an
// intent-specific opening, entities woven in, then location, urgency, and
// topic-continuity touches.
func (g *Generator) dynamicResponse(cls classifier.IntentClassification, convo *conversation.Context) string {
	var b strings.Builder

	switch cls.PrimaryIntent {
	case rules.IntentCropRecommendation:
		b.WriteString("🌾 I'd be happy to help you with crop recommendations! ")
		if crops := cls.EntityValues(rules.EntityCrop); len(crops) > 0 {
			fmt.Fprintf(&b, "For %s, I can provide specific growing advice. ", strings.Join(crops, ", "))
		}
	case rules.IntentDiseaseDiagnosis:
		b.WriteString("🦠 I understand you're concerned about plant health. ")
		if diseases := cls.EntityValues(rules.EntityDisease); len(diseases) > 0 {
			fmt.Fprintf(&b, "Let me help you with %s management. ", strings.Join(diseases, ", "))
		}
	case rules.IntentPestManagement:
		b.WriteString("🐛 Pest management is crucial for healthy crops. ")
		if pests := cls.EntityValues(rules.EntityPest); len(pests) > 0 {
			fmt.Fprintf(&b, "I can help you control %s effectively. ", strings.Join(pests, ", "))
		}
	case rules.IntentSoilManagement:
		b.WriteString("🌱 Soil health is the foundation of good farming. ")
		if soils := cls.EntityValues(rules.EntitySoilType); len(soils) > 0 {
			fmt.Fprintf(&b, "For %s soil, I have specific recommendations. ", strings.Join(soils, ", "))
		}
	case rules.IntentMarketInquiry:
		b.WriteString("📈 Market intelligence helps maximize profits. ")
		if crops := cls.EntityValues(rules.EntityCrop); len(crops) > 0 {
			fmt.Fprintf(&b, "Let me share current market insights for %s. ", strings.Join(crops, ", "))
		}
	default:
		b.WriteString("🌱 I'm here to help with your agricultural needs! ")
	}

	if convo != nil && convo.Profile.Location != "" {
		fmt.Fprintf(&b, "Since you're in %s, ", convo.Profile.Location)
	}
	if cls.Sentiment == rules.SentimentUrgent {
		b.WriteString("This seems urgent, so let me provide immediate assistance. ")
	}
	if convo != nil && convo.CurrentTopic != "" && convo.CurrentTopic != cls.PrimaryIntent {
		fmt.Fprintf(&b, "Building on our discussion about %s, ", convo.CurrentTopic)
	}

	return b.String()
}

// personalize appends user-specific touches: farm size, experience level,
// a callback to recent topics, and regional growing hints. Shallow
// personalization levels skip it entirely.
func personalize(content string, cls classifier.IntentClassification, convo *conversation.Context, strategy ResponseStrategy) string {
	if strategy.PersonalizationLevel < 3 || convo == nil {
		return content
	}

	var b strings.Builder
	b.WriteString(content)

	if convo.Profile.FarmSize != "" && strategy.PersonalizationLevel >= 4 {
		fmt.Fprintf(&b, " For your %s farm, ", convo.Profile.FarmSize)
	}

	experience := strings.ToLower(convo.Profile.FarmingExperience)
	switch {
	case strings.Contains(experience, "beginner"):
		b.WriteString("As a beginner farmer, I'll explain everything step by step. ")
	case strings.Contains(experience, "experienced"):
		b.WriteString("Given your experience, I'll focus on advanced techniques. ")
	}

	if topics := recentDistinctTopics(convo, 4); len(topics) > 1 {
		if len(topics) > 2 {
			topics = topics[:2]
		}
		fmt.Fprintf(&b, " I notice we've been discussing %s. ", strings.Join(topics, ", "))
	}

	if hint := regionHint(convo.Profile.Location); hint != "" {
		b.WriteString(hint)
	}

	return b.String()
}

// regionHint returns a growing-belt phrase for well-known states.
func regionHint(location string) string {
	loc := strings.ToLower(location)
	switch {
	case strings.Contains(loc, "punjab") || strings.Contains(loc, "haryana"):
		return "Given your location in the wheat belt, "
	case strings.Contains(loc, "maharashtra") || strings.Contains(loc, "gujarat"):
		return "In your cotton-growing region, "
	case strings.Contains(loc, "karnataka") || strings.Contains(loc, "tamil nadu"):
		return "In your rice-growing region, "
	}
	return ""
}

// recentDistinctTopics lists the distinct intents of the last n turns in
// first-seen order, once the conversation has some depth.
func recentDistinctTopics(convo *conversation.Context, n int) []string {
	if len(convo.History) <= 2 {
		return nil
	}
	start := len(convo.History) - n
	if start < 0 {
		start = 0
	}
	seen := make(map[string]bool)
	var topics []string
	for _, t := range convo.History[start:] {
		intent := string(t.Intent)
		if intent == "" || seen[intent] {
			continue
		}
		seen[intent] = true
		topics = append(topics, intent)
	}
	return topics
}

// suggestedActions proposes next steps for the intent plus profile-gap
// extras, capped at four.
func suggestedActions(cls classifier.IntentClassification, convo *conversation.Context) []string {
	var actions []string

	switch cls.PrimaryIntent {
	case rules.IntentCropRecommendation:
		actions = append(actions,
			"Get soil test done for accurate recommendations",
			"Check weather forecast for planting timing",
			"Research market prices for profitability",
			"Plan irrigation and water management")
	case rules.IntentDiseaseDiagnosis:
		actions = append(actions,
			"Upload plant images for accurate diagnosis",
			"Isolate affected plants to prevent spread",
			"Apply recommended treatment immediately",
			"Monitor plant health regularly")
	case rules.IntentPestManagement:
		actions = append(actions,
			"Identify pest species accurately",
			"Choose appropriate control method",
			"Implement integrated pest management",
			"Monitor pest population levels")
	case rules.IntentSoilManagement:
		actions = append(actions,
			"Test soil pH and nutrient levels",
			"Add organic matter and compost",
			"Apply appropriate fertilizers",
			"Practice crop rotation")
	case rules.IntentMarketInquiry:
		actions = append(actions,
			"Check local mandi prices",
			"Research export opportunities",
			"Consider contract farming options",
			"Plan optimal harvest timing")
	}

	if convo != nil {
		if convo.Profile.Location == "" {
			actions = append(actions, "Share your location for region-specific advice")
		}
		if convo.Profile.FarmSize == "" {
			actions = append(actions, "Provide farm size for yield calculations")
		}
	}

	if len(actions) > maxSuggestedActions {
		actions = actions[:maxSuggestedActions]
	}
	return actions
}

// followUpQuestions proposes clarifying questions for the intent, capped
// at three.
func followUpQuestions(cls classifier.IntentClassification, convo *conversation.Context) []string {
	var questions []string

	switch cls.PrimaryIntent {
	case rules.IntentCropRecommendation:
		if !cls.HasEntity(rules.EntityLocation) {
			questions = append(questions, "What's your location/state for region-specific advice?")
		}
		if !cls.HasEntity(rules.EntitySoilType) {
			questions = append(questions, "What type of soil do you have?")
		}
		if !cls.HasEntity(rules.EntityQuantity) {
			questions = append(questions, "What's your farm size?")
		}
		questions = append(questions, "What's your budget for cultivation?")
	case rules.IntentDiseaseDiagnosis:
		questions = append(questions,
			"What specific symptoms are you seeing?",
			"When did you first notice the problem?",
			"How much of your crop is affected?",
			"What treatments have you tried so far?")
	case rules.IntentPestManagement:
		questions = append(questions,
			"Which pest is causing damage?",
			"What's the extent of damage?",
			"Do you prefer organic or chemical control?",
			"What's your current pest management strategy?")
	case rules.IntentSoilManagement:
		questions = append(questions,
			"When did you last test your soil?",
			"What crops did you grow previously?",
			"What fertilizers are you currently using?",
			"What's your soil pH level?")
	}

	if convo != nil && len(convo.Profile.PreferredCrops) > 0 {
		crops := convo.Profile.PreferredCrops
		if len(crops) > 2 {
			crops = crops[:2]
		}
		questions = append(questions, fmt.Sprintf("Are you interested in growing %s?", strings.Join(crops, ", ")))
	}

	if len(questions) > maxFollowUpQuestions {
		questions = questions[:maxFollowUpQuestions]
	}
	return questions
}

// responseConfidence grows the classifier's confidence with every known
// profile fact, conversation depth, and extracted entity, capped at 1.0.
func responseConfidence(cls classifier.IntentClassification, convo *conversation.Context) float64 {
	confidence := cls.Confidence

	if convo != nil {
		if convo.Profile.Location != "" {
			confidence += 0.1
		}
		if convo.Profile.FarmSize != "" {
			confidence += 0.1
		}
		if convo.Profile.SoilType != "" {
			confidence += 0.1
		}
		if len(convo.History) > 2 {
			confidence += 0.05
		}
	}

	if n := len(cls.Entities); n > 0 {
		bump := float64(n) * 0.05
		if bump > 0.2 {
			bump = 0.2
		}
		confidence += bump
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}
