package responder

import (
	"strings"

	"github.com/kisanmitra/kisanmitra/internal/rules"
)

// template is one canned reply shape. Variables appear in the text as
// {name} placeholders and resolve through the profile, this turn's
// entities, and finally a generic default.
type template struct {
	text string
	tone string
}

// responseTemplates holds the per-intent reply shapes. Intents without
// an entry fall through to a dynamically composed reply.
var responseTemplates = map[rules.Intent][]template{
	rules.IntentCropRecommendation: {
		{
			text: "🌾 Based on your {location} location and {soil_type} soil, I recommend {crop_name} for the {season} season.",
			tone: ToneFriendly,
		},
		{
			text: "For {farm_size} farm in {location}, {crop_name} would be ideal because {reason}.",
			tone: ToneProfessional,
		},
	},
	rules.IntentDiseaseDiagnosis: {
		{
			text: "🦠 The symptoms you're describing suggest {disease_name}. Here's what you can do: {treatment}",
			tone: ToneProfessional,
		},
		{
			text: "Based on the symptoms, this appears to be {disease_name}. Immediate action: {immediate_action}",
			tone: ToneUrgent,
		},
	},
	rules.IntentPestManagement: {
		{
			text: "🐛 For {pest_name} control, I recommend {treatment_method}. This is {effectiveness} effective.",
			tone: ToneProfessional,
		},
	},
	rules.IntentSoilManagement: {
		{
			text: "🌱 Your {soil_type} soil needs {nutrient} supplementation. Add {fertilizer} at {rate}.",
			tone: ToneFriendly,
		},
	},
	rules.IntentMarketInquiry: {
		{
			text: "📈 Current market price for {crop_name} in {location} is ₹{price}/quintal. Trend: {trend}",
			tone: ToneProfessional,
		},
	},
	rules.IntentWeatherAdvice: {
		{
			text: "🌤️ Weather forecast for {location}: {forecast}. Farming advice: {advice}",
			tone: ToneProfessional,
		},
	},
	rules.IntentEmergencyHelp: {
		{
			text: "🚨 URGENT: {emergency_type} detected. Immediate action required: {action}. Contact: {contact}",
			tone: ToneUrgent,
		},
	},
}

// templateDefaults fill placeholders no profile fact or entity covers.
var templateDefaults = map[string]string{
	"location":         "your region",
	"soil_type":        "your soil",
	"farm_size":        "your farm",
	"crop_name":        "suitable crops",
	"season":           "current season",
	"disease_name":     "plant disease",
	"pest_name":        "pest",
	"treatment":        "appropriate treatment",
	"price":            "current market price",
	"forecast":         "weather conditions",
	"advice":           "farming advice",
	"reason":           "it suits your conditions",
	"immediate_action": "isolate affected plants and apply treatment",
	"treatment_method": "integrated pest management",
	"effectiveness":    "highly",
	"nutrient":         "balanced nutrient",
	"fertilizer":       "organic compost",
	"rate":             "recommended rates",
	"trend":            "stable",
	"emergency_type":   "crop emergency",
	"action":           "contact your local agricultural officer",
	"contact":          "Kisan Call Centre 1800-180-1551",
}

// pickTemplate selects the reply shape for an intent, preferring one that
// matches the strategy's tone. Selection is deterministic so identical
// inputs render identical replies.
func pickTemplate(intent rules.Intent, tone string) (template, bool) {
	candidates, ok := responseTemplates[intent]
	if !ok || len(candidates) == 0 {
		return template{}, false
	}
	for _, t := range candidates {
		if t.tone == tone {
			return t, true
		}
	}
	return candidates[0], true
}

// fillTemplate substitutes every {name} placeholder using the resolver,
// falling back to the generic default for unknown names.
func fillTemplate(text string, resolve func(name string) (string, bool)) string {
	var b strings.Builder
	for {
		open := strings.IndexByte(text, '{')
		if open < 0 {
			b.WriteString(text)
			return b.String()
		}
		end := strings.IndexByte(text[open:], '}')
		if end < 0 {
			b.WriteString(text)
			return b.String()
		}
		end += open

		b.WriteString(text[:open])
		name := text[open+1 : end]
		if v, ok := resolve(name); ok {
			b.WriteString(v)
		} else if v, ok := templateDefaults[name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString("relevant information")
		}
		text = text[end+1:]
	}
}
