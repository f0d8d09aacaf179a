package classifier

import "github.com/kisanmitra/kisanmitra/internal/rules"

// Entity is a typed span of text denoting a domain concept.
type Entity struct {
	Kind       rules.EntityKind `json:"kind"`
	Value      string           `json:"value"`
	Confidence float64          `json:"confidence"`
	Start      int              `json:"start"`
	End        int              `json:"end"`
}

// IntentClassification is the full result of classifying one utterance.
type IntentClassification struct {
	PrimaryIntent    rules.Intent    `json:"primary_intent"`
	SecondaryIntents []rules.Intent  `json:"secondary_intents"`
	Confidence       float64         `json:"confidence"`
	Entities         []Entity        `json:"entities"`
	Sentiment        rules.Sentiment `json:"sentiment"`
	Urgency          rules.Urgency   `json:"urgency"`
	ContextClues     []string        `json:"context_clues"`
}

// HasEntity reports whether the classification extracted at least one
// entity of the given kind.
func (c IntentClassification) HasEntity(kind rules.EntityKind) bool {
	for _, e := range c.Entities {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// EntityValues returns the values of all entities of the given kind, in
// extraction order.
func (c IntentClassification) EntityValues(kind rules.EntityKind) []string {
	var values []string
	for _, e := range c.Entities {
		if e.Kind == kind {
			values = append(values, e.Value)
		}
	}
	return values
}
