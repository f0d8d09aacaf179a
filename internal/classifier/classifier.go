// Package classifier turns free-text farmer utterances into structured
// intent classifications: a primary intent with confidence, secondary
// intents, extracted entities, sentiment, urgency, and context clues.
// Classification is deterministic regex and keyword matching over the
// rule catalog — no I/O, no learned models.
package classifier

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/kisanmitra/kisanmitra/internal/rules"
)

// entityBaseConfidence is assigned to every pattern-extracted entity.
const entityBaseConfidence = 0.8

// fallbackConfidence is the confidence reported when no intent pattern
// matches and the utterance falls back to general_question.
const fallbackConfidence = 0.1

// scorableIntents fixes the evaluation order so that score ties resolve
// deterministically.
var scorableIntents = []rules.Intent{
	rules.IntentCropRecommendation,
	rules.IntentDiseaseDiagnosis,
	rules.IntentPestManagement,
	rules.IntentSoilManagement,
	rules.IntentWeatherAdvice,
	rules.IntentMarketInquiry,
	rules.IntentIrrigationAdvice,
	rules.IntentEquipmentHelp,
	rules.IntentGovernmentSchemes,
	rules.IntentEmergencyHelp,
}

// entityKinds fixes the extraction order across kinds so that the global
// value dedup keeps the same occurrence on every run.
var entityKinds = []rules.EntityKind{
	rules.EntityCrop,
	rules.EntityDisease,
	rules.EntityPest,
	rules.EntityLocation,
	rules.EntitySeason,
	rules.EntitySoilType,
	rules.EntityEquipment,
	rules.EntityQuantity,
	rules.EntityTimePeriod,
}

// Classifier matches utterances against a compiled rule catalog. It is
// stateless after construction and safe for concurrent use.
type Classifier struct {
	catalog      *rules.Catalog
	intents      map[rules.Intent][]*regexp.Regexp
	entities     map[rules.EntityKind][]*regexp.Regexp
	timeClues    []*regexp.Regexp
	quantityClue *regexp.Regexp
}

// New compiles the catalog's patterns into a ready Classifier.
func New(catalog *rules.Catalog) (*Classifier, error) {
	c := &Classifier{
		catalog:  catalog,
		intents:  make(map[rules.Intent][]*regexp.Regexp, len(catalog.IntentPatterns)),
		entities: make(map[rules.EntityKind][]*regexp.Regexp, len(catalog.EntityPatterns)),
	}

	for intent, patterns := range catalog.IntentPatterns {
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("compiling intent %s pattern %q: %w", intent, p, err)
			}
			c.intents[intent] = append(c.intents[intent], re)
		}
	}

	for kind, patterns := range catalog.EntityPatterns {
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("compiling entity %s pattern %q: %w", kind, p, err)
			}
			c.entities[kind] = append(c.entities[kind], re)
		}
	}

	for _, p := range catalog.TimeCluePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling time clue pattern %q: %w", p, err)
		}
		c.timeClues = append(c.timeClues, re)
	}

	re, err := regexp.Compile(catalog.QuantityCluePattern)
	if err != nil {
		return nil, fmt.Errorf("compiling quantity clue pattern: %w", err)
	}
	c.quantityClue = re

	return c, nil
}

// Classify analyzes one utterance. It never fails: unmatched or malformed
// input degrades to general_question at low confidence.
func (c *Classifier) Classify(utterance string) IntentClassification {
	lowered := strings.ToLower(utterance)

	if strings.TrimSpace(lowered) == "" {
		return IntentClassification{
			PrimaryIntent: rules.IntentGeneralQuestion,
			Confidence:    fallbackConfidence,
			Sentiment:     rules.SentimentNeutral,
			Urgency:       rules.UrgencyLow,
		}
	}

	primary, confidence, secondary := c.scoreIntents(lowered)

	return IntentClassification{
		PrimaryIntent:    primary,
		SecondaryIntents: secondary,
		Confidence:       confidence,
		Entities:         c.extractEntities(lowered),
		Sentiment:        c.analyzeSentiment(lowered),
		Urgency:          c.determineUrgency(lowered),
		ContextClues:     c.extractContextClues(lowered),
	}
}

// scoreIntents counts, per intent, how many of its patterns match. The
// primary intent is the highest raw score (first in evaluation order on
// ties); its confidence is matched/total for that intent.
func (c *Classifier) scoreIntents(lowered string) (rules.Intent, float64, []rules.Intent) {
	scores := make(map[rules.Intent]int)
	for _, intent := range scorableIntents {
		for _, re := range c.intents[intent] {
			if re.MatchString(lowered) {
				scores[intent]++
			}
		}
	}

	var primary rules.Intent
	best := 0
	for _, intent := range scorableIntents {
		if scores[intent] > best {
			best = scores[intent]
			primary = intent
		}
	}

	if best == 0 {
		return rules.IntentGeneralQuestion, fallbackConfidence, nil
	}

	confidence := float64(best) / float64(len(c.intents[primary]))
	if confidence > 1.0 {
		confidence = 1.0
	}

	var secondary []rules.Intent
	for _, intent := range scorableIntents {
		if intent != primary && scores[intent] > 0 {
			secondary = append(secondary, intent)
		}
	}

	return primary, confidence, secondary
}

// extractEntities runs every entity pattern, assigns the base confidence,
// deduplicates globally by normalized value keeping the earliest
// occurrence, and returns entities sorted by ascending start offset.
func (c *Classifier) extractEntities(lowered string) []Entity {
	var all []Entity
	for _, kind := range entityKinds {
		for _, re := range c.entities[kind] {
			for _, span := range re.FindAllStringIndex(lowered, -1) {
				all = append(all, Entity{
					Kind:       kind,
					Value:      strings.TrimSpace(lowered[span[0]:span[1]]),
					Confidence: entityBaseConfidence,
					Start:      span[0],
					End:        span[1],
				})
			}
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Start < all[j].Start })

	seen := make(map[string]bool, len(all))
	unique := all[:0]
	for _, e := range all {
		if seen[e.Value] {
			continue
		}
		seen[e.Value] = true
		unique = append(unique, e)
	}
	if len(unique) == 0 {
		return nil
	}
	return unique
}

// analyzeSentiment counts keyword hits per bucket. Any urgent keyword
// forces the urgent sentiment; otherwise the larger of positive/negative
// wins and ties are neutral. Keywords match by substring, as the catalog
// lists are written for.
func (c *Classifier) analyzeSentiment(lowered string) rules.Sentiment {
	counts := make(map[rules.Sentiment]int, 3)
	for sentiment, words := range c.catalog.SentimentKeywords {
		for _, w := range words {
			if strings.Contains(lowered, w) {
				counts[sentiment]++
			}
		}
	}

	switch {
	case counts[rules.SentimentUrgent] > 0:
		return rules.SentimentUrgent
	case counts[rules.SentimentPositive] > counts[rules.SentimentNegative]:
		return rules.SentimentPositive
	case counts[rules.SentimentNegative] > counts[rules.SentimentPositive]:
		return rules.SentimentNegative
	default:
		return rules.SentimentNeutral
	}
}

// determineUrgency grades by the count of distinct urgent keywords present.
func (c *Classifier) determineUrgency(lowered string) rules.Urgency {
	count := 0
	for _, w := range c.catalog.SentimentKeywords[rules.SentimentUrgent] {
		if strings.Contains(lowered, w) {
			count++
		}
	}

	switch {
	case count >= 2:
		return rules.UrgencyHigh
	case count == 1:
		return rules.UrgencyMedium
	default:
		return rules.UrgencyLow
	}
}

// extractContextClues appends one labeled clue per detector that fires.
// Clues are not mutually exclusive.
func (c *Classifier) extractContextClues(lowered string) []string {
	var clues []string

	for _, re := range c.timeClues {
		if re.MatchString(lowered) {
			clues = append(clues, "time_reference")
			break
		}
	}

	for _, loc := range c.catalog.Locations {
		if strings.Contains(lowered, loc) {
			clues = append(clues, "location_reference")
			break
		}
	}

	if c.quantityClue.MatchString(lowered) {
		clues = append(clues, "quantity_reference")
	}

	for _, kw := range c.catalog.ProblemKeywords {
		if strings.Contains(lowered, kw) {
			clues = append(clues, "problem_indicator")
			break
		}
	}

	return clues
}
