package rules

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func TestDefaultCatalogPatternsCompile(t *testing.T) {
	cat := Default()

	for intent, patterns := range cat.IntentPatterns {
		for _, p := range patterns {
			if _, err := regexp.Compile(p); err != nil {
				t.Errorf("intent %s pattern %q does not compile: %v", intent, p, err)
			}
		}
	}
	for kind, patterns := range cat.EntityPatterns {
		for _, p := range patterns {
			if _, err := regexp.Compile(p); err != nil {
				t.Errorf("entity %s pattern %q does not compile: %v", kind, p, err)
			}
		}
	}
	for _, p := range cat.TimeCluePatterns {
		if _, err := regexp.Compile(p); err != nil {
			t.Errorf("time clue pattern %q does not compile: %v", p, err)
		}
	}
	if _, err := regexp.Compile(cat.QuantityCluePattern); err != nil {
		t.Errorf("quantity clue pattern does not compile: %v", err)
	}
}

func TestDefaultCatalogCoversAllScorableIntents(t *testing.T) {
	cat := Default()

	// GeneralQuestion and FollowUp are derived, not pattern-scored.
	scorable := []Intent{
		IntentCropRecommendation, IntentDiseaseDiagnosis, IntentPestManagement,
		IntentSoilManagement, IntentWeatherAdvice, IntentMarketInquiry,
		IntentIrrigationAdvice, IntentEquipmentHelp, IntentGovernmentSchemes,
		IntentEmergencyHelp,
	}
	for _, intent := range scorable {
		if len(cat.IntentPatterns[intent]) == 0 {
			t.Errorf("intent %s has no patterns", intent)
		}
	}
	if len(cat.IntentPatterns[IntentGeneralQuestion]) != 0 {
		t.Error("general_question must not carry patterns; it is the fallback intent")
	}
}

func TestLoadOverlaysAppends(t *testing.T) {
	dir := t.TempDir()
	overlay := `
intents:
  crop_recommendation:
    - "sow.*crop"
entities:
  crop:
    - '\b(millet|jowar|bajra)\b'
sentiment:
  urgent:
    - "sos"
locations:
  - "goa"
`
	if err := os.WriteFile(filepath.Join(dir, "extra.yml"), []byte(overlay), 0o644); err != nil {
		t.Fatalf("writing overlay: %v", err)
	}

	base := Default()
	baseCropPatterns := len(base.IntentPatterns[IntentCropRecommendation])

	merged, err := base.LoadOverlays(filepath.Join(dir, "**", "*.yml"))
	if err != nil {
		t.Fatalf("LoadOverlays: %v", err)
	}

	if got := len(merged.IntentPatterns[IntentCropRecommendation]); got != baseCropPatterns+1 {
		t.Errorf("expected %d crop_recommendation patterns, got %d", baseCropPatterns+1, got)
	}
	if got := merged.Locations[len(merged.Locations)-1]; got != "goa" {
		t.Errorf("expected appended location goa, got %q", got)
	}
	if got := merged.SentimentKeywords[SentimentUrgent][len(merged.SentimentKeywords[SentimentUrgent])-1]; got != "sos" {
		t.Errorf("expected appended urgent keyword sos, got %q", got)
	}

	// The base catalog must not be mutated.
	if len(base.IntentPatterns[IntentCropRecommendation]) != baseCropPatterns {
		t.Error("LoadOverlays mutated the base catalog")
	}
}

func TestLoadOverlaysNoMatches(t *testing.T) {
	base := Default()
	merged, err := base.LoadOverlays(filepath.Join(t.TempDir(), "*.yml"))
	if err != nil {
		t.Fatalf("LoadOverlays: %v", err)
	}
	if len(merged.IntentPatterns) != len(base.IntentPatterns) {
		t.Error("catalog changed with no overlay files")
	}
}
