// Package knowledge holds the static agronomy lookup tables used to
// enrich generated responses: crop profiles, disease treatments, pest
// control methods, and soil improvement advice. Pure data, keyed by
// lower-cased name.
package knowledge

// CropProfile describes growing conditions and economics for one crop.
type CropProfile struct {
	Seasons          []string
	SoilTypes        []string
	WaterRequirement string
	Duration         string
	Yield            string
	MarketPrice      string
}

// DiseaseTreatment describes symptoms and handling for one disease.
type DiseaseTreatment struct {
	Symptoms   []string
	Treatment  string
	Prevention string
}

// PestControl describes damage and handling for one pest.
type PestControl struct {
	Damage     []string
	Treatment  string
	Prevention string
}

// SoilAdvice describes issues and improvements for one soil type.
type SoilAdvice struct {
	Issues        []string
	Solutions     []string
	SuitableCrops []string
}

// Crop returns the profile for a crop name, if known.
func Crop(name string) (CropProfile, bool) {
	p, ok := crops[name]
	return p, ok
}

// Disease returns the treatment entry for a disease name, if known.
// Multi-word names match with either spaces or underscores.
func Disease(name string) (DiseaseTreatment, bool) {
	d, ok := diseases[normalizeKey(name)]
	return d, ok
}

// Pest returns the control entry for a pest name, if known.
func Pest(name string) (PestControl, bool) {
	p, ok := pests[name]
	return p, ok
}

// Soil returns the advice entry for a soil type, if known.
func Soil(name string) (SoilAdvice, bool) {
	s, ok := soils[name]
	return s, ok
}

func normalizeKey(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		if name[i] == ' ' {
			out[i] = '_'
		} else {
			out[i] = name[i]
		}
	}
	return string(out)
}

var crops = map[string]CropProfile{
	"rice": {
		Seasons:          []string{"kharif"},
		SoilTypes:        []string{"clay", "loamy"},
		WaterRequirement: "high",
		Duration:         "120-150 days",
		Yield:            "4-6 tons/hectare",
		MarketPrice:      "₹2200-2800/quintal",
	},
	"wheat": {
		Seasons:          []string{"rabi"},
		SoilTypes:        []string{"loamy", "clay"},
		WaterRequirement: "medium",
		Duration:         "120-140 days",
		Yield:            "4-5 tons/hectare",
		MarketPrice:      "₹2100-2400/quintal",
	},
	"cotton": {
		Seasons:          []string{"kharif"},
		SoilTypes:        []string{"black", "alluvial"},
		WaterRequirement: "medium",
		Duration:         "150-180 days",
		Yield:            "2-3 tons/hectare",
		MarketPrice:      "₹6500-7200/quintal",
	},
	"tomato": {
		Seasons:          []string{"rabi", "zaid"},
		SoilTypes:        []string{"loamy", "sandy"},
		WaterRequirement: "medium",
		Duration:         "90-120 days",
		Yield:            "25-30 tons/hectare",
		MarketPrice:      "₹40-80/kg",
	},
}

var diseases = map[string]DiseaseTreatment{
	"bacterial_wilt": {
		Symptoms:   []string{"wilting", "yellowing", "stunted growth"},
		Treatment:  "Remove infected plants, apply copper-based fungicide",
		Prevention: "Use disease-resistant varieties, proper drainage",
	},
	"powdery_mildew": {
		Symptoms:   []string{"white powdery coating", "leaf distortion"},
		Treatment:  "Apply sulfur-based fungicide, improve air circulation",
		Prevention: "Avoid overhead watering, proper spacing",
	},
	"leaf_spot": {
		Symptoms:   []string{"brown spots on leaves", "leaf drop"},
		Treatment:  "Apply copper fungicide, remove affected leaves",
		Prevention: "Avoid wetting leaves, proper spacing",
	},
}

var pests = map[string]PestControl{
	"aphid": {
		Damage:     []string{"stunted growth", "curled leaves", "honeydew"},
		Treatment:  "Neem oil, insecticidal soap, beneficial insects",
		Prevention: "Companion planting, regular monitoring",
	},
	"whitefly": {
		Damage:     []string{"yellowing leaves", "sticky honeydew"},
		Treatment:  "Yellow sticky traps, neem oil, beneficial insects",
		Prevention: "Reflective mulch, proper ventilation",
	},
	"caterpillar": {
		Damage:     []string{"chewed leaves", "holes in fruits"},
		Treatment:  "Bacillus thuringiensis, hand picking",
		Prevention: "Row covers, beneficial insects",
	},
}

var soils = map[string]SoilAdvice{
	"clay": {
		Issues:        []string{"poor drainage", "compaction"},
		Solutions:     []string{"add sand", "organic matter", "gypsum"},
		SuitableCrops: []string{"rice", "wheat", "cotton"},
	},
	"sandy": {
		Issues:        []string{"poor water retention", "nutrient leaching"},
		Solutions:     []string{"add clay", "organic matter", "mulching"},
		SuitableCrops: []string{"groundnut", "cotton", "millet"},
	},
	"loamy": {
		Issues:        []string{"generally good"},
		Solutions:     []string{"maintain organic matter"},
		SuitableCrops: []string{"most crops"},
	},
}
