package rules

// Catalog is the rule set driving intent classification and entity
// extraction. It is pure data: patterns are uncompiled regular expression
// source strings, keyword lists are matched by substring. A Catalog is
// treated as a versioned configuration artifact — built once at startup
// (Default, optionally merged with YAML overlays) and never mutated after.
type Catalog struct {
	// IntentPatterns maps each intent to its ordered regex patterns.
	// An intent's raw score is the count of patterns that match.
	IntentPatterns map[Intent][]string

	// EntityPatterns maps each entity kind to its regex patterns.
	EntityPatterns map[EntityKind][]string

	// SentimentKeywords maps positive/negative/urgent buckets to their
	// keyword lists. The urgent list doubles as the urgency keyword list.
	SentimentKeywords map[Sentiment][]string

	// Locations is the known location vocabulary used by the
	// location-reference context clue detector.
	Locations []string

	// ProblemKeywords trigger the problem-indicator context clue.
	ProblemKeywords []string

	// TimeCluePatterns are regexes for the relative-time context clue.
	TimeCluePatterns []string

	// QuantityCluePattern is the quantity-with-unit context clue regex.
	QuantityCluePattern string
}

// Default returns the built-in rule catalog.
func Default() *Catalog {
	return &Catalog{
		IntentPatterns:      defaultIntentPatterns(),
		EntityPatterns:      defaultEntityPatterns(),
		SentimentKeywords:   defaultSentimentKeywords(),
		Locations:           defaultLocations(),
		ProblemKeywords:     []string{"problem", "issue", "trouble", "difficulty", "challenge"},
		TimeCluePatterns:    defaultTimeCluePatterns(),
		QuantityCluePattern: `\d+\s*(?:acre|hectare|kg|quintal|ton)`,
	}
}

func defaultIntentPatterns() map[Intent][]string {
	return map[Intent][]string{
		IntentCropRecommendation: {
			`what.*crop.*plant`, `which.*crop.*grow`, `best.*crop.*season`,
			`recommend.*crop`, `suitable.*crop`, `crop.*selection`,
			`what.*plant.*season`, `which.*variety.*best`,
		},
		IntentDiseaseDiagnosis: {
			`disease.*plant`, `plant.*sick`, `leaf.*yellow`, `leaf.*brown`,
			`spots.*leaf`, `plant.*dying`, `fungus.*plant`, `bacterial.*infection`,
			`plant.*problem`, `crop.*disease`, `diagnose.*disease`,
		},
		IntentPestManagement: {
			`pest.*control`, `insect.*damage`, `bug.*plant`, `aphid.*attack`,
			`whitefly.*problem`, `caterpillar.*eating`, `pest.*management`,
			`insecticide.*use`, `organic.*pest`, `biological.*control`,
		},
		IntentSoilManagement: {
			`soil.*test`, `fertilizer.*use`, `soil.*fertility`, `compost.*make`,
			`soil.*ph`, `nutrient.*deficiency`, `soil.*improvement`, `manure.*apply`,
			`soil.*health`, `organic.*matter`,
		},
		IntentWeatherAdvice: {
			`weather.*farming`, `rain.*crop`, `drought.*management`, `flood.*damage`,
			`temperature.*plant`, `climate.*change`, `monsoon.*farming`, `seasonal.*advice`,
		},
		IntentMarketInquiry: {
			`price.*crop`, `market.*rate`, `profit.*crop`, `cost.*cultivation`,
			`mandi.*price`, `export.*opportunity`, `market.*demand`, `selling.*crop`,
		},
		IntentIrrigationAdvice: {
			`water.*management`, `irrigation.*system`, `drip.*irrigation`, `water.*saving`,
			`drought.*resistant`, `water.*conservation`, `sprinkler.*system`,
		},
		IntentEquipmentHelp: {
			`tractor.*problem`, `equipment.*maintenance`, `machine.*repair`,
			`farming.*tool`, `harvester.*use`, `irrigation.*equipment`,
		},
		IntentGovernmentSchemes: {
			`government.*scheme`, `subsidy.*available`, `loan.*agriculture`,
			`pm.*kisan`, `insurance.*crop`, `msp.*price`, `scheme.*benefit`,
		},
		IntentEmergencyHelp: {
			`urgent.*help`, `emergency.*crop`, `immediate.*action`, `crop.*dying`,
			`quick.*solution`, `asap.*help`, `critical.*situation`,
		},
	}
}

func defaultEntityPatterns() map[EntityKind][]string {
	return map[EntityKind][]string{
		EntityCrop: {
			`\b(rice|wheat|maize|cotton|sugarcane|tomato|potato|onion|chili|brinjal|okra|cabbage|cauliflower|carrot|radish|cucumber|watermelon|muskmelon|pumpkin|bitter gourd|ridge gourd|chickpea|lentil|black gram|green gram|pigeon pea|cowpea|mustard|groundnut|sunflower|soybean|sesame|castor|turmeric|ginger|garlic|coriander|cumin|fenugreek|mango|banana|papaya|guava|pomegranate|grapes|citrus)\b`,
			`\b(basmati|sona masuri|hd-2967|pbw-343|pusa|hybrid|variety)\b`,
		},
		EntityDisease: {
			`\b(blight|rust|smut|mildew|wilt|rot|spot|scab|anthracnose|bacterial wilt|powdery mildew|downy mildew|leaf spot|root rot|stem rot|fruit rot|seed rot|yellow mosaic|mosaic virus|leaf curl|leaf roll)\b`,
		},
		EntityPest: {
			`\b(aphid|whitefly|thrips|mite|caterpillar|borer|beetle|weevil|bug|hopper|moth|butterfly|fly|mosquito|termite|ant|spider|nematode|slug|snail)\b`,
		},
		EntityLocation: {
			`\b(punjab|haryana|uttar pradesh|maharashtra|karnataka|tamil nadu|west bengal|gujarat|rajasthan|madhya pradesh|bihar|odisha|andhra pradesh|telangana|kerala|assam|jharkhand|chhattisgarh|delhi|mumbai|bangalore|chennai|kolkata|hyderabad|ahmedabad|pune|surat|jaipur|lucknow|kanpur|nagpur|indore|thane|bhopal|visakhapatnam|patna|vadodara|ghaziabad|ludhiana|agra|nashik|faridabad|meerut|rajkot|varanasi|srinagar|aurangabad|noida|solapur|ranchi|coimbatore|raipur|kota|chandigarh|mysore|aligarh|gwalior|jalandhar|bhubaneswar|amritsar|jabalpur|jamshedpur|asansol|dhanbad|allahabad)\b`,
		},
		EntitySeason: {
			`\b(kharif|rabi|zaid|monsoon|winter|summer|spring|autumn|june|july|august|september|october|november|december|january|february|march|april|may)\b`,
		},
		EntitySoilType: {
			`\b(clay|sandy|loamy|silt|black|red|alluvial|laterite|mountain|desert|coastal|alkaline|acidic|neutral)\b`,
		},
		EntityEquipment: {
			`\b(tractor|plow|harrow|cultivator|seeder|planter|sprayer|harvester|thresher|winnower|drip|sprinkler|pump|motor|generator|tiller|mower|baler)\b`,
		},
		EntityQuantity: {
			`\b(\d+(?:\.\d+)?)\s*(?:acre|hectare|acres|hectares|kg|kilogram|quintal|ton|tons|litre|liter|liters|litres)\b`,
		},
		EntityTimePeriod: {
			`\b(\d+)\s*(?:day|days|week|weeks|month|months|year|years)\b`,
			`\b(today|tomorrow|yesterday|this week|next week|last week|this month|next month|last month)\b`,
		},
	}
}

func defaultSentimentKeywords() map[Sentiment][]string {
	return map[Sentiment][]string{
		SentimentPositive: {
			"good", "great", "excellent", "wonderful", "amazing", "fantastic", "perfect",
			"successful", "profitable", "healthy", "thriving", "growing well", "good yield",
		},
		SentimentNegative: {
			"bad", "terrible", "awful", "horrible", "dying", "sick", "diseased", "damaged",
			"failed", "loss", "problem", "issue", "trouble", "worry", "concern", "struggling",
		},
		SentimentUrgent: {
			"urgent", "emergency", "immediate", "asap", "critical", "serious", "dying",
			"quickly", "fast", "now", "today", "help", "save", "rescue",
		},
	}
}

func defaultLocations() []string {
	return []string{
		"punjab", "haryana", "uttar pradesh", "maharashtra", "karnataka", "tamil nadu",
		"west bengal", "gujarat", "rajasthan", "madhya pradesh", "bihar", "odisha",
		"andhra pradesh", "telangana", "kerala", "assam", "jharkhand", "chhattisgarh",
	}
}

func defaultTimeCluePatterns() []string {
	return []string{
		`this\s+(?:season|year|month|week)`,
		`next\s+(?:season|year|month|week)`,
		`last\s+(?:season|year|month|week)`,
		`currently`, `now`, `today`, `recently`,
	}
}
