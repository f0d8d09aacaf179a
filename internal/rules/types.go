package rules

// Intent is the coarse conversational goal inferred from an utterance.
type Intent string

const (
	IntentCropRecommendation Intent = "crop_recommendation"
	IntentDiseaseDiagnosis   Intent = "disease_diagnosis"
	IntentPestManagement     Intent = "pest_management"
	IntentSoilManagement     Intent = "soil_management"
	IntentWeatherAdvice      Intent = "weather_advice"
	IntentMarketInquiry      Intent = "market_inquiry"
	IntentIrrigationAdvice   Intent = "irrigation_advice"
	IntentEquipmentHelp      Intent = "equipment_help"
	IntentGovernmentSchemes  Intent = "government_schemes"
	IntentGeneralQuestion    Intent = "general_question"
	IntentEmergencyHelp      Intent = "emergency_help"
	IntentFollowUp           Intent = "follow_up"
)

// EntityKind identifies the type of a span extracted from user text.
type EntityKind string

const (
	EntityCrop       EntityKind = "crop"
	EntityDisease    EntityKind = "disease"
	EntityPest       EntityKind = "pest"
	EntityLocation   EntityKind = "location"
	EntitySeason     EntityKind = "season"
	EntitySoilType   EntityKind = "soil_type"
	EntityEquipment  EntityKind = "equipment"
	EntityQuantity   EntityKind = "quantity"
	EntityTimePeriod EntityKind = "time_period"
)

// Sentiment is the overall emotional tone of an utterance.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
	SentimentUrgent   Sentiment = "urgent"
)

// Urgency grades how time-critical an utterance is.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)
