package conversation

import (
	"time"

	"github.com/kisanmitra/kisanmitra/internal/classifier"
	"github.com/kisanmitra/kisanmitra/internal/rules"
)

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerUser Speaker = "user"
	SpeakerBot  Speaker = "bot"
)

// Communication styles stored on a user profile. The style steers the
// response generator's tone override.
const (
	StyleFriendly    = "friendly"
	StyleDirect      = "direct"
	StyleEncouraging = "encouraging"
)

// Turn is a single message within a session.
type Turn struct {
	ID        string              `json:"id"`
	SessionID string              `json:"session_id"`
	Speaker   Speaker             `json:"speaker"`
	Content   string              `json:"content"`
	Intent    rules.Intent        `json:"intent,omitempty"`
	Entities  []classifier.Entity `json:"entities,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// UserProfile holds durable cross-session facts about a user. Fields are
// superseded last-write-wins and never deleted.
type UserProfile struct {
	UserID             string    `json:"user_id"`
	Location           string    `json:"location,omitempty"`
	FarmSize           string    `json:"farm_size,omitempty"`
	SoilType           string    `json:"soil_type,omitempty"`
	FarmingExperience  string    `json:"farming_experience,omitempty"`
	PreferredCrops     []string  `json:"preferred_crops,omitempty"`
	CommunicationStyle string    `json:"communication_style"`
	LastUpdated        time.Time `json:"last_updated"`
}

// Context is the per-session conversational state.
type Context struct {
	SessionID           string                        `json:"session_id"`
	UserID              string                        `json:"user_id"`
	CurrentTopic        rules.Intent                  `json:"current_topic,omitempty"`
	ConversationSummary string                        `json:"conversation_summary,omitempty"`
	ActiveEntities      map[rules.EntityKind][]string `json:"active_entities"`
	FollowUpQuestions   []string                      `json:"follow_up_questions"`
	Profile             UserProfile                   `json:"user_preferences"`
	History             []Turn                        `json:"conversation_history"`
	LastInteraction     time.Time                     `json:"last_interaction"`
	CreatedAt           time.Time                     `json:"created_at"`
}

// PreferenceRecord is one upserted (user, type, value) preference row.
type PreferenceRecord struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Type             string    `json:"preference_type"`
	Value            string    `json:"preference_value"`
	Confidence       float64   `json:"confidence"`
	InteractionCount int       `json:"interaction_count"`
	LastUpdated      time.Time `json:"last_updated"`
}

// Stats summarizes session bookkeeping across memory and store.
type Stats struct {
	ActiveInMemory int `json:"active_in_memory"`
	ActiveInStore  int `json:"active_in_db"`
	TotalSessions  int `json:"total_sessions"`
}

// clone returns an independent deep copy of the context. The Manager
// hands out copies so callers can read them without holding the session
// lock. Turn entity slices are shared; turns are append-only and never
// mutated once recorded.
func (c *Context) clone() *Context {
	out := *c

	if c.ActiveEntities != nil {
		out.ActiveEntities = make(map[rules.EntityKind][]string, len(c.ActiveEntities))
		for kind, values := range c.ActiveEntities {
			out.ActiveEntities[kind] = append([]string(nil), values...)
		}
	}
	out.FollowUpQuestions = append([]string(nil), c.FollowUpQuestions...)
	out.History = append([]Turn(nil), c.History...)
	out.Profile.PreferredCrops = append([]string(nil), c.Profile.PreferredCrops...)

	return &out
}

// mergeEntity unions a value into the context's active entity set for the
// given kind, preserving first-seen order. Values are never removed.
func (c *Context) mergeEntity(kind rules.EntityKind, value string) {
	if c.ActiveEntities == nil {
		c.ActiveEntities = make(map[rules.EntityKind][]string)
	}
	for _, v := range c.ActiveEntities[kind] {
		if v == value {
			return
		}
	}
	c.ActiveEntities[kind] = append(c.ActiveEntities[kind], value)
}

// recentIntents returns the distinct intents of the last n history
// entries, in first-seen order.
func (c *Context) recentIntents(n int) []rules.Intent {
	start := len(c.History) - n
	if start < 0 {
		start = 0
	}
	seen := make(map[rules.Intent]bool)
	var out []rules.Intent
	for _, turn := range c.History[start:] {
		if turn.Intent == "" || seen[turn.Intent] {
			continue
		}
		seen[turn.Intent] = true
		out = append(out, turn.Intent)
	}
	return out
}

// recentEntityValues returns distinct entity values of the given kind from
// the last n history entries, in first-seen order.
func (c *Context) recentEntityValues(kind rules.EntityKind, n int) []string {
	start := len(c.History) - n
	if start < 0 {
		start = 0
	}
	seen := make(map[string]bool)
	var out []string
	for _, turn := range c.History[start:] {
		for _, e := range turn.Entities {
			if e.Kind != kind || seen[e.Value] {
				continue
			}
			seen[e.Value] = true
			out = append(out, e.Value)
		}
	}
	return out
}

func containsIntent(intents []rules.Intent, intent rules.Intent) bool {
	for _, i := range intents {
		if i == intent {
			return true
		}
	}
	return false
}
