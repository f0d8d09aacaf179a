// Package conversation tracks per-session conversational state and
// per-user profiles across turns. The Manager owns an in-memory working
// set of active sessions, applies each turn's classification to topic,
// entities, history, and profile, and persists through a Store
// collaborator. Updates to one session are serialized; different
// sessions never block each other. Callers only ever see snapshots of a
// session, taken under the same per-session lock that serializes
// updates, so reads never race with an in-flight turn.
package conversation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kisanmitra/kisanmitra/internal/classifier"
	"github.com/kisanmitra/kisanmitra/internal/rules"
)

// cropInterestSeedConfidence seeds a first-time crop_interest preference.
const cropInterestSeedConfidence = 0.8

// maxFollowUps bounds the follow-up questions recomputed per turn.
const maxFollowUps = 3

// summaryWindow is how many trailing history entries feed the rolling
// summary and the follow-up history checks.
const summaryWindow = 6

// Manager is the conversation context manager.
type Manager struct {
	store Store

	mu       sync.RWMutex
	sessions map[string]*Context
	locks    map[string]*sync.Mutex

	now func() time.Time
}

// NewManager creates a Manager backed by the given durable store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		sessions: make(map[string]*Context),
		locks:    make(map[string]*sync.Mutex),
		now:      time.Now,
	}
}

// GetOrCreateSession returns the working context for (userID, sessionID).
// An empty sessionID synthesizes one from the user id and the current
// time at second resolution; two calls for the same user within the same
// second therefore coalesce into one session. Lookup order is in-memory
// cache, durable store, then a fresh context seeded from the user's most
// recent profile. The returned context is an independent snapshot; the
// working copy is only ever read or mutated under the session lock.
func (m *Manager) GetOrCreateSession(ctx context.Context, userID, sessionID string) (*Context, error) {
	if sessionID == "" {
		sessionID = fmt.Sprintf("%s_%s", userID, m.now().Format("20060102_150405"))
	}

	m.mu.RLock()
	c, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if ok {
		return m.snapshot(c), nil
	}

	loaded, err := m.store.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}

	if loaded == nil {
		loaded, err = m.newContext(ctx, userID, sessionID)
		if err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	// Another goroutine may have raced us here; keep the first context so
	// every caller observes the same session state.
	if c, ok := m.sessions[sessionID]; ok {
		m.mu.Unlock()
		return m.snapshot(c), nil
	}
	m.sessions[sessionID] = loaded
	m.mu.Unlock()
	return m.snapshot(loaded), nil
}

// LookupSession returns a snapshot of an existing session from the
// working set or the durable store without ever creating one. Unknown
// ids fail with ErrSessionNotFound.
func (m *Manager) LookupSession(ctx context.Context, sessionID string) (*Context, error) {
	m.mu.RLock()
	c, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if ok {
		return m.snapshot(c), nil
	}

	c, err := m.store.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	if c == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}
	return c, nil
}

func (m *Manager) newContext(ctx context.Context, userID, sessionID string) (*Context, error) {
	profile, err := m.store.LoadLatestProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading profile for %s: %w", userID, err)
	}
	if profile == nil {
		profile = &UserProfile{UserID: userID, CommunicationStyle: StyleFriendly}
	}
	if profile.CommunicationStyle == "" {
		profile.CommunicationStyle = StyleFriendly
	}

	now := m.now()
	c := &Context{
		SessionID:       sessionID,
		UserID:          userID,
		ActiveEntities:  make(map[rules.EntityKind][]string),
		Profile:         *profile,
		LastInteraction: now,
		CreatedAt:       now,
	}

	if err := m.store.SaveSession(ctx, c); err != nil {
		return nil, fmt.Errorf("creating session %s: %w", sessionID, err)
	}
	return c, nil
}

// UpdateContext applies one completed turn to the session: topic, entity
// union, history append, profile/preference updates, recomputed follow-ups
// and summary, then durable persist. Unknown sessions fail with
// ErrSessionNotFound and leave no trace. A durable-write failure returns
// a snapshot of the still-valid in-memory context together with a
// *PersistError; memory is never rolled back.
func (m *Manager) UpdateContext(ctx context.Context, sessionID string, cls classifier.IntentClassification, userUtterance, botResponse string) (*Context, error) {
	m.mu.RLock()
	c, ok := m.sessions[sessionID]
	lock := m.locks[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("updating session %s: %w", sessionID, ErrSessionNotFound)
	}
	if lock == nil {
		lock = m.sessionLock(sessionID)
	}

	lock.Lock()
	defer lock.Unlock()

	now := m.now()
	c.CurrentTopic = cls.PrimaryIntent
	c.LastInteraction = now

	for _, e := range cls.Entities {
		c.mergeEntity(e.Kind, e.Value)
	}

	c.History = append(c.History,
		Turn{
			ID:        uuid.New().String(),
			SessionID: sessionID,
			Speaker:   SpeakerUser,
			Content:   userUtterance,
			Intent:    cls.PrimaryIntent,
			Entities:  cls.Entities,
			CreatedAt: now,
		},
		Turn{
			ID:        uuid.New().String(),
			SessionID: sessionID,
			Speaker:   SpeakerBot,
			Content:   botResponse,
			Intent:    cls.PrimaryIntent,
			CreatedAt: now,
		},
	)

	var persistErr *PersistError
	if err := m.updateProfile(ctx, c, cls); err != nil {
		persistErr = &PersistError{Op: "preferences", Err: err}
	}

	c.FollowUpQuestions = m.followUps(c, cls)
	c.ConversationSummary = m.summarize(c)

	if err := m.persist(ctx, c); err != nil {
		log.Printf("conversation: persist session %s: %v", sessionID, err)
		if persistErr == nil {
			persistErr = &PersistError{Op: "session", Err: err}
		}
	}

	if persistErr != nil {
		return c.clone(), persistErr
	}
	return c.clone(), nil
}

// snapshot deep-copies a cached context under its session lock so the
// copy is consistent with any in-flight update.
func (m *Manager) snapshot(c *Context) *Context {
	lock := m.sessionLock(c.SessionID)
	lock.Lock()
	defer lock.Unlock()
	return c.clone()
}

// updateProfile folds this turn's entities and sentiment into the user
// profile: crops raise durable crop_interest preferences, location and
// soil type overwrite their fields, acre/hectare quantities become the
// farm size, and urgent/positive sentiment flips the communication style.
func (m *Manager) updateProfile(ctx context.Context, c *Context, cls classifier.IntentClassification) error {
	var firstErr error
	for _, e := range cls.Entities {
		switch e.Kind {
		case rules.EntityCrop:
			if _, err := m.store.UpsertPreference(ctx, c.UserID, "crop_interest", e.Value, cropInterestSeedConfidence); err != nil && firstErr == nil {
				firstErr = err
			}
		case rules.EntityLocation:
			c.Profile.Location = e.Value
		case rules.EntitySoilType:
			c.Profile.SoilType = e.Value
		case rules.EntityQuantity:
			if strings.Contains(e.Value, "acre") || strings.Contains(e.Value, "hectare") {
				c.Profile.FarmSize = e.Value
			}
		}
	}

	switch cls.Sentiment {
	case rules.SentimentUrgent:
		c.Profile.CommunicationStyle = StyleDirect
	case rules.SentimentPositive:
		c.Profile.CommunicationStyle = StyleEncouraging
	}

	c.Profile.LastUpdated = m.now()
	return firstErr
}

// followUps recomputes at most three clarifying questions, in priority
// order: profile gaps for the current intent, missing diagnostic
// entities, then a market-prices nudge when crops were recommended but
// prices never came up.
func (m *Manager) followUps(c *Context, cls classifier.IntentClassification) []string {
	var questions []string
	intent := cls.PrimaryIntent

	if c.Profile.Location == "" && intent == rules.IntentCropRecommendation {
		questions = append(questions, "What's your location/state? This helps me give region-specific advice.")
	}
	if c.Profile.FarmSize == "" && intent == rules.IntentCropRecommendation {
		questions = append(questions, "What's your farm size? This helps me calculate realistic yields.")
	}
	if c.Profile.SoilType == "" && (intent == rules.IntentCropRecommendation || intent == rules.IntentSoilManagement) {
		questions = append(questions, "What type of soil do you have? (clay, sandy, loamy, etc.)")
	}
	if intent == rules.IntentDiseaseDiagnosis && !cls.HasEntity(rules.EntityDisease) {
		questions = append(questions, "Can you describe the symptoms you're seeing?")
	}
	if intent == rules.IntentPestManagement && !cls.HasEntity(rules.EntityPest) {
		questions = append(questions, "Which pest is causing damage to your crops?")
	}

	recent := c.recentIntents(summaryWindow)
	if containsIntent(recent, rules.IntentCropRecommendation) && !containsIntent(recent, rules.IntentMarketInquiry) {
		questions = append(questions, "Would you like to know about current market prices for these crops?")
	}

	if len(questions) > maxFollowUps {
		questions = questions[:maxFollowUps]
	}
	return questions
}

// summarize builds the rolling one-line summary from recent topics, known
// profile facts, and recently discussed crops.
func (m *Manager) summarize(c *Context) string {
	if len(c.History) == 0 {
		return "New conversation started"
	}

	var parts []string

	if intents := c.recentIntents(summaryWindow); len(intents) > 0 {
		names := make([]string, len(intents))
		for i, intent := range intents {
			names[i] = string(intent)
		}
		parts = append(parts, "Topics discussed: "+strings.Join(names, ", "))
	}

	if c.Profile.Location != "" {
		parts = append(parts, "Location: "+c.Profile.Location)
	}
	if c.Profile.FarmSize != "" {
		parts = append(parts, "Farm size: "+c.Profile.FarmSize)
	}
	if c.Profile.SoilType != "" {
		parts = append(parts, "Soil type: "+c.Profile.SoilType)
	}

	if crops := c.recentEntityValues(rules.EntityCrop, summaryWindow); len(crops) > 0 {
		if len(crops) > 3 {
			crops = crops[:3]
		}
		parts = append(parts, "Crops discussed: "+strings.Join(crops, ", "))
	}

	if len(parts) == 0 {
		return "Conversation in progress"
	}
	return strings.Join(parts, ". ")
}

// persist writes the session row and the turn pair appended this update.
func (m *Manager) persist(ctx context.Context, c *Context) error {
	if err := m.store.SaveSession(ctx, c); err != nil {
		return err
	}
	start := len(c.History) - 2
	if start < 0 {
		start = 0
	}
	for _, t := range c.History[start:] {
		if err := m.store.AppendTurn(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// CleanupOldSessions marks durable sessions idle for more than maxIdleDays
// as inactive and evicts them from the in-memory working set. Returns how
// many sessions were retired.
func (m *Manager) CleanupOldSessions(ctx context.Context, maxIdleDays int) (int, error) {
	cutoff := m.now().AddDate(0, 0, -maxIdleDays)
	ids, err := m.store.MarkSessionsInactive(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleaning up sessions: %w", err)
	}

	m.mu.Lock()
	for _, id := range ids {
		delete(m.sessions, id)
		delete(m.locks, id)
	}
	m.mu.Unlock()

	return len(ids), nil
}

// GetUserPreferences returns the user's upserted preference records
// grouped by type, for personalization.
func (m *Manager) GetUserPreferences(ctx context.Context, userID string) (map[string][]PreferenceRecord, error) {
	return m.store.ListPreferences(ctx, userID)
}

// Suggestions proposes up to three conversation nudges from profile gaps
// and recently covered topics.
func (m *Manager) Suggestions(c *Context) []string {
	var suggestions []string

	if c.Profile.Location == "" {
		suggestions = append(suggestions, "Tell me about your location for better advice")
	}
	if c.Profile.FarmSize == "" {
		suggestions = append(suggestions, "Share your farm size for yield calculations")
	}
	if c.Profile.SoilType == "" {
		suggestions = append(suggestions, "What's your soil type? I can suggest suitable crops")
	}

	recent := c.recentIntents(4)
	if containsIntent(recent, rules.IntentCropRecommendation) && !containsIntent(recent, rules.IntentMarketInquiry) {
		suggestions = append(suggestions, "Check current market prices for your crops")
	}
	if containsIntent(recent, rules.IntentDiseaseDiagnosis) && !containsIntent(recent, rules.IntentPestManagement) {
		suggestions = append(suggestions, "Learn about pest management strategies")
	}
	if containsIntent(recent, rules.IntentSoilManagement) && !containsIntent(recent, rules.IntentIrrigationAdvice) {
		suggestions = append(suggestions, "Get advice on water management")
	}

	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}

// Stats reports working-set and store counts.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	total, active, err := m.store.CountSessions(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("session stats: %w", err)
	}

	m.mu.RLock()
	inMemory := len(m.sessions)
	m.mu.RUnlock()

	return Stats{ActiveInMemory: inMemory, ActiveInStore: active, TotalSessions: total}, nil
}

// sessionLock returns the per-session mutex, creating it on first use.
func (m *Manager) sessionLock(sessionID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.locks[sessionID]; ok {
		return l
	}
	l := &sync.Mutex{}
	m.locks[sessionID] = l
	return l
}
