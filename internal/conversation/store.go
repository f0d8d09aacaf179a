package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kisanmitra/kisanmitra/internal/db"
	"github.com/kisanmitra/kisanmitra/internal/rules"
)

// historyLoadLimit bounds how many trailing turns are rehydrated when a
// session is loaded from the durable store.
const historyLoadLimit = 10

// preferenceIncrement is added to a preference's confidence on every
// repeat observation, capped at 1.0.
const preferenceIncrement = 0.1

// Store is the durable collaborator behind the Manager. Load methods
// return (nil, nil) when the row does not exist.
type Store interface {
	LoadSession(ctx context.Context, sessionID string) (*Context, error)
	SaveSession(ctx context.Context, c *Context) error
	AppendTurn(ctx context.Context, t Turn) error
	LoadLatestProfile(ctx context.Context, userID string) (*UserProfile, error)
	UpsertPreference(ctx context.Context, userID, prefType, value string, seedConfidence float64) (*PreferenceRecord, error)
	ListPreferences(ctx context.Context, userID string) (map[string][]PreferenceRecord, error)
	MarkSessionsInactive(ctx context.Context, cutoff time.Time) ([]string, error)
	CountSessions(ctx context.Context) (total, active int, err error)
}

// SQLiteStore persists sessions, turns, and preference records.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a store backed by the given database.
func NewSQLiteStore(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

// LoadSession rehydrates a session row and its trailing turns.
func (s *SQLiteStore) LoadSession(ctx context.Context, sessionID string) (*Context, error) {
	var (
		c              Context
		topic          sql.NullString
		summary        sql.NullString
		location       sql.NullString
		farmSize       sql.NullString
		soilType       sql.NullString
		experience     sql.NullString
		preferredCrops string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, user_id, current_topic, conversation_summary,
		        user_location, farm_size, soil_type, farming_experience,
		        preferred_crops, communication_style, last_interaction, created_at
		 FROM sessions WHERE session_id = ?`, sessionID,
	).Scan(&c.SessionID, &c.UserID, &topic, &summary, &location, &farmSize,
		&soilType, &experience, &preferredCrops, &c.Profile.CommunicationStyle,
		&c.LastInteraction, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	c.CurrentTopic = topicFromNull(topic)
	c.ConversationSummary = summary.String
	c.Profile.UserID = c.UserID
	c.Profile.Location = location.String
	c.Profile.FarmSize = farmSize.String
	c.Profile.SoilType = soilType.String
	c.Profile.FarmingExperience = experience.String
	c.Profile.LastUpdated = c.LastInteraction
	if err := json.Unmarshal([]byte(preferredCrops), &c.Profile.PreferredCrops); err != nil {
		return nil, fmt.Errorf("decoding preferred crops: %w", err)
	}

	history, err := s.loadRecentTurns(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.History = history

	return &c, nil
}

func (s *SQLiteStore) loadRecentTurns(ctx context.Context, sessionID string) ([]Turn, error) {
	// Trailing turns in chronological order.
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, speaker, content, intent, entities, created_at FROM (
		   SELECT id, session_id, speaker, content, intent, entities, created_at
		   FROM turns WHERE session_id = ? ORDER BY created_at DESC, id DESC LIMIT ?
		 ) ORDER BY created_at ASC, id ASC`, sessionID, historyLoadLimit)
	if err != nil {
		return nil, fmt.Errorf("loading turns: %w", err)
	}
	defer rows.Close()

	var history []Turn
	for rows.Next() {
		var (
			t        Turn
			intent   sql.NullString
			entities string
		)
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Speaker, &t.Content, &intent, &entities, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		t.Intent = topicFromNull(intent)
		if err := json.Unmarshal([]byte(entities), &t.Entities); err != nil {
			return nil, fmt.Errorf("decoding turn entities: %w", err)
		}
		history = append(history, t)
	}
	return history, rows.Err()
}

// SaveSession upserts the session row, including denormalized profile
// fields, and refreshes last_interaction.
func (s *SQLiteStore) SaveSession(ctx context.Context, c *Context) error {
	crops, err := json.Marshal(c.Profile.PreferredCrops)
	if err != nil {
		return fmt.Errorf("encoding preferred crops: %w", err)
	}
	if c.Profile.PreferredCrops == nil {
		crops = []byte("[]")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, current_topic, conversation_summary,
		                       user_location, farm_size, soil_type, farming_experience,
		                       preferred_crops, communication_style, is_active,
		                       last_interaction, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		   current_topic = excluded.current_topic,
		   conversation_summary = excluded.conversation_summary,
		   user_location = excluded.user_location,
		   farm_size = excluded.farm_size,
		   soil_type = excluded.soil_type,
		   farming_experience = excluded.farming_experience,
		   preferred_crops = excluded.preferred_crops,
		   communication_style = excluded.communication_style,
		   last_interaction = excluded.last_interaction,
		   updated_at = excluded.updated_at`,
		c.SessionID, c.UserID, nullableString(string(c.CurrentTopic)), nullableString(c.ConversationSummary),
		nullableString(c.Profile.Location), nullableString(c.Profile.FarmSize),
		nullableString(c.Profile.SoilType), nullableString(c.Profile.FarmingExperience),
		string(crops), c.Profile.CommunicationStyle,
		c.LastInteraction.UTC(), c.CreatedAt.UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// AppendTurn writes one turn record.
func (s *SQLiteStore) AppendTurn(ctx context.Context, t Turn) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	entities, err := json.Marshal(t.Entities)
	if err != nil {
		return fmt.Errorf("encoding turn entities: %w", err)
	}
	if t.Entities == nil {
		entities = []byte("[]")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO turns (id, session_id, speaker, content, intent, entities, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.SessionID, string(t.Speaker), t.Content,
		nullableString(string(t.Intent)), string(entities), t.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("appending turn: %w", err)
	}
	return nil
}

// LoadLatestProfile returns the profile fields of the user's most recent
// session, or (nil, nil) for a brand-new user.
func (s *SQLiteStore) LoadLatestProfile(ctx context.Context, userID string) (*UserProfile, error) {
	var (
		p              UserProfile
		location       sql.NullString
		farmSize       sql.NullString
		soilType       sql.NullString
		experience     sql.NullString
		preferredCrops string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, user_location, farm_size, soil_type, farming_experience,
		        preferred_crops, communication_style, updated_at
		 FROM sessions WHERE user_id = ? ORDER BY created_at DESC LIMIT 1`, userID,
	).Scan(&p.UserID, &location, &farmSize, &soilType, &experience,
		&preferredCrops, &p.CommunicationStyle, &p.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading latest profile: %w", err)
	}

	p.Location = location.String
	p.FarmSize = farmSize.String
	p.SoilType = soilType.String
	p.FarmingExperience = experience.String
	if err := json.Unmarshal([]byte(preferredCrops), &p.PreferredCrops); err != nil {
		return nil, fmt.Errorf("decoding preferred crops: %w", err)
	}

	return &p, nil
}

// UpsertPreference inserts a (user, type, value) record at the seed
// confidence, or, when it already exists, increments its interaction
// count and raises confidence by one fixed increment capped at 1.0.
func (s *SQLiteStore) UpsertPreference(ctx context.Context, userID, prefType, value string, seedConfidence float64) (*PreferenceRecord, error) {
	now := time.Now().UTC()

	var rec PreferenceRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, confidence, interaction_count FROM user_preferences
		 WHERE user_id = ? AND preference_type = ? AND preference_value = ?`,
		userID, prefType, value,
	).Scan(&rec.ID, &rec.Confidence, &rec.InteractionCount)

	switch {
	case err == sql.ErrNoRows:
		rec = PreferenceRecord{
			ID:               uuid.New().String(),
			UserID:           userID,
			Type:             prefType,
			Value:            value,
			Confidence:       seedConfidence,
			InteractionCount: 1,
			LastUpdated:      now,
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO user_preferences (id, user_id, preference_type, preference_value, confidence, interaction_count, last_updated)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.UserID, rec.Type, rec.Value, rec.Confidence, rec.InteractionCount, rec.LastUpdated)
		if err != nil {
			return nil, fmt.Errorf("inserting preference: %w", err)
		}
		return &rec, nil

	case err != nil:
		return nil, fmt.Errorf("checking preference: %w", err)
	}

	rec.UserID = userID
	rec.Type = prefType
	rec.Value = value
	rec.InteractionCount++
	rec.Confidence += preferenceIncrement
	if rec.Confidence > 1.0 {
		rec.Confidence = 1.0
	}
	rec.LastUpdated = now

	_, err = s.db.ExecContext(ctx,
		`UPDATE user_preferences SET confidence = ?, interaction_count = ?, last_updated = ? WHERE id = ?`,
		rec.Confidence, rec.InteractionCount, rec.LastUpdated, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("updating preference: %w", err)
	}
	return &rec, nil
}

// ListPreferences returns all of a user's preference records grouped by
// preference type.
func (s *SQLiteStore) ListPreferences(ctx context.Context, userID string) (map[string][]PreferenceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, preference_type, preference_value, confidence, interaction_count, last_updated
		 FROM user_preferences WHERE user_id = ?
		 ORDER BY preference_type, confidence DESC, preference_value`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing preferences: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]PreferenceRecord)
	for rows.Next() {
		var rec PreferenceRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Type, &rec.Value, &rec.Confidence, &rec.InteractionCount, &rec.LastUpdated); err != nil {
			return nil, fmt.Errorf("scanning preference: %w", err)
		}
		grouped[rec.Type] = append(grouped[rec.Type], rec)
	}
	return grouped, rows.Err()
}

// MarkSessionsInactive flags active sessions idle since before the cutoff
// and returns their ids so the caller can evict them from memory.
func (s *SQLiteStore) MarkSessionsInactive(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id FROM sessions WHERE is_active = 1 AND last_interaction < ?`, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("finding idle sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE sessions SET is_active = 0, updated_at = ? WHERE is_active = 1 AND last_interaction < ?`,
		time.Now().UTC(), cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("marking sessions inactive: %w", err)
	}
	return ids, nil
}

// CountSessions reports total and active session row counts.
func (s *SQLiteStore) CountSessions(ctx context.Context) (total, active int, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("counting sessions: %w", err)
	}
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE is_active = 1`).Scan(&active); err != nil {
		return 0, 0, fmt.Errorf("counting active sessions: %w", err)
	}
	return total, active, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func topicFromNull(s sql.NullString) rules.Intent {
	if s.Valid {
		return rules.Intent(s.String)
	}
	return ""
}
