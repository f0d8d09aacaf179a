package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/kisanmitra/kisanmitra/internal/db"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening in-memory db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewSQLiteStore(database)
}

func TestLoadSessionMissing(t *testing.T) {
	store := newTestStore(t)

	c, err := store.LoadSession(context.Background(), "nope")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if c != nil {
		t.Errorf("missing session should load as nil, got %+v", c)
	}
}

func TestLoadLatestProfileMissing(t *testing.T) {
	store := newTestStore(t)

	p, err := store.LoadLatestProfile(context.Background(), "stranger")
	if err != nil {
		t.Fatalf("LoadLatestProfile: %v", err)
	}
	if p != nil {
		t.Errorf("brand-new user should load as nil, got %+v", p)
	}
}

func TestUpsertPreferenceConfidenceCapped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var rec *PreferenceRecord
	var err error
	for i := 0; i < 5; i++ {
		rec, err = store.UpsertPreference(ctx, "u1", "crop_interest", "cotton", 0.8)
		if err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}
	if rec.InteractionCount != 5 {
		t.Errorf("interaction count = %d, want 5", rec.InteractionCount)
	}
	if rec.Confidence != 1.0 {
		t.Errorf("confidence = %v, want capped at 1.0", rec.Confidence)
	}
}

func TestUpsertPreferenceDistinctValues(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.UpsertPreference(ctx, "u1", "crop_interest", "rice", 0.8); err != nil {
		t.Fatalf("upsert rice: %v", err)
	}
	if _, err := store.UpsertPreference(ctx, "u1", "crop_interest", "wheat", 0.8); err != nil {
		t.Fatalf("upsert wheat: %v", err)
	}

	grouped, err := store.ListPreferences(ctx, "u1")
	if err != nil {
		t.Fatalf("ListPreferences: %v", err)
	}
	if len(grouped["crop_interest"]) != 2 {
		t.Errorf("crop_interest records = %d, want 2", len(grouped["crop_interest"]))
	}
}

func TestMarkSessionsInactiveNoneIdle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	c := &Context{
		SessionID:       "s1",
		UserID:          "u1",
		Profile:         UserProfile{UserID: "u1", CommunicationStyle: StyleFriendly},
		LastInteraction: now,
		CreatedAt:       now,
	}
	if err := store.SaveSession(ctx, c); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	ids, err := store.MarkSessionsInactive(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("MarkSessionsInactive: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("retired %v, want none", ids)
	}

	total, active, err := store.CountSessions(ctx)
	if err != nil {
		t.Fatalf("CountSessions: %v", err)
	}
	if total != 1 || active != 1 {
		t.Errorf("counts = %d total / %d active, want 1/1", total, active)
	}
}

func TestSaveSessionUpsertOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	c := &Context{
		SessionID:       "s1",
		UserID:          "u1",
		Profile:         UserProfile{UserID: "u1", CommunicationStyle: StyleFriendly},
		LastInteraction: now,
		CreatedAt:       now,
	}
	if err := store.SaveSession(ctx, c); err != nil {
		t.Fatalf("first save: %v", err)
	}

	c.ConversationSummary = "Topics discussed: crop_recommendation"
	c.Profile.Location = "maharashtra"
	if err := store.SaveSession(ctx, c); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := store.LoadSession(ctx, "s1")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if loaded.ConversationSummary != c.ConversationSummary {
		t.Errorf("summary = %q", loaded.ConversationSummary)
	}
	if loaded.Profile.Location != "maharashtra" {
		t.Errorf("location = %q, want maharashtra", loaded.Profile.Location)
	}

	total, _, err := store.CountSessions(ctx)
	if err != nil {
		t.Fatalf("CountSessions: %v", err)
	}
	if total != 1 {
		t.Errorf("sessions = %d, want upsert to keep a single row", total)
	}
}
