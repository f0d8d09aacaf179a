package market

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kisanmitra/kisanmitra/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening in-memory db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestUpsertReplacesByCropAndMandi(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, Price{Crop: "wheat", Mandi: "Karnal", State: "haryana", PricePerQuintal: 2200}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.Upsert(ctx, Price{Crop: "wheat", Mandi: "Karnal", State: "haryana", PricePerQuintal: 2300, Trend: TrendRising}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	prices, err := store.List(ctx, "wheat")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(prices) != 1 {
		t.Fatalf("rows = %d, want upsert to keep one per crop/mandi", len(prices))
	}
	if prices[0].PricePerQuintal != 2300 || prices[0].Trend != TrendRising {
		t.Errorf("row = %+v, want updated price and trend", prices[0])
	}
}

func TestQuoteFormatsFreshestPrice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, Price{Crop: "cotton", Mandi: "Rajkot", State: "gujarat", PricePerQuintal: 6900.4, Trend: TrendFalling}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	price, trend, ok := store.Quote(ctx, "cotton")
	if !ok {
		t.Fatal("Quote should find cotton")
	}
	if price != "6900" {
		t.Errorf("price = %q, want whole rupees", price)
	}
	if trend != TrendFalling {
		t.Errorf("trend = %q", trend)
	}
}

func TestQuoteUnknownCrop(t *testing.T) {
	store := newTestStore(t)

	if _, _, ok := store.Quote(context.Background(), "saffron"); ok {
		t.Error("unknown crop should not produce a quote")
	}
}

func TestEnsureSeededIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	added, err := store.EnsureSeeded(ctx)
	if err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if added != len(SeedPrices) {
		t.Errorf("added = %d, want %d on empty store", added, len(SeedPrices))
	}

	added, err = store.EnsureSeeded(ctx)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if added != 0 {
		t.Errorf("added = %d, want 0 on reseed", added)
	}
}

func TestPriceRoutes(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.EnsureSeeded(context.Background()); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	r := chi.NewRouter()
	store.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/market/prices/wheat")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var prices []Price
	if err := json.NewDecoder(resp.Body).Decode(&prices); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(prices) != 2 {
		t.Errorf("wheat quotes = %d, want 2 seeded mandis", len(prices))
	}

	missing, err := http.Get(srv.URL + "/api/market/prices/saffron")
	if err != nil {
		t.Fatalf("GET missing: %v", err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("missing crop status = %d, want 404", missing.StatusCode)
	}
}
