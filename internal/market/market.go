// Package market stores and serves mandi price quotes. The store feeds
// the market-inquiry response templates and the price API endpoints.
package market

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kisanmitra/kisanmitra/internal/db"
)

// Price trends.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// Price is one crop quote at one mandi.
type Price struct {
	ID              string    `json:"id"`
	Crop            string    `json:"crop"`
	Mandi           string    `json:"mandi"`
	State           string    `json:"state"`
	PricePerQuintal float64   `json:"price_per_quintal"`
	Trend           string    `json:"trend"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Store persists market prices.
type Store struct {
	db *db.DB
}

// NewStore creates a price store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Upsert writes a quote, replacing any existing row for the same crop and
// mandi.
func (s *Store) Upsert(ctx context.Context, p Price) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Trend == "" {
		p.Trend = TrendStable
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO market_prices (id, crop, mandi, state, price_per_quintal, trend, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(crop, mandi) DO UPDATE SET
		   state = excluded.state,
		   price_per_quintal = excluded.price_per_quintal,
		   trend = excluded.trend,
		   updated_at = excluded.updated_at`,
		p.ID, p.Crop, p.Mandi, p.State, p.PricePerQuintal, p.Trend, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting price for %s at %s: %w", p.Crop, p.Mandi, err)
	}
	return nil
}

// List returns quotes, newest first, optionally filtered by crop.
func (s *Store) List(ctx context.Context, crop string) ([]Price, error) {
	query := `SELECT id, crop, mandi, state, price_per_quintal, trend, updated_at
	          FROM market_prices`
	args := []interface{}{}
	if crop != "" {
		query += ` WHERE crop = ?`
		args = append(args, crop)
	}
	query += ` ORDER BY updated_at DESC, crop, mandi`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing prices: %w", err)
	}
	defer rows.Close()

	var prices []Price
	for rows.Next() {
		var p Price
		if err := rows.Scan(&p.ID, &p.Crop, &p.Mandi, &p.State, &p.PricePerQuintal, &p.Trend, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// Quote returns the freshest quote for a crop, formatted for display.
// Missing crops and query failures both report ok=false so callers can
// fall back to a generic reply.
func (s *Store) Quote(ctx context.Context, crop string) (pricePerQuintal, trend string, ok bool) {
	var (
		price float64
		t     string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT price_per_quintal, trend FROM market_prices
		 WHERE crop = ? ORDER BY updated_at DESC LIMIT 1`, crop,
	).Scan(&price, &t)
	if err == sql.ErrNoRows || err != nil {
		return "", "", false
	}
	return strconv.FormatFloat(price, 'f', 0, 64), t, true
}

// SeedPrices is the baseline dataset loaded on first run.
var SeedPrices = []Price{
	{Crop: "rice", Mandi: "Amritsar", State: "punjab", PricePerQuintal: 2450, Trend: TrendRising},
	{Crop: "rice", Mandi: "Thanjavur", State: "tamil nadu", PricePerQuintal: 2380, Trend: TrendStable},
	{Crop: "wheat", Mandi: "Karnal", State: "haryana", PricePerQuintal: 2250, Trend: TrendStable},
	{Crop: "wheat", Mandi: "Ludhiana", State: "punjab", PricePerQuintal: 2310, Trend: TrendRising},
	{Crop: "cotton", Mandi: "Rajkot", State: "gujarat", PricePerQuintal: 6900, Trend: TrendFalling},
	{Crop: "cotton", Mandi: "Nagpur", State: "maharashtra", PricePerQuintal: 6750, Trend: TrendStable},
	{Crop: "tomato", Mandi: "Kolar", State: "karnataka", PricePerQuintal: 1600, Trend: TrendRising},
	{Crop: "sugarcane", Mandi: "Meerut", State: "uttar pradesh", PricePerQuintal: 380, Trend: TrendStable},
	{Crop: "maize", Mandi: "Davangere", State: "karnataka", PricePerQuintal: 2050, Trend: TrendStable},
	{Crop: "potato", Mandi: "Agra", State: "uttar pradesh", PricePerQuintal: 1250, Trend: TrendFalling},
}

// EnsureSeeded inserts any baseline quotes missing from the store and
// returns how many were added. Existing rows are left untouched.
func (s *Store) EnsureSeeded(ctx context.Context) (int, error) {
	added := 0
	for _, p := range SeedPrices {
		var exists int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM market_prices WHERE crop = ? AND mandi = ?`,
			p.Crop, p.Mandi).Scan(&exists)
		if err != nil {
			return added, fmt.Errorf("checking seed row %s/%s: %w", p.Crop, p.Mandi, err)
		}
		if exists > 0 {
			continue
		}
		if err := s.Upsert(ctx, p); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
