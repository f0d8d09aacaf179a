// Package scheduler runs the background maintenance loops: retiring idle
// conversation sessions and keeping the market price baseline seeded.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/kisanmitra/kisanmitra/internal/conversation"
	"github.com/kisanmitra/kisanmitra/internal/market"
)

// Config controls sweep cadence and retention.
type Config struct {
	CleanupInterval time.Duration // how often to sweep idle sessions
	MarketInterval  time.Duration // how often to verify market baseline
	MaxIdleDays     int           // sessions idle longer are retired
}

// DefaultConfig matches a small single-node deployment.
func DefaultConfig() Config {
	return Config{
		CleanupInterval: time.Hour,
		MarketInterval:  6 * time.Hour,
		MaxIdleDays:     30,
	}
}

// Scheduler owns the maintenance goroutines.
type Scheduler struct {
	cfg     Config
	manager *conversation.Manager
	prices  *market.Store
}

// New creates a scheduler over the conversation manager and price store.
// prices may be nil to disable the market sweep.
func New(cfg Config, manager *conversation.Manager, prices *market.Store) *Scheduler {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	if cfg.MarketInterval <= 0 {
		cfg.MarketInterval = 6 * time.Hour
	}
	if cfg.MaxIdleDays <= 0 {
		cfg.MaxIdleDays = 30
	}
	return &Scheduler{cfg: cfg, manager: manager, prices: prices}
}

// Run executes both sweeps once immediately, then on their intervals
// until the context is cancelled. Sweep failures are logged and retried
// on the next tick.
func (s *Scheduler) Run(ctx context.Context) {
	cleanup := time.NewTicker(s.cfg.CleanupInterval)
	defer cleanup.Stop()
	marketTick := time.NewTicker(s.cfg.MarketInterval)
	defer marketTick.Stop()

	s.sweepSessions(ctx)
	s.sweepMarket(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-cleanup.C:
			s.sweepSessions(ctx)
		case <-marketTick.C:
			s.sweepMarket(ctx)
		}
	}
}

func (s *Scheduler) sweepSessions(ctx context.Context) {
	n, err := s.manager.CleanupOldSessions(ctx, s.cfg.MaxIdleDays)
	if err != nil {
		log.Printf("scheduler: session cleanup: %v", err)
		return
	}
	if n > 0 {
		log.Printf("scheduler: retired %d idle sessions", n)
	}
}

func (s *Scheduler) sweepMarket(ctx context.Context) {
	if s.prices == nil {
		return
	}
	n, err := s.prices.EnsureSeeded(ctx)
	if err != nil {
		log.Printf("scheduler: market baseline: %v", err)
		return
	}
	if n > 0 {
		log.Printf("scheduler: restored %d missing market quotes", n)
	}
}
