// Package service assembles the coaching responses served by the API and the
// CLI. It owns no state beyond its injected dependencies.
package service

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-coach/internal/analytics"
	"github.com/dvloznov/finance-coach/internal/coach"
	"github.com/dvloznov/finance-coach/internal/store"
	"github.com/dvloznov/finance-coach/internal/synthetic"
)

const (
	// SeedTransactions is the number of synthetic transactions given to a new user.
	SeedTransactions = 50
	// SampleTransactions is the number added by SeedSampleData.
	SampleTransactions = 30
	// RecentTransactions is the dashboard slice length.
	RecentTransactions = 10
	// DefaultForecastTimeout bounds a goal forecast.
	DefaultForecastTimeout = 10 * time.Second
	// DefaultSeedTimeout bounds the model analysis of a new user's history.
	// It stays below the API server's 15s write timeout.
	DefaultSeedTimeout = 10 * time.Second
)

// Config holds the tunables of the analytics paths.
type Config struct {
	IncomeMode      analytics.IncomeMode
	Subscriptions   analytics.SubscriptionConfig
	ForecastTimeout time.Duration
	// SeedTimeout bounds model calls while seeding; later rows get the
	// deterministic analysis.
	SeedTimeout time.Duration
}

// Service implements every user-facing operation.
type Service struct {
	store store.Store
	coach *coach.Coach
	data  *synthetic.Generator
	cfg   Config
	now   func() time.Time
	log   zerolog.Logger
}

// New creates a Service. A nil coach behaves as one without a generator and a
// nil data generator is replaced by a randomly seeded one.
func New(st store.Store, c *coach.Coach, data *synthetic.Generator, cfg Config, log zerolog.Logger) *Service {
	if c == nil {
		c = coach.New(nil, 0, log)
	}
	if data == nil {
		data = synthetic.New(0)
	}
	if cfg.ForecastTimeout <= 0 {
		cfg.ForecastTimeout = DefaultForecastTimeout
	}
	if cfg.SeedTimeout <= 0 {
		cfg.SeedTimeout = DefaultSeedTimeout
	}
	if cfg.IncomeMode == "" {
		cfg.IncomeMode = analytics.IncomeProxy
	}
	return &Service{
		store: st,
		coach: c,
		data:  data,
		cfg:   cfg,
		now:   func() time.Time { return time.Now().UTC() },
		log:   log,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Store exposes the underlying store for batch jobs.
func (s *Service) Store() store.Store {
	return s.store
}

// Config returns the analytics configuration in use.
func (s *Service) Config() Config {
	return s.cfg
}
