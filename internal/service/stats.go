package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/autoflow/autoflow/internal/cache"
	"github.com/autoflow/autoflow/internal/model"
)

// StatsSource counts the stored records.
type StatsSource interface {
	Stats(ctx context.Context) (*model.Stats, error)
}

// StatsCache holds a short-lived copy of the counters.
type StatsCache interface {
	GetStats(ctx context.Context) (*model.Stats, error)
	SetStats(ctx context.Context, stats *model.Stats, ttl time.Duration) error
}

// StatsService serves the public landing page counters.
type StatsService struct {
	source           StatsSource
	cache            StatsCache
	ttl              time.Duration
	satisfactionRate float64
	logger           *slog.Logger
}

// NewStatsService creates a new StatsService. A nil cache reads the database every time.
func NewStatsService(source StatsSource, c StatsCache, ttl time.Duration, satisfactionRate float64, logger *slog.Logger) *StatsService {
	if ttl <= 0 {
		ttl = cache.DefaultStatsTTL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &StatsService{
		source:           source,
		cache:            c,
		ttl:              ttl,
		satisfactionRate: satisfactionRate,
		logger:           logger.With("component", "stats"),
	}
}

// Get returns the counters, from cache when fresh.
func (s *StatsService) Get(ctx context.Context) (*model.Stats, error) {
	if s.cache != nil {
		stats, err := s.cache.GetStats(ctx)
		if err == nil {
			stats.SatisfactionRate = s.satisfactionRate
			return stats, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("stats cache read failed", "error", err)
		}
	}

	stats, err := s.source.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	stats.SatisfactionRate = s.satisfactionRate

	if s.cache != nil {
		if err := s.cache.SetStats(ctx, stats, s.ttl); err != nil {
			s.logger.Warn("stats cache write failed", "error", err)
		}
	}
	return stats, nil
}
