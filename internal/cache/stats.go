package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/autoflow/autoflow/internal/model"
)

const statsKey = "stats:v1"

// DefaultStatsTTL is how long the public counters are served from cache.
const DefaultStatsTTL = 60 * time.Second

// ErrCacheMiss is returned when a key is absent or unreadable.
var ErrCacheMiss = errors.New("cache miss")

// GetStats returns the cached counters. A missing or corrupt entry is a miss.
func (c *Cache) GetStats(ctx context.Context) (*model.Stats, error) {
	fields, err := c.client.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrCacheMiss
	}

	stats, ok := decodeStats(fields)
	if !ok {
		c.client.Del(ctx, statsKey)
		return nil, ErrCacheMiss
	}
	return stats, nil
}

// SetStats caches the counters for ttl.
func (c *Cache) SetStats(ctx context.Context, stats *model.Stats, ttl time.Duration) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, statsKey)
	pipe.HSet(ctx, statsKey, encodeStats(stats))
	pipe.Expire(ctx, statsKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache stats: %w", err)
	}
	return nil
}

func encodeStats(s *model.Stats) map[string]any {
	return map[string]any{
		"total_automations": strconv.FormatInt(s.TotalAutomations, 10),
		"total_leads":       strconv.FormatInt(s.TotalLeads, 10),
		"total_users":       strconv.FormatInt(s.TotalUsers, 10),
	}
}

func decodeStats(fields map[string]string) (*model.Stats, bool) {
	var (
		s   model.Stats
		err error
	)
	if s.TotalAutomations, err = strconv.ParseInt(fields["total_automations"], 10, 64); err != nil {
		return nil, false
	}
	if s.TotalLeads, err = strconv.ParseInt(fields["total_leads"], 10, 64); err != nil {
		return nil, false
	}
	if s.TotalUsers, err = strconv.ParseInt(fields["total_users"], 10, 64); err != nil {
		return nil, false
	}
	return &s, true
}
