package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CupBack/model"

	"github.com/go-redis/redis/v8"
)

// Client is the Redis client used by the read-side caches. Set from
// db.RedisClient at startup; tests point it at a miniredis instance.
var Client *redis.Client

const (
	statsKey    = "cupback:stats"
	rankingsKey = "cupback:rankings"

	// Short TTLs: the caches only absorb request bursts. Rankings and stats
	// are full recomputes from the ledger, so staleness is bounded by TTL
	// plus the explicit invalidation on every write that changes them.
	statsTTL    = 30 * time.Second
	rankingsTTL = 30 * time.Second
)

// GetStats returns the cached global stats, or (nil, nil) on a miss.
func GetStats(ctx context.Context) (*model.Stats, error) {
	if Client == nil {
		return nil, nil
	}
	raw, err := Client.Get(ctx, statsKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached stats: %w", err)
	}
	var stats model.Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached stats: %w", err)
	}
	return &stats, nil
}

// SetStats caches the global stats.
func SetStats(ctx context.Context, stats *model.Stats) error {
	if Client == nil {
		return nil
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	return Client.Set(ctx, statsKey, raw, statsTTL).Err()
}

// GetRankings returns the cached rankings payload, or ("", nil) on a miss.
// The payload is stored as the serialized API response.
func GetRankings(ctx context.Context) (string, error) {
	if Client == nil {
		return "", nil
	}
	raw, err := Client.Get(ctx, rankingsKey).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("failed to get cached rankings: %w", err)
	}
	return raw, nil
}

// SetRankings caches the serialized rankings payload.
func SetRankings(ctx context.Context, payload string) error {
	if Client == nil {
		return nil
	}
	return Client.Set(ctx, rankingsKey, payload, rankingsTTL).Err()
}

// InvalidateAggregates drops every cached aggregate view (stats, rankings).
// Called after any write that changes them — an accepted scan or a new
// registration — so readers converge without waiting for the TTL.
func InvalidateAggregates(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Del(ctx, statsKey, rankingsKey).Err()
}
