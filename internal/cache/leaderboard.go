package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vocab-trainer/internal/models"
)

// LeaderboardKey is the redis hash holding cached top-N lists, one field per N
const LeaderboardKey = "leaderboard:top"

// Leaderboard caches top-N highscore lists
type Leaderboard interface {
	// Top returns the cached list for n; ok is false on a miss
	Top(ctx context.Context, n int) (scores []models.Highscore, ok bool, err error)
	// StoreTop caches the list for n
	StoreTop(ctx context.Context, n int, scores []models.Highscore) error
	// Invalidate drops every cached list
	Invalidate(ctx context.Context) error
}

// hashStore is the subset of the redis client used by the cache
type hashStore interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisLeaderboard stores top-N lists as JSON in a redis hash
type RedisLeaderboard struct {
	rdb hashStore
	ttl time.Duration
}

// NewRedisLeaderboard creates a redis-backed leaderboard cache
func NewRedisLeaderboard(rdb hashStore, ttl time.Duration) *RedisLeaderboard {
	return &RedisLeaderboard{rdb: rdb, ttl: ttl}
}

func (l *RedisLeaderboard) Top(ctx context.Context, n int) ([]models.Highscore, bool, error) {
	raw, err := l.rdb.HGet(ctx, LeaderboardKey, strconv.Itoa(n)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var scores []models.Highscore
	if err := json.Unmarshal(raw, &scores); err != nil {
		return nil, false, err
	}
	return scores, true, nil
}

func (l *RedisLeaderboard) StoreTop(ctx context.Context, n int, scores []models.Highscore) error {
	raw, err := json.Marshal(scores)
	if err != nil {
		return err
	}
	if err := l.rdb.HSet(ctx, LeaderboardKey, strconv.Itoa(n), raw).Err(); err != nil {
		return err
	}
	if l.ttl > 0 {
		return l.rdb.Expire(ctx, LeaderboardKey, l.ttl).Err()
	}
	return nil
}

func (l *RedisLeaderboard) Invalidate(ctx context.Context) error {
	return l.rdb.Del(ctx, LeaderboardKey).Err()
}

// Noop is used when redis is disabled; every lookup misses
type Noop struct{}

func (Noop) Top(context.Context, int) ([]models.Highscore, bool, error) { return nil, false, nil }

func (Noop) StoreTop(context.Context, int, []models.Highscore) error { return nil }

func (Noop) Invalidate(context.Context) error { return nil }
