package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Connect opens a Redis client from either a redis:// URL or a plain
// host:port address.
func Connect(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisAttemptLimiter is a rolling-window limiter backed by a Redis
// sorted set per session, for deployments running more than one
// storefront instance. Fails open: if Redis is unreachable the
// mutation proceeds and the error is logged.
type RedisAttemptLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisAttemptLimiter creates a limiter allowing `limit` attempts
// per session within `window`.
func NewRedisAttemptLimiter(client *redis.Client, limit int, window time.Duration) *RedisAttemptLimiter {
	return &RedisAttemptLimiter{client: client, limit: limit, window: window}
}

func (l *RedisAttemptLimiter) Allow(sessionID string, now time.Time) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := "cart:adds:" + sessionID
	cutoff := now.Add(-l.window).UnixMilli()

	if err := l.client.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(cutoff, 10)).Err(); err != nil {
		log.Printf("cache: prune attempt window: %v", err)
		return true
	}
	count, err := l.client.ZCard(ctx, key).Result()
	if err != nil {
		log.Printf("cache: count attempt window: %v", err)
		return true
	}
	if count >= int64(l.limit) {
		return false
	}

	_, err = l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, key, redis.Z{
			Score:  float64(now.UnixMilli()),
			Member: strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.NewString(),
		})
		p.Expire(ctx, key, l.window+time.Minute)
		return nil
	})
	if err != nil {
		log.Printf("cache: record attempt: %v", err)
	}
	return true
}
