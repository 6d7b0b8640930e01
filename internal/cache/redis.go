package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nitesh/trendpulse-api/internal/logger"
	"github.com/nitesh/trendpulse-api/pkg/models"
)

// KeyPrefix namespaces every key this service writes to Redis.
const KeyPrefix = "trendpulse:"

// RedisStore keeps entries in Redis with a native expiry. Redis errors are
// logged and reported to callers as misses, so the request pipeline falls
// through to the upstream call.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Entry

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisStore wraps an existing client. Close closes the client.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		ttl: ttl,
		log: logger.Log.WithField("component", "cache.redis"),
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]models.Article, bool) {
	b, err := s.rdb.Get(ctx, KeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.WithError(err).WithField("key", key).Warn("redis get failed")
		}
		s.misses.Add(1)
		return nil, false
	}

	var articles []models.Article
	if err := json.Unmarshal(b, &articles); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("dropping undecodable cache entry")
		s.misses.Add(1)
		return nil, false
	}
	s.hits.Add(1)
	return articles, true
}

func (s *RedisStore) Set(ctx context.Context, key string, articles []models.Article) {
	if articles == nil {
		articles = []models.Article{}
	}
	b, err := json.Marshal(articles)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Error("encode cache entry")
		return
	}
	if err := s.rdb.Set(ctx, KeyPrefix+key, b, s.ttl).Err(); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("redis set failed")
	}
}

func (s *RedisStore) Keys(ctx context.Context) []string {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), KeyPrefix))
	}
	if err := iter.Err(); err != nil {
		s.log.WithError(err).Warn("redis scan failed")
	}
	sort.Strings(keys)
	return keys
}

// FlushAll deletes only keys under KeyPrefix, leaving the rest of the
// database untouched.
func (s *RedisStore) FlushAll(ctx context.Context) int {
	keys := s.Keys(ctx)
	if len(keys) == 0 {
		return 0
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = KeyPrefix + k
	}
	n, err := s.rdb.Del(ctx, full...).Result()
	if err != nil {
		s.log.WithError(err).Warn("redis flush failed")
	}
	return int(n)
}

func (s *RedisStore) Stats(ctx context.Context) Stats {
	return Stats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
		Keys:   len(s.Keys(ctx)),
	}
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
