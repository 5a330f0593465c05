package nlquery

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const cacheKeyPrefix = "scopequery:translation:" // String: prefix + sha256(question, fields) -> raw response

// ResponseCache stores raw translator responses.
type ResponseCache interface {
	// Get returns ok=false on a miss.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CachedTranslator serves repeated questions from a cache. Only successful
// responses are stored.
type CachedTranslator struct {
	next  Translator
	cache ResponseCache
	ttl   time.Duration
}

// NewCachedTranslator wraps next with cache. A zero ttl keeps entries until evicted.
func NewCachedTranslator(next Translator, cache ResponseCache, ttl time.Duration) *CachedTranslator {
	return &CachedTranslator{next: next, cache: cache, ttl: ttl}
}

// Translate implements Translator.
func (c *CachedTranslator) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	key := CacheKey(req)

	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		log.Printf("Translation cache read failed, calling translator: %v", err)
	} else if ok {
		return raw, nil
	}

	raw, err := c.next.Translate(ctx, req)
	if err != nil {
		return "", err
	}
	if _, err := decodeResponse(raw); err != nil {
		return raw, nil
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		log.Printf("Translation cache write failed: %v", err)
	}
	return raw, nil
}

// CacheKey hashes the normalized question with the field names and the summary values,
// so a different scope never shares an entry.
func CacheKey(req TranslateRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "q=%s\n", strings.ToLower(strings.Join(strings.Fields(req.Question), " ")))
	for _, f := range req.Fields {
		fmt.Fprintf(h, "f=%s:%s\n", f.Name, f.Kind)
	}
	if req.Summary != nil {
		names := make([]string, 0, len(req.Summary.Values))
		for name := range req.Summary.Values {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(h, "v=%s:%s\n", name, strings.Join(req.Summary.Values[name], ","))
		}
	}
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// RedisCache is a ResponseCache backed by Redis strings.
type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache connects to addr and pings it.
func NewRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	log.Printf("Connected to Redis at %s", addr)
	return &RedisCache{Client: client}, nil
}

// Get implements ResponseCache.
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s from Redis: %w", key, err)
	}
	return val, true, nil
}

// Set implements ResponseCache.
func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.Client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s to Redis: %w", key, err)
	}
	return nil
}

// Close closes the Redis client.
func (r *RedisCache) Close() error {
	return r.Client.Close()
}
