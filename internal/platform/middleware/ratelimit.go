package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// IdleTTL is how long an in-process bucket may go unused before it is
	// dropped. Zero means DefaultIdleTTL.
	IdleTTL time.Duration
	// Skipper exempts matching requests from limiting.
	Skipper func(c echo.Context) bool
}

const DefaultIdleTTL = 5 * time.Minute

// DefaultRateLimitConfig returns default rate limiting settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
		IdleTTL:           DefaultIdleTTL,
	}
}

// limiter decides whether the request identified by key may proceed. When it
// may not, retryAfter is the number of seconds the client should wait.
type limiter interface {
	allow(ctx context.Context, key string) (ok bool, retryAfter int, err error)
}

type tokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	lastSeen   time.Time
	mu         sync.Mutex
}

func newTokenBucket(rate float64, burst int) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: rate,
		lastRefill: time.Now(),
		lastSeen:   time.Now(),
	}
}

func (b *tokenBucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

func (b *tokenBucket) idleSince(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return now.Sub(b.lastSeen)
}

func (b *tokenBucket) retryAfter() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refillRate <= 0 {
		return 1
	}
	return int((1-b.tokens)/b.refillRate) + 1
}

// rateLimiterStore holds per-key token buckets for a single process. Buckets
// idle for longer than the configured TTL are swept out, at most once per TTL.
type rateLimiterStore struct {
	buckets   map[string]*tokenBucket
	mu        sync.RWMutex
	config    RateLimitConfig
	ttl       time.Duration
	lastSweep time.Time
}

func newRateLimiterStore(cfg RateLimitConfig) *rateLimiterStore {
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	return &rateLimiterStore{
		buckets:   make(map[string]*tokenBucket),
		config:    cfg,
		ttl:       ttl,
		lastSweep: time.Now(),
	}
}

// sweep drops buckets idle for longer than the TTL.
func (s *rateLimiterStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, b := range s.buckets {
		if b.idleSince(now) > s.ttl {
			delete(s.buckets, key)
		}
	}
	s.lastSweep = now
}

func (s *rateLimiterStore) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buckets)
}

func (s *rateLimiterStore) getBucket(key string) *tokenBucket {
	s.mu.RLock()
	bucket, ok := s.buckets[key]
	s.mu.RUnlock()
	if ok {
		return bucket
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if bucket, ok := s.buckets[key]; ok {
		return bucket
	}
	bucket = newTokenBucket(s.config.RequestsPerSecond, s.config.BurstSize)
	s.buckets[key] = bucket
	return bucket
}

func (s *rateLimiterStore) allow(_ context.Context, key string) (bool, int, error) {
	now := time.Now()
	s.mu.RLock()
	due := now.Sub(s.lastSweep) > s.ttl
	s.mu.RUnlock()
	if due {
		s.sweep(now)
	}

	bucket := s.getBucket(key)
	if bucket.allow() {
		return true, 0, nil
	}
	return false, bucket.retryAfter(), nil
}

// redisLimiter is a fixed one-second window shared by every server instance
// pointed at the same Redis. The window admits BurstSize requests.
type redisLimiter struct {
	client *redis.Client
	config RateLimitConfig
	prefix string
}

func (r *redisLimiter) allow(ctx context.Context, key string) (bool, int, error) {
	window := time.Now().Unix()
	rkey := r.prefix + key + ":" + strconv.FormatInt(window, 10)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, rkey)
	pipe.Expire(ctx, rkey, 2*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, err
	}
	if incr.Val() > int64(r.config.BurstSize) {
		return false, 1, nil
	}
	return true, 0, nil
}

// RateLimit returns an in-process rate limiting middleware.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	return rateLimit(newRateLimiterStore(cfg), cfg, zerolog.Nop())
}

// RedisRateLimit returns a rate limiting middleware whose counters live in
// Redis. Requests are let through when Redis cannot be reached.
func RedisRateLimit(client *redis.Client, cfg RateLimitConfig, logger zerolog.Logger) echo.MiddlewareFunc {
	return rateLimit(&redisLimiter{client: client, config: cfg, prefix: "nuclibook:ratelimit:"}, cfg, logger)
}

func rateLimit(l limiter, cfg RateLimitConfig, logger zerolog.Logger) echo.MiddlewareFunc {
	limit := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', 0, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}
			// X-Staff-ID is caller supplied, so it never selects the bucket.
			key := c.RealIP()

			ok, retryAfter, err := l.allow(c.Request().Context(), key)
			if err != nil {
				logger.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
			}
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				c.Response().Header().Set("X-RateLimit-Limit", limit)
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}

			c.Response().Header().Set("X-RateLimit-Limit", limit)
			return next(c)
		}
	}
}
