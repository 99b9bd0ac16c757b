package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript increments the window counter, starts the window on the
// first hit and returns the count with the remaining window in milliseconds.
const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`

// redisTimeout bounds each counter round trip; a slow Redis fails open.
const redisTimeout = 250 * time.Millisecond

// RedisLimiter counts requests in Redis so that every replica shares one budget.
type RedisLimiter struct {
	client *redis.Client
	config *Config
	script *redis.Script
}

var _ Backend = (*RedisLimiter)(nil)

// NewRedisLimiter creates a limiter over an existing client.
func NewRedisLimiter(client *redis.Client, config *Config) *RedisLimiter {
	if client == nil {
		return nil
	}
	if config == nil {
		config = &Config{Enabled: true, DefaultLimit: 1000, DefaultWindow: time.Minute}
	}
	return &RedisLimiter{
		client: client,
		config: config,
		script: redis.NewScript(fixedWindowScript),
	}
}

// DialRedis parses url, connects and pings.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewBackend returns a Redis-backed limiter when config names a Redis URL and
// it is reachable, and the in-process limiter otherwise.
func NewBackend(ctx context.Context, config *Config) Backend {
	if config != nil && config.Enabled && config.RedisURL != "" {
		client, err := DialRedis(ctx, config.RedisURL)
		if err == nil {
			log.Printf("[rate-limit] using redis backend")
			return NewRedisLimiter(client, config)
		}
		log.Printf("[rate-limit] redis unavailable, falling back to in-process limiter: %v", err)
	}
	return NewLimiter(config)
}

// Allow implements Backend with a fixed window per client and endpoint.
// Redis errors allow the request.
func (l *RedisLimiter) Allow(ctx context.Context, clientID string, endpoint string, method string) (bool, Info) {
	if l == nil || l.client == nil {
		return true, Info{Allowed: true}
	}
	endpointConfig, allowed, done := l.config.decide(clientID, endpoint, method)
	if done {
		return allowed, Info{Allowed: allowed}
	}
	if endpointConfig.Window <= 0 {
		return true, Info{Allowed: true}
	}

	ttl := endpointConfig.Window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	key := l.key(clientID, endpointConfig, endpoint, method)

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	res, err := l.script.Run(ctx, l.client, []string{key}, ttl).Int64Slice()
	if err != nil || len(res) != 2 {
		log.Printf("[rate-limit] redis counter failed for %s: %v", key, err)
		return true, Info{Allowed: true}
	}

	return windowInfo(res[0], res[1], endpointConfig.Limit, time.Now())
}

func (l *RedisLimiter) key(clientID string, config *EndpointConfig, endpoint string, method string) string {
	key := counterKey(clientID, config, endpoint, method)
	if l.config.KeyPrefix != "" {
		key = l.config.KeyPrefix + ":" + key
	}
	return key
}

// windowInfo converts a window count and remaining TTL into a decision.
func windowInfo(count int64, ttlMillis int64, limit int, now time.Time) (bool, Info) {
	if ttlMillis < 0 {
		ttlMillis = 0
	}
	reset := now.Add(time.Duration(ttlMillis) * time.Millisecond)
	allowed := count <= int64(limit)
	info := Info{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: max(0, limit-int(count)),
		ResetTime: reset,
	}
	if !allowed {
		info.RetryAfter = time.Duration(ttlMillis) * time.Millisecond
	}
	return allowed, info
}

// Stop closes the Redis client.
func (l *RedisLimiter) Stop() {
	if l == nil || l.client == nil {
		return
	}
	if err := l.client.Close(); err != nil {
		log.Printf("[rate-limit] failed to close redis client: %v", err)
	}
}
