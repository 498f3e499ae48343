package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vibecoder/backend/internal/models"
)

const (
	policyKeywordsKey  = "moderation:policy"
	adminActionChannel = "moderation:admin_actions"
)

type RedisClient struct {
	client    *redis.Client
	policyTTL time.Duration
}

// NewRedisClient creates a new Redis client
func NewRedisClient(addr, password string, db int, policyTTL time.Duration) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client:    client,
		policyTTL: policyTTL,
	}, nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// Policy cache

// setPolicyScript stores keywords unless the cached entry has a higher version.
var setPolicyScript = redis.NewScript(`
local current = tonumber(redis.call('HGET', KEYS[1], 'version'))
if current ~= nil and current > tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'keywords', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// GetPolicyKeywords returns the cached effective keyword list; ok is false on a miss
func (r *RedisClient) GetPolicyKeywords(ctx context.Context) ([]string, bool, error) {
	data, err := r.client.HGet(ctx, policyKeywordsKey, "keywords").Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var keywords []string
	if err := json.Unmarshal(data, &keywords); err != nil {
		return nil, false, err
	}
	return keywords, true, nil
}

// SetPolicyKeywords caches keywords at version. An older version than the
// cached one is dropped silently.
func (r *RedisClient) SetPolicyKeywords(ctx context.Context, keywords []string, version int64) error {
	data, err := json.Marshal(keywords)
	if err != nil {
		return err
	}
	return setPolicyScript.Run(ctx, r.client, []string{policyKeywordsKey}, version, data, r.policyTTL.Milliseconds()).Err()
}

func (r *RedisClient) InvalidatePolicy(ctx context.Context) error {
	return r.client.Del(ctx, policyKeywordsKey).Err()
}

// Pub/Sub

// PublishAdminAction publishes an audit entry for the live admin feed
func (r *RedisClient) PublishAdminAction(ctx context.Context, entry models.AdminActionLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return r.client.Publish(ctx, adminActionChannel, data).Err()
}

// SubscribeToAdminActions subscribes to the admin action channel
func (r *RedisClient) SubscribeToAdminActions(ctx context.Context) *redis.PubSub {
	return r.client.Subscribe(ctx, adminActionChannel)
}

// AllowAction implements a Redis-backed token-bucket limiter per key (user+action).
// Returns true if the action is allowed, false if rate-limited.
func (r *RedisClient) AllowAction(ctx context.Context, userID uuid.UUID, action string, rate float64, burst int) (bool, error) {
	key := fmt.Sprintf("rl:%s:%s", action, userID.String())
	// Lua script: manage tokens and last timestamp
	script := `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local vals = redis.call('HMGET', key, 'tokens', 'last')
local tokens = tonumber(vals[1])
local last = tonumber(vals[2])
if tokens == nil then tokens = burst end
if last == nil then last = now end
local delta = math.max(0, now - last)
local new_tokens = math.min(burst, tokens + (delta * rate / 1000))
local allowed = 0
if new_tokens >= 1 then
	new_tokens = new_tokens - 1
	allowed = 1
end
redis.call('HMSET', key, 'tokens', new_tokens, 'last', now)
redis.call('PEXPIRE', key, 60000)
return allowed
`

	now := time.Now().UnixMilli()
	res, err := r.client.Eval(ctx, script, []string{key}, rate, burst, now).Result()
	if err != nil {
		return false, err
	}
	// Eval returns int64 (1 or 0)
	switch v := res.(type) {
	case int64:
		return v == 1, nil
	default:
		return false, fmt.Errorf("unexpected result from rate limiter: %T %v", res, res)
	}
}
