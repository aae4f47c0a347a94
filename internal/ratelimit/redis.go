package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// checkAndRecordScript runs the whole sliding-window check atomically:
// purge entries older than the cutoff, deny at the cap without recording,
// otherwise record the current request and refresh the key TTL.
var checkAndRecordScript = redis.NewScript(`
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
local count = redis.call("ZCARD", KEYS[1])
if count >= tonumber(ARGV[2]) then
  return {0, 0}
end
redis.call("ZADD", KEYS[1], ARGV[3], ARGV[3])
redis.call("EXPIRE", KEYS[1], ARGV[4])
return {1, tonumber(ARGV[2]) - count - 1}
`)

// RedisStore implements the durable sliding window on a Redis sorted set
// per principal, scored by request timestamp.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: strings.TrimSpace(prefix),
	}
}

// CheckAndRecord applies the shared boundary rule via one scripted call.
func (s *RedisStore) CheckAndRecord(ctx context.Context, principalID string, limits Limits, now time.Time) (Decision, error) {
	if s == nil || s.client == nil {
		return Decision{}, fmt.Errorf("rate limit redis: not initialized")
	}
	if limits.MaxRequests <= 0 || principalID == "" {
		return Decision{Allowed: true}, nil
	}

	key := s.buildKey(principalID)
	cutoff := strconv.FormatInt(now.Add(-limits.Window).UnixNano(), 10)
	score := strconv.FormatInt(now.UnixNano(), 10)
	ttl := int64(limits.Window/time.Second) + 1

	res, errEval := checkAndRecordScript.Run(ctx, s.client, []string{key},
		cutoff, limits.MaxRequests, score, ttl).Int64Slice()
	if errEval != nil {
		return Decision{}, errEval
	}
	if len(res) != 2 {
		return Decision{}, errors.New("rate limit redis: unexpected response shape")
	}
	remaining := int(res[1])
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: res[0] == 1, Remaining: remaining}, nil
}

func (s *RedisStore) buildKey(principalID string) string {
	if s.prefix == "" {
		return principalID
	}
	return s.prefix + ":" + principalID
}
