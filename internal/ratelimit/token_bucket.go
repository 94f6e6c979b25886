package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// takeScript refills every bucket in KEYS and takes one token from each, or
// from none when any of them is empty. Remaining tokens come back as a
// string because redis truncates Lua numbers to integers.
var takeScript = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])
local t = redis.call("TIME")
local now = t[1] * 1000 + math.floor(t[2] / 1000)

local levels = {}
local lowest = burst
for i, key in ipairs(KEYS) do
  local state = redis.call("HMGET", key, "tokens", "ts")
  local tokens = tonumber(state[1]) or burst
  local ts = tonumber(state[2]) or now
  tokens = math.min(burst, tokens + math.max(0, now - ts) / 1000 * rate)
  levels[i] = tokens
  lowest = math.min(lowest, tokens)
end

local allowed = 0
if lowest >= 1 then
  allowed = 1
  lowest = lowest - 1
end
for i, key in ipairs(KEYS) do
  local tokens = levels[i]
  if allowed == 1 then
    tokens = tokens - 1
  end
  redis.call("HSET", key, "tokens", tokens, "ts", now)
  redis.call("PEXPIRE", key, ttl)
end
return {allowed, tostring(lowest)}
`)

var ErrInvalidBucket = errors.New("invalid_token_bucket")

// Bucket is a token bucket kept in redis so every replica shares it.
type Bucket struct {
	client *redis.Client
	rate   float64
	burst  int
	ttl    time.Duration
}

type Decision struct {
	Allowed    bool
	Remaining  float64
	RetryAfter time.Duration
}

// NewBucket refills rate tokens per second up to burst.
func NewBucket(client *redis.Client, rate float64, burst int) (*Bucket, error) {
	if client == nil || rate <= 0 || burst <= 0 {
		return nil, ErrInvalidBucket
	}
	return &Bucket{client: client, rate: rate, burst: burst, ttl: bucketTTL(rate, burst)}, nil
}

// Take spends one token from every key atomically.
func (b *Bucket) Take(ctx context.Context, keys ...string) (Decision, error) {
	if len(keys) == 0 {
		return Decision{Allowed: true, Remaining: float64(b.burst)}, nil
	}
	res, err := takeScript.Run(ctx, b.client, keys, b.rate, b.burst, b.ttl.Milliseconds()).Slice()
	if err != nil {
		return Decision{}, err
	}
	return decide(res, b.rate)
}

func decide(res []interface{}, rate float64) (Decision, error) {
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("token bucket: unexpected reply %v", res)
	}
	allowed, ok := res[0].(int64)
	if !ok {
		return Decision{}, fmt.Errorf("token bucket: unexpected allowed flag %v", res[0])
	}
	text, _ := res[1].(string)
	remaining, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Decision{}, fmt.Errorf("token bucket: remaining %q: %w", text, err)
	}

	d := Decision{Allowed: allowed == 1, Remaining: remaining}
	if !d.Allowed {
		d.RetryAfter = time.Duration((1 - remaining) / rate * float64(time.Second))
	}
	return d, nil
}

// bucketTTL keeps an idle bucket around for twice the time it takes to fill.
func bucketTTL(rate float64, burst int) time.Duration {
	seconds := math.Ceil(float64(burst) / rate * 2)
	return time.Duration(max(seconds, 1)) * time.Second
}
