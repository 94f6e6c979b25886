package ratelimit

import (
	"context"
	"errors"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/haccp/internal/config"
)

const (
	keyLoginEmail = "haccp:login:email:"
	keyLoginIP    = "haccp:login:ip:"
)

// LoginLimiter throttles password attempts per e-mail and per client IP.
// Without redis it allows everything.
type LoginLimiter struct {
	bucket *Bucket
}

func NewLoginLimiter(cfg config.Config, client *redis.Client) (*LoginLimiter, error) {
	if client == nil {
		return &LoginLimiter{}, nil
	}
	bucket, err := NewBucket(client, cfg.AuthLoginRate, cfg.AuthLoginBurst)
	if err != nil {
		return nil, errors.New("login rate limit must be positive")
	}
	return &LoginLimiter{bucket: bucket}, nil
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow takes one attempt from the e-mail and the IP bucket together, so a
// rejected attempt is not charged to either.
func (l *LoginLimiter) Allow(ctx context.Context, email, ip string) (Decision, error) {
	if !l.Enabled() {
		return Decision{Allowed: true}, nil
	}
	var keys []string
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		keys = append(keys, keyLoginEmail+email)
	}
	if ip = strings.TrimSpace(ip); ip != "" {
		keys = append(keys, keyLoginIP+ip)
	}
	return l.bucket.Take(ctx, keys...)
}
