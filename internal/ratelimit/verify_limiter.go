package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keygatehq/keygate/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyVerifyClient = "verify:client:%s"

// VerifyLimiter throttles unauthenticated verification traffic per client.
// A nil limiter allows everything, so wiring stays unconditional.
type VerifyLimiter struct {
	enabled bool

	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewVerifyLimiter(cfg config.Config) (*VerifyLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.VerifyRate <= 0 || limitCfg.VerifyBurst <= 0 {
		return nil, errors.New("verify rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: limitCfg.RedisPassword,
		DB:       limitCfg.RedisDB,
	})

	return &VerifyLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    limitCfg.VerifyRate,
		burst:   limitCfg.VerifyBurst,
	}, nil
}

func (l *VerifyLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *VerifyLimiter) Allow(ctx context.Context, clientID string) (Decision, error) {
	if !l.Enabled() {
		return Decision{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyVerifyClient, strings.TrimSpace(clientID)), l.rate, l.burst)
}
