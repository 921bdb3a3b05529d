package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// CheckPurchaseAttempt enforces a fixed-window limit on purchase attempts
// per profile. Fails open on redis errors so billing-confirmed purchases
// are never dropped because the limiter is down.
func (r *RateLimiter) CheckPurchaseAttempt(ctx context.Context, profileID int64, maxAttempts int64, window time.Duration) (bool, error) {
	if r.client == nil {
		return true, nil
	}

	key := fmt.Sprintf("ratelimit:purchase:%d", profileID)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return true, fmt.Errorf("failed to increment purchase attempt: %w", err)
	}

	// Set expiration on first attempt
	if count == 1 {
		r.client.Expire(ctx, key, window)
	}

	return count <= maxAttempts, nil
}

// ResetPurchaseAttempts clears the window for a profile.
func (r *RateLimiter) ResetPurchaseAttempts(ctx context.Context, profileID int64) error {
	if r.client == nil {
		return nil
	}
	key := fmt.Sprintf("ratelimit:purchase:%d", profileID)
	return r.client.Del(ctx, key).Err()
}
