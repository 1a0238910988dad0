package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrTooManyAttempts = errors.New("too many attempts, try again later")

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{redis: client}
}

func (r *RateLimiter) CheckLogin(ctx context.Context, email string) error {
	return r.check(ctx, fmt.Sprintf("login_attempts:%s", email), 5, 15*time.Minute)
}

func (r *RateLimiter) CheckRegister(ctx context.Context, email string) error {
	return r.check(ctx, fmt.Sprintf("register_attempts:%s", email), 3, time.Hour)
}

func (r *RateLimiter) CheckInvite(ctx context.Context, userID string) error {
	return r.check(ctx, fmt.Sprintf("invite_attempts:%s", userID), 20, time.Hour)
}

func (r *RateLimiter) check(ctx context.Context, key string, limit int64, window time.Duration) error {
	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		r.redis.Expire(ctx, key, window)
	}
	if count > limit {
		return ErrTooManyAttempts
	}
	return nil
}
