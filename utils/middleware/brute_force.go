package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/alexsergeyev/skillforge/utils/cache"
	"github.com/alexsergeyev/skillforge/utils/response"
)

// BruteForceProtection handles brute force protection using Redis
type BruteForceProtection struct {
	redisCache *cache.RedisCache
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(redisCache *cache.RedisCache) *BruteForceProtection {
	return &BruteForceProtection{
		redisCache: redisCache,
	}
}

func (b *BruteForceProtection) lockKey(ip string) string {
	return fmt.Sprintf("brute_force:lock:%s", ip)
}

func (b *BruteForceProtection) attemptKey(ip string) string {
	return fmt.Sprintf("brute_force:attempts:%s", ip)
}

// CheckAndRecordAttempt middleware checks if IP is locked out
func (b *BruteForceProtection) CheckAndRecordAttempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()

		// If Redis is down, allow the request rather than blocking
		// legitimate users on a cache failure.
		locked, err := b.IsIPLocked(c, ip)
		if err != nil {
			return c.Next()
		}

		if locked {
			ttl, _ := b.redisCache.TTL(c.Context(), b.lockKey(ip))
			retryAfter := int(ttl.Seconds())
			if retryAfter < 0 {
				retryAfter = 60
			}

			c.Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			return response.TooManyRequests(c, fmt.Sprintf("Too many failed attempts. Try again in %d seconds", retryAfter))
		}

		return c.Next()
	}
}

// RecordFailedAttempt records a failed login attempt and applies progressive lockouts
func (b *BruteForceProtection) RecordFailedAttempt(c *fiber.Ctx, ip string) error {
	ctx := c.Context()
	attemptKey := b.attemptKey(ip)

	attempts, err := b.redisCache.Increment(ctx, attemptKey)
	if err != nil {
		return nil
	}

	// Attempts counter lives in a 15 minute window.
	if attempts == 1 {
		b.redisCache.Expire(ctx, attemptKey, 15*time.Minute)
	}

	var lockDuration time.Duration
	switch {
	case attempts >= 25:
		lockDuration = 24 * time.Hour
	case attempts >= 10:
		lockDuration = 1 * time.Hour
	case attempts >= 5:
		lockDuration = 2 * time.Minute
	default:
		return nil
	}

	return b.redisCache.Set(ctx, b.lockKey(ip), "locked", lockDuration)
}

// RecordSuccessfulAttempt clears failed attempts on successful login
func (b *BruteForceProtection) RecordSuccessfulAttempt(c *fiber.Ctx, ip string) error {
	ctx := c.Context()
	b.redisCache.Delete(ctx, b.attemptKey(ip))
	b.redisCache.Delete(ctx, b.lockKey(ip))
	return nil
}

// IsIPLocked checks if an IP is currently locked
func (b *BruteForceProtection) IsIPLocked(c *fiber.Ctx, ip string) (bool, error) {
	return b.redisCache.Exists(c.Context(), b.lockKey(ip))
}
