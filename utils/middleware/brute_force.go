package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/collegebuddy/api/utils/cache"
	"github.com/collegebuddy/api/utils/logger"
	"github.com/collegebuddy/api/utils/response"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const attemptWindow = 15 * time.Minute

// BruteForceProtection locks out clients after repeated failed logins
type BruteForceProtection struct {
	cache cache.Store
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(store cache.Store) *BruteForceProtection {
	return &BruteForceProtection{cache: store}
}

func attemptKey(ip string) string { return fmt.Sprintf("brute_force:attempts:%s", ip) }
func lockKey(ip string) string    { return fmt.Sprintf("brute_force:lock:%s", ip) }

// CheckAndRecordAttempt middleware rejects locked out IPs
func (b *BruteForceProtection) CheckAndRecordAttempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := lockKey(c.IP())

		locked, err := b.cache.Exists(c.UserContext(), key)
		if err != nil {
			// a cache outage must not lock everyone out
			logger.L().Warn("brute force check skipped", zap.Error(err))
			return c.Next()
		}
		if !locked {
			return c.Next()
		}

		ttl, _ := b.cache.TTL(c.UserContext(), key)
		retryAfter := int(ttl.Seconds())
		if retryAfter <= 0 {
			retryAfter = 60
		}

		c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", retryAfter))
		return response.TooManyRequests(c, fmt.Sprintf("Too many failed attempts. Try again in %d seconds", retryAfter))
	}
}

// lockout returns how long to lock an IP after attempts failures
func lockout(attempts int64) time.Duration {
	switch {
	case attempts >= 25:
		return 24 * time.Hour
	case attempts >= 10:
		return time.Hour
	case attempts >= 5:
		return 2 * time.Minute
	default:
		return 0
	}
}

// RecordFailedAttempt counts a failed login and applies progressive lockouts
func (b *BruteForceProtection) RecordFailedAttempt(c *fiber.Ctx, email string) {
	ctx := c.UserContext()
	ip := c.IP()

	attempts, err := b.cache.Increment(ctx, attemptKey(ip))
	if err != nil {
		return
	}
	if attempts == 1 {
		_ = b.cache.Expire(ctx, attemptKey(ip), attemptWindow)
	}

	duration := lockout(attempts)
	if duration == 0 {
		return
	}
	logger.L().Warn("login locked out",
		zap.String("ip", ip),
		zap.String("email", strings.ToLower(email)),
		zap.Int64("attempts", attempts),
		zap.Duration("lock", duration),
	)
	_ = b.cache.Set(ctx, lockKey(ip), "locked", duration)
}

// RecordSuccessfulAttempt clears failed attempts on successful login
func (b *BruteForceProtection) RecordSuccessfulAttempt(c *fiber.Ctx) {
	ip := c.IP()
	_ = b.cache.Delete(c.UserContext(), attemptKey(ip), lockKey(ip))
}
