package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

// RateLimiterConfig configures the per client token bucket.
type RateLimiterConfig struct {
	Rate    rate.Limit
	Burst   int
	IdleTTL time.Duration
}

// RateLimiter keeps one limiter per authenticated user, or per IP for anonymous calls.
// Limiters unused for IdleTTL are evicted.
type RateLimiter struct {
	config   RateLimiterConfig
	limiters *cache.Cache
}

// NewRateLimiter constructs a RateLimiter.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Burst <= 0 {
		config.Burst = 1
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		config:   config,
		limiters: cache.New(config.IdleTTL, 2*config.IdleTTL),
	}
}

// RateLimit returns the gin middleware.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiter(clientKey(c)).Allow() {
			c.Header("Retry-After", "1")
			abort(c, appErrors.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if cached, found := rl.limiters.Get(key); found {
		limiter := cached.(*rate.Limiter)
		rl.limiters.Set(key, limiter, cache.DefaultExpiration)
		return limiter
	}
	limiter := rate.NewLimiter(rl.config.Rate, rl.config.Burst)
	if err := rl.limiters.Add(key, limiter, cache.DefaultExpiration); err != nil {
		// lost the race with a concurrent request for the same key
		if cached, found := rl.limiters.Get(key); found {
			return cached.(*rate.Limiter)
		}
	}
	return limiter
}

func clientKey(c *gin.Context) string {
	if claims, ok := CurrentClaims(c); ok && claims.UserID != "" {
		return "user:" + claims.UserID
	}
	return "ip:" + c.ClientIP()
}
