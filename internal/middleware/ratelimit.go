package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ActionLimiter is a shared limiter across server instances (Redis)
type ActionLimiter interface {
	AllowAction(ctx context.Context, userID uuid.UUID, action string, rate float64, burst int) (bool, error)
}

type RateLimiter struct {
	limiters map[uuid.UUID]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	shared   ActionLimiter
}

// NewRateLimiter builds a per-user limiter. shared may be nil; when it fails
// the in-process limiter decides.
func NewRateLimiter(rps int, shared ActionLimiter) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[uuid.UUID]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    rps * 2,
		shared:   shared,
	}
}

func (rl *RateLimiter) getLimiter(userID uuid.UUID) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[userID]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[userID] = limiter
	}

	return limiter
}

// Allow reports whether userID may perform action now
func (rl *RateLimiter) Allow(ctx context.Context, userID uuid.UUID, action string) bool {
	if rl.shared != nil {
		ok, err := rl.shared.AllowAction(ctx, userID, action, float64(rl.rate), rl.burst)
		if err == nil {
			return ok
		}
		log.Warn("Shared rate limiter failed, using local limiter", "error", err)
	}
	return rl.getLimiter(userID).Allow()
}

// Cleanup drops limiters that have refilled, every interval until ctx is done
func (rl *RateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.mu.Lock()
				for id, l := range rl.limiters {
					if l.Tokens() >= float64(rl.burst) {
						delete(rl.limiters, id)
					}
				}
				rl.mu.Unlock()
			}
		}
	}()
}

// RateLimitMiddleware limits write requests per user and action
func RateLimitMiddleware(rl *RateLimiter, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := c.Get(ContextUserID)
		if !ok {
			c.Next()
			return
		}
		userID, ok := uid.(uuid.UUID)
		if !ok {
			c.Next()
			return
		}

		if !rl.Allow(c.Request.Context(), userID, action) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		c.Next()
	}
}
