package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/postforge/postforge/internal/infrastructure/ratelimit"
	"github.com/postforge/postforge/internal/shared/constants"
	"github.com/postforge/postforge/internal/shared/logger"
	"github.com/postforge/postforge/internal/shared/utils"
)

// RateLimiter throttles an authenticated route per user with a sliding
// window. It runs after auth; a limiter failure lets the request through.
type RateLimiter struct {
	limiter ratelimit.RateLimiter
	config  ratelimit.RateLimitConfig
	scope   string
	logger  logger.Interface
}

func NewRateLimiter(limiter ratelimit.RateLimiter, scope string, config ratelimit.RateLimitConfig, logger logger.Interface) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		config:  config,
		scope:   scope,
		logger:  logger,
	}
}

func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limiter == nil || rl.config.IsZero() {
			c.Next()
			return
		}

		key := rl.scope + ":ip:" + c.ClientIP()
		if userID, exists := c.Get(constants.ContextKeyUserID); exists {
			key = fmt.Sprintf("%s:user:%v", rl.scope, userID)
		}

		allowed, err := rl.limiter.Allow(c.Request.Context(), key, rl.config)
		if err != nil {
			rl.logger.Warnw("rate limiter unavailable, allowing request", "error", err, "key", key)
			c.Next()
			return
		}

		if !allowed {
			if rl.config.RequestsPerMinute > 0 {
				c.Header(constants.HeaderRateLimitLimit, strconv.Itoa(rl.config.RequestsPerMinute))
			}
			c.Header(constants.HeaderRetryAfter, "60")
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
