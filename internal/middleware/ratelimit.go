package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/seancondron/ReelLoop/internal/config"
)

// RateLimiter 限流器
type RateLimiter struct {
	globalLimiter  *rate.Limiter
	clientLimiters sync.Map // map[clientIP]*rate.Limiter
	clientRPS      rate.Limit
	clientBurst    int
}

// NewRateLimiter 创建限流器
func NewRateLimiter(cfg *config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		globalLimiter: rate.NewLimiter(rate.Limit(cfg.GlobalRPS), cfg.Burst*2),
		clientRPS:     rate.Limit(cfg.ClientRPS),
		clientBurst:   cfg.Burst,
	}
}

// getClientLimiter 获取客户端限流器
func (rl *RateLimiter) getClientLimiter(key string) *rate.Limiter {
	if limiter, ok := rl.clientLimiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}
	limiter, _ := rl.clientLimiters.LoadOrStore(key, rate.NewLimiter(rl.clientRPS, rl.clientBurst))
	return limiter.(*rate.Limiter)
}

// RateLimit 限流中间件, 先全局后按客户端IP
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.globalLimiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "global rate limit exceeded, please try again later",
			})
			return
		}

		if !rl.getClientLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "rate limit exceeded, please try again later",
			})
			return
		}

		c.Next()
	}
}
