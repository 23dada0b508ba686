package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/seancondron/ReelLoop/internal/config"
)

const (
	defaultAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	defaultAllowHeaders = "Content-Type, X-Request-ID, Accept, Origin"
)

// CORS 跨域中间件, 配置中的 "*" 表示允许任意来源
func CORS(cfg *config.CORSConfig) gin.HandlerFunc {
	allowAny := len(cfg.AllowedOrigins) == 0
	allowedOrigins := make(map[string]bool)
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			allowAny = true
		}
		allowedOrigins[origin] = true
	}

	methods := defaultAllowMethods
	if len(cfg.AllowedMethods) > 0 {
		methods = strings.Join(cfg.AllowedMethods, ", ")
	}
	headers := defaultAllowHeaders
	if len(cfg.AllowedHeaders) > 0 {
		headers = strings.Join(cfg.AllowedHeaders, ", ")
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		switch {
		case origin == "":
			// 非浏览器请求 (移动端) 不需要 CORS 头
		case allowAny:
			c.Header("Access-Control-Allow-Origin", "*")
		case allowedOrigins[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}

		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")
		if cfg.MaxAge > 0 {
			c.Header("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		// 处理预检请求
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
