package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seancondron/ReelLoop/internal/config"
	"github.com/seancondron/ReelLoop/internal/handler"
	"github.com/seancondron/ReelLoop/internal/middleware"
	"github.com/seancondron/ReelLoop/internal/service"
	"github.com/seancondron/ReelLoop/internal/ws"
)

// Dependencies 路由依赖
type Dependencies struct {
	Config       *config.Config
	PostService  *service.PostService
	Preferences  handler.SkipRestrictedStore
	HealthChecks map[string]handler.DependencyCheck
	// WSManager 为 nil 时进度推送返回 503
	WSManager *ws.Manager
	Logger    *zap.Logger
}

// SetupRouter 设置路由
func SetupRouter(deps *Dependencies) *gin.Engine {
	if deps.Config.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// 全局中间件
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.CORS(&deps.Config.CORS))

	rateLimiter := middleware.NewRateLimiter(&deps.Config.RateLimit)

	postHandler := handler.NewPostHandler(deps.PostService, deps.Logger)
	settingsHandler := handler.NewSettingsHandler(deps.Preferences, deps.Logger)
	healthHandler := handler.NewHealthHandler(deps.HealthChecks, deps.WSManager, deps.Config.Server.Version)
	wsHandler := handler.NewWebSocketHandler(deps.WSManager)

	// 健康检查
	r.GET("/health", healthHandler.HealthCheck)
	r.GET("/version", healthHandler.Version)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/live", healthHandler.Live)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(rateLimiter))
	{
		// 帖子
		v1.POST("/posts", postHandler.AddPost)
		v1.GET("/posts", postHandler.ListPosts)
		v1.DELETE("/posts", postHandler.ClearAll)
		v1.DELETE("/posts/:id", postHandler.DeletePost)

		// 设置
		v1.GET("/settings/skip-restricted", settingsHandler.GetSkipRestricted)
		v1.PUT("/settings/skip-restricted", settingsHandler.SetSkipRestricted)
	}

	// 抓取进度推送, X-Request-ID 即 task_id
	r.GET("/api/v1/ws/progress", wsHandler.Progress)

	return r
}
