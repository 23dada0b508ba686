package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seancondron/ReelLoop/internal/models"
	"github.com/seancondron/ReelLoop/internal/ws"
)

// WebSocketHandler WebSocket 处理器
type WebSocketHandler struct {
	wsManager *ws.Manager
}

// NewWebSocketHandler 创建 WebSocket 处理器, wsManager 为 nil 时进度推送不可用
func NewWebSocketHandler(wsManager *ws.Manager) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager: wsManager,
	}
}

// Progress 处理抓取进度推送 WebSocket 连接
func (h *WebSocketHandler) Progress(c *gin.Context) {
	if h.wsManager == nil {
		models.Error(c, http.StatusServiceUnavailable, "Unavailable", "progress streaming requires redis")
		return
	}
	h.wsManager.HandleConnection(c)
}
