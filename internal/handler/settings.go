package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seancondron/ReelLoop/internal/models"
)

// SkipRestrictedStore 跳过受限内容设置的读写
type SkipRestrictedStore interface {
	SkipRestricted(ctx context.Context) bool
	SetSkipRestricted(ctx context.Context, skip bool) error
}

// SkipRestrictedRequest 设置请求
type SkipRestrictedRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SettingsHandler 设置处理器
type SettingsHandler struct {
	store  SkipRestrictedStore
	logger *zap.Logger
}

// NewSettingsHandler 创建设置处理器
func NewSettingsHandler(store SkipRestrictedStore, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		store:  store,
		logger: logger,
	}
}

// GetSkipRestricted 读取设置
func (h *SettingsHandler) GetSkipRestricted(c *gin.Context) {
	models.Success(c, gin.H{"enabled": h.store.SkipRestricted(c.Request.Context())})
}

// SetSkipRestricted 保存设置
func (h *SettingsHandler) SetSkipRestricted(c *gin.Context) {
	var req SkipRestrictedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		models.BadRequest(c, "enabled is required")
		return
	}

	if err := h.store.SetSkipRestricted(c.Request.Context(), *req.Enabled); err != nil {
		h.logger.Error("Failed to save preference", zap.Error(err))
		models.InternalError(c, "failed to save setting")
		return
	}

	models.Success(c, gin.H{"enabled": *req.Enabled})
}
