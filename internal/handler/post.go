package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seancondron/ReelLoop/internal/models"
	"github.com/seancondron/ReelLoop/internal/service"
	"github.com/seancondron/ReelLoop/internal/utils"
)

// StatusClientClosedRequest 客户端断开 (nginx 约定)
const StatusClientClosedRequest = 499

// AddPostRequest 添加帖子请求
type AddPostRequest struct {
	URL string `json:"url" binding:"required"`
}

// PostHandler 帖子处理器
type PostHandler struct {
	posts  *service.PostService
	logger *zap.Logger
}

// NewPostHandler 创建帖子处理器
func NewPostHandler(posts *service.PostService, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		posts:  posts,
		logger: logger,
	}
}

// AddPost 添加帖子
func (h *PostHandler) AddPost(c *gin.Context) {
	var req AddPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		models.BadRequest(c, "url is required")
		return
	}

	post, err := h.posts.AddPost(c.Request.Context(), req.URL)
	if err != nil {
		h.writeError(c, err)
		return
	}

	models.Created(c, post)
}

// ListPosts 列出帖子
func (h *PostHandler) ListPosts(c *gin.Context) {
	posts := h.posts.ListPosts(c.Request.Context())
	models.Success(c, gin.H{
		"items": posts,
		"total": len(posts),
	})
}

// DeletePost 删除帖子
func (h *PostHandler) DeletePost(c *gin.Context) {
	id := c.Param("id")
	if !h.posts.DeletePost(c.Request.Context(), id) {
		models.NotFound(c, "post not found")
		return
	}
	models.Success(c, gin.H{"id": id})
}

// ClearAll 删除全部帖子
func (h *PostHandler) ClearAll(c *gin.Context) {
	removed := h.posts.ClearAll(c.Request.Context())
	models.Success(c, gin.H{"deleted": removed})
}

// writeError 将错误种类映射为 HTTP 状态
func (h *PostHandler) writeError(c *gin.Context, err error) {
	kind := service.ErrorKind(err)

	if utils.IsInformational(err) {
		models.Info(c, models.CodeRestrictedSkipped, kind, err.Error())
		return
	}

	status := StatusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Add post failed", zap.String("kind", kind), zap.Error(err))
	} else {
		h.logger.Info("Add post rejected", zap.String("kind", kind), zap.Error(err))
	}
	_ = c.Error(err)
	models.Error(c, status, kind, err.Error())
}

// StatusForError 错误种类对应的 HTTP 状态码
func StatusForError(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	case errors.Is(err, utils.ErrJobTimedOut), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, utils.ErrUnsupportedURL), errors.Is(err, utils.ErrIdentifierExtraction):
		return http.StatusBadRequest
	case errors.Is(err, utils.ErrCredentialInvalid):
		return http.StatusServiceUnavailable
	case utils.IsProviderFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
