package models

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 业务码
const (
	CodeSuccess = 0
	// CodeRestrictedSkipped 受限内容按用户设置被跳过
	CodeRestrictedSkipped = 2001
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Kind    string      `json:"kind,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Info 提示性结果, HTTP 状态仍为 200
func Info(c *gin.Context, code int, kind, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Kind:    kind,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, kind, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Kind:    kind,
	})
}

// BadRequest 请求错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, "BadRequest", message)
}

// NotFound 未找到
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, "NotFound", message)
}

// InternalError 服务器错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, "Internal", message)
}
