// Package response 统一 HTTP 响应写法。
// 成功响应直接输出资源 JSON（不包信封），错误响应为纯文本。
package response

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-posts/pkg/logger"
)

// Success 200 + JSON
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// OK 200 空响应体
func OK(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Created 201 空响应体
func Created(c *gin.Context) {
	c.Status(http.StatusCreated)
}

func BadRequest(c *gin.Context, msg string) {
	c.String(http.StatusBadRequest, msg)
}

func NotFound(c *gin.Context, msg string) {
	c.String(http.StatusNotFound, msg)
}

func TooManyRequests(c *gin.Context) {
	c.AbortWithStatus(http.StatusTooManyRequests)
}

// InternalError 记录日志、上报 Sentry（若已启用），并以原始错误文本返回 500
func InternalError(c *gin.Context, err error) {
	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString("request_id")),
		zap.Error(err),
	)
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, err.Error())
}

// ServiceUnavailable 503 + 原始错误文本
func ServiceUnavailable(c *gin.Context, err error) {
	c.String(http.StatusServiceUnavailable, err.Error())
}
