package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumebuilder/internal/api/middleware"
	"resumebuilder/internal/errcode"
)

func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

func AbortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
}

func Unauthorized(c *gin.Context)           { Error(c, http.StatusUnauthorized, "unauthorized") }
func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, msg) }
func NotFound(c *gin.Context, msg string)   { Error(c, http.StatusNotFound, msg) }
func Conflict(c *gin.Context, msg string)   { Error(c, http.StatusConflict, msg) }

// respondError 将服务层错误映射为 HTTP 状态码。
// 未分类的错误同样返回 400，但会记录完整原因。
func respondError(c *gin.Context, err error) {
	logger := middleware.LoggerFromContext(c)
	_ = c.Error(err)

	var coded *errcode.Error
	if !errors.As(err, &coded) {
		logger.Error("unexpected error", slog.Any("error", err))
		BadRequest(c, err.Error())
		return
	}

	if errors.Is(err, errcode.Provider) {
		logger.Warn("provider error",
			slog.String("message", coded.Error()),
			slog.Any("cause", coded.Cause()),
		)
	}
	Error(c, statusFor(err), coded.Error())
}

func statusFor(err error) int {
	if errors.Is(err, errcode.NotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
