package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xiebiao/bookreview/pkg/tracing"
)

const (
	headerRequestID = "X-Request-ID"
	ctxKeyRequestID = "request_id"

	slowRequestThreshold = 3 * time.Second
)

// RequestLogger 请求ID + 访问日志中间件
//
// 教学要点：
// 1. 每个请求一个请求ID（客户端传了X-Request-ID就沿用），写回响应头
// 2. 结构化日志：方法、路径、状态码、耗时、客户端IP、请求ID、TraceID
// 3. 按状态码选择日志级别，慢请求额外告警
//
// 不记录请求体和Authorization头
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 步骤1: 请求ID
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.New().String()
		}
		c.Set(ctxKeyRequestID, requestID)
		c.Header(headerRequestID, requestID)

		// 步骤2: 处理请求
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		// 步骤3: 记录访问日志
		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.String("client_ip", c.ClientIP()),
		}
		if traceID := tracing.ExtractTraceID(c.Request.Context()); traceID != "" {
			attrs = append(attrs, slog.String("trace_id", traceID))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		log.LogAttrs(c.Request.Context(), level, "http request", attrs...)

		if latency > slowRequestThreshold {
			log.WarnContext(c.Request.Context(), "slow request",
				slog.String("request_id", requestID),
				slog.String("route", c.FullPath()),
				slog.Duration("latency", latency),
			)
		}
	}
}

// GetRequestID 获取当前请求ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}
