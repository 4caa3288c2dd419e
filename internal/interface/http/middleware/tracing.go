package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookreview/pkg/tracing"
)

// Tracing 为每个请求创建根Span
// 下游（用例、评分重算）通过c.Request.Context()得到子Span
// 未调用tracing.InitTracer时使用全局Noop Provider，开销可以忽略
func Tracing(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx, span := tracing.StartSpan(c.Request.Context(), serviceName, c.Request.Method+" "+route)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)

		var err error
		if status >= http.StatusInternalServerError {
			err = fmt.Errorf("http status %d", status)
		}
		tracing.EndSpan(span, err)
	}
}
