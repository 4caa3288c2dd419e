package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookreview/internal/infrastructure/config"
)

// CORS 跨域资源共享中间件
//
// 教学要点：
// 1. 浏览器前端和API不同源时，需要服务端返回CORS头部
// 2. 预检请求（OPTIONS）在路由匹配前直接返回204
// 3. Origin不在允许列表中返回403
// 4. allow_credentials=true时不能返回"*"，改为回显请求的Origin
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	expose := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		// 非浏览器跨域请求（curl、同源）不带Origin，不需要CORS头部
		if origin == "" {
			c.Next()
			return
		}

		allowOrigin, ok := matchOrigin(cfg.AllowOrigins, origin, cfg.AllowCredentials)
		if !ok {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Header("Access-Control-Allow-Origin", allowOrigin)
		if allowOrigin != "*" {
			c.Header("Vary", "Origin")
		}
		if expose != "" {
			c.Header("Access-Control-Expose-Headers", expose)
		}
		if cfg.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", headers)
			if cfg.MaxAge > 0 {
				c.Header("Access-Control-Max-Age", maxAge)
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// matchOrigin 返回应写入Access-Control-Allow-Origin的值
func matchOrigin(allowed []string, origin string, credentials bool) (string, bool) {
	for _, o := range allowed {
		if o == "*" {
			if credentials {
				return origin, true
			}
			return "*", true
		}
		if strings.EqualFold(o, origin) {
			return origin, true
		}
	}
	return "", false
}
