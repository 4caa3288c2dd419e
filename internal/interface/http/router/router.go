// Package router 组装gin引擎：全局中间件、健康检查、指标、文档和业务路由
package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/internal/interface/http/handler"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	"github.com/xiebiao/bookreview/pkg/response"
)

// Pinger 健康检查依赖（数据库）
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers 路由需要的全部处理器
type Handlers struct {
	User   *handler.UserHandler
	Book   *handler.BookHandler
	Review *handler.ReviewHandler
}

// New 创建并配置Gin引擎
//
// 中间件执行顺序：请求日志 → Recovery → CORS → Tracing → Metrics → 路由匹配 → (Auth → 限流) → Handler
func New(
	cfg *config.Config,
	log *slog.Logger,
	h Handlers,
	auth *middleware.AuthMiddleware,
	limiter *middleware.RateLimiter,
	db Pinger,
) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode, gin.DebugMode:
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestLogger(log),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			log.ErrorContext(c.Request.Context(), "panic recovered",
				slog.Any("panic", recovered),
				slog.String("request_id", middleware.GetRequestID(c)),
			)
			response.ErrorWithStatus(c, http.StatusInternalServerError, "系统内部错误")
		}),
		middleware.CORS(cfg.CORS),
		middleware.Tracing(cfg.Tracing.ServiceName),
		middleware.Metrics(),
	)

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			response.ErrorWithStatus(c, http.StatusServiceUnavailable, "数据库不可用: "+err.Error())
			return
		}
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档，release模式不开放
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	requireAuth := auth.RequireAuth()
	limit := limiter.Middleware()

	v1 := r.Group("/api/v1")
	{
		// 认证
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", limit, h.User.Register)
			authGroup.POST("/login", limit, h.User.Login)
			authGroup.GET("/me", requireAuth, h.User.Me)
			authGroup.POST("/logout", requireAuth, h.User.Logout)
		}

		// 图书（查询公开，创建需要登录）
		books := v1.Group("/books")
		{
			books.GET("", h.Book.ListBooks)
			books.GET("/search", h.Book.SearchBooks)
			books.GET("/:id", h.Book.GetBook)
			books.POST("", requireAuth, limit, h.Book.CreateBook)

			books.GET("/:id/reviews", h.Review.ListReviews)
			books.POST("/:id/reviews", requireAuth, limit, h.Review.AddReview)
		}

		// 评论（全部需要登录）
		reviews := v1.Group("/reviews", requireAuth, limit)
		{
			reviews.PUT("/:id", h.Review.UpdateReview)
			reviews.DELETE("/:id", h.Review.DeleteReview)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.ErrorWithStatus(c, http.StatusNotFound, "接口不存在")
	})

	return r
}
