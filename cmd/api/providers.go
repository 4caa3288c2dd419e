package main

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"gorm.io/gorm"

	appbook "github.com/xiebiao/bookreview/internal/application/book"
	appreview "github.com/xiebiao/bookreview/internal/application/review"
	appuser "github.com/xiebiao/bookreview/internal/application/user"
	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/rating"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/database"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookreview/internal/interface/http/handler"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	"github.com/xiebiao/bookreview/internal/interface/http/router"
	"github.com/xiebiao/bookreview/pkg/jwt"
	"github.com/xiebiao/bookreview/pkg/mq"
)

// App 可运行的应用
// RateLimiter需要在main中启动后台清理协程
type App struct {
	Engine      *gin.Engine
	RateLimiter *middleware.RateLimiter
}

// ========================================
// Provider Sets
// ========================================

// infrastructureSet 数据库、会话存储、事件发布
var infrastructureSet = wire.NewSet(
	provideDB,
	provideSQLDB,
	wire.Bind(new(router.Pinger), new(*sql.DB)),
	provideSessionStore,
	provideEventPublisher,
	provideJWTManager,
)

// repositorySet 仓储层
var repositorySet = wire.NewSet(
	database.NewUserRepository,
	database.NewBookRepository,
	database.NewReviewRepository,
	database.NewTxManager,
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
	review.NewService,
	rating.NewAggregator,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appuser.NewTokenIssuer,
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewGetCurrentUserUseCase,

	appbook.NewCreateBookUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewSearchBooksUseCase,

	appreview.NewMutator,
	appreview.NewAddReviewUseCase,
	appreview.NewUpdateReviewUseCase,
	appreview.NewDeleteReviewUseCase,
	appreview.NewListReviewsUseCase,
)

// interfaceSet 中间件、处理器、路由
var interfaceSet = wire.NewSet(
	middleware.NewAuthMiddleware,
	provideRateLimiter,

	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewReviewHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// ========================================
// 自定义Provider
// ========================================
// 构造函数参数需要从Config提取，或者需要返回cleanup时，在这里包一层

// provideDB 打开数据库并迁移，cleanup关闭连接池
func provideDB(cfg *config.Config, log *slog.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := database.Close(db); err != nil {
			log.Error("关闭数据库失败", slog.Any("error", err))
		}
	}
	return db, cleanup, nil
}

// provideSQLDB 底层连接池，用于健康检查
func provideSQLDB(db *gorm.DB) (*sql.DB, error) {
	return db.DB()
}

// provideSessionStore 会话存储
// redis.enabled=false时使用进程内存储（单实例）
func provideSessionStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (redis.SessionStore, func(), error) {
	if !cfg.Redis.Enabled {
		log.Warn("Redis未启用，会话与Token黑名单保存在进程内存")
		return redis.NewMemorySessionStore(), func() {}, nil
	}

	client, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Error("关闭Redis失败", slog.Any("error", err))
		}
	}
	return redis.NewSessionStore(client), cleanup, nil
}

// provideEventPublisher 评论事件发布
// MQ启用时连接失败直接返回错误（配置错误应尽早暴露），运行期的发布失败由熔断器兜住
func provideEventPublisher(cfg *config.Config, log *slog.Logger) (appreview.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return appreview.NoopPublisher{}, func() {}, nil
	}

	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic", log)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			log.Error("关闭消息发布者失败", slog.Any("error", err))
		}
	}
	return appreview.NewGuardedPublisher(publisher, log), cleanup, nil
}

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenExpire)
}

// provideRateLimiter 写接口限流器
func provideRateLimiter(cfg *config.Config) *middleware.RateLimiter {
	return middleware.NewRateLimiter(cfg.RateLimit)
}
