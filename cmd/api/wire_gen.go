//go:build !wireinject
// +build !wireinject

// wire_gen.go 手工维护，与wire.go中InitializeApp的依赖图保持一致
// 也可以运行 `wire gen ./cmd/api` 重新生成覆盖本文件
// TestInitializeApp 会组装一次完整应用，依赖图漏掉或写错时测试失败

package main

import (
	"context"
	"log/slog"

	"github.com/xiebiao/bookreview/internal/application/book"
	"github.com/xiebiao/bookreview/internal/application/review"
	"github.com/xiebiao/bookreview/internal/application/user"
	book2 "github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/rating"
	review2 "github.com/xiebiao/bookreview/internal/domain/review"
	user2 "github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/database"
	"github.com/xiebiao/bookreview/internal/interface/http/handler"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	"github.com/xiebiao/bookreview/internal/interface/http/router"
)

// Injectors from wire.go:

// InitializeApp 初始化整个应用
// cleanup按创建的逆序释放资源（事件发布者 → 会话存储 → 数据库）
func InitializeApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, func(), error) {
	db, cleanup, err := provideDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	repository := database.NewUserRepository(db)
	service := user2.NewService(repository)
	manager := provideJWTManager(cfg)
	sessionStore, cleanup2, err := provideSessionStore(ctx, cfg, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	tokenIssuer := user.NewTokenIssuer(manager, sessionStore, log)
	registerUseCase := user.NewRegisterUseCase(service, tokenIssuer)
	loginUseCase := user.NewLoginUseCase(service, tokenIssuer)
	logoutUseCase := user.NewLogoutUseCase(manager, sessionStore)
	getCurrentUserUseCase := user.NewGetCurrentUserUseCase(service)
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase, getCurrentUserUseCase)
	bookRepository := database.NewBookRepository(db)
	bookService := book2.NewService(bookRepository)
	createBookUseCase := book.NewCreateBookUseCase(bookService)
	getBookUseCase := book.NewGetBookUseCase(bookService)
	listBooksUseCase := book.NewListBooksUseCase(bookService)
	searchBooksUseCase := book.NewSearchBooksUseCase(bookService)
	bookHandler := handler.NewBookHandler(createBookUseCase, getBookUseCase, listBooksUseCase, searchBooksUseCase)
	reviewRepository := database.NewReviewRepository(db)
	reviewService := review2.NewService(reviewRepository)
	listReviewsUseCase := review.NewListReviewsUseCase(reviewService)
	txManager := database.NewTxManager(db)
	aggregator := rating.NewAggregator(reviewRepository, bookRepository)
	eventPublisher, cleanup3, err := provideEventPublisher(cfg, log)
	if err != nil {
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	mutator := review.NewMutator(txManager, aggregator, eventPublisher, log)
	addReviewUseCase := review.NewAddReviewUseCase(bookRepository, reviewService, mutator)
	updateReviewUseCase := review.NewUpdateReviewUseCase(reviewService, mutator)
	deleteReviewUseCase := review.NewDeleteReviewUseCase(reviewService, mutator)
	reviewHandler := handler.NewReviewHandler(listReviewsUseCase, addReviewUseCase, updateReviewUseCase, deleteReviewUseCase)
	handlers := router.Handlers{
		User:   userHandler,
		Book:   bookHandler,
		Review: reviewHandler,
	}
	authMiddleware := middleware.NewAuthMiddleware(manager, sessionStore)
	rateLimiter := provideRateLimiter(cfg)
	sqlDB, err := provideSQLDB(db)
	if err != nil {
		cleanup3()
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	engine := router.New(cfg, log, handlers, authMiddleware, rateLimiter, sqlDB)
	app := &App{
		Engine:      engine,
		RateLimiter: rateLimiter,
	}
	return app, func() {
		cleanup3()
		cleanup2()
		cleanup()
	}, nil
}
