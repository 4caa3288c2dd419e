//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 修改依赖后运行 `wire gen ./cmd/api` 重新生成wire_gen.go
//
// 依赖链：
// *App → *gin.Engine → router.Handlers → *handler.ReviewHandler
// → *appreview.AddReviewUseCase → *appreview.Mutator → *database.TxManager → *gorm.DB → *config.Config

package main

import (
	"context"
	"log/slog"

	"github.com/google/wire"

	"github.com/xiebiao/bookreview/internal/infrastructure/config"
)

// InitializeApp 初始化整个应用
// cleanup按创建的逆序释放资源（事件发布者 → 会话存储 → 数据库）
func InitializeApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
