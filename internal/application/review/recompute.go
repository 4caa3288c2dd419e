package review

import (
	"context"
	"log/slog"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/rating"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/database"
)

// RecomputeUseCase 手动重算平均评分(reviewctl recompute)
// 用于修复直接改库等绕过应用层造成的不一致
type RecomputeUseCase struct {
	bookRepo   book.Repository
	aggregator *rating.Aggregator
	txManager  *database.TxManager
	log        *slog.Logger
}

// NewRecomputeUseCase 创建重算用例
func NewRecomputeUseCase(bookRepo book.Repository, aggregator *rating.Aggregator, txManager *database.TxManager, log *slog.Logger) *RecomputeUseCase {
	return &RecomputeUseCase{
		bookRepo:   bookRepo,
		aggregator: aggregator,
		txManager:  txManager,
		log:        log,
	}
}

// One 重算单本图书
func (uc *RecomputeUseCase) One(ctx context.Context, bookID uint) (float64, error) {
	var avg float64
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		if _, err := uc.bookRepo.FindByID(ctx, bookID); err != nil {
			return err
		}
		var err error
		avg, err = uc.aggregator.Recompute(ctx, bookID)
		return err
	})
	return avg, err
}

// All 重算全部图书,每本书一个事务,返回处理数量
func (uc *RecomputeUseCase) All(ctx context.Context) (int, error) {
	ids, err := uc.bookRepo.ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		avg, err := uc.One(ctx, id)
		if err != nil {
			return i, err
		}
		uc.log.DebugContext(ctx, "平均评分已重算", slog.Uint64("book_id", uint64(id)), slog.Float64("average_rating", avg))
	}

	return len(ids), nil
}
