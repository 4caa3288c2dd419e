package review

import (
	"context"

	"github.com/xiebiao/bookreview/internal/domain/review"
)

// DeleteReviewUseCase 删除评论用例
// 只能删除自己的评论;删除最后一条评论后图书平均评分回到0
type DeleteReviewUseCase struct {
	reviewService review.Service
	mutator       *Mutator
}

// NewDeleteReviewUseCase 创建删除评论用例
func NewDeleteReviewUseCase(reviewService review.Service, mutator *Mutator) *DeleteReviewUseCase {
	return &DeleteReviewUseCase{reviewService: reviewService, mutator: mutator}
}

// Execute 执行删除评论
func (uc *DeleteReviewUseCase) Execute(ctx context.Context, reviewID, callerID uint) error {
	_, _, err := uc.mutator.Run(ctx, ActionDeleted, func(ctx context.Context) (*review.Review, error) {
		return uc.reviewService.Delete(ctx, reviewID, callerID)
	})
	return err
}
