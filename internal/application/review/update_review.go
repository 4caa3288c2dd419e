package review

import (
	"context"

	"github.com/xiebiao/bookreview/internal/application/view"
	"github.com/xiebiao/bookreview/internal/domain/review"
)

// UpdateReviewUseCase 更新评论用例
// 只能更新自己的评论;评分或内容未传时保持不变
type UpdateReviewUseCase struct {
	reviewService review.Service
	mutator       *Mutator
}

// NewUpdateReviewUseCase 创建更新评论用例
func NewUpdateReviewUseCase(reviewService review.Service, mutator *Mutator) *UpdateReviewUseCase {
	return &UpdateReviewUseCase{reviewService: reviewService, mutator: mutator}
}

// UpdateReviewRequest 更新评论请求DTO
type UpdateReviewRequest struct {
	ReviewID uint
	CallerID uint
	Rating   *int
	Text     *string
}

// Execute 执行更新评论
func (uc *UpdateReviewUseCase) Execute(ctx context.Context, req UpdateReviewRequest) (*view.Review, error) {
	rv, _, err := uc.mutator.Run(ctx, ActionUpdated, func(ctx context.Context) (*review.Review, error) {
		return uc.reviewService.Update(ctx, req.ReviewID, req.CallerID, review.Changes{
			Rating: req.Rating,
			Text:   req.Text,
		})
	})
	if err != nil {
		return nil, err
	}

	v := view.FromReview(rv)
	return &v, nil
}
