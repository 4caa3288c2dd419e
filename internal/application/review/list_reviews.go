package review

import (
	"context"

	"github.com/xiebiao/bookreview/internal/application/view"
	"github.com/xiebiao/bookreview/internal/domain/review"
)

// ListReviewsUseCase 图书评论列表用例
// 图书不存在时返回空列表,不报404
type ListReviewsUseCase struct {
	reviewService review.Service
}

// NewListReviewsUseCase 创建评论列表用例
func NewListReviewsUseCase(reviewService review.Service) *ListReviewsUseCase {
	return &ListReviewsUseCase{reviewService: reviewService}
}

// Execute 查询某本书的评论(带评论者)
func (uc *ListReviewsUseCase) Execute(ctx context.Context, bookID uint) ([]view.Review, error) {
	reviews, err := uc.reviewService.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return view.FromReviews(reviews), nil
}
