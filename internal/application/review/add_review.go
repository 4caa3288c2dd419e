package review

import (
	"context"

	"github.com/xiebiao/bookreview/internal/application/view"
	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
)

// AddReviewUseCase 添加评论用例
// 业务流程(同一事务):
// 1. 图书必须存在(404)
// 2. 校验评分和内容,检查是否已评论(400)
// 3. 写入评论
// 4. 重算图书平均评分
type AddReviewUseCase struct {
	bookRepo      book.Repository
	reviewService review.Service
	mutator       *Mutator
}

// NewAddReviewUseCase 创建添加评论用例
func NewAddReviewUseCase(bookRepo book.Repository, reviewService review.Service, mutator *Mutator) *AddReviewUseCase {
	return &AddReviewUseCase{
		bookRepo:      bookRepo,
		reviewService: reviewService,
		mutator:       mutator,
	}
}

// AddReviewRequest 添加评论请求DTO
type AddReviewRequest struct {
	BookID uint
	UserID uint
	Rating int
	Text   string
}

// Execute 执行添加评论
func (uc *AddReviewUseCase) Execute(ctx context.Context, req AddReviewRequest) (*view.Review, error) {
	rv, _, err := uc.mutator.Run(ctx, ActionCreated, func(ctx context.Context) (*review.Review, error) {
		if _, err := uc.bookRepo.FindByID(ctx, req.BookID); err != nil {
			return nil, err
		}
		return uc.reviewService.Add(ctx, req.BookID, req.UserID, req.Rating, req.Text)
	})
	if err != nil {
		return nil, err
	}

	v := view.FromReview(rv)
	return &v, nil
}
