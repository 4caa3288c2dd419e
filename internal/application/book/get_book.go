package book

import (
	"context"

	"github.com/xiebiao/bookreview/internal/application/view"
	"github.com/xiebiao/bookreview/internal/domain/book"
)

// GetBookUseCase 图书详情用例
// 返回图书及其评论,每条评论带评论者{id,name}
type GetBookUseCase struct {
	bookService book.Service
}

// NewGetBookUseCase 创建图书详情用例
func NewGetBookUseCase(bookService book.Service) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService}
}

// Execute 执行图书详情查询
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*view.Book, error) {
	b, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	v := view.FromBook(b)
	return &v, nil
}
