package book

import (
	"context"

	"github.com/xiebiao/bookreview/internal/application/view"
	"github.com/xiebiao/bookreview/internal/domain/book"
)

// CreateBookUseCase 创建图书用例
// 设计说明:
// 1. 只有登录用户可以创建图书,创建者ID来自Token而不是请求体
// 2. 平均评分初始为0,请求体中的averageRating会被忽略
type CreateBookUseCase struct {
	bookService book.Service
}

// NewCreateBookUseCase 创建用例实例
func NewCreateBookUseCase(bookService book.Service) *CreateBookUseCase {
	return &CreateBookUseCase{bookService: bookService}
}

// CreateBookRequest 创建图书请求DTO
type CreateBookRequest struct {
	Title       string
	Author      string
	Genre       string
	Description string
}

// Execute 执行创建图书用例
func (uc *CreateBookUseCase) Execute(ctx context.Context, userID uint, req CreateBookRequest) (*view.Book, error) {
	b, err := uc.bookService.CreateBook(ctx, req.Title, req.Author, req.Genre, req.Description, userID)
	if err != nil {
		return nil, err
	}

	v := view.FromBook(b)
	return &v, nil
}
