package book

import (
	"context"

	"github.com/xiebiao/bookreview/internal/application/view"
	"github.com/xiebiao/bookreview/internal/domain/book"
)

// SearchBooksUseCase 图书搜索用例
// 关键词同时匹配书名和作者(子串),不分页
type SearchBooksUseCase struct {
	bookService book.Service
}

// NewSearchBooksUseCase 创建搜索用例
func NewSearchBooksUseCase(bookService book.Service) *SearchBooksUseCase {
	return &SearchBooksUseCase{bookService: bookService}
}

// Execute 执行搜索,空关键词返回校验错误
func (uc *SearchBooksUseCase) Execute(ctx context.Context, query string) ([]view.Book, error) {
	books, err := uc.bookService.SearchBooks(ctx, query)
	if err != nil {
		return nil, err
	}
	return view.FromBooks(books), nil
}
