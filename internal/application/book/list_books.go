package book

import (
	"context"
	"strconv"
	"strings"

	"github.com/xiebiao/bookreview/internal/application/view"
	"github.com/xiebiao/bookreview/internal/domain/book"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// ListBooksUseCase 图书列表查询用例
// 设计说明:
// 1. 支持按作者(子串)、类别(精确)过滤,分页和排序
// 2. 查询参数以原始字符串传入,在这里统一解析和校验
// 3. 每本书都带评论列表
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{bookService: bookService}
}

// ListBooksRequest 列表查询请求DTO(原始查询参数,空字符串表示未传)
type ListBooksRequest struct {
	Author string
	Genre  string
	Page   string
	Limit  string
	Sort   string
	Order  string
}

// ListBooksResponse 列表查询响应DTO
type ListBooksResponse struct {
	Books      []view.Book
	Pagination view.Pagination
}

// Execute 执行列表查询用例
// 学习要点:
// 1. 参数缺省时使用默认值(page=1, limit=10, sort=createdAt, order=desc)
// 2. 参数非法时返回校验错误,而不是悄悄修正
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	// 1. 解析分页参数
	page, err := parsePositiveInt("page", req.Page, book.DefaultPage)
	if err != nil {
		return nil, err
	}
	limit, err := parsePositiveInt("limit", req.Limit, book.DefaultLimit)
	if err != nil {
		return nil, err
	}

	// 2. 解析排序参数
	sort, err := book.ParseSortField(req.Sort)
	if err != nil {
		return nil, err
	}
	desc, err := book.ParseOrder(req.Order)
	if err != nil {
		return nil, err
	}

	// 3. 查询(领域服务负责范围校验)
	books, pagination, err := uc.bookService.ListBooks(ctx, book.ListParams{
		Author: strings.TrimSpace(req.Author),
		Genre:  strings.TrimSpace(req.Genre),
		Page:   page,
		Limit:  limit,
		Sort:   sort,
		Desc:   desc,
	})
	if err != nil {
		return nil, err
	}

	return &ListBooksResponse{
		Books:      view.FromBooks(books),
		Pagination: view.FromPagination(pagination),
	}, nil
}

// parsePositiveInt 解析正整数参数,空字符串返回默认值
func parsePositiveInt(name, raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperrors.Newf(apperrors.ErrCodeInvalidParams, "%s必须是大于0的整数", name)
	}
	return n, nil
}
