package book

import (
	"math"
	"strings"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// 分页默认值与上限
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxOffset 偏移量上限，(page-1)*limit超过它按参数错误处理
	MaxOffset = math.MaxInt32
)

// SortField 可排序字段
// 由仓储层映射为具体列名,避免把用户输入直接拼进ORDER BY
type SortField string

const (
	SortByCreatedAt     SortField = "createdAt"
	SortByTitle         SortField = "title"
	SortByAuthor        SortField = "author"
	SortByGenre         SortField = "genre"
	SortByAverageRating SortField = "averageRating"
)

// sortAliases 允许camelCase和snake_case两种写法
var sortAliases = map[string]SortField{
	"createdat":      SortByCreatedAt,
	"created_at":     SortByCreatedAt,
	"title":          SortByTitle,
	"author":         SortByAuthor,
	"genre":          SortByGenre,
	"averagerating":  SortByAverageRating,
	"average_rating": SortByAverageRating,
}

// ParseSortField 解析排序字段,空字符串使用默认值createdAt
func ParseSortField(s string) (SortField, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortByCreatedAt, nil
	}
	field, ok := sortAliases[strings.ToLower(s)]
	if !ok {
		return "", apperrors.Newf(apperrors.ErrCodeInvalidParams, "不支持的排序字段: %s", s)
	}
	return field, nil
}

// ParseOrder 解析排序方向(asc/desc,忽略大小写),空字符串默认desc
// 返回值为true表示降序
func ParseOrder(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc":
		return true, nil
	case "asc":
		return false, nil
	default:
		return false, apperrors.Newf(apperrors.ErrCodeInvalidParams, "不支持的排序方向: %s", s)
	}
}

// ListParams 列表查询参数
type ListParams struct {
	Author string    // 作者子串匹配
	Genre  string    // 类别精确匹配
	Page   int       // 页码(从1开始)
	Limit  int       // 每页数量
	Sort   SortField // 排序字段
	Desc   bool      // 是否降序
}

// Validate 校验分页参数
func (p ListParams) Validate() error {
	if p.Page < 1 {
		return apperrors.Validation("page必须是大于0的整数")
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return apperrors.Newf(apperrors.ErrCodeInvalidParams, "limit必须在1-%d之间", MaxLimit)
	}
	if p.Page-1 > MaxOffset/p.Limit {
		return apperrors.Newf(apperrors.ErrCodeInvalidParams, "page过大: %d", p.Page)
	}
	return nil
}

// Offset 计算偏移量
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination 分页信息
type Pagination struct {
	Total   int64
	Limit   int
	Page    int
	Pages   int
	HasMore bool
}

// NewPagination 根据总数和分页参数计算分页信息
// Pages = ceil(total/limit),HasMore = page < pages
func NewPagination(total int64, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{
		Total:   total,
		Limit:   limit,
		Page:    page,
		Pages:   pages,
		HasMore: page < pages,
	}
}
