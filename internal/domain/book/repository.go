package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 所有方法都必须参与context中的事务(评论写操作和评分重算在同一事务中)
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书(不加载评论)
	// 如果不存在,返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByIDWithReviews 查找图书并加载评论,每条评论带评论者{id,name}
	FindByIDWithReviews(ctx context.Context, id uint) (*Book, error)

	// List 分页查询图书列表(每本书带评论)
	// 返回当前页数据和过滤后的总数
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// Search 按书名或作者模糊搜索(每本书带评论)
	Search(ctx context.Context, query string) ([]*Book, error)

	// UpdateAverageRating 写入重新计算后的平均评分
	// 只修改average_rating一列,不修改updated_at
	UpdateAverageRating(ctx context.Context, id uint, avg float64) error

	// ListIDs 返回全部图书ID(管理命令批量重算评分时使用)
	ListIDs(ctx context.Context) ([]uint, error)
}
