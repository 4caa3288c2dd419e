package review

import (
	"context"
)

// Repository 评论仓储接口
// 设计说明:
// 1. 所有方法都从context获取事务DB,保证"评论写操作+评分重算"原子提交
// 2. (book_id, user_id)唯一索引冲突时Create返回ErrAlreadyReviewed
type Repository interface {
	// Create 创建评论
	Create(ctx context.Context, review *Review) error

	// FindByID 根据ID查找评论
	// 如果不存在,返回ErrReviewNotFound
	FindByID(ctx context.Context, id uint) (*Review, error)

	// ExistsByBookAndUser 该用户是否已评论过该书
	ExistsByBookAndUser(ctx context.Context, bookID, userID uint) (bool, error)

	// ListByBook 查询某本书的全部评论(带评论者),按创建时间升序
	ListByBook(ctx context.Context, bookID uint) ([]*Review, error)

	// ListRatingsByBook 查询某本书的全部评分(评分聚合使用)
	ListRatingsByBook(ctx context.Context, bookID uint) ([]int, error)

	// Update 更新评论的评分和内容
	Update(ctx context.Context, review *Review) error

	// Delete 删除评论(物理删除,删除后同一用户可以重新评论)
	Delete(ctx context.Context, id uint) error
}
