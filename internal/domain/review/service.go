package review

import (
	"context"
)

// Service 评论领域服务接口
// 设计说明:
// 1. 封装评论的业务规则:评分范围、内容必填、每人每书一条、只能改删自己的评论
// 2. 图书是否存在、评分重算、事务由application层编排
type Service interface {
	// ListByBook 查询某本书的评论
	ListByBook(ctx context.Context, bookID uint) ([]*Review, error)

	// Add 添加评论
	Add(ctx context.Context, bookID, userID uint, rating int, text string) (*Review, error)

	// Update 更新评论(只能更新自己的)
	Update(ctx context.Context, id, callerID uint, changes Changes) (*Review, error)

	// Delete 删除评论(只能删除自己的),返回被删除的评论
	Delete(ctx context.Context, id, callerID uint) (*Review, error)
}

type service struct {
	repo Repository
}

// NewService 创建评论领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// ListByBook 查询某本书的评论
// 图书不存在时返回空列表
func (s *service) ListByBook(ctx context.Context, bookID uint) ([]*Review, error) {
	return s.repo.ListByBook(ctx, bookID)
}

// Add 添加评论
// 业务规则:
// 1. 评分1-5,内容非空
// 2. 同一用户对同一本书只能评论一次(先查询,唯一索引兜底并发场景)
func (s *service) Add(ctx context.Context, bookID, userID uint, rating int, text string) (*Review, error) {
	// 1. 字段校验
	review, err := NewReview(bookID, userID, rating, text)
	if err != nil {
		return nil, err
	}

	// 2. 重复评论预检查
	exists, err := s.repo.ExistsByBookAndUser(ctx, bookID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	// 3. 持久化
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// Update 更新评论
func (s *service) Update(ctx context.Context, id, callerID uint, changes Changes) (*Review, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !review.IsOwnedBy(callerID) {
		return nil, ErrNotOwner
	}

	if err := review.Apply(changes); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// Delete 删除评论
func (s *service) Delete(ctx context.Context, id, callerID uint) (*Review, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !review.IsOwnedBy(callerID) {
		return nil, ErrNotOwner
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	return review, nil
}
