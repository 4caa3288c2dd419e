package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookreview/internal/domain/review"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// reviewRepository 评论仓储实现
// 设计说明:
// 1. 所有方法都通过dbFromContext参与事务
// 2. (book_id, user_id)唯一索引冲突转换为review.ErrAlreadyReviewed
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评论仓储
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepository{db: db}
}

// Create 创建评论
func (r *reviewRepository) Create(ctx context.Context, rv *review.Review) error {
	model := &ReviewModel{
		Rating: rv.Rating,
		Text:   rv.Text,
		BookID: rv.BookID,
		UserID: rv.UserID,
	}

	if err := dbFromContext(ctx, r.db).Omit(clause.Associations).Create(model).Error; err != nil {
		// 预检查之后仍可能并发插入，由唯一索引兜底
		if isDuplicateError(err) {
			return review.ErrAlreadyReviewed
		}
		return apperrors.WrapDatabase(err, "创建评论失败")
	}

	rv.ID = model.ID
	rv.CreatedAt = model.CreatedAt
	rv.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找评论
func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*review.Review, error) {
	var model ReviewModel
	if err := dbFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, review.ErrReviewNotFound
		}
		return nil, apperrors.WrapDatabase(err, "查询评论失败")
	}

	return toReviewEntity(&model), nil
}

// ExistsByBookAndUser 该用户是否已评论过该书
func (r *reviewRepository) ExistsByBookAndUser(ctx context.Context, bookID, userID uint) (bool, error) {
	var count int64
	err := dbFromContext(ctx, r.db).
		Model(&ReviewModel{}).
		Where("book_id = ? AND user_id = ?", bookID, userID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.WrapDatabase(err, "查询评论失败")
	}
	return count > 0, nil
}

// ListByBook 查询某本书的评论(带评论者)
func (r *reviewRepository) ListByBook(ctx context.Context, bookID uint) ([]*review.Review, error) {
	var models []ReviewModel
	err := orderReviews(dbFromContext(ctx, r.db).Where("book_id = ?", bookID)).
		Preload("User", selectReviewer).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.WrapDatabase(err, "查询评论列表失败")
	}

	reviews := make([]*review.Review, len(models))
	for i := range models {
		reviews[i] = toReviewEntity(&models[i])
	}
	return reviews, nil
}

// ListRatingsByBook 查询某本书的全部评分
func (r *reviewRepository) ListRatingsByBook(ctx context.Context, bookID uint) ([]int, error) {
	var ratings []int
	err := dbFromContext(ctx, r.db).
		Model(&ReviewModel{}).
		Where("book_id = ?", bookID).
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, apperrors.WrapDatabase(err, "查询评分失败")
	}
	return ratings, nil
}

// Update 更新评论的评分和内容
func (r *reviewRepository) Update(ctx context.Context, rv *review.Review) error {
	result := dbFromContext(ctx, r.db).
		Model(&ReviewModel{ID: rv.ID}).
		Updates(map[string]interface{}{
			"rating":     rv.Rating,
			"text":       rv.Text,
			"updated_at": rv.UpdatedAt,
		})
	if result.Error != nil {
		return apperrors.WrapDatabase(result.Error, "更新评论失败")
	}
	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}
	return nil
}

// Delete 删除评论
func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	result := dbFromContext(ctx, r.db).Delete(&ReviewModel{}, id)
	if result.Error != nil {
		return apperrors.WrapDatabase(result.Error, "删除评论失败")
	}
	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}
	return nil
}

// toReviewEntity GORM模型 → 领域实体
func toReviewEntity(model *ReviewModel) *review.Review {
	rv := &review.Review{
		ID:        model.ID,
		Rating:    model.Rating,
		Text:      model.Text,
		BookID:    model.BookID,
		UserID:    model.UserID,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.User != nil {
		rv.Reviewer = &review.Reviewer{ID: model.User.ID, Name: model.User.Name}
	}
	return rv
}
