package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// sortColumns 排序字段 → 列名
// 只有白名单中的列能进入ORDER BY
var sortColumns = map[book.SortField]string{
	book.SortByCreatedAt:     "created_at",
	book.SortByTitle:         "title",
	book.SortByAuthor:        "author",
	book.SortByGenre:         "genre",
	book.SortByAverageRating: "average_rating",
}

// bookRepository 图书仓储实现
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	// 1. 领域实体 → GORM模型
	model := &BookModel{
		Title:         b.Title,
		Author:        b.Author,
		Genre:         b.Genre,
		Description:   b.Description,
		UserID:        b.UserID,
		AverageRating: b.AverageRating,
	}

	// 2. 插入数据库
	if err := dbFromContext(ctx, r.db).Omit(clause.Associations).Create(model).Error; err != nil {
		return apperrors.WrapDatabase(err, "创建图书失败")
	}

	// 3. 回填自增ID
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := dbFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.WrapDatabase(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// FindByIDWithReviews 查找图书并加载评论和评论者
// 评论者只查询id和name两列，不会把邮箱、密码带出来
func (r *bookRepository) FindByIDWithReviews(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := dbFromContext(ctx, r.db).
		Preload("Reviews", orderReviews).
		Preload("Reviews.User", selectReviewer).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.WrapDatabase(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// List 分页查询图书列表
// 学习要点：
// 1. 统计总数和查询当前页使用两个独立的查询链，避免Count污染后续查询
// 2. 排序后追加id作为第二排序键，保证分页结果稳定
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	var total int64

	// 1. 查询总数
	if err := r.filtered(ctx, params).Count(&total).Error; err != nil {
		return nil, 0, apperrors.WrapDatabase(err, "查询图书总数失败")
	}

	// 2. 排序
	column, ok := sortColumns[params.Sort]
	if !ok {
		column = sortColumns[book.SortByCreatedAt]
	}

	// 3. 分页查询（带评论）
	var models []BookModel
	err := r.filtered(ctx, params).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: params.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: params.Desc}).
		Limit(params.Limit).
		Offset(params.Offset()).
		Preload("Reviews", orderReviews).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.WrapDatabase(err, "查询图书列表失败")
	}

	return toBookEntities(models), total, nil
}

// filtered 构建带过滤条件的查询
// author子串匹配，genre精确匹配
func (r *bookRepository) filtered(ctx context.Context, params book.ListParams) *gorm.DB {
	query := dbFromContext(ctx, r.db).Model(&BookModel{})
	if params.Author != "" {
		query = query.Where("author LIKE ? ESCAPE '!'", containsPattern(params.Author))
	}
	if params.Genre != "" {
		query = query.Where("genre = ?", params.Genre)
	}
	return query
}

// Search 按书名或作者模糊搜索（带评论）
// 大小写是否敏感取决于数据库排序规则
func (r *bookRepository) Search(ctx context.Context, query string) ([]*book.Book, error) {
	keyword := containsPattern(query)

	var models []BookModel
	err := dbFromContext(ctx, r.db).
		Where("title LIKE ? ESCAPE '!' OR author LIKE ? ESCAPE '!'", keyword, keyword).
		Order("created_at DESC").
		Order("id DESC").
		Preload("Reviews", orderReviews).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.WrapDatabase(err, "搜索图书失败")
	}

	return toBookEntities(models), nil
}

// UpdateAverageRating 写入平均评分
// 使用UpdateColumn：只改这一列，不触发updated_at
func (r *bookRepository) UpdateAverageRating(ctx context.Context, id uint, avg float64) error {
	err := dbFromContext(ctx, r.db).
		Model(&BookModel{}).
		Where("id = ?", id).
		UpdateColumn("average_rating", avg).Error
	if err != nil {
		return apperrors.WrapDatabase(err, "更新平均评分失败")
	}
	return nil
}

// ListIDs 返回全部图书ID
func (r *bookRepository) ListIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := dbFromContext(ctx, r.db).Model(&BookModel{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, apperrors.WrapDatabase(err, "查询图书ID失败")
	}
	return ids, nil
}

// =========================================
// 辅助函数:预加载与模型转换
// =========================================

// orderReviews 评论按创建时间升序
func orderReviews(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}

// selectReviewer 评论者只取公开字段
func selectReviewer(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name")
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	b := &book.Book{
		ID:            model.ID,
		Title:         model.Title,
		Author:        model.Author,
		Genre:         model.Genre,
		Description:   model.Description,
		UserID:        model.UserID,
		AverageRating: model.AverageRating,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}

	if model.Reviews != nil {
		b.Reviews = make([]*review.Review, len(model.Reviews))
		for i := range model.Reviews {
			b.Reviews[i] = toReviewEntity(&model.Reviews[i])
		}
	}

	return b
}

func toBookEntities(models []BookModel) []*book.Book {
	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books
}
