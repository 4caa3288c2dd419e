package review

import (
	"strings"
	"time"
)

// 评分范围
const (
	MinRating = 1
	MaxRating = 5
)

// Review 评论实体
// DDD设计说明:
// 1. 每个用户对同一本书最多一条评论(数据库唯一索引+领域服务预检查)
// 2. 评论的任何变更都会触发所属图书平均评分的重新计算
// 3. 状态流转:不存在 → 有效(Add) → 有效(Update) → 已删除(Delete,终态)
type Review struct {
	ID        uint
	Rating    int    // 评分(1-5)
	Text      string // 评论内容
	BookID    uint
	UserID    uint
	CreatedAt time.Time
	UpdatedAt time.Time

	// Reviewer 评论者公开信息,只在查询时加载
	Reviewer *Reviewer
}

// Reviewer 评论者公开信息
type Reviewer struct {
	ID   uint
	Name string
}

// Changes 评论更新内容,nil表示不修改该字段
type Changes struct {
	Rating *int
	Text   *string
}

// NewReview 创建新评论(工厂方法)
func NewReview(bookID, userID uint, rating int, text string) (*Review, error) {
	text = strings.TrimSpace(text)
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	if err := validateText(text); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Review{
		Rating:    rating,
		Text:      text,
		BookID:    bookID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsOwnedBy 检查评论是否属于指定用户
func (r *Review) IsOwnedBy(userID uint) bool {
	return r.UserID == userID
}

// Apply 应用更新内容(领域行为)
// 先校验全部字段,校验失败时实体保持不变
func (r *Review) Apply(c Changes) error {
	var text string
	if c.Rating != nil {
		if err := validateRating(*c.Rating); err != nil {
			return err
		}
	}
	if c.Text != nil {
		text = strings.TrimSpace(*c.Text)
		if err := validateText(text); err != nil {
			return err
		}
	}

	if c.Rating != nil {
		r.Rating = *c.Rating
	}
	if c.Text != nil {
		r.Text = text
	}
	r.UpdatedAt = time.Now()
	return nil
}

func validateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

func validateText(text string) error {
	if text == "" {
		return ErrEmptyText
	}
	return nil
}
