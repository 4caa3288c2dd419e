package book

import (
	"time"

	"github.com/xiebiao/bookreview/internal/domain/review"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Book是图书目录的核心实体,由登录用户创建,UserID记录创建者
// 2. AverageRating是派生字段,只能由rating.Aggregator根据评论重新计算,客户端不可写
// 3. CreatedAt创建后不可变
// 4. Reviews只在查询时按需加载(列表/详情),写操作不依赖它
type Book struct {
	ID            uint
	Title         string  // 书名(1-100个字符)
	Author        string  // 作者
	Genre         string  // 类别(精确匹配过滤)
	Description   string  // 图书描述
	UserID        uint    // 创建者用户ID
	AverageRating float64 // 平均评分(派生值,没有评论时为0)
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Reviews []*review.Review
}

// NewBook 创建新图书(工厂方法)
// 调用方需先通过Validate校验字段
func NewBook(title, author, genre, description string, userID uint) *Book {
	now := time.Now()
	return &Book{
		Title:         title,
		Author:        author,
		Genre:         genre,
		Description:   description,
		UserID:        userID,
		AverageRating: 0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsOwnedBy 检查图书是否由指定用户创建
func (b *Book) IsOwnedBy(userID uint) bool {
	return b.UserID == userID
}
