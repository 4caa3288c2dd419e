package database

import (
	"time"
)

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:50;not null;comment:昵称"`
	Email     string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string    `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. author/genre单列索引服务于列表过滤，created_at索引服务于默认排序
// 2. average_rating由评分聚合器维护，默认0
// 3. Reviews是一对多关联，AutoMigrate据此创建reviews.book_id外键
type BookModel struct {
	ID            uint          `gorm:"primaryKey"`
	Title         string        `gorm:"size:100;not null;index;comment:书名"`
	Author        string        `gorm:"size:100;not null;index;comment:作者"`
	Genre         string        `gorm:"size:50;not null;index;comment:类别"`
	Description   string        `gorm:"type:text;not null;comment:图书描述"`
	UserID        uint          `gorm:"index;not null;comment:创建者用户ID"`
	User          *UserModel    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	AverageRating float64       `gorm:"not null;default:0;comment:平均评分"`
	Reviews       []ReviewModel `gorm:"foreignKey:BookID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt     time.Time     `gorm:"index;comment:创建时间"`
	UpdatedAt     time.Time     `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// ReviewModel GORM评论模型
// 教学要点:
// 1. (book_id, user_id)复合唯一索引保证每人每书一条评论，并发重复提交由它兜底
// 2. 不使用软删除：删除后同一用户可以重新评论，软删除行会占住唯一索引
type ReviewModel struct {
	ID        uint       `gorm:"primaryKey"`
	Rating    int        `gorm:"not null;comment:评分(1-5)"`
	Text      string     `gorm:"type:text;not null;comment:评论内容"`
	BookID    uint       `gorm:"not null;uniqueIndex:idx_reviews_book_user,priority:1;comment:图书ID"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_reviews_book_user,priority:2;index;comment:评论者用户ID"`
	User      *UserModel `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time  `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (ReviewModel) TableName() string {
	return "reviews"
}
