// Package view 应用层输出DTO
// 图书和评论两个用例包都要输出评论，公共的JSON结构放在这里
package view

import (
	"time"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/domain/user"
)

// Book 图书
type Book struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Genre         string    `json:"genre"`
	Description   string    `json:"description"`
	UserID        uint      `json:"userId"`
	AverageRating float64   `json:"averageRating"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Reviews       []Review  `json:"reviews"`
}

// Review 评论
type Review struct {
	ID        uint      `json:"id"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	BookID    uint      `json:"bookId"`
	UserID    uint      `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	User      *Reviewer `json:"user,omitempty"`
}

// Reviewer 评论者（只有id和name）
type Reviewer struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// User 当前用户（不含密码）
type User struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Pagination 分页信息
type Pagination struct {
	Total   int64
	Limit   int
	Page    int
	Pages   int
	HasMore bool
}

// FromBook 领域实体 → DTO
// 没有评论时reviews输出为[]
func FromBook(b *book.Book) Book {
	return Book{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Genre:         b.Genre,
		Description:   b.Description,
		UserID:        b.UserID,
		AverageRating: b.AverageRating,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
		Reviews:       FromReviews(b.Reviews),
	}
}

// FromBooks 批量转换
func FromBooks(books []*book.Book) []Book {
	out := make([]Book, len(books))
	for i, b := range books {
		out[i] = FromBook(b)
	}
	return out
}

// FromReview 领域实体 → DTO
func FromReview(r *review.Review) Review {
	v := Review{
		ID:        r.ID,
		Rating:    r.Rating,
		Text:      r.Text,
		BookID:    r.BookID,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Reviewer != nil {
		v.User = &Reviewer{ID: r.Reviewer.ID, Name: r.Reviewer.Name}
	}
	return v
}

// FromReviews 批量转换，nil输入返回空切片
func FromReviews(reviews []*review.Review) []Review {
	out := make([]Review, len(reviews))
	for i, r := range reviews {
		out[i] = FromReview(r)
	}
	return out
}

// FromUser 领域实体 → DTO
func FromUser(u *user.User) User {
	return User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// FromPagination 领域分页 → DTO
func FromPagination(p book.Pagination) Pagination {
	return Pagination{
		Total:   p.Total,
		Limit:   p.Limit,
		Page:    p.Page,
		Pages:   p.Pages,
		HasMore: p.HasMore,
	}
}
