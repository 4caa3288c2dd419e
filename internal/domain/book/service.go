package book

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 封装图书的业务规则校验(书名长度、必填字段、分页参数)
// 2. 不依赖具体的Repository实现(依赖倒置)
type Service interface {
	// CreateBook 创建图书
	// 业务规则:
	// - 书名1-100个字符
	// - 作者、类别、描述必填(去除首尾空白后非空)
	// - 平均评分初始为0
	CreateBook(ctx context.Context, title, author, genre, description string, userID uint) (*Book, error)

	// GetBook 获取图书详情(含评论和评论者)
	GetBook(ctx context.Context, id uint) (*Book, error)

	// ListBooks 分页查询图书列表
	ListBooks(ctx context.Context, params ListParams) ([]*Book, Pagination, error)

	// SearchBooks 按书名或作者搜索
	SearchBooks(ctx context.Context, query string) ([]*Book, error)
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// CreateBook 创建图书
func (s *service) CreateBook(ctx context.Context, title, author, genre, description string, userID uint) (*Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	genre = strings.TrimSpace(genre)
	description = strings.TrimSpace(description)

	if err := validateFields(title, author, genre, description); err != nil {
		return nil, err
	}

	book := NewBook(title, author, genre, description, userID)
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// GetBook 获取图书详情
func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByIDWithReviews(ctx, id)
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, Pagination, error) {
	if err := params.Validate(); err != nil {
		return nil, Pagination{}, err
	}

	books, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, Pagination{}, err
	}

	return books, NewPagination(total, params.Page, params.Limit), nil
}

// SearchBooks 按书名或作者搜索
func (s *service) SearchBooks(ctx context.Context, query string) ([]*Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	return s.repo.Search(ctx, query)
}

// validateFields 校验图书字段
func validateFields(title, author, genre, description string) error {
	if n := utf8.RuneCountInString(title); n < 1 || n > 100 {
		return ErrInvalidTitle
	}
	if author == "" {
		return ErrEmptyAuthor
	}
	if genre == "" {
		return ErrEmptyGenre
	}
	if description == "" {
		return ErrEmptyDescription
	}
	return nil
}
