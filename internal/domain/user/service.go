package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// Service 用户领域服务
// 设计说明：
// 1. 负责注册时的规则校验和密码加密、登录时的密码比对
// 2. 依赖Repository接口，不依赖具体实现
type Service interface {
	// Register 用户注册
	Register(ctx context.Context, name, email, password string) (*User, error)

	// Authenticate 校验邮箱密码，返回用户
	Authenticate(ctx context.Context, email, password string) (*User, error)

	// GetByID 根据ID获取用户
	GetByID(ctx context.Context, id uint) (*User, error)
}

// BcryptCost 密码哈希成本
// 测试中可调低以加快速度
var BcryptCost = 12

type service struct {
	repo Repository
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Register 用户注册
// 业务规则：
// 1. 昵称2-50个字符
// 2. 邮箱格式合法
// 3. 密码6-64位
// 4. 邮箱唯一性由数据库UNIQUE索引保证
func (s *service) Register(ctx context.Context, name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
		return nil, apperrors.Validation("昵称长度应为2-50个字符")
	}
	if !isValidEmail(email) {
		return nil, apperrors.Validation("邮箱格式不正确")
	}
	if len(password) < 6 || len(password) > 64 {
		return nil, apperrors.Validation("密码长度应为6-64位")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	user := NewUser(name, email, string(hashed))
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate 校验邮箱密码
// 邮箱不存在和密码错误返回同一个错误，避免暴露账号是否存在
func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, apperrors.Wrap(err, "密码验证失败")
	}

	return user, nil
}

// GetByID 根据ID获取用户
func (s *service) GetByID(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// isValidEmail 邮箱格式校验
func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email, ".")
}
