package dto

import "github.com/xiebiao/bookreview/internal/application/view"

// RegisterRequest HTTP层注册请求
// binding只做格式校验，长度等业务规则由领域服务校验
type RegisterRequest struct {
	Name     string `json:"name" binding:"required" example:"张三"`
	Email    string `json:"email" binding:"required" example:"zhangsan@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// LoginRequest HTTP层登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"zhangsan@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	User  view.User `json:"user"`
	Token string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// Empty 空对象（删除、登出成功时data为{}）
type Empty struct{}
