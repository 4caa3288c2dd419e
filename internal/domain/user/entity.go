package user

import (
	"time"
)

// User 用户实体（聚合根）
// DDD设计说明：
// 1. 用户是图书和评论的"所有者"，图书/评论只保存UserID
// 2. Password为bcrypt哈希值，任何对外DTO都不包含该字段
// 3. 领域实体不依赖GORM tag（infrastructure层负责映射）
type User struct {
	ID        uint
	Name      string
	Email     string
	Password  string // bcrypt哈希值
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(name, email, hashedPassword string) *User {
	now := time.Now()
	return &User{
		Name:      name,
		Email:     email,
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PublicProfile 对外公开的身份信息（评论列表中展示评论者）
type PublicProfile struct {
	ID   uint
	Name string
}

// Profile 返回公开身份信息
func (u *User) Profile() PublicProfile {
	return PublicProfile{ID: u.ID, Name: u.Name}
}
