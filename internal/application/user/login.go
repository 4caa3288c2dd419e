package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/xiebiao/bookreview/internal/application/view"
	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookreview/pkg/jwt"
)

// AuthResponse 注册/登录响应
type AuthResponse struct {
	User  view.User `json:"user"`
	Token string    `json:"token"`
}

// TokenIssuer 签发Token并保存会话（注册和登录共用）
type TokenIssuer struct {
	jwtManager   *jwt.Manager
	sessionStore redis.SessionStore
	log          *slog.Logger
}

// NewTokenIssuer 创建Token签发器
func NewTokenIssuer(jwtManager *jwt.Manager, sessionStore redis.SessionStore, log *slog.Logger) *TokenIssuer {
	return &TokenIssuer{
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		log:          log,
	}
}

// Issue 签发Token
// 会话保存失败不影响登录，只记录日志
func (i *TokenIssuer) Issue(ctx context.Context, u *user.User, clientIP string) (string, error) {
	token, err := i.jwtManager.GenerateToken(u.ID, u.Email, u.Name)
	if err != nil {
		return "", err
	}

	sessionData := map[string]interface{}{
		"user_id":  u.ID,
		"email":    u.Email,
		"name":     u.Name,
		"login_at": time.Now().Unix(),
		"ip":       clientIP,
	}
	if err := i.sessionStore.SaveSession(ctx, u.ID, sessionData, time.Until(token.ExpiresAt)); err != nil {
		i.log.WarnContext(ctx, "保存会话失败", slog.Uint64("user_id", uint64(u.ID)), slog.Any("error", err))
	}

	return token.AccessToken, nil
}

// LoginUseCase 用户登录用例
// 设计说明：
// 1. 验证邮箱密码（邮箱不存在和密码错误返回同一个错误）
// 2. 签发JWT并保存会话
type LoginUseCase struct {
	userService user.Service
	issuer      *TokenIssuer
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(userService user.Service, issuer *TokenIssuer) *LoginUseCase {
	return &LoginUseCase{
		userService: userService,
		issuer:      issuer,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
	ClientIP string
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := uc.userService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, err := uc.issuer.Issue(ctx, u, req.ClientIP)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: view.FromUser(u), Token: token}, nil
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	jwtManager   *jwt.Manager
	sessionStore redis.SessionStore
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(jwtManager *jwt.Manager, sessionStore redis.SessionStore) *LogoutUseCase {
	return &LogoutUseCase{jwtManager: jwtManager, sessionStore: sessionStore}
}

// Execute 执行登出
// 1. 删除会话
// 2. Token加入黑名单，TTL为Token剩余有效期
func (uc *LogoutUseCase) Execute(ctx context.Context, claims *jwt.Claims, accessToken string) error {
	if err := uc.sessionStore.DeleteSession(ctx, claims.UserID); err != nil {
		return err
	}
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, uc.jwtManager.RemainingTTL(claims))
}

// GetCurrentUserUseCase 获取当前用户用例
type GetCurrentUserUseCase struct {
	userService user.Service
}

// NewGetCurrentUserUseCase 创建获取当前用户用例
func NewGetCurrentUserUseCase(userService user.Service) *GetCurrentUserUseCase {
	return &GetCurrentUserUseCase{userService: userService}
}

// Execute 根据Token中的用户ID查询用户
func (uc *GetCurrentUserUseCase) Execute(ctx context.Context, userID uint) (*view.User, error) {
	u, err := uc.userService.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	v := view.FromUser(u)
	return &v, nil
}
