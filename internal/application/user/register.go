package user

import (
	"context"

	"github.com/xiebiao/bookreview/internal/application/view"
	"github.com/xiebiao/bookreview/internal/domain/user"
)

// RegisterUseCase 用户注册用例
// 设计说明：
// 1. Application层负责用例编排：注册 → 签发Token → 记录会话
// 2. 注册成功直接返回Token，客户端无需再调用登录接口
type RegisterUseCase struct {
	userService user.Service
	issuer      *TokenIssuer
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service, issuer *TokenIssuer) *RegisterUseCase {
	return &RegisterUseCase{
		userService: userService,
		issuer:      issuer,
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	ClientIP string
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	// 1. 调用领域服务执行注册
	u, err := uc.userService.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	// 2. 签发Token并记录会话
	token, err := uc.issuer.Issue(ctx, u, req.ClientIP)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: view.FromUser(u), Token: token}, nil
}
