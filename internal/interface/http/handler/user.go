package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/bookreview/internal/application/user"
	"github.com/xiebiao/bookreview/internal/interface/http/dto"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
	"github.com/xiebiao/bookreview/pkg/response"
)

// UserHandler 用户HTTP处理器
// 设计说明：
// 1. Handler只负责HTTP相关的事情：解析请求、调用应用层、返回响应
// 2. 不包含业务逻辑（业务逻辑在domain和application层）
type UserHandler struct {
	registerUseCase       *appuser.RegisterUseCase
	loginUseCase          *appuser.LoginUseCase
	logoutUseCase         *appuser.LogoutUseCase
	getCurrentUserUseCase *appuser.GetCurrentUserUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	registerUseCase *appuser.RegisterUseCase,
	loginUseCase *appuser.LoginUseCase,
	logoutUseCase *appuser.LogoutUseCase,
	getCurrentUserUseCase *appuser.GetCurrentUserUseCase,
) *UserHandler {
	return &UserHandler{
		registerUseCase:       registerUseCase,
		loginUseCase:          loginUseCase,
		logoutUseCase:         logoutUseCase,
		getCurrentUserUseCase: getCurrentUserUseCase,
	}
}

// Register 用户注册
// @Summary      用户注册
// @Description  创建账号并直接返回Token
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      201 {object} response.Response{data=dto.AuthResponse} "注册成功"
// @Failure      400 {object} response.Response "参数错误或邮箱已注册"
// @Router       /api/v1/auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	// 1. 绑定参数
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	// 2. 调用应用层用例
	result, err := h.registerUseCase.Execute(c.Request.Context(), appuser.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// 3. 应用层DTO → HTTP层DTO
	response.Created(c, &dto.AuthResponse{User: result.User, Token: result.Token})
}

// Login 用户登录
// @Summary      用户登录
// @Description  验证邮箱密码，返回JWT Token
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=dto.AuthResponse} "登录成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "邮箱或密码错误"
// @Router       /api/v1/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appuser.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.AuthResponse{User: result.User, Token: result.Token})
}

// Me 当前登录用户
// @Summary      当前用户
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=view.User}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/auth/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	result, err := h.getCurrentUserUseCase.Execute(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Logout 登出
// @Summary      登出
// @Description  当前Token加入黑名单直到过期
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dto.Empty}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.logoutUseCase.Execute(c.Request.Context(), claims, middleware.GetToken(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.Empty{})
}
