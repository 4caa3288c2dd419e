package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// Response 统一响应结构
// 设计说明：
// 1. Success表示请求是否成功，客户端只需判断这一个字段
// 2. 列表接口带Count（当前页条数），分页接口再带Pagination
// 3. 失败时只有Error字段，HTTP状态码由AppError.HTTPStatus()决定
type Response struct {
	Success    bool        `json:"success"`
	Count      *int        `json:"count,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Pagination 分页信息
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Page    int   `json:"page"`
	Pages   int   `json:"pages"`
	HasMore bool  `json:"hasMore"`
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// Created 创建成功响应（201）
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// List 列表响应（200，带count）
func List(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, Response{Success: true, Count: &count, Data: data})
}

// Page 分页列表响应（200，带count和pagination）
func Page(c *gin.Context, data interface{}, count int, pagination Pagination) {
	c.JSON(http.StatusOK, Response{Success: true, Count: &count, Pagination: &pagination, Data: data})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	err := reviewUseCase.Execute(...)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
//
// 服务端错误（5xxxx）返回带底层原因的完整信息，并记录日志
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	message := appErr.Message
	if appErr.Code >= apperrors.ErrCodeInternal {
		message = appErr.Error()
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.Int("code", appErr.Code),
			slog.Any("error", appErr.Err),
		)
	}

	c.AbortWithStatusJSON(appErr.HTTPStatus(), Response{Success: false, Error: message})
}

// ErrorWithStatus 自定义状态码和消息（中间件使用）
func ErrorWithStatus(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Error: message})
}
