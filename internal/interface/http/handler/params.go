package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// pathID 解析路径中的ID参数，非正整数返回参数错误
func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Newf(apperrors.ErrCodeInvalidParams, "无效的%s: %s", name, c.Param(name))
	}
	return uint(id), nil
}

// bindError 参数绑定失败（JSON格式错误、类型不匹配、必填字段缺失）
func bindError(err error) error {
	return apperrors.Newf(apperrors.ErrCodeBindError, "参数错误: %v", err)
}
