package book

import (
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrInvalidTitle 书名不合法
	ErrInvalidTitle = apperrors.New(apperrors.ErrCodeInvalidParams, "书名不能为空且不能超过100个字符")

	// ErrEmptyAuthor 作者为空
	ErrEmptyAuthor = apperrors.New(apperrors.ErrCodeInvalidParams, "请填写作者")

	// ErrEmptyGenre 类别为空
	ErrEmptyGenre = apperrors.New(apperrors.ErrCodeInvalidParams, "请填写图书类别")

	// ErrEmptyDescription 描述为空
	ErrEmptyDescription = apperrors.New(apperrors.ErrCodeInvalidParams, "请填写图书描述")

	// ErrEmptyQuery 搜索关键词为空
	ErrEmptyQuery = apperrors.New(apperrors.ErrCodeInvalidParams, "请提供搜索关键词")
)
