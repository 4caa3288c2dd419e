package review

import (
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// 评论领域错误定义
var (
	// ErrReviewNotFound 评论不存在
	ErrReviewNotFound = apperrors.New(apperrors.ErrCodeReviewNotFound, "评论不存在")

	// ErrAlreadyReviewed 同一用户重复评论同一本书
	ErrAlreadyReviewed = apperrors.New(apperrors.ErrCodeAlreadyReviewed, "您已经评论过这本书")

	// ErrNotOwner 修改/删除他人评论
	ErrNotOwner = apperrors.New(apperrors.ErrCodeForbidden, "无权修改此评论")

	// ErrInvalidRating 评分超出范围
	ErrInvalidRating = apperrors.New(apperrors.ErrCodeInvalidParams, "评分必须是1-5之间的整数")

	// ErrEmptyText 评论内容为空
	ErrEmptyText = apperrors.New(apperrors.ErrCodeInvalidParams, "请填写评论内容")
)
