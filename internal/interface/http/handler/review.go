package handler

import (
	"github.com/gin-gonic/gin"

	appreview "github.com/xiebiao/bookreview/internal/application/review"
	"github.com/xiebiao/bookreview/internal/interface/http/dto"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	"github.com/xiebiao/bookreview/pkg/response"
)

// ReviewHandler 评论HTTP处理器
// 所有写操作在应用层同一事务内完成平均评分重算，响应返回时评分已是最新值
type ReviewHandler struct {
	listReviewsUseCase  *appreview.ListReviewsUseCase
	addReviewUseCase    *appreview.AddReviewUseCase
	updateReviewUseCase *appreview.UpdateReviewUseCase
	deleteReviewUseCase *appreview.DeleteReviewUseCase
}

// NewReviewHandler 创建评论处理器
func NewReviewHandler(
	listReviewsUseCase *appreview.ListReviewsUseCase,
	addReviewUseCase *appreview.AddReviewUseCase,
	updateReviewUseCase *appreview.UpdateReviewUseCase,
	deleteReviewUseCase *appreview.DeleteReviewUseCase,
) *ReviewHandler {
	return &ReviewHandler{
		listReviewsUseCase:  listReviewsUseCase,
		addReviewUseCase:    addReviewUseCase,
		updateReviewUseCase: updateReviewUseCase,
		deleteReviewUseCase: deleteReviewUseCase,
	}
}

// ListReviews 图书评论列表
// @Summary      图书评论列表
// @Description  评论带评论者id和name；图书不存在时返回空列表
// @Tags         评论
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=[]view.Review}
// @Failure      400 {object} response.Response "ID格式错误"
// @Router       /api/v1/books/{id}/reviews [get]
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	bookID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	reviews, err := h.listReviewsUseCase.Execute(c.Request.Context(), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, reviews, len(reviews))
}

// AddReview 添加评论
// @Summary      添加评论
// @Description  每个用户对同一本书只能评论一次，评分1-5
// @Tags         评论
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                  true "图书ID"
// @Param        request body dto.AddReviewRequest true "评论内容"
// @Success      201 {object} response.Response{data=view.Review}
// @Failure      400 {object} response.Response "参数错误或已评论过"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/reviews [post]
func (h *ReviewHandler) AddReview(c *gin.Context) {
	bookID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.addReviewUseCase.Execute(c.Request.Context(), appreview.AddReviewRequest{
		BookID: bookID,
		UserID: middleware.GetUserID(c),
		Rating: req.Rating,
		Text:   req.Text,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateReview 更新评论
// @Summary      更新评论
// @Description  只能更新自己的评论，未传的字段保持不变
// @Tags         评论
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                     true "评论ID"
// @Param        request body dto.UpdateReviewRequest true "更新内容"
// @Success      200 {object} response.Response{data=view.Review}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录或不是自己的评论"
// @Failure      404 {object} response.Response "评论不存在"
// @Router       /api/v1/reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	reviewID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.updateReviewUseCase.Execute(c.Request.Context(), appreview.UpdateReviewRequest{
		ReviewID: reviewID,
		CallerID: middleware.GetUserID(c),
		Rating:   req.Rating,
		Text:     req.Text,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteReview 删除评论
// @Summary      删除评论
// @Description  只能删除自己的评论，删除后重算图书平均评分
// @Tags         评论
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "评论ID"
// @Success      200 {object} response.Response{data=dto.Empty}
// @Failure      401 {object} response.Response "未登录或不是自己的评论"
// @Failure      404 {object} response.Response "评论不存在"
// @Router       /api/v1/reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	reviewID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.deleteReviewUseCase.Execute(c.Request.Context(), reviewID, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.Empty{})
}
