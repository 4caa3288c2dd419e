package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookreview/internal/application/book"
	"github.com/xiebiao/bookreview/internal/interface/http/dto"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	"github.com/xiebiao/bookreview/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	createBookUseCase  *appbook.CreateBookUseCase
	getBookUseCase     *appbook.GetBookUseCase
	listBooksUseCase   *appbook.ListBooksUseCase
	searchBooksUseCase *appbook.SearchBooksUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	createBookUseCase *appbook.CreateBookUseCase,
	getBookUseCase *appbook.GetBookUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
	searchBooksUseCase *appbook.SearchBooksUseCase,
) *BookHandler {
	return &BookHandler{
		createBookUseCase:  createBookUseCase,
		getBookUseCase:     getBookUseCase,
		listBooksUseCase:   listBooksUseCase,
		searchBooksUseCase: searchBooksUseCase,
	}
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  按作者（子串）、类别（精确）过滤，分页排序，每本书带评论
// @Tags         图书
// @Produce      json
// @Param        author query string false "作者（子串匹配）"
// @Param        genre  query string false "类别（精确匹配）"
// @Param        page   query int    false "页码" default(1)
// @Param        limit  query int    false "每页数量(1-100)" default(10)
// @Param        sort   query string false "排序字段" Enums(createdAt,title,author,genre,averageRating) default(createdAt)
// @Param        order  query string false "排序方向" Enums(asc,desc) default(desc)
// @Success      200 {object} response.Response{data=[]view.Book,pagination=response.Pagination}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var q dto.ListBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.listBooksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Author: q.Author,
		Genre:  q.Genre,
		Page:   q.Page,
		Limit:  q.Limit,
		Sort:   q.Sort,
		Order:  q.Order,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	p := result.Pagination
	response.Page(c, result.Books, len(result.Books), response.Pagination{
		Total:   p.Total,
		Limit:   p.Limit,
		Page:    p.Page,
		Pages:   p.Pages,
		HasMore: p.HasMore,
	})
}

// GetBook 图书详情
// @Summary      图书详情
// @Description  返回图书及其评论，每条评论带评论者id和name
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=view.Book}
// @Failure      400 {object} response.Response "ID格式错误"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.getBookUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SearchBooks 搜索图书
// @Summary      搜索图书
// @Description  关键词匹配书名或作者
// @Tags         图书
// @Produce      json
// @Param        query query string true "关键词"
// @Success      200 {object} response.Response{data=[]view.Book}
// @Failure      400 {object} response.Response "缺少关键词"
// @Router       /api/v1/books/search [get]
func (h *BookHandler) SearchBooks(c *gin.Context) {
	var q dto.SearchBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	books, err := h.searchBooksUseCase.Execute(c.Request.Context(), q.Query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, books, len(books))
}

// CreateBook 创建图书
// @Summary      创建图书
// @Description  登录用户创建图书，创建者为当前用户，平均评分初始为0
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=view.Book}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      429 {object} response.Response "请求过于频繁"
// @Router       /api/v1/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	// 1. 参数绑定
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	// 2. 创建者来自Token
	userID := middleware.GetUserID(c)

	// 3. 调用应用层用例
	result, err := h.createBookUseCase.Execute(c.Request.Context(), userID, appbook.CreateBookRequest{
		Title:       req.Title,
		Author:      req.Author,
		Genre:       req.Genre,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}
