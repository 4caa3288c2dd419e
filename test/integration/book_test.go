package integration

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBooks 创建、详情、按作者过滤分页、搜索
// 作者名带时间戳，过滤结果只包含本次创建的图书
func TestBooks(t *testing.T) {
	base := BaseURL(t)
	_, token := RegisterTestUser(t, "book_owner")
	author := fmt.Sprintf("作者%d", time.Now().UnixNano())

	var first BookData
	for i := 1; i <= 7; i++ {
		b := CreateTestBook(t, token, fmt.Sprintf("图书%02d", i), author)
		if i == 1 {
			first = b
		}
	}

	t.Run("新书平均评分为0", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/books/%d", base, first.ID), "")
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)

		b := Decode[BookData](t, resp)
		assert.Equal(t, 0.0, b.AverageRating)
		assert.Empty(t, b.Reviews)
	})

	t.Run("按作者过滤分页", func(t *testing.T) {
		q := url.Values{"author": {author}, "page": {"2"}, "limit": {"5"}, "sort": {"title"}, "order": {"asc"}}
		resp := GetJSON(t, base+"/books?"+q.Encode(), "")
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)

		require.NotNil(t, resp.Pagination)
		assert.Equal(t, int64(7), resp.Pagination.Total)
		assert.Equal(t, 2, resp.Pagination.Pages)
		assert.False(t, resp.Pagination.HasMore)

		books := Decode[[]BookData](t, resp)
		require.Len(t, books, 2)
		assert.Equal(t, "图书06", books[0].Title)
	})

	t.Run("非法分页参数", func(t *testing.T) {
		resp := GetJSON(t, base+"/books?page=0", "")
		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})

	t.Run("搜索", func(t *testing.T) {
		resp := GetJSON(t, base+"/books/search?query="+url.QueryEscape(author), "")
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)
		require.NotNil(t, resp.Count)
		assert.Equal(t, 7, *resp.Count)
	})

	t.Run("空关键词应失败", func(t *testing.T) {
		resp := GetJSON(t, base+"/books/search?query=", "")
		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})

	t.Run("不存在的图书", func(t *testing.T) {
		resp := GetJSON(t, base+"/books/999999999", "")
		assert.Equal(t, http.StatusNotFound, resp.Status)
	})

	t.Run("未登录不能创建", func(t *testing.T) {
		resp := PostJSON(t, base+"/books", map[string]string{
			"title": "x", "author": "y", "genre": "z", "description": "w",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
	})
}
