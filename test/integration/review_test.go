package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReviewFlow 评论增删改与平均评分
func TestReviewFlow(t *testing.T) {
	base := BaseURL(t)
	_, aliceToken := RegisterTestUser(t, "alice")
	_, bobToken := RegisterTestUser(t, "bob")
	book := CreateTestBook(t, aliceToken, "评分测试", "评分作者")

	reviewsURL := fmt.Sprintf("%s/books/%d/reviews", base, book.ID)
	averageRating := func(t *testing.T) float64 {
		t.Helper()
		resp := GetJSON(t, fmt.Sprintf("%s/books/%d", base, book.ID), "")
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)
		return Decode[BookData](t, resp).AverageRating
	}

	resp := PostJSON(t, reviewsURL, map[string]interface{}{"rating": 4, "text": "不错"}, aliceToken)
	require.Equal(t, http.StatusCreated, resp.Status, resp.Error)
	aliceReview := Decode[ReviewData](t, resp)

	resp = PostJSON(t, reviewsURL, map[string]interface{}{"rating": 2, "text": "一般"}, bobToken)
	require.Equal(t, http.StatusCreated, resp.Status, resp.Error)
	bobReview := Decode[ReviewData](t, resp)

	assert.Equal(t, 3.0, averageRating(t))

	t.Run("重复评论应失败且评分不变", func(t *testing.T) {
		resp := PostJSON(t, reviewsURL, map[string]interface{}{"rating": 5, "text": "再来"}, bobToken)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
		assert.Equal(t, 3.0, averageRating(t))
	})

	t.Run("评论列表带评论者", func(t *testing.T) {
		resp := GetJSON(t, reviewsURL, "")
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)
		reviews := Decode[[]ReviewData](t, resp)
		require.Len(t, reviews, 2)
		require.NotNil(t, reviews[0].User)
		assert.NotEmpty(t, reviews[0].User.Name)
	})

	t.Run("不能修改他人评论", func(t *testing.T) {
		resp := Do(t, http.MethodPut, fmt.Sprintf("%s/reviews/%d", base, aliceReview.ID),
			map[string]interface{}{"rating": 1}, bobToken)
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
		assert.Equal(t, 3.0, averageRating(t))
	})

	t.Run("修改评分", func(t *testing.T) {
		resp := Do(t, http.MethodPut, fmt.Sprintf("%s/reviews/%d", base, bobReview.ID),
			map[string]interface{}{"rating": 5}, bobToken)
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)
		assert.Equal(t, 4.5, averageRating(t))
	})

	t.Run("删除评论", func(t *testing.T) {
		resp := Do(t, http.MethodDelete, fmt.Sprintf("%s/reviews/%d", base, aliceReview.ID), nil, aliceToken)
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)
		assert.Equal(t, 5.0, averageRating(t))

		resp = Do(t, http.MethodDelete, fmt.Sprintf("%s/reviews/%d", base, bobReview.ID), nil, bobToken)
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)
		assert.Equal(t, 0.0, averageRating(t))
	})

	t.Run("已删除的评论", func(t *testing.T) {
		resp := Do(t, http.MethodDelete, fmt.Sprintf("%s/reviews/%d", base, bobReview.ID), nil, bobToken)
		assert.Equal(t, http.StatusNotFound, resp.Status)
	})

	t.Run("不存在的图书不能评论", func(t *testing.T) {
		resp := PostJSON(t, base+"/books/999999999/reviews", map[string]interface{}{"rating": 3, "text": "?"}, aliceToken)
		assert.Equal(t, http.StatusNotFound, resp.Status)
	})
}
