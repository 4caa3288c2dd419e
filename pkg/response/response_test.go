package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestSuccessAndCreated(t *testing.T) {
	w, body := perform(t, func(c *gin.Context) { Success(c, gin.H{"id": 1}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "count")
	assert.NotContains(t, body, "error")

	w, _ = perform(t, func(c *gin.Context) { Created(c, gin.H{"id": 1}) })
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSuccess_EmptyObject(t *testing.T) {
	_, body := perform(t, func(c *gin.Context) { Success(c, struct{}{}) })
	assert.Equal(t, map[string]interface{}{}, body["data"])
}

func TestList_ZeroCount(t *testing.T) {
	_, body := perform(t, func(c *gin.Context) { List(c, []string{}, 0) })
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, []interface{}{}, body["data"])
}

func TestPage(t *testing.T) {
	_, body := perform(t, func(c *gin.Context) {
		Page(c, []int{1, 2}, 2, Pagination{Total: 12, Limit: 5, Page: 3, Pages: 3, HasMore: false})
	})
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(12), pagination["total"])
	assert.Equal(t, false, pagination["hasMore"])
}

func TestError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"参数错误", apperrors.Validation("bad"), http.StatusBadRequest, "bad"},
		{"资源不存在", apperrors.ErrNotFound, http.StatusNotFound, "资源不存在"},
		{"未登录", apperrors.ErrUnauthorized, http.StatusUnauthorized, "请先登录"},
		{"无权操作", apperrors.ErrForbidden, http.StatusUnauthorized, "无权限访问"},
		{"限流", apperrors.ErrTooManyRequests, http.StatusTooManyRequests, "请求过于频繁，请稍后再试"},
		{"存储错误带底层原因", apperrors.Wrap(errors.New("disk full"), "创建评论失败"), http.StatusBadRequest, "创建评论失败: disk full"},
		{"普通error", errors.New("boom"), http.StatusBadRequest, "系统内部错误: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := perform(t, func(c *gin.Context) { Error(c, tt.err) })
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.msg, body["error"])
			assert.NotContains(t, body, "data")
		})
	}
}
