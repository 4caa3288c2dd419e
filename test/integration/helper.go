// Package integration 针对运行中服务的端到端测试
//
// 运行方式：
//
//	go run ./cmd/api &
//	BOOKREVIEW_API_URL=http://localhost:8080/api/v1 go test -v ./test/integration/...
//
// 未设置BOOKREVIEW_API_URL时全部跳过。测试数据用时间戳区分，可以对同一个库重复运行。
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second

	testPassword = "Test1234"
)

// Response 统一响应结构
type Response struct {
	Status     int             `json:"-"`
	Success    bool            `json:"success"`
	Count      *int            `json:"count"`
	Pagination *Pagination     `json:"pagination"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
}

// Pagination 分页信息
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Page    int   `json:"page"`
	Pages   int   `json:"pages"`
	HasMore bool  `json:"hasMore"`
}

// UserData 用户
type UserData struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthData 注册/登录响应数据
type AuthData struct {
	User  UserData `json:"user"`
	Token string   `json:"token"`
}

// BookData 图书
type BookData struct {
	ID            uint         `json:"id"`
	Title         string       `json:"title"`
	Author        string       `json:"author"`
	Genre         string       `json:"genre"`
	UserID        uint         `json:"userId"`
	AverageRating float64      `json:"averageRating"`
	Reviews       []ReviewData `json:"reviews"`
}

// ReviewData 评论
type ReviewData struct {
	ID     uint   `json:"id"`
	Rating int    `json:"rating"`
	Text   string `json:"text"`
	BookID uint   `json:"bookId"`
	UserID uint   `json:"userId"`
	User   *struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	} `json:"user"`
}

// BaseURL 读取BOOKREVIEW_API_URL，未设置时跳过测试
func BaseURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("BOOKREVIEW_API_URL")
	if url == "" {
		t.Skip("未设置BOOKREVIEW_API_URL，跳过集成测试")
	}
	return url
}

// Do 发送请求并解析JSON响应
// 被限流(429)时按Retry-After等待后重试，最多3次
func Do(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()

	var payload []byte
	if data != nil {
		var err error
		payload, err = json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
	}

	client := &http.Client{Timeout: Timeout}
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequest(method, url, bytes.NewReader(payload))
		require.NoError(t, err, "创建HTTP请求失败")
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := client.Do(req)
		require.NoError(t, err, "发送HTTP请求失败")

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err, "读取响应体失败")

		if resp.StatusCode == http.StatusTooManyRequests && attempt < 3 {
			wait, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
			time.Sleep(time.Duration(max(wait, 1)) * time.Second)
			continue
		}

		result := Response{Status: resp.StatusCode}
		require.NoError(t, json.Unmarshal(body, &result), "解析JSON响应失败: %s", string(body))
		return &result
	}
}

// PostJSON 发送POST请求
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	t.Helper()
	return Do(t, http.MethodPost, url, data, token)
}

// GetJSON 发送GET请求
func GetJSON(t *testing.T, url string, token string) *Response {
	t.Helper()
	return Do(t, http.MethodGet, url, nil, token)
}

// Decode 解析data字段
func Decode[T any](t *testing.T, resp *Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v), "解析data失败: %s", string(resp.Data))
	return v
}

// GenerateTestEmail 生成唯一的测试邮箱
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// RegisterTestUser 注册测试用户，返回用户ID和Token
func RegisterTestUser(t *testing.T, name string) (uint, string) {
	t.Helper()

	resp := PostJSON(t, BaseURL(t)+"/auth/register", map[string]string{
		"name":     name,
		"email":    GenerateTestEmail(name),
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusCreated, resp.Status, "注册失败: %s", resp.Error)

	data := Decode[AuthData](t, resp)
	return data.User.ID, data.Token
}

// CreateTestBook 创建测试图书并返回图书
func CreateTestBook(t *testing.T, token, title, author string) BookData {
	t.Helper()

	resp := PostJSON(t, BaseURL(t)+"/books", map[string]string{
		"title":       title,
		"author":      author,
		"genre":       "集成测试",
		"description": "集成测试用图书",
	}, token)
	require.Equal(t, http.StatusCreated, resp.Status, "创建图书失败: %s", resp.Error)

	return Decode[BookData](t, resp)
}
