package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appbook "github.com/xiebiao/bookreview/internal/application/book"
	appreview "github.com/xiebiao/bookreview/internal/application/review"
	appuser "github.com/xiebiao/bookreview/internal/application/user"
	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/rating"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/database"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookreview/internal/interface/http/handler"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	"github.com/xiebiao/bookreview/internal/interface/http/router"
	"github.com/xiebiao/bookreview/pkg/jwt"
)

// envelope 响应信封
type envelope struct {
	Success    bool            `json:"success"`
	Count      *int            `json:"count"`
	Pagination json.RawMessage `json:"pagination"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

// newTestServer 组装完整的HTTP服务（SQLite + 内存会话存储 + 空事件发布）
func newTestServer(t *testing.T, rl config.RateLimitConfig) *testServer {
	t.Helper()
	user.BcryptCost = bcrypt.MinCost

	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: gin.TestMode},
		Database:  config.DatabaseConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "api.db")},
		JWT:       config.JWTConfig{Secret: "test-secret", Issuer: "bookreview-test", AccessTokenExpire: time.Hour},
		RateLimit: rl,
		CORS: config.CORSConfig{
			Enabled:      true,
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Content-Type", "Authorization"},
		},
		Tracing: config.TracingConfig{ServiceName: "bookreview-test"},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.Open(cfg.Database, false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	sqlDB, err := db.DB()
	require.NoError(t, err)

	userRepo := database.NewUserRepository(db)
	bookRepo := database.NewBookRepository(db)
	reviewRepo := database.NewReviewRepository(db)
	txManager := database.NewTxManager(db)
	sessions := redis.NewMemorySessionStore()
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenExpire)

	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo)
	reviewService := review.NewService(reviewRepo)
	aggregator := rating.NewAggregator(reviewRepo, bookRepo)
	mutator := appreview.NewMutator(txManager, aggregator, appreview.NoopPublisher{}, log)
	issuer := appuser.NewTokenIssuer(jwtManager, sessions, log)

	handlers := router.Handlers{
		User: handler.NewUserHandler(
			appuser.NewRegisterUseCase(userService, issuer),
			appuser.NewLoginUseCase(userService, issuer),
			appuser.NewLogoutUseCase(jwtManager, sessions),
			appuser.NewGetCurrentUserUseCase(userService),
		),
		Book: handler.NewBookHandler(
			appbook.NewCreateBookUseCase(bookService),
			appbook.NewGetBookUseCase(bookService),
			appbook.NewListBooksUseCase(bookService),
			appbook.NewSearchBooksUseCase(bookService),
		),
		Review: handler.NewReviewHandler(
			appreview.NewListReviewsUseCase(reviewService),
			appreview.NewAddReviewUseCase(bookRepo, reviewService, mutator),
			appreview.NewUpdateReviewUseCase(reviewService, mutator),
			appreview.NewDeleteReviewUseCase(reviewService, mutator),
		),
	}

	engine := router.New(cfg, log, handlers,
		middleware.NewAuthMiddleware(jwtManager, sessions),
		middleware.NewRateLimiter(cfg.RateLimit),
		sqlDB,
	)
	return &testServer{t: t, engine: engine}
}

// do 发送请求并解析响应信封
func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

// register 注册用户并返回Token
func (s *testServer) register(name, email string) string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret123",
	})
	require.Equal(s.t, http.StatusCreated, code, env.Error)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data.Token
}

// createBook 创建图书并返回ID
func (s *testServer) createBook(token, title string) uint {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/v1/books", token, map[string]string{
		"title": title, "author": "Author", "genre": "Genre", "description": "Description",
	})
	require.Equal(s.t, http.StatusCreated, code, env.Error)

	var data struct {
		ID uint `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data.ID
}

type bookJSON struct {
	ID            uint    `json:"id"`
	Title         string  `json:"title"`
	AverageRating float64 `json:"averageRating"`
	UserID        uint    `json:"userId"`
	Reviews       []struct {
		ID     uint `json:"id"`
		Rating int  `json:"rating"`
		UserID uint `json:"userId"`
		BookID uint `json:"bookId"`
		User   *struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		} `json:"user"`
	} `json:"reviews"`
}

func (s *testServer) getBook(id uint) bookJSON {
	s.t.Helper()
	code, env := s.do(http.MethodGet, fmt.Sprintf("/api/v1/books/%d", id), "", nil)
	require.Equal(s.t, http.StatusOK, code, env.Error)

	var b bookJSON
	require.NoError(s.t, json.Unmarshal(env.Data, &b))
	return b
}

func (s *testServer) addReview(token string, bookID uint, rating int, text string) (int, envelope) {
	return s.do(http.MethodPost, fmt.Sprintf("/api/v1/books/%d/reviews", bookID), token, map[string]interface{}{
		"rating": rating, "text": text,
	})
}

func reviewID(t *testing.T, env envelope) uint {
	t.Helper()
	var data struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.ID
}

func TestReviewFlow(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	alice := s.register("Alice", "alice@example.com")
	bob := s.register("Bob", "bob@example.com")

	bookID := s.createBook(alice, "Dune")
	b := s.getBook(bookID)
	assert.Equal(t, 0.0, b.AverageRating)
	assert.NotNil(t, b.Reviews)
	assert.Empty(t, b.Reviews)

	// 1. 两条评论 4 和 2 → 3.0
	code, env := s.addReview(alice, bookID, 4, "good")
	require.Equal(t, http.StatusCreated, code, env.Error)
	four := reviewID(t, env)

	code, env = s.addReview(bob, bookID, 2, "meh")
	require.Equal(t, http.StatusCreated, code, env.Error)
	two := reviewID(t, env)

	b = s.getBook(bookID)
	assert.Equal(t, 3.0, b.AverageRating)
	require.Len(t, b.Reviews, 2)
	require.NotNil(t, b.Reviews[0].User)
	assert.Equal(t, "Alice", b.Reviews[0].User.Name)

	// 2. 重复评论 → 400，平均分不变
	code, env = s.addReview(alice, bookID, 1, "again")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
	assert.Equal(t, 3.0, s.getBook(bookID).AverageRating)

	// 3. 修改别人的评论 → 401
	code, env = s.do(http.MethodPut, fmt.Sprintf("/api/v1/reviews/%d", four), bob, map[string]int{"rating": 1})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)
	code, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/reviews/%d", four), bob, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, 3.0, s.getBook(bookID).AverageRating)

	// 4. 修改自己的评论
	code, env = s.do(http.MethodPut, fmt.Sprintf("/api/v1/reviews/%d", two), bob, map[string]int{"rating": 5})
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, 4.5, s.getBook(bookID).AverageRating)

	// 5. 删除 → 5.0 → 0
	code, env = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/reviews/%d", four), alice, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.JSONEq(t, `{}`, string(env.Data))
	assert.Equal(t, 5.0, s.getBook(bookID).AverageRating)

	code, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/reviews/%d", two), bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0.0, s.getBook(bookID).AverageRating)

	// 6. 已删除的评论 → 404
	code, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/reviews/%d", two), bob, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestReviewEndpoints_Errors(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	alice := s.register("Alice", "alice@example.com")
	bookID := s.createBook(alice, "Dune")

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		body     interface{}
		wantCode int
	}{
		{"未登录添加评论", http.MethodPost, fmt.Sprintf("/api/v1/books/%d/reviews", bookID), "", map[string]interface{}{"rating": 4, "text": "x"}, http.StatusUnauthorized},
		{"Token无效", http.MethodPost, fmt.Sprintf("/api/v1/books/%d/reviews", bookID), "not-a-jwt", map[string]interface{}{"rating": 4, "text": "x"}, http.StatusUnauthorized},
		{"图书不存在", http.MethodPost, "/api/v1/books/9999/reviews", alice, map[string]interface{}{"rating": 4, "text": "x"}, http.StatusNotFound},
		{"评分越界", http.MethodPost, fmt.Sprintf("/api/v1/books/%d/reviews", bookID), alice, map[string]interface{}{"rating": 6, "text": "x"}, http.StatusBadRequest},
		{"评分类型错误", http.MethodPost, fmt.Sprintf("/api/v1/books/%d/reviews", bookID), alice, map[string]interface{}{"rating": "five", "text": "x"}, http.StatusBadRequest},
		{"内容为空", http.MethodPost, fmt.Sprintf("/api/v1/books/%d/reviews", bookID), alice, map[string]interface{}{"rating": 3, "text": "  "}, http.StatusBadRequest},
		{"图书ID非法", http.MethodPost, "/api/v1/books/abc/reviews", alice, map[string]interface{}{"rating": 3, "text": "x"}, http.StatusBadRequest},
		{"更新不存在的评论", http.MethodPut, "/api/v1/reviews/9999", alice, map[string]int{"rating": 3}, http.StatusNotFound},
		{"未登录删除评论", http.MethodDelete, "/api/v1/reviews/1", "", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantCode, code, env.Error)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}

	// 图书不存在时评论列表为空
	code, env := s.do(http.MethodGet, "/api/v1/books/9999/reviews", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 0, *env.Count)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestBookEndpoints(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	alice := s.register("Alice", "alice@example.com")
	for i := 1; i <= 12; i++ {
		s.createBook(alice, fmt.Sprintf("Book %02d", i))
	}

	// 分页
	code, env := s.do(http.MethodGet, "/api/v1/books?page=2&limit=5", "", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	require.NotNil(t, env.Count)
	assert.Equal(t, 5, *env.Count)
	assert.JSONEq(t, `{"total":12,"limit":5,"page":2,"pages":3,"hasMore":true}`, string(env.Pagination))

	code, env = s.do(http.MethodGet, "/api/v1/books?page=3&limit=5&sort=title&order=asc", "", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, 2, *env.Count)
	assert.JSONEq(t, `{"total":12,"limit":5,"page":3,"pages":3,"hasMore":false}`, string(env.Pagination))

	var books []bookJSON
	require.NoError(t, json.Unmarshal(env.Data, &books))
	require.Len(t, books, 2)
	assert.Equal(t, "Book 11", books[0].Title)

	// 非法参数
	for _, q := range []string{"page=abc", "page=0", "limit=1000", "sort=password", "order=sideways"} {
		code, env = s.do(http.MethodGet, "/api/v1/books?"+q, "", nil)
		assert.Equal(t, http.StatusBadRequest, code, q)
		assert.False(t, env.Success, q)
	}

	// 搜索
	code, env = s.do(http.MethodGet, "/api/v1/books/search?query=Book%2001", "", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, 1, *env.Count)

	code, env = s.do(http.MethodGet, "/api/v1/books/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)

	// 详情
	code, _ = s.do(http.MethodGet, "/api/v1/books/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(http.MethodGet, "/api/v1/books/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	// 创建需要登录，缺字段400
	code, _ = s.do(http.MethodPost, "/api/v1/books", "", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = s.do(http.MethodPost, "/api/v1/books", alice, map[string]string{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCreateBook_IgnoresClientAverageRating(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	alice := s.register("Alice", "alice@example.com")

	code, env := s.do(http.MethodPost, "/api/v1/books", alice, map[string]interface{}{
		"title": "Dune", "author": "Herbert", "genre": "SciFi", "description": "Spice", "averageRating": 5,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)

	var b bookJSON
	require.NoError(t, json.Unmarshal(env.Data, &b))
	assert.Equal(t, 0.0, b.AverageRating)
	assert.NotZero(t, b.UserID)
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})
	token := s.register("Alice", "alice@example.com")

	// 重复注册
	code, env := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)

	// 登录
	code, env = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, _ = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	// 当前用户（不含密码）
	code, env = s.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Contains(t, string(env.Data), `"email":"alice@example.com"`)
	assert.NotContains(t, string(env.Data), "password")

	// 登出后Token失效
	code, env = s.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	code, _ = s.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1})

	body := map[string]string{"email": "nobody@example.com", "password": "secret123"}
	code, _ := s.do(http.MethodPost, "/api/v1/auth/login", "", body)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := s.do(http.MethodPost, "/api/v1/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.False(t, env.Success)

	// 读接口不限流
	for i := 0; i < 3; i++ {
		code, _ = s.do(http.MethodGet, "/api/v1/books", "", nil)
		assert.Equal(t, http.StatusOK, code)
	}
}

func TestPingAndNoRoute(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})

	code, env := s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, env = s.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1})

	// 写接口需要认证，预检请求不带Token也应直接返回204
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/books", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	// 实际请求同样带上允许来源
	req = httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
