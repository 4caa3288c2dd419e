package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAuth 注册 → 登录 → 当前用户 → 退出 → Token失效
func TestAuth(t *testing.T) {
	base := BaseURL(t)
	email := GenerateTestEmail("auth")

	t.Run("注册", func(t *testing.T) {
		resp := PostJSON(t, base+"/auth/register", map[string]string{
			"name": "集成测试", "email": email, "password": testPassword,
		}, "")
		require.Equal(t, http.StatusCreated, resp.Status, resp.Error)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, Decode[AuthData](t, resp).Token)
	})

	t.Run("重复邮箱注册应失败", func(t *testing.T) {
		resp := PostJSON(t, base+"/auth/register", map[string]string{
			"name": "集成测试", "email": email, "password": testPassword,
		}, "")
		assert.Equal(t, http.StatusBadRequest, resp.Status)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "邮箱")
	})

	t.Run("密码过短应失败", func(t *testing.T) {
		resp := PostJSON(t, base+"/auth/register", map[string]string{
			"name": "集成测试", "email": GenerateTestEmail("short"), "password": "123",
		}, "")
		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})

	t.Run("错误密码应失败", func(t *testing.T) {
		resp := PostJSON(t, base+"/auth/login", map[string]string{
			"email": email, "password": "wrong-password",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
	})

	var token string
	t.Run("登录", func(t *testing.T) {
		resp := PostJSON(t, base+"/auth/login", map[string]string{
			"email": email, "password": testPassword,
		}, "")
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)
		token = Decode[AuthData](t, resp).Token
		require.NotEmpty(t, token)
	})

	t.Run("当前用户", func(t *testing.T) {
		resp := GetJSON(t, base+"/auth/me", token)
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)

		assert.Equal(t, email, Decode[UserData](t, resp).Email)
	})

	t.Run("退出后Token失效", func(t *testing.T) {
		resp := PostJSON(t, base+"/auth/logout", nil, token)
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)

		resp = GetJSON(t, base+"/auth/me", token)
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
	})
}
