package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// Manager JWT管理器
// 设计说明：
// 1. 单Access Token（HS256），有效期由配置jwt.access_token_expire决定
// 2. 服务端无状态校验；登出通过Redis黑名单让Token提前失效
type Manager struct {
	secret string        // JWT签名密钥
	issuer string        // 签发者，解析时校验
	expire time.Duration // Token有效期
	now    func() time.Time
}

// NewManager 创建JWT管理器
func NewManager(secret, issuer string, expire time.Duration) *Manager {
	return &Manager{
		secret: secret,
		issuer: issuer,
		expire: expire,
		now:    time.Now,
	}
}

// Claims 自定义JWT Claims
// 学习要点：
// 1. 嵌入jwt.RegisteredClaims获取标准字段（exp、iat、nbf等）
// 2. 添加自定义字段（UserID、Email、Name）
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Token 签发结果
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// GenerateToken 生成Access Token
func (m *Manager) GenerateToken(userID uint, email, name string) (*Token, error) {
	now := m.now()
	expiresAt := now.Add(m.expire)

	claims := Claims{
		UserID: userID,
		Email:  email,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.secret))
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Token失败")
	}

	return &Token{AccessToken: signed, ExpiresAt: expiresAt}, nil
}

// ParseToken 解析并验证Token
// 学习要点：
// 1. 验证签名算法和签名（防止alg=none和伪造）
// 2. 验证过期时间（exp）、生效时间（nbf）和签发者（iss）
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法的签名算法: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		// ParseWithClaims返回的是包装错误，必须用errors.Is判断
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}

// RemainingTTL Token剩余有效期（登出时作为黑名单TTL）
func (m *Manager) RemainingTTL(claims *Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Sub(m.now())
}
