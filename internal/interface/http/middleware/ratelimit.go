package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
	"github.com/xiebiao/bookreview/pkg/metrics"
	"github.com/xiebiao/bookreview/pkg/response"
)

// 超过idleTTL没有请求的IP会被清理
const (
	cleanupInterval = time.Minute
	idleTTL         = 3 * time.Minute
)

// visitor 单个客户端IP的令牌桶
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按客户端IP限流（令牌桶）
// 教学要点：
// 1. 每个IP一个rate.Limiter，RPS为补充速率，Burst为桶容量
// 2. 只挂在写接口上（创建图书、评论增删改、注册登录）
// 3. 后台goroutine定期清理长时间不活跃的IP，防止map无限增长
type RateLimiter struct {
	enabled bool
	rps     rate.Limit
	burst   int

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

// NewRateLimiter 创建限流器
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		enabled:  cfg.Enabled,
		rps:      rate.Limit(cfg.RPS),
		burst:    cfg.Burst,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Middleware 返回gin中间件，超出限制返回429
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.enabled {
			c.Next()
			return
		}

		if !l.allow(c.ClientIP()) {
			metrics.IncCounter(metrics.RateLimitedTotal)
			c.Header("Retry-After", "1")
			response.Error(c, apperrors.ErrTooManyRequests)
			return
		}

		c.Next()
	}
}

// allow 消耗一个令牌
func (l *RateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[ip] = v
	}
	now := l.now()
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Run 定期清理不活跃的IP，ctx取消时退出
func (l *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *RateLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > idleTTL {
			delete(l.visitors, ip)
		}
	}
}
