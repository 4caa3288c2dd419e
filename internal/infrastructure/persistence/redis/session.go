package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// SessionStore 会话存储
// 设计说明：
// 1. 记录用户登录会话（登录时间、IP），登出时删除
// 2. JWT黑名单：登出后Token在剩余有效期内不可再用
// 3. 两种实现：Redis（多实例共享）和进程内存（单实例开发环境、测试）
type SessionStore interface {
	SaveSession(ctx context.Context, userID uint, data map[string]interface{}, ttl time.Duration) error
	GetSession(ctx context.Context, userID uint) (map[string]string, error)
	DeleteSession(ctx context.Context, userID uint) error
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// Key设计：session:{user_id}、blacklist:{token}
func sessionKey(userID uint) string {
	return fmt.Sprintf("session:%d", userID)
}

func blacklistKey(token string) string {
	return "blacklist:" + token
}

// redisSessionStore Redis实现
type redisSessionStore struct {
	client *redis.Client
}

// NewSessionStore 创建基于Redis的会话存储
func NewSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

// SaveSession 保存用户会话
// 使用Pipeline把HSET和EXPIRE合并为一次网络往返
func (s *redisSessionStore) SaveSession(ctx context.Context, userID uint, data map[string]interface{}, ttl time.Duration) error {
	key := sessionKey(userID)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, data)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.WrapRedis(err, "保存会话失败")
	}

	return nil
}

// GetSession 获取用户会话
func (s *redisSessionStore) GetSession(ctx context.Context, userID uint) (map[string]string, error) {
	result, err := s.client.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, apperrors.WrapRedis(err, "获取会话失败")
	}

	if len(result) == 0 {
		return nil, apperrors.ErrUnauthorized
	}

	return result, nil
}

// DeleteSession 删除用户会话（用于登出）
func (s *redisSessionStore) DeleteSession(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return apperrors.WrapRedis(err, "删除会话失败")
	}
	return nil
}

// AddToBlacklist 将Token加入黑名单
// ttl应为Token剩余有效期，过期后Redis自动删除
func (s *redisSessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // 已过期的Token无需拉黑
	}
	if err := s.client.Set(ctx, blacklistKey(token), "revoked", ttl).Err(); err != nil {
		return apperrors.WrapRedis(err, "添加Token到黑名单失败")
	}
	return nil
}

// IsInBlacklist 检查Token是否在黑名单中
func (s *redisSessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	exists, err := s.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, apperrors.WrapRedis(err, "检查黑名单失败")
	}
	return exists > 0, nil
}
