package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// memorySessionStore 进程内实现（redis.enabled=false时使用）
// 过期条目在读取时惰性清理
type memorySessionStore struct {
	mu        sync.Mutex
	now       func() time.Time
	sessions  map[string]memoryEntry
	blacklist map[string]time.Time
}

type memoryEntry struct {
	data      map[string]string
	expiresAt time.Time
}

// NewMemorySessionStore 创建进程内会话存储
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		now:       time.Now,
		sessions:  make(map[string]memoryEntry),
		blacklist: make(map[string]time.Time),
	}
}

func (s *memorySessionStore) SaveSession(_ context.Context, userID uint, data map[string]interface{}, ttl time.Duration) error {
	values := make(map[string]string, len(data))
	for k, v := range data {
		values[k] = fmt.Sprint(v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionKey(userID)] = memoryEntry{data: values, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *memorySessionStore) GetSession(_ context.Context, userID uint) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(userID)
	entry, ok := s.sessions[key]
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.sessions, key)
		return nil, apperrors.ErrUnauthorized
	}

	out := make(map[string]string, len(entry.data))
	for k, v := range entry.data {
		out[k] = v
	}
	return out, nil
}

func (s *memorySessionStore) DeleteSession(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey(userID))
	return nil
}

func (s *memorySessionStore) AddToBlacklist(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[blacklistKey(token)] = s.now().Add(ttl)
	return nil
}

func (s *memorySessionStore) IsInBlacklist(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := blacklistKey(token)
	expiresAt, ok := s.blacklist[key]
	if !ok {
		return false, nil
	}
	if !s.now().Before(expiresAt) {
		delete(s.blacklist, key)
		return false, nil
	}
	return true, nil
}
