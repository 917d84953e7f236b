package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBlobStore 基于 Redis 的会话快照存储
type RedisBlobStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisBlobStore 创建 Redis 快照存储，ttl<=0 表示不过期
func NewRedisBlobStore(client *redis.Client, prefix string, ttl time.Duration) *RedisBlobStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "nw"
	}
	return &RedisBlobStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisBlobStore) key(sessionID, key string) string {
	return fmt.Sprintf("%s:session:%s:%s", s.prefix, sessionID, key)
}

// Get 读取快照
func (s *RedisBlobStore) Get(ctx context.Context, sessionID, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.key(sessionID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Put 写入快照
func (s *RedisBlobStore) Put(ctx context.Context, sessionID, key string, payload []byte) error {
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, s.key(sessionID, key), payload, ttl).Err()
}

// Delete 删除快照
func (s *RedisBlobStore) Delete(ctx context.Context, sessionID, key string) error {
	return s.client.Del(ctx, s.key(sessionID, key)).Err()
}
