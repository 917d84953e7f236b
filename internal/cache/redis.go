package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neighborwang/roastery/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "nw"
	pingTimeout      = 3 * time.Second
)

// 共享连接：菜单缓存、提交限流与 redis 快照驱动共用
var (
	sharedClient *redis.Client
	keyPrefix    = defaultKeyPrefix
)

// InitRedis 连接 Redis 并探活
// 未启用或连接失败时保持禁用，调用方回退到数据库快照且不做限流
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		UseClient(nil, "")
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	addr := fmt.Sprintf("%s:%d", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		UseClient(nil, "")
		return fmt.Errorf("redis ping %s: %w", addr, err)
	}
	UseClient(client, cfg.Prefix)
	return nil
}

// UseClient 注入共享连接，nil 表示禁用
func UseClient(client *redis.Client, prefix string) {
	sharedClient = client
	keyPrefix = strings.TrimSpace(prefix)
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
}

// Enabled 是否有可用连接
func Enabled() bool {
	return sharedClient != nil
}

// Client 共享连接，未启用时为 nil
func Client() *redis.Client {
	return sharedClient
}

// Prefix 当前键前缀
func Prefix() string {
	return keyPrefix
}

// Key 拼接带前缀的键，如 Key("rate", "submit") => nw:rate:submit
func Key(parts ...string) string {
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, keyPrefix)
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	return strings.Join(segments, ":")
}

// Close 关闭共享连接
func Close() error {
	client := sharedClient
	UseClient(nil, "")
	if client == nil {
		return nil
	}
	return client.Close()
}

// GetJSON 读取 JSON 缓存，未启用或未命中返回 false
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	raw, err := sharedClient.Get(ctx, Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return sharedClient.Set(ctx, Key(key), payload, ttl).Err()
}
