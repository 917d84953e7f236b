package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/neighborwang/roastery/internal/config"
	"github.com/neighborwang/roastery/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// DefaultDraftExpireDelay 草稿默认保留时长
	DefaultDraftExpireDelay = 24 * time.Hour
)

// Client 队列客户端封装
type Client struct {
	client           *asynq.Client
	enabled          bool
	defaultQueue     string
	draftExpireDelay time.Duration
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig, draftExpireDelay time.Duration) (*Client, error) {
	if draftExpireDelay <= 0 {
		draftExpireDelay = DefaultDraftExpireDelay
	}
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue, draftExpireDelay: draftExpireDelay}, nil
	}
	return &Client{
		client:           asynq.NewClient(buildRedisOpt(cfg)),
		enabled:          true,
		defaultQueue:     DefaultQueue,
		draftExpireDelay: draftExpireDelay,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueDraftExpire 推送草稿过期清理任务
func (c *Client) EnqueueDraftExpire(payload DraftExpirePayload, delay time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	if delay < 0 {
		delay = 0
	}
	task, err := NewDraftExpireTask(payload)
	if err != nil {
		return err
	}
	options := []asynq.Option{asynq.Queue(c.defaultQueue), asynq.ProcessIn(delay), asynq.MaxRetry(3)}
	_, err = c.client.Enqueue(task, options...)
	return err
}

// ScheduleDraftExpiry 按配置时长安排草稿过期
func (c *Client) ScheduleDraftExpiry(sessionID string, savedAt time.Time) error {
	if c == nil {
		return nil
	}
	return c.EnqueueDraftExpire(DraftExpirePayload{
		SessionID: sessionID,
		SavedAt:   savedAt.Unix(),
	}, c.draftExpireDelay)
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 5
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{DefaultQueue: 1}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}
