package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/neighborwang/roastery/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LegacyUpstreamEnv 旧部署沿用的上游地址环境变量
const LegacyUpstreamEnv = "NEXT_PUBLIC_GAS_URL"

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Session  SessionConfig  `mapstructure:"session"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	StoreMap StoreMapConfig `mapstructure:"storemap"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host      string `mapstructure:"host"`
	Port      string `mapstructure:"port"`
	Mode      string `mapstructure:"mode"` // debug / release
	PublicURL string `mapstructure:"public_url"`
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		Level:      c.Level,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite/postgres
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// StorageConfig 会话快照存储配置
type StorageConfig struct {
	Driver           string `mapstructure:"driver"` // database/redis
	SnapshotTTLHours int    `mapstructure:"snapshot_ttl_hours"`
	DraftExpireHours int    `mapstructure:"draft_expire_hours"`
	ProductCacheSecs int    `mapstructure:"product_cache_seconds"`
}

// SessionConfig 购物会话 cookie 配置
type SessionConfig struct {
	Secret       string `mapstructure:"secret"`
	CookieName   string `mapstructure:"cookie_name"`
	MaxAgeHours  int    `mapstructure:"max_age_hours"`
	Secure       bool   `mapstructure:"secure"`
	CookieDomain string `mapstructure:"cookie_domain"`
}

// UpstreamConfig 上游订单脚本配置
type UpstreamConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// StoreMapConfig 超商门市地图配置
type StoreMapConfig struct {
	MapURL      string `mapstructure:"map_url"`
	ShopID      string `mapstructure:"shop_id"`
	ShowType    string `mapstructure:"show_type"`
	CallbackURL string `mapstructure:"callback_url"`
}

// PricingConfig 运费规则配置
type PricingConfig struct {
	FreeShippingThreshold int64 `mapstructure:"free_shipping_threshold"`
	ShippingFee           int64 `mapstructure:"shipping_fee"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	SubmitRateLimit RateLimitConfig `mapstructure:"submit_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	return LoadFrom(viper.New(), ".env")
}

// LoadFrom 使用指定 viper 实例加载，envFile 为空时跳过 .env
func LoadFrom(v *viper.Viper, envFile string) *Config {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			logger.Warnw("dotenv_load_failed", "file", envFile, "error", err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("../")
	v.AddConfigPath("./etc")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	cfg.Upstream.Endpoint = resolveUpstreamEndpoint(cfg.Upstream.Endpoint)
	return &cfg
}

// resolveUpstreamEndpoint 未配置 upstream.endpoint 时回退到旧环境变量
func resolveUpstreamEndpoint(configured string) string {
	if endpoint := strings.TrimSpace(configured); endpoint != "" {
		return endpoint
	}
	return strings.TrimSpace(os.Getenv(LegacyUpstreamEnv))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.public_url", "http://localhost:8080")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "roastery.log")
	v.SetDefault("log.level", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/roastery.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "nw")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.queues", map[string]int{
		"default": 10,
	})
	v.SetDefault("storage.driver", "database")
	v.SetDefault("storage.snapshot_ttl_hours", 720)
	v.SetDefault("storage.draft_expire_hours", 24)
	v.SetDefault("storage.product_cache_seconds", 60)
	v.SetDefault("session.secret", "change-me-in-production")
	v.SetDefault("session.cookie_name", "nw_session")
	v.SetDefault("session.max_age_hours", 720)
	v.SetDefault("session.secure", false)
	v.SetDefault("session.cookie_domain", "")
	v.SetDefault("upstream.endpoint", "")
	v.SetDefault("upstream.timeout_seconds", 30)
	v.SetDefault("storemap.map_url", "https://emap.presco.com.tw/c2cemap.ashx")
	v.SetDefault("storemap.shop_id", "870")
	v.SetDefault("storemap.show_type", "1")
	v.SetDefault("storemap.callback_url", "")
	v.SetDefault("pricing.free_shipping_threshold", 1000)
	v.SetDefault("pricing.shipping_fee", 60)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Cache-Control",
		"X-Requested-With",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.submit_rate_limit.window_seconds", 60)
	v.SetDefault("security.submit_rate_limit.max_requests", 5)
	v.SetDefault("security.submit_rate_limit.block_seconds", 300)
}
