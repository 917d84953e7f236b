package provider

import (
	"strings"
	"time"

	"github.com/neighborwang/roastery/internal/cache"
	"github.com/neighborwang/roastery/internal/config"
	"github.com/neighborwang/roastery/internal/constants"
	"github.com/neighborwang/roastery/internal/logger"
	"github.com/neighborwang/roastery/internal/models"
	"github.com/neighborwang/roastery/internal/queue"
	"github.com/neighborwang/roastery/internal/repository"
	"github.com/neighborwang/roastery/internal/service"
	"github.com/neighborwang/roastery/internal/storemap"
	"github.com/neighborwang/roastery/internal/upstream"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Infrastructure
	BlobRepo      repository.BlobRepository
	Upstream      *upstream.Client
	StorePicker   *storemap.Picker
	SessionSigner *service.SessionSigner

	// Services
	ProductService       *service.ProductService
	CartService          *service.CartService
	DraftHandoff         *service.DraftHandoff
	CheckoutService      *service.CheckoutService
	OrderTrackingService *service.OrderTrackingService
	ProxyService         *service.ProxyService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	queueClient, err := queue.NewClient(&cfg.Queue, hoursOr(cfg.Storage.DraftExpireHours, 24))
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}

	return NewContainerWith(cfg, resolveBlobRepository(cfg), queueClient)
}

// NewContainerWith 使用指定存储与队列组装服务（测试可注入内存存储）
func NewContainerWith(cfg *config.Config, blobRepo repository.BlobRepository, queueClient *queue.Client) *Container {
	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		BlobRepo:    blobRepo,
	}
	c.initInfrastructure()
	c.initServices()
	return c
}

func resolveBlobRepository(cfg *config.Config) repository.BlobRepository {
	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if driver == constants.StorageDriverRedis {
		if client := cache.Client(); client != nil {
			logger.Infow("provider_blob_store_selected", "driver", constants.StorageDriverRedis)
			return cache.NewRedisBlobStore(client, cache.Prefix(), hoursOr(cfg.Storage.SnapshotTTLHours, 0))
		}
		logger.Warnw("provider_blob_store_fallback",
			"requested", constants.StorageDriverRedis,
			"reason", "redis_disabled",
		)
	}
	return repository.NewBlobRepository(models.DB)
}

func (c *Container) initInfrastructure() {
	cfg := c.Config
	c.Upstream = upstream.New(upstream.Config{
		Endpoint: cfg.Upstream.Endpoint,
		Timeout:  time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
	})
	if !c.Upstream.Configured() {
		logger.Warnw("provider_upstream_endpoint_missing",
			"hint", "set upstream.endpoint or "+config.LegacyUpstreamEnv,
		)
	}
	c.StorePicker = storemap.NewPicker(storemap.Config{
		MapURL:      cfg.StoreMap.MapURL,
		ShopID:      cfg.StoreMap.ShopID,
		ShowType:    cfg.StoreMap.ShowType,
		CallbackURL: cfg.StoreMap.CallbackURL,
	}, cfg.Server.PublicURL)
	c.SessionSigner = service.NewSessionSigner(cfg.Session.Secret, hoursOr(cfg.Session.MaxAgeHours, 720))
}

func (c *Container) initServices() {
	cfg := c.Config
	policy := service.NewPricingPolicy(cfg.Pricing.FreeShippingThreshold, cfg.Pricing.ShippingFee)

	c.ProductService = service.NewProductService(models.SeedProducts())
	c.CartService = service.NewCartService(c.BlobRepo, c.ProductService, policy)
	c.DraftHandoff = service.NewDraftHandoff(c.BlobRepo)

	var expiry service.DraftExpiryScheduler
	if c.QueueClient.Enabled() {
		expiry = c.QueueClient
	}
	c.CheckoutService = service.NewCheckoutService(c.CartService, c.DraftHandoff, c.Upstream, c.StorePicker, expiry)
	c.OrderTrackingService = service.NewOrderTrackingService(c.Upstream)
	c.ProxyService = service.NewProxyService(c.Upstream, time.Duration(cfg.Storage.ProductCacheSecs)*time.Second)
}

func hoursOr(hours int, fallback int) time.Duration {
	if hours > 0 {
		return time.Duration(hours) * time.Hour
	}
	return time.Duration(fallback) * time.Hour
}
