package router

import (
	"github.com/neighborwang/roastery/internal/cache"
	"github.com/neighborwang/roastery/internal/config"
	"github.com/neighborwang/roastery/internal/constants"
	publichandlers "github.com/neighborwang/roastery/internal/http/handlers/public"
	"github.com/neighborwang/roastery/internal/http/response"
	"github.com/neighborwang/roastery/internal/logger"
	"github.com/neighborwang/roastery/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	redisClient := cache.Client()
	submitLimit := cfg.Security.SubmitRateLimit
	submitRule := RateLimitRule{
		Prefix:        cache.Key("rate", "submit"),
		WindowSeconds: submitLimit.WindowSeconds,
		MaxRequests:   submitLimit.MaxRequests,
		BlockSeconds:  submitLimit.BlockSeconds,
	}
	proxySubmitRule := submitRule
	proxySubmitRule.Prefix = cache.Key("rate", "proxy_submit")
	proxySubmitRule.Proxy = true

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/health", func(ctx *gin.Context) {
		response.Success(ctx, gin.H{"status": "ok"})
	})

	// 上游代理（无会话状态）
	r.GET("/checkout-api", publicHandler.ProxyFetch)
	r.POST("/checkout-api", RateLimitMiddleware(redisClient, proxySubmitRule, KeyByIP), publicHandler.ProxySubmit)
	r.POST(constants.PathStoreCallback, publicHandler.StoreCallback)

	session := SessionMiddleware(c.SessionSigner, cfg.Session)

	// 结帐流程
	checkout := r.Group(constants.PathCheckout)
	checkout.Use(session)
	{
		checkout.GET("", publicHandler.GetCheckout)
		checkout.PUT("/draft", publicHandler.SaveCheckoutDraft)
		checkout.POST("/store-picker", publicHandler.OpenStorePicker)
		checkout.POST("/submit", RateLimitMiddleware(redisClient, submitRule, KeyBySession), publicHandler.SubmitCheckout)
	}

	api := r.Group("/api")
	{
		api.GET("/products", publicHandler.ListProducts)
		api.GET("/products/:id", publicHandler.GetProduct)
		api.GET("/orders/track", publicHandler.TrackOrders)

		cart := api.Group("/cart")
		cart.Use(session)
		{
			cart.GET("", publicHandler.GetCart)
			cart.DELETE("", publicHandler.ClearCart)
			cart.POST("/items", publicHandler.AddCartItem)
			cart.PUT("/items", publicHandler.SetCartItemQuantity)
			cart.PATCH("/items", publicHandler.AdjustCartItem)
			cart.DELETE("/items", publicHandler.RemoveCartItem)
		}
	}

	return r
}
