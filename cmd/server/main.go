package main

import (
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/neighborwang/roastery/internal/app"
	"github.com/neighborwang/roastery/internal/config"
	"github.com/neighborwang/roastery/internal/logger"
	"github.com/neighborwang/roastery/internal/models"
	"github.com/neighborwang/roastery/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiGreen = "\033[32m"
	ansiCyan  = "\033[36m"
	ansiBrown = "\033[33m"
)

func main() {
	// 解析命令行参数
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()
	mode, err := app.ParseMode(mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	printStartupBanner()

	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := service.CheckSessionSecret(cfg.Session.Secret); err != nil {
		if cfg.Server.Mode == "release" {
			stdLog.Fatalf("session secret 过弱或仍为默认值，请在生产环境中配置强随机密钥")
		}
		stdLog.Printf("警告: session secret 过弱或仍为默认值，建议在生产环境中更换")
	}
	if cfg.Upstream.Endpoint == "" {
		stdLog.Printf("警告: 未设置上游订单地址 (UPSTREAM_ENDPOINT / %s)，结帐与查单将返回配置错误", config.LegacyUpstreamEnv)
	}

	// 初始化数据库
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, cfg.Server.Mode == "debug"); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}

	// 自动迁移会话快照表
	if err := models.AutoMigrate(nil); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner() {
	fmt.Println(ansiBrown + "╔══════════════════════════════════════════════════════════╗" + ansiReset)
	fmt.Println(ansiBrown + "║              ☕ Neighbor Wang Roastery 启动中              ║" + ansiReset)
	fmt.Println(ansiBrown + "╚══════════════════════════════════════════════════════════╝" + ansiReset)
	fmt.Println(ansiCyan + "  storefront · cart · checkout · store-map callback · proxy" + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "Endpoints" + ansiReset)
	fmt.Println(ansiGreen + "• /api/products  /api/cart  /api/orders/track" + ansiReset)
	fmt.Println(ansiGreen + "• /checkout  /checkout-api  /store-callback" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}
