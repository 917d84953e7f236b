package app

import (
	"errors"
	"net"

	"github.com/neighborwang/roastery/internal/cache"
	"github.com/neighborwang/roastery/internal/config"
	"github.com/neighborwang/roastery/internal/logger"
	"github.com/neighborwang/roastery/internal/provider"
	"github.com/neighborwang/roastery/internal/router"
	"github.com/neighborwang/roastery/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	return buildRunnerWith(cfg, provider.NewContainer(cfg), mode)
}

func buildRunnerWith(cfg *config.Config, container *provider.Container, mode string) (*Runner, error) {
	mode, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	var services []Service

	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewStorefrontServer(listenAddr(cfg), engine))
	}
	if mode == ModeAll || mode == ModeWorker {
		background, err := backgroundServices(cfg, container, mode)
		if err != nil {
			return nil, err
		}
		services = append(services, background...)
	}
	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	runner := NewRunner(services...)
	if container != nil && container.QueueClient != nil {
		runner.OnStop(container.QueueClient.Close)
	}
	runner.OnStop(cache.Close)
	return runner, nil
}

// backgroundServices 快照清理只依赖数据库；草稿过期需要队列
// all 模式下队列未启用时跳过 worker，worker 模式则报错
func backgroundServices(cfg *config.Config, container *provider.Container, mode string) ([]Service, error) {
	var services []Service
	if sweeper, ok := worker.NewSnapshotSweeper(container); ok {
		services = append(services, sweeper)
	}
	if !cfg.Queue.Enabled {
		if mode == ModeWorker {
			return nil, errors.New("worker mode requires queue.enabled")
		}
		logger.Infow("app_worker_skipped", "reason", "queue_disabled")
		return services, nil
	}
	workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
	if err != nil {
		return nil, err
	}
	return append(services, workerService), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start", "addr", listenAddr(opts.Config), "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}

func listenAddr(cfg *config.Config) string {
	return net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
}
