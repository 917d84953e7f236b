package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/neighborwang/roastery/internal/config"
	"github.com/neighborwang/roastery/internal/logger"

	"go.uber.org/zap"
)

// 启动模式
const (
	// ModeAll 店面 HTTP + 后台任务
	ModeAll = "all"
	// ModeAPI 仅店面 HTTP
	ModeAPI = "api"
	// ModeWorker 仅后台任务（草稿过期、快照清理）
	ModeWorker = "worker"
)

// Options 启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// ParseMode 校验 -mode 参数，空值视为 all
func ParseMode(raw string) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	switch mode {
	case "":
		return ModeAll, nil
	case ModeAll, ModeAPI, ModeWorker:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %s|%s|%s)", raw, ModeAll, ModeAPI, ModeWorker)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultStopTimeout
	}
	if mode, err := ParseMode(opts.Mode); err == nil {
		opts.Mode = mode
	}
	return opts
}
