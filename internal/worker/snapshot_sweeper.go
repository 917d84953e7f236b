package worker

import (
	"context"
	"time"

	"github.com/neighborwang/roastery/internal/logger"
	"github.com/neighborwang/roastery/internal/provider"
)

const snapshotSweepInterval = time.Hour

// snapshotPurger 支持按时间清理快照的存储（数据库驱动）
type snapshotPurger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SnapshotSweeper 定期删除过期的购物车/草稿快照
// 不依赖异步队列，队列关闭时同样运行
type SnapshotSweeper struct {
	purger   snapshotPurger
	ttl      time.Duration
	interval time.Duration
}

// NewSnapshotSweeper 按容器存储创建清理服务
// redis 驱动依赖 key 过期，或保留时长未配置时返回 false
func NewSnapshotSweeper(container *provider.Container) (*SnapshotSweeper, bool) {
	if container == nil || container.Config == nil {
		return nil, false
	}
	purger, ok := container.BlobRepo.(snapshotPurger)
	if !ok {
		return nil, false
	}
	hours := container.Config.Storage.SnapshotTTLHours
	if hours <= 0 {
		return nil, false
	}
	return &SnapshotSweeper{
		purger:   purger,
		ttl:      time.Duration(hours) * time.Hour,
		interval: snapshotSweepInterval,
	}, true
}

// Name 服务名称
func (s *SnapshotSweeper) Name() string {
	return "snapshot_sweeper"
}

// Start 立即清理一次，之后按间隔执行直到 ctx 取消
func (s *SnapshotSweeper) Start(ctx context.Context) error {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop 由 Start 的 ctx 控制退出
func (s *SnapshotSweeper) Stop(context.Context) error {
	return nil
}

func (s *SnapshotSweeper) sweep(ctx context.Context) {
	removed, err := s.purger.PurgeBefore(ctx, time.Now().Add(-s.ttl))
	if err != nil {
		logger.Warnw("worker_snapshot_sweep_failed", "error", err)
		return
	}
	if removed > 0 {
		logger.Infow("worker_snapshot_swept", "removed", removed, "ttl", s.ttl.String())
	}
}
