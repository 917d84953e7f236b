package worker

import (
	"context"
	"errors"
	"time"

	"github.com/neighborwang/roastery/internal/logger"
	"github.com/neighborwang/roastery/internal/provider"
	"github.com/neighborwang/roastery/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskDraftExpire, c.handleDraftExpire)
}

func (c *Consumer) handleDraftExpire(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.Container == nil || c.DraftHandoff == nil {
		logger.Debugw("worker_draft_expire_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseDraftExpirePayload(task.Payload())
	if err != nil {
		if errors.Is(err, queue.ErrPayloadInvalid) {
			logger.Debugw("worker_draft_expire_skip_invalid_payload", "error", err)
			return nil
		}
		logger.Warnw("worker_draft_expire_unmarshal_failed", "error", err)
		return err
	}
	expired, err := c.DraftHandoff.ExpireDraft(ctx, payload.SessionID, time.Unix(payload.SavedAt, 0))
	if err != nil {
		logger.Warnw("worker_draft_expire_failed",
			"session_id", payload.SessionID,
			"saved_at", payload.SavedAt,
			"error", err,
		)
		return err
	}
	if !expired {
		logger.Debugw("worker_draft_expire_skip_resaved",
			"session_id", payload.SessionID,
			"saved_at", payload.SavedAt,
		)
		return nil
	}
	logger.Infow("worker_draft_expired", "session_id", payload.SessionID)
	return nil
}
