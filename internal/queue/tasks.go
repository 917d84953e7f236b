package queue

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/neighborwang/roastery/internal/constants"

	"github.com/hibiken/asynq"
)

// TaskDraftExpire 结帐草稿过期任务
const TaskDraftExpire = constants.TaskDraftExpire

// ErrPayloadInvalid 任务载荷无效
var ErrPayloadInvalid = errors.New("task payload invalid")

// DraftExpirePayload 草稿过期任务载荷
// SavedAt 为保存时的 Unix 秒，用于跳过之后又被保存过的草稿
type DraftExpirePayload struct {
	SessionID string `json:"session_id"`
	SavedAt   int64  `json:"saved_at"`
}

// NewDraftExpireTask 创建草稿过期任务
func NewDraftExpireTask(payload DraftExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDraftExpire, body), nil
}

// ParseDraftExpirePayload 解析草稿过期任务载荷
func ParseDraftExpirePayload(body []byte) (DraftExpirePayload, error) {
	var payload DraftExpirePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return DraftExpirePayload{}, err
	}
	if strings.TrimSpace(payload.SessionID) == "" || payload.SavedAt <= 0 {
		return DraftExpirePayload{}, ErrPayloadInvalid
	}
	return payload, nil
}
