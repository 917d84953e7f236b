package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/neighborwang/roastery/internal/constants"
	"github.com/neighborwang/roastery/internal/logger"
	"github.com/neighborwang/roastery/internal/models"
	"github.com/neighborwang/roastery/internal/repository"
)

// DraftHandoff 结帐草稿暂存
// 跳转到门市地图前保存表单，回跳后恢复并合并门市选择
type DraftHandoff struct {
	repo repository.BlobRepository
	now  func() time.Time
}

// NewDraftHandoff 创建草稿暂存服务
func NewDraftHandoff(repo repository.BlobRepository) *DraftHandoff {
	return &DraftHandoff{repo: repo, now: time.Now}
}

// SaveDraft 整体覆盖保存草稿，返回保存时间
func (h *DraftHandoff) SaveDraft(ctx context.Context, sessionID string, draft models.CheckoutDraft) (time.Time, error) {
	if strings.TrimSpace(sessionID) == "" {
		return time.Time{}, ErrSessionRequired
	}
	savedAt := h.now()
	payload, err := encodeDraftSnapshot(draft, savedAt)
	if err != nil {
		return time.Time{}, err
	}
	if err := h.repo.Put(ctx, sessionID, constants.SessionKeyDraft, payload); err != nil {
		return time.Time{}, err
	}
	return savedAt, nil
}

// RestoreDraft 读取草稿，不存在或已损坏时返回 nil
func (h *DraftHandoff) RestoreDraft(ctx context.Context, sessionID string) (*models.CheckoutDraft, error) {
	draft, _, err := h.load(ctx, sessionID)
	return draft, err
}

func (h *DraftHandoff) load(ctx context.Context, sessionID string) (*models.CheckoutDraft, time.Time, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, time.Time{}, ErrSessionRequired
	}
	payload, found, err := h.repo.Get(ctx, sessionID, constants.SessionKeyDraft)
	if err != nil {
		return nil, time.Time{}, err
	}
	if !found {
		return nil, time.Time{}, nil
	}
	draft, savedAt, err := decodeDraftSnapshot(payload)
	if err != nil {
		logger.Warnw("checkout_draft_decode_failed",
			"session_id", sessionID,
			"error", err,
		)
		return nil, time.Time{}, nil
	}
	return &draft, savedAt, nil
}

// DiscardDraft 删除草稿
func (h *DraftHandoff) DiscardDraft(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrSessionRequired
	}
	return h.repo.Delete(ctx, sessionID, constants.SessionKeyDraft)
}

// ExpireDraft 过期清理：仅当草稿自 savedAt 之后未再保存时删除
func (h *DraftHandoff) ExpireDraft(ctx context.Context, sessionID string, savedAt time.Time) (bool, error) {
	draft, current, err := h.load(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if draft == nil {
		return false, nil
	}
	if !current.IsZero() && current.Unix() != savedAt.Unix() {
		return false, nil
	}
	if err := h.repo.Delete(ctx, sessionID, constants.SessionKeyDraft); err != nil {
		return false, err
	}
	return true, nil
}

// StoreSelectionFromQuery 从回跳地址的 query 读取门市
func StoreSelectionFromQuery(query url.Values) models.StoreSelection {
	return models.StoreSelection{
		StoreID:   strings.TrimSpace(query.Get("storeId")),
		StoreName: strings.TrimSpace(query.Get("storeName")),
	}
}

// ReconcileStoreSelection 合并草稿与门市选择
// 带门市名称时门市 ID 与名称都以 query 为准（缺少 ID 即为空），其余字段来自草稿
func ReconcileStoreSelection(draft *models.CheckoutDraft, sel models.StoreSelection) models.CheckoutDraft {
	var form models.CheckoutDraft
	if draft != nil {
		form = *draft
	}
	if sel.Present() {
		form.StoreName = sel.StoreName
		form.StoreID = sel.StoreID
	}
	return form
}
