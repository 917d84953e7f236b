package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/neighborwang/roastery/internal/constants"
	"github.com/neighborwang/roastery/internal/logger"
	"github.com/neighborwang/roastery/internal/models"
	"github.com/neighborwang/roastery/internal/upstream"
)

var phonePattern = regexp.MustCompile(constants.PhonePattern)

// OrderSubmitter 订单转发接口
type OrderSubmitter interface {
	Submit(ctx context.Context, payload interface{}) (*upstream.Result, error)
}

// StorePicker 门市地图跳转地址
type StorePicker interface {
	PickerURL() (string, error)
}

// DraftExpiryScheduler 草稿过期任务调度
type DraftExpiryScheduler interface {
	ScheduleDraftExpiry(sessionID string, savedAt time.Time) error
}

// OrderItemPayload 上游订单行
type OrderItemPayload struct {
	ProductID string       `json:"productId"`
	Name      string       `json:"name"`
	Price     models.Money `json:"price"`
	Quantity  int          `json:"quantity"`
	ImageURL  string       `json:"imageUrl"`
	Variant   string       `json:"variant"`
	Form      string       `json:"form,omitempty"`
	Grind     string       `json:"grind,omitempty"`
}

// OrderPayload 上游订单结构
type OrderPayload struct {
	Items       []OrderItemPayload   `json:"items"`
	TotalAmount models.Money         `json:"totalAmount"`
	Buyer       models.CheckoutDraft `json:"buyer"`
}

// BuildOrderPayload 由购物车与表单组装订单
func BuildOrderPayload(cart *Cart, buyer models.CheckoutDraft) OrderPayload {
	lines := cart.Lines()
	items := make([]OrderItemPayload, 0, len(lines))
	for _, line := range lines {
		items = append(items, OrderItemPayload{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
			ImageURL:  line.ImageURL,
			Variant:   line.Packaging.Variant,
			Form:      line.Packaging.Form,
			Grind:     line.Packaging.Grind,
		})
	}
	return OrderPayload{
		Items:       items,
		TotalAmount: cart.Total(),
		Buyer:       buyer,
	}
}

// NormalizeBuyer 去除表单首尾空白
func NormalizeBuyer(draft models.CheckoutDraft) models.CheckoutDraft {
	return models.CheckoutDraft{
		Name:      strings.TrimSpace(draft.Name),
		Phone:     strings.TrimSpace(draft.Phone),
		StoreName: strings.TrimSpace(draft.StoreName),
		StoreID:   strings.TrimSpace(draft.StoreID),
		Note:      strings.TrimSpace(draft.Note),
	}
}

// ValidatePhone 校验手机号格式
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(strings.TrimSpace(phone)) {
		return ErrBuyerPhoneInvalid
	}
	return nil
}

// ValidateBuyer 校验收件人信息
func ValidateBuyer(draft models.CheckoutDraft) error {
	draft = NormalizeBuyer(draft)
	if draft.Name == "" {
		return ErrBuyerNameRequired
	}
	if err := ValidatePhone(draft.Phone); err != nil {
		return err
	}
	if draft.StoreName == "" {
		return ErrStoreRequired
	}
	return nil
}

// CheckoutView 结帐页状态
// StoreReturned 表示本次进入来自门市地图回跳
type CheckoutView struct {
	State         CheckoutState        `json:"state"`
	Form          models.CheckoutDraft `json:"form"`
	Cart          CartSummary          `json:"cart"`
	StoreReturned bool                 `json:"store_returned"`
	RedirectURL   string               `json:"redirect_url,omitempty"`
}

// StoreSelectionView 跳转门市地图
type StoreSelectionView struct {
	State       CheckoutState `json:"state"`
	RedirectURL string        `json:"redirect_url"`
}

// SubmitResult 提交结果
type SubmitResult struct {
	State   CheckoutState `json:"state"`
	OrderID string        `json:"order_id,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// CheckoutService 结帐流程服务
type CheckoutService struct {
	carts     *CartService
	drafts    *DraftHandoff
	submitter OrderSubmitter
	picker    StorePicker
	expiry    DraftExpiryScheduler
}

// NewCheckoutService 创建结帐服务，expiry 可为 nil
func NewCheckoutService(carts *CartService, drafts *DraftHandoff, submitter OrderSubmitter, picker StorePicker, expiry DraftExpiryScheduler) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		drafts:    drafts,
		submitter: submitter,
		picker:    picker,
		expiry:    expiry,
	}
}

// Open 进入结帐页：恢复草稿并合并门市回传
// 带门市参数视为从地图回跳：awaiting_store_selection --store_returned--> filling
func (s *CheckoutService) Open(ctx context.Context, sessionID string, query url.Values) (CheckoutView, error) {
	cs, err := s.carts.Open(ctx, sessionID)
	if err != nil {
		return CheckoutView{}, err
	}
	if cs.Cart().IsEmpty() {
		state, err := NextCheckoutState(CheckoutStateFilling, CheckoutEventCartEmpty)
		if err != nil {
			return CheckoutView{}, err
		}
		return CheckoutView{
			State:       state,
			Cart:        cs.Cart().Summary(),
			RedirectURL: constants.PathCart,
		}, nil
	}

	draft, err := s.drafts.RestoreDraft(ctx, sessionID)
	if err != nil {
		return CheckoutView{}, err
	}
	sel := StoreSelectionFromQuery(query)
	form := ReconcileStoreSelection(draft, sel)
	state := CheckoutStateFilling
	if sel.Present() {
		if state, err = NextCheckoutState(CheckoutStateAwaitingStoreSelection, CheckoutEventStoreReturned); err != nil {
			return CheckoutView{}, err
		}
		// 回跳后立即保存，刷新页面不会丢失门市
		if _, err := s.saveDraft(ctx, sessionID, form); err != nil {
			return CheckoutView{}, err
		}
	}
	return CheckoutView{
		State:         state,
		Form:          form,
		Cart:          cs.Cart().Summary(),
		StoreReturned: sel.Present(),
	}, nil
}

// SaveDraft 保存表单草稿
func (s *CheckoutService) SaveDraft(ctx context.Context, sessionID string, draft models.CheckoutDraft) error {
	_, err := s.saveDraft(ctx, sessionID, draft)
	return err
}

func (s *CheckoutService) saveDraft(ctx context.Context, sessionID string, draft models.CheckoutDraft) (time.Time, error) {
	savedAt, err := s.drafts.SaveDraft(ctx, sessionID, draft)
	if err != nil {
		return time.Time{}, err
	}
	if s.expiry != nil {
		if err := s.expiry.ScheduleDraftExpiry(sessionID, savedAt); err != nil {
			logger.Warnw("checkout_draft_expiry_schedule_failed",
				"session_id", sessionID,
				"error", err,
			)
		}
	}
	return savedAt, nil
}

// BeginStoreSelection 跳转门市地图前保存草稿
// filling --open_store_picker--> awaiting_store_selection；空购物车不进入地图
func (s *CheckoutService) BeginStoreSelection(ctx context.Context, sessionID string, draft models.CheckoutDraft) (StoreSelectionView, error) {
	cs, err := s.carts.Open(ctx, sessionID)
	if err != nil {
		return StoreSelectionView{}, err
	}
	if cs.Cart().IsEmpty() {
		return StoreSelectionView{State: CheckoutStateCartEmpty, RedirectURL: constants.PathCart}, nil
	}
	state, err := NextCheckoutState(CheckoutStateFilling, CheckoutEventOpenStorePicker)
	if err != nil {
		return StoreSelectionView{}, err
	}
	target, err := s.picker.PickerURL()
	if err != nil {
		return StoreSelectionView{}, err
	}
	if _, err := s.saveDraft(ctx, sessionID, draft); err != nil {
		return StoreSelectionView{}, err
	}
	return StoreSelectionView{State: state, RedirectURL: target}, nil
}

// Submit 提交订单
// 空购物车不会调用上游；上游失败时保留草稿以便重试
func (s *CheckoutService) Submit(ctx context.Context, sessionID string, draft models.CheckoutDraft) (SubmitResult, error) {
	cs, err := s.carts.Open(ctx, sessionID)
	if err != nil {
		return SubmitResult{}, err
	}
	if cs.Cart().IsEmpty() {
		state, err := NextCheckoutState(CheckoutStateFilling, CheckoutEventCartEmpty)
		if err != nil {
			return SubmitResult{}, err
		}
		return SubmitResult{State: state}, ErrCartEmpty
	}

	buyer := NormalizeBuyer(draft)
	if err := ValidateBuyer(buyer); err != nil {
		return SubmitResult{State: CheckoutStateFilling, Error: err.Error()}, err
	}
	if _, err := s.saveDraft(ctx, sessionID, buyer); err != nil {
		return SubmitResult{}, err
	}

	state, err := NextCheckoutState(CheckoutStateFilling, CheckoutEventSubmit)
	if err != nil {
		return SubmitResult{}, err
	}
	payload := BuildOrderPayload(cs.Cart(), buyer)
	result, submitErr := s.submitter.Submit(ctx, payload)
	if submitErr != nil {
		if state, err = NextCheckoutState(state, CheckoutEventUpstreamFailed); err != nil {
			return SubmitResult{}, err
		}
		logger.FromContext(ctx).Warnw("checkout_submit_failed",
			"session_id", sessionID,
			"items", len(payload.Items),
			"total", payload.TotalAmount.String(),
			"error", submitErr,
		)
		return SubmitResult{State: state, Error: submitErr.Error()}, fmt.Errorf("%w: %w", ErrOrderSubmitFailed, submitErr)
	}
	if state, err = NextCheckoutState(state, CheckoutEventUpstreamOK); err != nil {
		return SubmitResult{}, err
	}

	if err := cs.Mutate(ctx, func(cart *Cart) (bool, error) { return cart.Clear(), nil }); err != nil {
		logger.Errorw("checkout_cart_clear_failed", "session_id", sessionID, "error", err)
	}
	if err := s.drafts.DiscardDraft(ctx, sessionID); err != nil {
		logger.Errorw("checkout_draft_discard_failed", "session_id", sessionID, "error", err)
	}
	orderID := result.OrderID()
	logger.FromContext(ctx).Infow("checkout_submitted",
		"session_id", sessionID,
		"order_id", orderID,
		"total", payload.TotalAmount.String(),
	)
	return SubmitResult{State: state, OrderID: orderID}, nil
}

// IsValidationError 是否为本地校验错误
func IsValidationError(err error) bool {
	return errors.Is(err, ErrBuyerNameRequired) ||
		errors.Is(err, ErrBuyerPhoneInvalid) ||
		errors.Is(err, ErrStoreRequired) ||
		errors.Is(err, ErrInvalidQuantity)
}
